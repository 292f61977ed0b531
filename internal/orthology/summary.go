package orthology

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
)

// SummaryHeader is the header of the cross-reference summary.
var SummaryHeader = []string{"yes_count", "file", "files"}

type speciesHits struct {
	species string
	genes   []string
	found   []bool
}

// Summarize builds one summary row per reference in order, read from
// dir/<reference><HitSuffix>. The row counts species with at least one
// BLAST-confirmed gene. A species with two or more distinct genes adds a DUP
// row listing them. Missing hit tables are flagged; tables whose files column
// is empty throughout are left out.
func Summarize(order []string, dir string) (*table.Table, error) {
	out := &table.Table{Header: SummaryHeader}
	for _, ref := range order {
		name := ref + HitSuffix
		path := filepath.Join(dir, name)
		t, err := table.Read(path, table.ReadOptions{Delimiter: ','})
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				out.Rows = append(out.Rows, []string{"0", name + " (MISSING)", ""})
				continue
			}
			return nil, err
		}
		rows, dups := summarizeHits(name, t)
		out.Rows = append(out.Rows, rows...)
		out.Rows = append(out.Rows, dups...)
	}
	return out, nil
}

func summarizeHits(name string, t *table.Table) (rows, dups [][]string) {
	if len(t.Rows) < 2 {
		return nil, nil
	}
	var bySp []*speciesHits
	idx := map[string]*speciesHits{}
	filesValue := ""
	for _, row := range t.Rows[1:] {
		if len(row) == 0 {
			continue
		}
		gene := strings.TrimSpace(row[0])
		sp := ""
		if len(row) >= 2 {
			sp = strings.TrimSpace(row[1])
		}
		found := len(row) >= 3 && strings.EqualFold(strings.TrimSpace(row[2]), "yes")
		if sp != "" {
			h, ok := idx[sp]
			if !ok {
				h = &speciesHits{species: sp}
				idx[sp] = h
				bySp = append(bySp, h)
			}
			h.genes = append(h.genes, gene)
			h.found = append(h.found, found)
		}
		if fl := strings.TrimSpace(row[len(row)-1]); fl != "" && filesValue == "" {
			filesValue = fl
		}
	}
	if filesValue == "" {
		return nil, nil
	}
	yes := 0
	for _, h := range bySp {
		for _, f := range h.found {
			if f {
				yes++
				break
			}
		}
	}
	rows = append(rows, []string{strconv.Itoa(yes), name, filesValue})
	for _, h := range bySp {
		seen := map[string]bool{}
		var parts []string
		for i, g := range h.genes {
			if seen[g] {
				continue
			}
			seen[g] = true
			label := g
			if label == "" {
				label = "NA"
			}
			yn := "no"
			if h.found[i] {
				yn = "yes"
			}
			parts = append(parts, fmt.Sprintf("%s[%s]", label, yn))
		}
		if len(parts) >= 2 {
			dups = append(dups, []string{"DUP", h.species + "=>" + strings.Join(parts, "|"), ""})
		}
	}
	return rows, dups
}

// ReferenceOrder lists the first-column names of a headerless table,
// skipping blanks and a "gene_id" header cell.
func ReferenceOrder(t *table.Table) []string {
	var out []string
	for _, row := range t.Rows {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name != "" && !strings.EqualFold(name, "gene_id") {
			out = append(out, name)
		}
	}
	return out
}

// Remap pairs the IDs of the third row of t with the statistics the first two
// rows assign them. The first two rows must have equal length; a repeated ID
// keeps its first statistic. IDs with no statistic get an empty cell and are
// returned in missing.
func Remap(t *table.Table) (out *table.Table, missing []string, err error) {
	if len(t.Rows) < 3 {
		return nil, nil, errors.New("need three rows: IDs, statistics, IDs to keep")
	}
	trim := func(r []string) []string {
		c := make([]string, len(r))
		for i, v := range r {
			c[i] = strings.TrimSpace(v)
		}
		return c
	}
	ids, stats, keep := trim(t.Rows[0]), trim(t.Rows[1]), trim(t.Rows[2])
	if len(ids) != len(stats) {
		return nil, nil, fmt.Errorf("row 1 has %d IDs but row 2 has %d statistics", len(ids), len(stats))
	}
	stat := make(map[string]string, len(ids))
	for i, id := range ids {
		if _, ok := stat[id]; !ok {
			stat[id] = stats[i]
		}
	}
	mapped := make([]string, len(keep))
	for i, id := range keep {
		v, ok := stat[id]
		if !ok {
			missing = append(missing, id)
		}
		mapped[i] = v
	}
	return &table.Table{Rows: [][]string{keep, mapped}}, missing, nil
}
