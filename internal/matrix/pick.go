package matrix

import (
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
)

// ColumnSpecies assigns a 1-based matrix column to a species (or species
// group) label.
type ColumnSpecies struct {
	Column  int
	Species string
}

// ParseMapping converts headerless "column,species" records into a mapping.
func ParseMapping(t *table.Table) ([]ColumnSpecies, error) {
	out := make([]ColumnSpecies, 0, len(t.Rows))
	for i, r := range t.Rows {
		line := i + 1
		if i < len(t.Lines) && t.Lines[i] > 0 {
			line = t.Lines[i]
		}
		if len(r) < 2 {
			return nil, fmt.Errorf("%s: line %d: expected column,species", t.Path, line)
		}
		col, err := strconv.Atoi(strings.TrimSpace(r[0]))
		if err != nil || col < 1 {
			return nil, fmt.Errorf("%s: line %d: invalid column index %q", t.Path, line, r[0])
		}
		sp := strings.TrimSpace(r[1])
		if sp == "" {
			return nil, fmt.Errorf("%s: line %d: empty species label", t.Path, line)
		}
		out = append(out, ColumnSpecies{Column: col, Species: sp})
	}
	return out, nil
}

// PickRepresentatives reduces a headerless syntenic matrix to one column per
// species. Species mapped to a single column keep it as is; for species with
// several columns (recent duplications) one non-empty value is chosen at
// random per row. Output columns follow the sorted species labels, which
// also form the header.
func PickRepresentatives(t *table.Table, mapping []ColumnSpecies, rng *rand.Rand) (*table.Table, error) {
	width := t.Width()
	groups := map[string][]int{}
	for _, m := range mapping {
		if m.Column > width {
			return nil, fmt.Errorf("mapping column %d for %q exceeds matrix width %d", m.Column, m.Species, width)
		}
		groups[m.Species] = append(groups[m.Species], m.Column-1)
	}
	species := make([]string, 0, len(groups))
	for sp := range groups {
		species = append(species, sp)
	}
	sort.Strings(species)

	out := &table.Table{Header: species, Rows: make([][]string, len(t.Rows))}
	var cands []string
	for i, r := range t.Rows {
		row := make([]string, len(species))
		for k, sp := range species {
			cols := groups[sp]
			if len(cols) == 1 {
				row[k] = cell(r, cols[0])
				continue
			}
			cands = cands[:0]
			for _, c := range cols {
				if v := cell(r, c); v != "" {
					cands = append(cands, v)
				}
			}
			switch len(cands) {
			case 0:
			case 1:
				row[k] = cands[0]
			default:
				row[k] = cands[rng.Intn(len(cands))]
			}
		}
		out.Rows[i] = row
	}
	return out, nil
}

func cell(r []string, j int) string {
	if j < len(r) {
		return strings.TrimSpace(r[j])
	}
	return ""
}
