package seqs

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/biogo/biogo/seq/linear"
)

// ExtractStats summarizes ExtractRows.
type ExtractStats struct {
	Files     int
	Sequences int
	// Missing lists gene IDs present in the matrix but absent from the index.
	Missing []string
}

// ExtractRows writes one FASTA file per matrix row into outDir, named after
// the first non-empty gene of the row. Each sequence is renamed to its column
// label: the header cell when the matrix has one, otherwise the 1-based
// column number. Rows without any indexed gene produce no file. Two rows that
// would write the same file are an error.
func ExtractRows(mx *table.Table, index map[string]*linear.Seq, outDir string, width int) (ExtractStats, error) {
	var st ExtractStats
	if err := utils.EnsureDir(outDir); err != nil {
		return st, fmt.Errorf("create output dir: %w", err)
	}
	written := map[string]int{}
	for i, row := range mx.Rows {
		first := ""
		var recs []*linear.Seq
		for j, cell := range row {
			gene := strings.TrimSpace(cell)
			if gene == "" {
				continue
			}
			if first == "" {
				first = gene
			}
			s, ok := index[gene]
			if !ok {
				st.Missing = append(st.Missing, gene)
				continue
			}
			recs = append(recs, newSeq(columnLabel(mx, j), letters(s)))
		}
		if len(recs) == 0 {
			continue
		}
		var buf bytes.Buffer
		if err := Encode(&buf, recs, width); err != nil {
			return st, err
		}
		if prev, dup := written[first]; dup {
			return st, fmt.Errorf("rows %d and %d both start with gene %q; %s.fa would be overwritten",
				rowLine(mx, prev), rowLine(mx, i), first, first)
		}
		written[first] = i
		p := filepath.Join(outDir, first+".fa")
		if err := utils.SafeWriteFile(p, buf.Bytes()); err != nil {
			return st, err
		}
		st.Files++
		st.Sequences += len(recs)
	}
	return st, nil
}

// rowLine is the 1-based source line of row i.
func rowLine(mx *table.Table, i int) int {
	if i < len(mx.Lines) && mx.Lines[i] > 0 {
		return mx.Lines[i]
	}
	return i + 1
}

func columnLabel(mx *table.Table, j int) string {
	if j < len(mx.Header) && strings.TrimSpace(mx.Header[j]) != "" {
		return strings.TrimSpace(mx.Header[j])
	}
	return strconv.Itoa(j + 1)
}
