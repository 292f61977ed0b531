package matrix

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"gonum.org/v1/gonum/floats"
)

// ZeroReport lists the feature columns whose values sum to exactly 0.
type ZeroReport struct {
	Count   int
	Columns []string
}

// ZeroColumns sums every feature column (all but the first) of t and
// reports those with a total of 0, in header order. Cells that do not parse
// as numbers count as 0. A table without data rows reports every feature
// column.
func ZeroColumns(t *table.Table) ZeroReport {
	rep := ZeroReport{Columns: []string{}}
	if len(t.Header) < 2 {
		return rep
	}
	col := make([]float64, len(t.Rows))
	for j := 1; j < len(t.Header); j++ {
		for i, row := range t.Rows {
			col[i] = 0
			if j < len(row) {
				col[i], _ = parseCell(row[j])
			}
		}
		if floats.Sum(col) == 0 {
			rep.Columns = append(rep.Columns, t.Header[j])
		}
	}
	rep.Count = len(rep.Columns)
	return rep
}

// String renders the report exactly as it is persisted.
func (r ZeroReport) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "columns_with_sum_zero_count=%d\n", r.Count)
	if r.Count > 0 {
		b.WriteString("columns_with_sum_zero:\n")
		for _, c := range r.Columns {
			b.WriteString(c)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// WriteFile persists the report to path.
func (r ZeroReport) WriteFile(path string) error {
	if err := utils.SafeWriteFile(path, []byte(r.String())); err != nil {
		return fmt.Errorf("write zero-column report: %w", err)
	}
	return nil
}

// DropColumns returns a copy of t without the named feature columns. The key
// column is never dropped.
func DropColumns(t *table.Table, names []string) *table.Table {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	keep := []int{0}
	for j := 1; j < len(t.Header); j++ {
		if !drop[t.Header[j]] {
			keep = append(keep, j)
		}
	}
	out := &table.Table{Path: t.Path, Header: make([]string, len(keep)), Rows: make([][]string, len(t.Rows))}
	for k, j := range keep {
		out.Header[k] = t.Header[j]
	}
	for i, row := range t.Rows {
		nr := make([]string, len(keep))
		for k, j := range keep {
			if j < len(row) {
				nr[k] = row[j]
			}
		}
		out.Rows[i] = nr
	}
	return out
}
