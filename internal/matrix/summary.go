package matrix

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the occupancy and value range of each column of a matrix.
type Summary struct {
	Name    string
	Rows    int
	Keys    int // distinct first-column values
	Columns []ColumnSummary
	// EmptyRows counts rows with no value beyond the key column.
	EmptyRows int
}

// ColumnSummary captures per-column statistics.
type ColumnSummary struct {
	Name    string
	Kind    string // numeric|ids|empty
	NonNull int
	Missing int
	Unique  int
	// Numeric stats
	Min, Max, Mean, Std float64
}

// Occupancy is the fraction of rows with a value in the column.
func (c ColumnSummary) Occupancy() float64 {
	total := c.NonNull + c.Missing
	if total == 0 {
		return 0
	}
	return float64(c.NonNull) / float64(total)
}

// Summarize computes a Summary. Column 1 is the key column. A column is
// numeric when every non-empty cell parses as a number.
func Summarize(t *table.Table) *Summary {
	s := &Summary{Name: t.Path, Rows: len(t.Rows)}
	width := t.Width()
	keys := map[string]bool{}
	for _, r := range t.Rows {
		keys[cell(r, 0)] = true
		empty := true
		for j := 1; j < len(r); j++ {
			if strings.TrimSpace(r[j]) != "" {
				empty = false
				break
			}
		}
		if empty {
			s.EmptyRows++
		}
	}
	s.Keys = len(keys)

	for j := 0; j < width; j++ {
		name := strconv.Itoa(j + 1)
		if j < len(t.Header) {
			name = t.Header[j]
		}
		c := ColumnSummary{Name: name}
		uniq := map[string]bool{}
		var vals []float64
		numeric := true
		for _, r := range t.Rows {
			v := strings.TrimSpace(cell(r, j))
			if v == "" {
				c.Missing++
				continue
			}
			c.NonNull++
			uniq[v] = true
			if numeric {
				f, ok := parseCell(v)
				if !ok {
					numeric = false
					continue
				}
				vals = append(vals, f)
			}
		}
		c.Unique = len(uniq)
		switch {
		case c.NonNull == 0:
			c.Kind = "empty"
		case numeric:
			c.Kind = "numeric"
			c.Min, c.Max = floats.Min(vals), floats.Max(vals)
			c.Mean, c.Std = stat.MeanStdDev(vals, nil)
			if len(vals) < 2 {
				c.Std = 0
			}
		default:
			c.Kind = "ids"
		}
		s.Columns = append(s.Columns, c)
	}
	return s
}

// Markdown renders the summary as plain sections, least occupied columns
// listed last.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[MATRIX SUMMARY]\n")
	if s.Name != "" {
		fmt.Fprintf(&b, "File: %s\n", s.Name)
	}
	fmt.Fprintf(&b, "Rows: %d (distinct keys %d, empty rows %d)\n", s.Rows, s.Keys, s.EmptyRows)
	fmt.Fprintf(&b, "Columns: %d\n\n", len(s.Columns))

	b.WriteString("[COLUMNS]\n")
	cols := append([]ColumnSummary(nil), s.Columns...)
	if len(cols) > 1 {
		rest := cols[1:]
		sort.SliceStable(rest, func(i, j int) bool { return rest[i].Occupancy() > rest[j].Occupancy() })
	}
	for _, c := range cols {
		fmt.Fprintf(&b, "- %s: %s (non-null %d, occupancy %.1f%%)", c.Name, c.Kind, c.NonNull, c.Occupancy()*100)
		switch c.Kind {
		case "numeric":
			fmt.Fprintf(&b, ": min %.4g, max %.4g, mean %.4g, std %.4g", c.Min, c.Max, c.Mean, c.Std)
		case "ids":
			fmt.Fprintf(&b, ": unique %d", c.Unique)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
