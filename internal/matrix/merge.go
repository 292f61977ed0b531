// Package matrix implements the row-wise operations on gene-by-species
// matrices: duplicate-key merging, zero-column scanning, transposition,
// outer joins and representative selection.
package matrix

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
)

// Options controls Merge.
type Options struct {
	// Strict rejects non-numeric cells instead of coercing them to 0.
	// Empty cells always count as 0.
	Strict bool
}

// NumericError is returned in strict mode for a cell that is not a number.
type NumericError struct {
	Path   string
	Row    int
	Column string
	Value  string
}

func (e *NumericError) Error() string {
	name := e.Path
	if name == "" {
		name = "<input>"
	}
	return fmt.Sprintf("%s: row %d, column %q: non-numeric value %q", name, e.Row, e.Column, e.Value)
}

// Coercion records a cell that was read as 0.
type Coercion struct {
	Row    int
	Column string
	Value  string
}

// Result is the outcome of Merge.
type Result struct {
	Table *table.Table
	// InputRows is the number of data rows consumed.
	InputRows int
	// Folded counts rows whose key had already been seen.
	Folded int
	// Coerced counts empty or non-numeric cells read as 0.
	Coerced       int
	FirstCoercion *Coercion
}

// Merge collapses rows sharing the same key (first field) into one row,
// keeping per column the maximum value seen for that key. Keys keep the
// order of their first appearance and the header is copied unchanged.
// Values are written as integers, truncated toward zero.
func Merge(t *table.Table, opt Options) (*Result, error) {
	if err := t.CheckWidth(); err != nil {
		return nil, err
	}
	ncol := len(t.Header)
	res := &Result{InputRows: len(t.Rows)}

	var order []string
	agg := make(map[string][]float64)
	for i, row := range t.Rows {
		rowNum := i + 2
		key := row[0]
		vals, seen := agg[key]
		if !seen {
			vals = make([]float64, ncol-1)
			agg[key] = vals
			order = append(order, key)
		} else {
			res.Folded++
		}
		for j := 1; j < ncol; j++ {
			v, ok := parseCell(row[j])
			if !ok {
				if opt.Strict && strings.TrimSpace(row[j]) != "" {
					return nil, &NumericError{Path: t.Path, Row: rowNum, Column: t.Header[j], Value: row[j]}
				}
				res.Coerced++
				if res.FirstCoercion == nil {
					res.FirstCoercion = &Coercion{Row: rowNum, Column: t.Header[j], Value: row[j]}
				}
			}
			if !seen || v > vals[j-1] {
				vals[j-1] = v
			}
		}
	}

	out := &table.Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, 0, len(order)),
	}
	for _, key := range order {
		vals := agg[key]
		row := make([]string, ncol)
		row[0] = key
		for j, v := range vals {
			row[j+1] = formatInt(v)
		}
		out.Rows = append(out.Rows, row)
	}
	res.Table = out
	return res, nil
}

// parseCell reads a finite number; anything else is reported as not ok with
// a value of 0.
func parseCell(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func formatInt(v float64) string {
	v = math.Trunc(v)
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', 0, 64)
}
