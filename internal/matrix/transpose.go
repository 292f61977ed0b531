package matrix

import (
	"strconv"

	"github.com/KaramelBytes/syntree-cli/internal/table"
)

// DefaultCorner names the first output column of Transpose.
const DefaultCorner = "new_column"

// Transpose swaps rows and columns. When t has a header, each header cell
// becomes the first field of an output row and the output header is corner
// followed by 1..n, n being the number of input data rows. Ragged rows are
// padded with empty cells.
func Transpose(t *table.Table, corner string) *table.Table {
	if corner == "" {
		corner = DefaultCorner
	}
	src := t.Rows
	if t.Header != nil {
		src = append([][]string{t.Header}, t.Rows...)
	}
	width := t.Width()
	out := &table.Table{Rows: make([][]string, width)}
	for j := 0; j < width; j++ {
		row := make([]string, len(src))
		for i, r := range src {
			if j < len(r) {
				row[i] = r[j]
			}
		}
		out.Rows[j] = row
	}
	if t.Header != nil {
		out.Header = make([]string, len(t.Rows)+1)
		out.Header[0] = corner
		for i := range t.Rows {
			out.Header[i+1] = strconv.Itoa(i + 1)
		}
	}
	return out
}
