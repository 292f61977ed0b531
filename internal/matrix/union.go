package matrix

import (
	"github.com/KaramelBytes/syntree-cli/internal/seqs"
	"github.com/KaramelBytes/syntree-cli/internal/table"
)

// UnionStats summarizes a Union join.
type UnionStats struct {
	Inputs  int
	Keys    int
	Columns int
	// DuplicateKeys counts rows dropped because their key already appeared
	// earlier in the same input.
	DuplicateKeys int
}

// Union outer-joins headerless tables on their first field. Each input
// contributes Width()-1 value columns; keys absent from an input leave those
// cells empty. Output keys are sorted with integer keys first by value, then
// the rest lexically, so 2 precedes 10.
func Union(inputs []*table.Table) (*table.Table, UnionStats) {
	st := UnionStats{Inputs: len(inputs)}
	widths := make([]int, len(inputs))
	offsets := make([]int, len(inputs))
	total := 0
	for i, in := range inputs {
		w := in.Width() - 1
		if w < 0 {
			w = 0
		}
		widths[i] = w
		offsets[i] = total
		total += w
	}
	st.Columns = total + 1

	rows := map[string][]string{}
	for i, in := range inputs {
		seen := map[string]bool{}
		for _, r := range in.Rows {
			if len(r) == 0 {
				continue
			}
			key := r[0]
			if seen[key] {
				st.DuplicateKeys++
				continue
			}
			seen[key] = true
			dst, ok := rows[key]
			if !ok {
				dst = make([]string, total+1)
				dst[0] = key
				rows[key] = dst
			}
			for j := 1; j < len(r) && j <= widths[i]; j++ {
				dst[offsets[i]+j] = r[j]
			}
		}
	}

	keys := make([]string, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	seqs.SortIDs(keys)
	out := &table.Table{Rows: make([][]string, len(keys))}
	for i, k := range keys {
		out.Rows[i] = rows[k]
	}
	st.Keys = len(keys)
	return out, st
}
