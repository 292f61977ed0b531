package seqs

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/biogo/biogo/seq/linear"
)

// Block is one input alignment's slice of the supermatrix (1-based, inclusive).
type Block struct {
	Name  string
	Start int
	End   int
}

// ConcatStats summarizes a supermatrix build.
type ConcatStats struct {
	Files  int
	Taxa   int
	Length int
	Blocks []Block
}

// ConcatOptions controls Concatenate.
type ConcatOptions struct {
	Width int
	// SpeciesPrefix names each taxon by the part of the sequence ID before
	// the first underscore, so At_rbcL and At_matK both join taxon At.
	SpeciesPrefix bool
}

func (o ConcatOptions) taxon(id string) string {
	if !o.SpeciesPrefix {
		return id
	}
	return strings.SplitN(id, "_", 2)[0]
}

// Concatenate joins alignments into a supermatrix. Taxa are the union of
// sequence IDs across all inputs, numeric IDs first in numeric order, then the
// rest lexically. A taxon absent from an alignment is padded with gaps of that
// alignment's length. Every alignment must be rectangular and name each taxon
// at most once.
func Concatenate(paths []string, w io.Writer, opts ConcatOptions) (ConcatStats, error) {
	var st ConcatStats
	type aln struct {
		name   string
		length int
		byID   map[string][]byte
	}
	alns := make([]aln, 0, len(paths))
	ids := map[string]bool{}
	for _, p := range paths {
		recs, err := ReadFile(p)
		if err != nil {
			return st, err
		}
		a := aln{name: filepath.Base(p), byID: make(map[string][]byte, len(recs))}
		for i, s := range recs {
			if i == 0 {
				a.length = s.Len()
			} else if s.Len() != a.length {
				return st, fmt.Errorf("%s: sequence %q has length %d, expected %d (not aligned)", p, s.ID, s.Len(), a.length)
			}
			id := opts.taxon(s.ID)
			if _, dup := a.byID[id]; dup {
				if id != s.ID {
					return st, fmt.Errorf("%s: taxon %q appears more than once (sequence %q)", p, id, s.ID)
				}
				return st, fmt.Errorf("%s: duplicate sequence id %q", p, id)
			}
			a.byID[id] = letters(s)
			ids[id] = true
		}
		alns = append(alns, a)
	}

	taxa := make([]string, 0, len(ids))
	for id := range ids {
		taxa = append(taxa, id)
	}
	SortIDs(taxa)

	total := 0
	for _, a := range alns {
		st.Blocks = append(st.Blocks, Block{Name: a.name, Start: total + 1, End: total + a.length})
		total += a.length
	}
	out := make([]*linear.Seq, 0, len(taxa))
	for _, id := range taxa {
		buf := make([]byte, 0, total)
		for _, a := range alns {
			if s, ok := a.byID[id]; ok {
				buf = append(buf, s...)
			} else {
				buf = append(buf, bytes.Repeat([]byte{'-'}, a.length)...)
			}
		}
		out = append(out, newSeq(id, buf))
	}
	if err := Encode(w, out, opts.Width); err != nil {
		return st, err
	}
	st.Files = len(alns)
	st.Taxa = len(taxa)
	st.Length = total
	return st, nil
}

// SortIDs orders sequence IDs with integer IDs first (numerically), then the
// remaining IDs lexically.
func SortIDs(ids []string) {
	sort.SliceStable(ids, func(i, j int) bool {
		a, aerr := strconv.Atoi(ids[i])
		b, berr := strconv.Atoi(ids[j])
		switch {
		case aerr == nil && berr == nil:
			return a < b
		case aerr == nil:
			return true
		case berr == nil:
			return false
		default:
			return ids[i] < ids[j]
		}
	})
}
