package newick

import (
	"fmt"
	"io"
	"strings"
)

// MRCA returns the most recent common ancestor of nodes, or nil when nodes is
// empty or the nodes do not share a root.
func MRCA(nodes []*Node) *Node {
	if len(nodes) == 0 {
		return nil
	}
	onPath := map[*Node]bool{}
	for x := nodes[0]; x != nil; x = x.Parent {
		onPath[x] = true
	}
	for _, n := range nodes[1:] {
		next := map[*Node]bool{}
		for x := n; x != nil; x = x.Parent {
			if onPath[x] {
				next[x] = true
			}
		}
		onPath = next
	}
	// The deepest shared ancestor is the one whose parent chain covers the
	// rest of the set.
	var best *Node
	depth := -1
	for x := range onPath {
		d := 0
		for p := x.Parent; p != nil; p = p.Parent {
			d++
		}
		if d > depth {
			best, depth = x, d
		}
	}
	return best
}

// IsMonophyletic reports whether the leaves of the rooted tree n named in
// names form a clade: every leaf under their most recent common ancestor is
// in names. Names absent from the tree are ignored; a single present leaf is
// monophyletic and none at all is not.
func IsMonophyletic(n *Node, names map[string]bool) bool {
	var hits []*Node
	for _, l := range n.Leaves() {
		if names[l.Name] {
			hits = append(hits, l)
		}
	}
	anc := MRCA(hits)
	if anc == nil {
		return false
	}
	for _, l := range anc.Leaves() {
		if !names[l.Name] {
			return false
		}
	}
	return true
}

// presentCopies counts the distinct names of copies found among n's leaves.
func presentCopies(n *Node, copies map[string]bool) int {
	seen := map[string]bool{}
	for _, l := range n.Leaves() {
		if copies[l.Name] {
			seen[l.Name] = true
		}
	}
	return len(seen)
}

// WGDSummary tallies gene trees of one file by the monophyly of two species'
// duplicate copies. Trees lacking two copies of either species are not counted.
type WGDSummary struct {
	File        string
	Total       int
	Independent int // both species monophyletic, ((A1,A2),(B1,B2))
	Shared      int // neither monophyletic, ((A1,B1),(A2,B2))
	Uncertain   int
}

// Add classifies one tree.
func (s *WGDSummary) Add(n *Node, a, b map[string]bool) {
	if presentCopies(n, a) < 2 || presentCopies(n, b) < 2 {
		return
	}
	s.Total++
	monoA, monoB := IsMonophyletic(n, a), IsMonophyletic(n, b)
	switch {
	case monoA && monoB:
		s.Independent++
	case !monoA && !monoB:
		s.Shared++
	default:
		s.Uncertain++
	}
}

// WGDHeader is the first line of a WGD summary table.
const WGDHeader = "File\tTotal\tIndependent\tShared\tUncertain\tInd_Ratio\tShared_Ratio"

// Row renders s as a tab-separated line without a newline.
func (s WGDSummary) Row() string {
	return fmt.Sprintf("%s\t%d\t%d\t%d\t%d\t%.4f\t%.4f", s.File, s.Total, s.Independent, s.Shared, s.Uncertain,
		ratio(s.Independent, s.Total), ratio(s.Shared, s.Total))
}

// WGTSummary tallies gene trees of one file for a shared triplication. A
// species with fewer than two copies present counts as monophyletic.
type WGTSummary struct {
	File      string
	Total     int
	NonShared int // at least one species monophyletic
	Shared    int // both species intermingled
}

// Add classifies one tree.
func (s *WGTSummary) Add(n *Node, a, b map[string]bool) {
	s.Total++
	monoA := presentCopies(n, a) < 2 || IsMonophyletic(n, a)
	monoB := presentCopies(n, b) < 2 || IsMonophyletic(n, b)
	if monoA || monoB {
		s.NonShared++
	} else {
		s.Shared++
	}
}

// WGTHeader is the first line of a WGT summary table.
const WGTHeader = "File\tTotal_Trees\tNonShared_Count\tNonShared_Ratio\tShared_Count\tShared_Ratio"

// Row renders s as a tab-separated line without a newline.
func (s WGTSummary) Row() string {
	return fmt.Sprintf("%s\t%d\t%d\t%.4f\t%d\t%.4f", s.File, s.Total,
		s.NonShared, ratio(s.NonShared, s.Total), s.Shared, ratio(s.Shared, s.Total))
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// SplitTrees splits the whole of r on ';' into tree strings, each with its
// semicolon restored. Semicolons inside quoted labels or [comments] do not
// split, and a final tree missing its semicolon is kept.
func SplitTrees(r io.Reader) ([]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var out []string
	var cur strings.Builder
	quoted, comment := false, false
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s+";")
		}
		cur.Reset()
	}
	for _, c := range string(b) {
		switch {
		case comment:
			comment = c != ']'
		case quoted:
			quoted = c != '\''
		case c == '[':
			comment = true
		case c == '\'':
			quoted = true
		case c == ';':
			flush()
			continue
		}
		cur.WriteRune(c)
	}
	flush()
	return out, nil
}
