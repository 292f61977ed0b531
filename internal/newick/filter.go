package newick

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/table"
	"gonum.org/v1/gonum/floats"
)

// SupportStats holds the internal-node supports and branch lengths of a tree.
// Only internal nodes carrying both a numeric label and a branch length
// contribute, so a bare label on the root or an unlengthed clade is ignored.
type SupportStats struct {
	Supports []float64
	Lengths  []float64
}

// CollectSupport gathers SupportStats for the tree rooted at n.
func CollectSupport(n *Node) SupportStats {
	var st SupportStats
	n.Walk(func(x *Node) {
		v, ok := x.Support()
		if !ok || !x.HasLength {
			return
		}
		st.Supports = append(st.Supports, v)
		st.Lengths = append(st.Lengths, x.Length)
	})
	return st
}

// PassesSupport reports whether every support is at least minSupport and
// every internal branch is at least minLength. Trees lacking supports or
// internal lengths fail.
func PassesSupport(n *Node, minSupport, minLength float64) bool {
	st := CollectSupport(n)
	if len(st.Supports) == 0 || len(st.Lengths) == 0 {
		return false
	}
	return floats.Min(st.Supports) >= minSupport && floats.Min(st.Lengths) >= minLength
}

// PassesLeaves reports whether the tree has at least min leaves.
func PassesLeaves(n *Node, min int) bool {
	return len(n.Leaves()) >= min
}

// LoadGroups reads a headerless two-column id,group table.
func LoadGroups(t *table.Table) (map[string]string, error) {
	out := make(map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		if len(row) < 2 {
			return nil, fmt.Errorf("group mapping line %d: expected id,group", t.Lines[i])
		}
		id := strings.TrimSpace(row[0])
		if id == "" {
			continue
		}
		out[id] = strings.TrimSpace(row[1])
	}
	return out, nil
}

// GroupCoverage counts the distinct groups represented among the tree's
// leaves. Leaves with no group are ignored.
func GroupCoverage(n *Node, groupOf map[string]string) int {
	seen := map[string]bool{}
	for _, l := range n.Leaves() {
		if g, ok := groupOf[l.Name]; ok {
			seen[g] = true
		}
	}
	return len(seen)
}

// Prune removes every node whose name is in names and returns the new root.
// A parent left with a single child is replaced by that child, whose branch
// absorbs the parent's length; when the parent was the root the child becomes
// the root. A parent left with no children is removed in turn. The root itself
// is never removed by name.
func Prune(root *Node, names map[string]bool) *Node {
	var targets []*Node
	root.Walk(func(x *Node) {
		if x.Parent != nil && names[x.Name] {
			targets = append(targets, x)
		}
	})
	for _, x := range targets {
		if !attached(root, x) {
			continue
		}
		root = detach(root, x)
	}
	return root
}

func attached(root, x *Node) bool {
	for x.Parent != nil {
		x = x.Parent
	}
	return x == root
}

func detach(root, x *Node) *Node {
	p := x.Parent
	p.Children = removeChild(p.Children, x)
	x.Parent = nil
	switch len(p.Children) {
	case 0:
		if p.Parent == nil {
			return root
		}
		return detach(root, p)
	case 1:
		c := p.Children[0]
		if p.HasLength {
			c.Length += p.Length
			c.HasLength = true
		}
		gp := p.Parent
		if gp == nil {
			c.Parent = nil
			p.Children = nil
			return c
		}
		for i, s := range gp.Children {
			if s == p {
				gp.Children[i] = c
			}
		}
		c.Parent = gp
		p.Parent, p.Children = nil, nil
	}
	return root
}

func removeChild(cs []*Node, x *Node) []*Node {
	out := cs[:0]
	for _, c := range cs {
		if c != x {
			out = append(out, c)
		}
	}
	return out
}
