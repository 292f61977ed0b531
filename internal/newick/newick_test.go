package newick

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/KaramelBytes/syntree-cli/internal/table"
)

func leafNames(n *Node) []string {
	var out []string
	for _, l := range n.Leaves() {
		out = append(out, l.Name)
	}
	return out
}

func TestParseFormatRoundTrip(t *testing.T) {
	cases := []string{
		"((A:0.1,B:0.2)0.95:0.05,(C:0.15,D:0.18)0.88:0.03)1.0:0;",
		"(A,B,(C,D));",
		"('sp one':1,B:2)root;",
	}
	for _, in := range cases {
		n, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got := Format(n, -1); got != in {
			t.Fatalf("Format = %q, want %q", got, in)
		}
	}
}

func TestParseCommentsAndWhitespace(t *testing.T) {
	n, err := Parse(" ( A [note] : 1 , B:2 ) ; ")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reflect.DeepEqual(leafNames(n), []string{"A", "B"}) || n.Children[0].Length != 1 {
		t.Fatalf("tree = %s", Format(n, -1))
	}
}

func TestReadPlainMatchesLocalParser(t *testing.T) {
	in := "((A:0.1,B)0.9:0,C:2);"
	n, err := readPlain(in)
	if err != nil {
		t.Fatalf("readPlain: %v", err)
	}
	if got := Format(n, -1); got != in {
		t.Fatalf("Format = %q, want %q", got, in)
	}
	inner := n.Children[0]
	if inner.Parent != n || !inner.HasLength || inner.Length != 0 || inner.Children[1].HasLength || n.HasLength {
		t.Fatalf("lengths not carried: %+v", inner)
	}
	// A comment routes the same tree through the local parser.
	local, err := Parse("((A:0.1,B)0.9[bs]:0,C:2);")
	if err != nil {
		t.Fatal(err)
	}
	if Format(local, -1) != in {
		t.Fatalf("local Format = %q", Format(local, -1))
	}
}

func TestScanMarks(t *testing.T) {
	got := scanMarks("((A:1,B)x,C:0);")
	want := []mark{{"A", true}, {"B", false}, {"x", false}, {"C", true}, {"", false}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("marks = %+v", got)
	}
}

func TestParseErrors(t *testing.T) {
	for _, in := range []string{"", "(A,B", "(A,B);x", "(A:abc,B);", "('A,B);"} {
		_, err := Parse(in)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Fatalf("Parse(%q) err = %v, want SyntaxError", in, err)
		}
	}
}

func TestReadTreesSkipsBlankAndKeepsBad(t *testing.T) {
	in := "(A,B);\n\n(A,(B\n((A,B),C);\n"
	es, err := ReadTrees(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if len(es) != 3 || es[1].Err == nil || es[1].Line != 3 || es[2].Tree == nil {
		t.Fatalf("entries = %+v", es)
	}
}

func TestPassesSupport(t *testing.T) {
	cases := []struct {
		tree string
		want bool
	}{
		{"((A:0.1,B:0.2)0.95:0.05,(C:0.15,D:0.18)0.88:0.03)1.0:0.0;", false},
		{"((A:0.1,B:0.2)0.95:0.05,(C:0.15,D:0.18)0.88:0.03);", true},
		{"((A:0.1,B:0.2)0.65:0.05,(C:0.15,D:0.18)0.88:0.03);", false},
		{"((A:0.1,B:0.2):0.05,(C:0.15,D:0.18):0.03);", false},
		{"((A,B)0.9,(C,D)0.9);", false},
		{"((A:1,B:1)0.9:0.1,C:1)0.2;", true},
		{"((A:1,B:1)0.9:0.1,(C:1,D:1)0.3)0.95:0;", false},
	}
	for _, c := range cases {
		n, err := Parse(c.tree)
		if err != nil {
			t.Fatal(err)
		}
		if got := PassesSupport(n, 0.7, 0.01); got != c.want {
			t.Fatalf("PassesSupport(%s) = %v, want %v", c.tree, got, c.want)
		}
	}
}

func TestCollectSupportNeedsLength(t *testing.T) {
	cases := []struct {
		tree     string
		supports []float64
		lengths  []float64
	}{
		{"((A:1,B:1)0.9:0.1,C:1)0.2;", []float64{0.9}, []float64{0.1}},
		{"((A:1,B:1)0.9:0.1,(C:1,D:1)0.3)0.95:0;", []float64{0.95, 0.9}, []float64{0, 0.1}},
	}
	for _, c := range cases {
		n, err := Parse(c.tree)
		if err != nil {
			t.Fatal(err)
		}
		st := CollectSupport(n)
		if !reflect.DeepEqual(st.Supports, c.supports) || !reflect.DeepEqual(st.Lengths, c.lengths) {
			t.Fatalf("CollectSupport(%s) = %+v", c.tree, st)
		}
	}
	// The zero root branch is the only thing failing the second tree.
	n, _ := Parse("((A:1,B:1)0.9:0.1,(C:1,D:1)0.3)0.95:0;")
	if !PassesSupport(n, 0.7, 0) {
		t.Fatalf("expected pass without a branch cutoff")
	}
}

func TestPassesLeavesAndGroups(t *testing.T) {
	n, _ := Parse("((A,B),(C,D));")
	if !PassesLeaves(n, 4) || PassesLeaves(n, 5) {
		t.Fatalf("leaf filter wrong")
	}
	mt, err := table.Decode(strings.NewReader("A,G1\nB,G1\nC,G2\nX,G3\n"), ',', false)
	if err != nil {
		t.Fatal(err)
	}
	groups, err := LoadGroups(mt)
	if err != nil {
		t.Fatal(err)
	}
	if got := GroupCoverage(n, groups); got != 2 {
		t.Fatalf("coverage = %d", got)
	}
}

func TestPruneCollapsesSingleChildParent(t *testing.T) {
	n, _ := Parse("((A:0.1,B:0.2)node1:0.3,(C:0.4,D:0.5)node2:0.6)root;")
	n = Prune(n, map[string]bool{"B": true})
	if got := Format(n, 1); got != "(A:0.4,(C:0.4,D:0.5)node2:0.6)root;" {
		t.Fatalf("pruned = %s", got)
	}
}

func TestPruneRerootsAtSurvivingChild(t *testing.T) {
	n, _ := Parse("(A:1,(B:1,C:2)x:3);")
	n = Prune(n, map[string]bool{"A": true, "missing": true})
	if n.Parent != nil || n.Name != "x" {
		t.Fatalf("root = %q", n.Name)
	}
	if got := Format(n, -1); got != "(B:1,C:2)x:3;" {
		t.Fatalf("pruned = %s", got)
	}
}

func TestPruneWholeClade(t *testing.T) {
	n, _ := Parse("((A,B),(C,D),E);")
	n = Prune(n, map[string]bool{"A": true, "B": true})
	if !reflect.DeepEqual(leafNames(n), []string{"C", "D", "E"}) {
		t.Fatalf("leaves = %v (%s)", leafNames(n), Format(n, -1))
	}
}

func nameSetOf(ns ...string) map[string]bool {
	out := map[string]bool{}
	for _, n := range ns {
		out[n] = true
	}
	return out
}

func TestIsMonophyleticRooted(t *testing.T) {
	cases := []struct {
		tree string
		set  map[string]bool
		want bool
	}{
		{"((A1,A2),(B1,B2));", nameSetOf("A1", "A2"), true},
		{"((A1,B1),(A2,B2));", nameSetOf("A1", "A2"), false},
		{"(A1,(A2,(B1,B2)));", nameSetOf("B1", "B2"), true},
		{"(A1,(A2,(B1,B2)));", nameSetOf("A1", "A2"), false},
		{"((A1,A2,A3),B1);", nameSetOf("A1", "A3", "Z9"), false},
		{"((A1,B1),B2);", nameSetOf("A1"), true},
		{"((A1,B1),B2);", nameSetOf("Z9"), false},
	}
	for _, c := range cases {
		n, err := Parse(c.tree)
		if err != nil {
			t.Fatal(err)
		}
		if got := IsMonophyletic(n, c.set); got != c.want {
			t.Fatalf("IsMonophyletic(%s, %v) = %v, want %v", c.tree, c.set, got, c.want)
		}
	}
}

func TestWGDAndWGTSummaries(t *testing.T) {
	a, b := nameSetOf("1", "2"), nameSetOf("3", "4")
	wgd := WGDSummary{File: "x.nwk"}
	for _, s := range []string{"((1,2),(3,4));", "((1,3),(2,4));", "((1,2),(3,(4,5)));", "(1,(3,4));"} {
		n, err := Parse(s)
		if err != nil {
			t.Fatal(err)
		}
		wgd.Add(n, a, b)
	}
	if wgd.Total != 3 || wgd.Independent != 1 || wgd.Shared != 1 || wgd.Uncertain != 1 {
		t.Fatalf("wgd = %+v", wgd)
	}
	if got := wgd.Row(); got != "x.nwk\t3\t1\t1\t1\t0.3333\t0.3333" {
		t.Fatalf("row = %q", got)
	}

	empty := WGTSummary{File: "none.nwk"}
	if got := empty.Row(); got != "none.nwk\t0\t0\t0.0000\t0\t0.0000" {
		t.Fatalf("empty wgt row = %q", got)
	}
}

func TestSplitTrees(t *testing.T) {
	got, err := SplitTrees(strings.NewReader("(A,B);\n('x;y',C)[a;b];  \n(D,E)"))
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"(A,B);", "('x;y',C)[a;b];", "(D,E);"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("trees = %q", got)
	}
}
