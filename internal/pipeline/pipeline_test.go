package pipeline

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func testOptions() Options {
	return Options{
		MafftPath:      "mafft",
		TrimalPath:     "trimal",
		IQTreePath:     "iqtree2",
		TreeShrinkPath: "run_treeshrink.py",
		Model:          "MFP",
		Bootstrap:      1000,
		Threads:        4,
	}
}

func TestCommandsPerStage(t *testing.T) {
	cases := []struct {
		stage string
		in    string
		want  string
	}{
		{"mafft", "genes/g1.fa", "mafft --auto genes/g1.fa > genes/g1.mafft.fas"},
		{"trimal", "genes/g1.mafft.fas", "trimal -in genes/g1.mafft.fas -out genes/g1.mafft.best.fas -automated1"},
		{"iqtree", "aln/g1.best.fas", "iqtree2 -s aln/g1.best.fas -m MFP -B 1000 -T 4 --prefix aln/g1.best"},
		{"TreeShrink", "t/all.nwk", "run_treeshrink.py -t t/all.nwk -o t/all_treeshrink"},
	}
	for _, c := range cases {
		t.Run(c.stage, func(t *testing.T) {
			got, err := Commands(c.stage, []string{c.in}, testOptions())
			if err != nil {
				t.Fatalf("Commands: %v", err)
			}
			if len(got) != 1 || got[0] != c.want {
				t.Fatalf("got %q, want %q", got, c.want)
			}
		})
	}
}

func TestCommandsQuotingAndOutDir(t *testing.T) {
	o := testOptions()
	o.OutDir = "out dir"
	got, err := Commands("mafft", []string{"my gene's.fa"}, o)
	if err != nil {
		t.Fatal(err)
	}
	want := `mafft --auto 'my gene'\''s.fa' > 'out dir/my gene'\''s.mafft.fas'`
	if got[0] != want {
		t.Fatalf("got %s\nwant %s", got[0], want)
	}
}

func TestCommandsUnknownStage(t *testing.T) {
	_, err := Commands("raxml", []string{"x"}, testOptions())
	if err == nil || !strings.Contains(err.Error(), "available: iqtree, mafft, treeshrink, trimal") {
		t.Fatalf("err = %v", err)
	}
}

func TestWriteCommandList(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cmds", "mafft.sh")
	if err := WriteCommandList(p, []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	b, err := os.ReadFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "a\nb\n" {
		t.Fatalf("file = %q", b)
	}
}

func TestTreePLRender(t *testing.T) {
	c := &TreePLConfig{
		TreeFile: "species.tre",
		OutFile:  "dated.tre",
		NumSites: 120000,
		Smooth:   100,
		Threads:  8,
		Calibrations: []Calibration{
			{Name: "root", Taxa: [2]string{"Ath", "Osa"}, Min: 140, Max: 200},
			{Name: "monocots", Taxa: [2]string{"Osa", "Zma"}, Max: 60},
		},
		Options: map[string]string{"opt": "3", "moredetail": "1"},
		Flags:   []string{"prime"},
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	want := `treefile = species.tre
smooth = 100
numsites = 120000
mrca = root Ath Osa
min = root 140
max = root 200
mrca = monocots Osa Zma
max = monocots 60
outfile = dated.tre
nthreads = 8
moredetail = 1
opt = 3
prime
`
	if got := c.Render(); got != want {
		t.Fatalf("render:\n%s\nwant:\n%s", got, want)
	}
}

func TestTreePLValidate(t *testing.T) {
	bad := []*TreePLConfig{
		{NumSites: 1},
		{TreeFile: "t", NumSites: 0},
		{TreeFile: "t", NumSites: 1, Calibrations: []Calibration{{Name: "a b", Taxa: [2]string{"x", "y"}}}},
		{TreeFile: "t", NumSites: 1, Calibrations: []Calibration{{Name: "a", Taxa: [2]string{"x", ""}}}},
		{TreeFile: "t", NumSites: 1, Calibrations: []Calibration{{Name: "a", Taxa: [2]string{"x", "y"}, Min: 5, Max: 1}}},
		{TreeFile: "t", NumSites: 1, Calibrations: []Calibration{
			{Name: "a", Taxa: [2]string{"x", "y"}}, {Name: "a", Taxa: [2]string{"x", "z"}},
		}},
	}
	for i, c := range bad {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestLoadTreePL(t *testing.T) {
	p := filepath.Join(t.TempDir(), "treepl.yaml")
	body := `treefile: species.tre
numsites: 5000
calibrations:
  - name: root
    taxa: [Ath, Osa]
    min: 140
flags: [prime, thorough]
`
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := LoadTreePL(p)
	if err != nil {
		t.Fatalf("LoadTreePL: %v", err)
	}
	if c.NumSites != 5000 || len(c.Calibrations) != 1 || c.Calibrations[0].Taxa[1] != "Osa" || len(c.Flags) != 2 {
		t.Fatalf("config = %+v", c)
	}
}
