// Package pipeline renders the command lines and configuration files for the
// external programs of the gene-tree workflow. Nothing here runs them.
package pipeline

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/utils"
)

// Options carries tool paths and shared parameters.
type Options struct {
	MafftPath      string
	TrimalPath     string
	IQTreePath     string
	TreeShrinkPath string
	Model          string
	Bootstrap      int
	Threads        int
	// OutDir places outputs in a directory other than the input's.
	OutDir string
}

// Tool describes how one stage turns an input file into a command line.
type Tool struct {
	Stage  string
	Suffix string
	render func(o Options, in, out string) string
}

// Output returns the path the tool writes for in.
func (t Tool) Output(in string, o Options) string {
	dir := filepath.Dir(in)
	if o.OutDir != "" {
		dir = o.OutDir
	}
	base := filepath.Base(in)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, stem+t.Suffix)
}

var tools = map[string]Tool{
	"mafft": {Stage: "mafft", Suffix: ".mafft.fas", render: func(o Options, in, out string) string {
		return fmt.Sprintf("%s --auto %s > %s", shellQuote(o.MafftPath), shellQuote(in), shellQuote(out))
	}},
	"trimal": {Stage: "trimal", Suffix: ".best.fas", render: func(o Options, in, out string) string {
		return fmt.Sprintf("%s -in %s -out %s -automated1", shellQuote(o.TrimalPath), shellQuote(in), shellQuote(out))
	}},
	"iqtree": {Stage: "iqtree", Suffix: ".treefile", render: func(o Options, in, out string) string {
		prefix := strings.TrimSuffix(out, ".treefile")
		return fmt.Sprintf("%s -s %s -m %s -B %d -T %d --prefix %s",
			shellQuote(o.IQTreePath), shellQuote(in), shellQuote(o.Model), o.Bootstrap, o.Threads, shellQuote(prefix))
	}},
	"treeshrink": {Stage: "treeshrink", Suffix: "_treeshrink", render: func(o Options, in, out string) string {
		return fmt.Sprintf("%s -t %s -o %s", shellQuote(o.TreeShrinkPath), shellQuote(in), shellQuote(out))
	}},
}

// Stages lists the supported stage names in sorted order.
func Stages() []string {
	out := make([]string, 0, len(tools))
	for k := range tools {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lookup returns the tool for stage.
func Lookup(stage string) (Tool, error) {
	t, ok := tools[strings.ToLower(stage)]
	if !ok {
		return Tool{}, fmt.Errorf("unknown stage %q (available: %s)", stage, strings.Join(Stages(), ", "))
	}
	return t, nil
}

// Commands renders one shell line per input for the given stage.
func Commands(stage string, inputs []string, o Options) ([]string, error) {
	t, err := Lookup(stage)
	if err != nil {
		return nil, err
	}
	if o.Threads <= 0 {
		o.Threads = 1
	}
	lines := make([]string, 0, len(inputs))
	for _, in := range inputs {
		lines = append(lines, t.render(o, in, t.Output(in, o)))
	}
	return lines, nil
}

// WriteCommandList writes lines to path, one per line.
func WriteCommandList(path string, lines []string) error {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return utils.SafeWriteFile(path, []byte(b.String()))
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || strings.ContainsRune("-_./+=:,@%", r)) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
