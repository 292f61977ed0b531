package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/newick"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	treesOutput     string
	treesMinSupport float64
	treesMinLength  float64
	treesMinLeaves  int
	treesMapping    string
	treesMinGroups  int
	treesNodes      []string
	treesQuiet      bool
	wgdCopiesA      []string
	wgdCopiesB      []string
	wgtCopiesA      []string
	wgtCopiesB      []string
)

var treesCmd = &cobra.Command{
	Use:   "trees",
	Short: "Filter and edit Newick gene trees (one tree per line)",
}

var treesSupportCmd = &cobra.Command{
	Use:   "support <trees.nwk>",
	Short: "Keep trees whose internal supports and branch lengths all meet the cutoffs",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := filterTrees("trees support", args[0], func(n *newick.Node) bool {
			return newick.PassesSupport(n, treesMinSupport, treesMinLength)
		})
		if err == nil && !treesQuiet {
			fmt.Printf("  support cutoff: %s, branch length cutoff: %s\n",
				strconv.FormatFloat(treesMinSupport, 'f', -1, 64), strconv.FormatFloat(treesMinLength, 'f', -1, 64))
		}
		return err
	},
}

var treesLeavesCmd = &cobra.Command{
	Use:   "leaves <trees.nwk>",
	Short: "Keep trees with at least --min leaves",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if treesMinLeaves <= 0 {
			return errors.New("--min must be positive")
		}
		return filterTrees("trees leaves", args[0], func(n *newick.Node) bool {
			return newick.PassesLeaves(n, treesMinLeaves)
		})
	},
}

var treesGroupsCmd = &cobra.Command{
	Use:   "groups <trees.nwk>",
	Short: "Keep trees whose leaves cover at least --min-groups groups",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if treesMapping == "" {
			return errors.New("--mapping is required")
		}
		mt, err := table.Read(treesMapping, table.ReadOptions{})
		if err != nil {
			return err
		}
		groups, err := newick.LoadGroups(mt)
		if err != nil {
			return fmt.Errorf("%s: %w", treesMapping, err)
		}
		debugf("loaded %d leaf groups", len(groups))
		return filterTrees("trees groups", args[0], func(n *newick.Node) bool {
			return newick.GroupCoverage(n, groups) >= treesMinGroups
		})
	},
}

var treesPruneCmd = &cobra.Command{
	Use:   "prune <trees.nwk>",
	Short: "Remove named nodes, collapsing parents left with a single child",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if treesOutput == "" {
			return errors.New("--output is required")
		}
		if len(treesNodes) == 0 {
			return errors.New("--nodes is required")
		}
		names := map[string]bool{}
		for _, n := range treesNodes {
			if n = strings.TrimSpace(n); n != "" {
				names[n] = true
			}
		}
		entries, err := readTreeFile(args[0])
		if err != nil {
			return err
		}
		var b strings.Builder
		for _, e := range entries {
			if e.Err != nil {
				return fmt.Errorf("%s: line %d: %w", args[0], e.Line, e.Err)
			}
			b.WriteString(newick.Format(newick.Prune(e.Tree, names), 10))
			b.WriteByte('\n')
		}
		if err := utils.SafeWriteFile(treesOutput, []byte(b.String())); err != nil {
			return err
		}
		fmt.Printf("✓ Pruned %d trees → %s\n", len(entries), treesOutput)
		return recordStep("trees prune", []string{args[0]}, []string{treesOutput}, map[string]string{
			"trees": strconv.Itoa(len(entries)),
			"nodes": strconv.Itoa(len(names)),
		})
	},
}

func readTreeFile(path string) ([]newick.Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open trees: %w", err)
	}
	defer f.Close()
	entries, err := newick.ReadTrees(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return entries, nil
}

// filterTrees writes the lines of in whose tree satisfies keep. Trees that
// fail to parse are skipped with a warning.
func filterTrees(command, in string, keep func(*newick.Node) bool) error {
	if treesOutput == "" {
		return errors.New("--output is required")
	}
	entries, err := readTreeFile(in)
	if err != nil {
		return err
	}
	var b strings.Builder
	kept, skipped := 0, 0
	for _, e := range entries {
		if e.Err != nil {
			skipped++
			if !treesQuiet {
				warnf("%s: line %d: skipping unparsable tree: %v", in, e.Line, e.Err)
			}
			continue
		}
		if keep(e.Tree) {
			b.WriteString(e.Text)
			b.WriteByte('\n')
			kept++
		}
	}
	if err := utils.SafeWriteFile(treesOutput, []byte(b.String())); err != nil {
		return err
	}
	if treesQuiet && skipped > 0 {
		warnf("%s: skipped %d unparsable trees", in, skipped)
	}
	fmt.Printf("✓ Kept %d of %d trees → %s\n", kept, len(entries), treesOutput)
	return recordStep(command, []string{in}, []string{treesOutput}, map[string]string{
		"total":   strconv.Itoa(len(entries)),
		"kept":    strconv.Itoa(kept),
		"skipped": strconv.Itoa(skipped),
	})
}

var treesWGDCmd = &cobra.Command{
	Use:   "wgd <file.nwk|dir>...",
	Short: "Tally gene trees supporting a shared or independent whole-genome duplication",
	Long: `For each Newick file (directories contribute their *.nwk files) classify every
tree holding at least two copies of both species: both copy sets monophyletic is
independent duplication ((A1,A2),(B1,B2)), neither is shared duplication
((A1,B1),(A2,B2)), anything else is uncertain. Files with no qualifying tree are
left out of the summary. Shared_Ratio > 0.5 supports a shared WGD.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, b := nameSet(wgdCopiesA), nameSet(wgdCopiesB)
		if len(a) < 2 || len(b) < 2 {
			return errors.New("--copies-a and --copies-b need at least two names each")
		}
		out := treesOutput
		if out == "" {
			out = "WGD_support_summary.txt"
		}
		var lines []string
		files, err := tallyTrees(args, func(file string, trees []*newick.Node) {
			s := newick.WGDSummary{File: file}
			for _, t := range trees {
				s.Add(t, a, b)
			}
			if s.Total > 0 {
				lines = append(lines, s.Row())
			}
		})
		if err != nil {
			return err
		}
		return writeTally("trees wgd", files, out, newick.WGDHeader, lines,
			"Shared_Ratio > 0.5 supports a shared WGD; Ind_Ratio > 0.5 supports independent WGDs")
	},
}

var treesWGTCmd = &cobra.Command{
	Use:   "wgt <file.nwk|dir>...",
	Short: "Tally gene trees supporting a shared whole-genome triplication",
	Long: `For each Newick file (directories contribute their *.nwk files) count the trees
in which both species' copies are intermingled (shared triplication) against those
where at least one species forms a clade. A species with fewer than two copies in a
tree counts as a clade. Every file is reported.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, b := nameSet(wgtCopiesA), nameSet(wgtCopiesB)
		if len(a) == 0 || len(b) == 0 {
			return errors.New("--copies-a and --copies-b are required")
		}
		out := treesOutput
		if out == "" {
			out = "WGT_support_summary.txt"
		}
		var lines []string
		files, err := tallyTrees(args, func(file string, trees []*newick.Node) {
			s := newick.WGTSummary{File: file}
			for _, t := range trees {
				s.Add(t, a, b)
			}
			lines = append(lines, s.Row())
		})
		if err != nil {
			return err
		}
		return writeTally("trees wgt", files, out, newick.WGTHeader, lines,
			"Shared_Ratio > 0.5 suggests a shared WGT; NonShared_Ratio > 0.5 suggests independent WGTs")
	},
}

func nameSet(names []string) map[string]bool {
	out := map[string]bool{}
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out[n] = true
		}
	}
	return out
}

// tallyTrees parses every tree of every Newick file named by args and hands
// the parsed trees of each file to fn. Malformed trees are skipped.
func tallyTrees(args []string, fn func(file string, trees []*newick.Node)) ([]string, error) {
	var paths []string
	for _, a := range args {
		info, err := os.Stat(a)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", a, err)
		}
		if !info.IsDir() {
			paths = append(paths, a)
			continue
		}
		m, err := filepath.Glob(filepath.Join(a, "*.nwk"))
		if err != nil {
			return nil, err
		}
		sort.Strings(m)
		paths = append(paths, m...)
	}
	if len(paths) == 0 {
		return nil, errors.New("no .nwk files found")
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("open trees: %w", err)
		}
		texts, err := newick.SplitTrees(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		trees := make([]*newick.Node, 0, len(texts))
		for i, s := range texts {
			t, err := newick.Parse(s)
			if err != nil {
				if !treesQuiet {
					warnf("%s: tree %d: skipping unparsable tree: %v", p, i+1, err)
				}
				continue
			}
			trees = append(trees, t)
		}
		debugf("%s: %d of %d trees parsed", p, len(trees), len(texts))
		fn(filepath.Base(p), trees)
	}
	return paths, nil
}

func writeTally(command string, inputs []string, out, header string, lines []string, guide string) error {
	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	if err := utils.SafeWriteFile(out, []byte(b.String())); err != nil {
		return err
	}
	fmt.Printf("✓ Summarized %d tree files → %s\n", len(lines), out)
	if !treesQuiet {
		fmt.Printf("  %s\n", guide)
	}
	return recordStep(command, inputs, []string{out}, map[string]string{
		"files":   strconv.Itoa(len(inputs)),
		"written": strconv.Itoa(len(lines)),
	})
}

func init() {
	rootCmd.AddCommand(treesCmd)
	treesCmd.AddCommand(treesSupportCmd, treesLeavesCmd, treesGroupsCmd, treesPruneCmd, treesWGDCmd, treesWGTCmd)
	treesCmd.PersistentFlags().StringVarP(&treesOutput, "output", "o", "", "output file (required except for wgd/wgt)")
	treesCmd.PersistentFlags().BoolVarP(&treesQuiet, "quiet", "q", false, "summarize skipped trees instead of warning per tree")

	treesSupportCmd.Flags().Float64VarP(&treesMinSupport, "min-support", "t", 0.7, "minimum internal support")
	treesSupportCmd.Flags().Float64VarP(&treesMinLength, "min-length", "b", 0.01, "minimum internal branch length")
	treesLeavesCmd.Flags().IntVarP(&treesMinLeaves, "min", "t", 0, "minimum number of leaves")
	treesGroupsCmd.Flags().StringVarP(&treesMapping, "mapping", "c", "", "headerless id,group CSV (required)")
	treesGroupsCmd.Flags().IntVarP(&treesMinGroups, "min-groups", "g", 30, "minimum number of groups present")
	treesPruneCmd.Flags().StringSliceVar(&treesNodes, "nodes", nil, "comma-separated node names to remove")
	treesWGDCmd.Flags().StringSliceVar(&wgdCopiesA, "copies-a", []string{"1", "2"}, "leaf names of species A duplicate copies")
	treesWGDCmd.Flags().StringSliceVar(&wgdCopiesB, "copies-b", []string{"3", "4"}, "leaf names of species B duplicate copies")
	treesWGTCmd.Flags().StringSliceVar(&wgtCopiesA, "copies-a", []string{"1", "2", "3"}, "leaf names of species A triplicate copies")
	treesWGTCmd.Flags().StringSliceVar(&wgtCopiesB, "copies-b", []string{"4", "5", "6"}, "leaf names of species B triplicate copies")
}
