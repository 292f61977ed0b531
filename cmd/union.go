package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/KaramelBytes/syntree-cli/internal/matrix"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/spf13/cobra"
)

var (
	unionOutput    string
	unionDelimiter string
)

var unionCmd = &cobra.Command{
	Use:   "union <file|glob>...",
	Short: "Outer-join headerless tables on their first column",
	Long: `Merge headerless tables using the first field as key. Every key from every input
is kept; cells a table has no row for are left empty. Output keys are sorted.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if unionOutput == "" {
			return errors.New("--output is required")
		}
		paths, err := expandGlobs(args)
		if err != nil {
			return err
		}
		tables := make([]*table.Table, 0, len(paths))
		var delim rune
		for _, p := range paths {
			d, err := resolveDelimiter(unionDelimiter, p)
			if err != nil {
				return err
			}
			if delim == 0 {
				delim = d
			}
			t, err := table.Read(p, table.ReadOptions{Delimiter: d})
			if err != nil {
				return err
			}
			debugf("read %s: %d rows", p, len(t.Rows))
			tables = append(tables, t)
		}
		out, st := matrix.Union(tables)
		if st.DuplicateKeys > 0 {
			warnf("%d rows with a key repeated within the same input were ignored", st.DuplicateKeys)
		}
		if err := table.Write(unionOutput, out, delim); err != nil {
			return err
		}
		fmt.Printf("✓ Merged %d files: %d keys × %d columns → %s\n", st.Inputs, st.Keys, st.Columns, unionOutput)
		return recordStep("union", paths, []string{unionOutput}, map[string]string{
			"inputs": strconv.Itoa(st.Inputs),
			"keys":   strconv.Itoa(st.Keys),
		})
	},
}

// expandGlobs resolves glob patterns, keeping literal paths as given. The
// result is sorted and de-duplicated.
func expandGlobs(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, a := range args {
		matches, err := filepath.Glob(a)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", a, err)
		}
		if len(matches) == 0 {
			matches = []string{a}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

func init() {
	rootCmd.AddCommand(unionCmd)
	unionCmd.Flags().StringVarP(&unionOutput, "output", "o", "", "output table path (required)")
	unionCmd.Flags().StringVar(&unionDelimiter, "delimiter", "", "field delimiter (default: from extension or config)")
}
