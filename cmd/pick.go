package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/matrix"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/spf13/cobra"
)

var (
	pickMapping   string
	pickOutput    string
	pickSeed      int64
	pickDelimiter string
)

var pickCmd = &cobra.Command{
	Use:   "pick <matrix>",
	Short: "Keep one representative gene per species and row",
	Long: `Reduce a headerless syntenic matrix to one column per species. The mapping file
has two headerless columns: a 1-based matrix column and its species label.
Species spread over several columns get, per row, one randomly chosen non-empty
gene. Use --seed for reproducible picks.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if pickMapping == "" {
			return errors.New("--mapping is required")
		}
		in := args[0]
		delim, err := resolveDelimiter(pickDelimiter, in)
		if err != nil {
			return err
		}
		mx, err := table.Read(in, table.ReadOptions{Delimiter: delim})
		if err != nil {
			return err
		}
		mt, err := table.Read(pickMapping, table.ReadOptions{})
		if err != nil {
			return err
		}
		mapping, err := matrix.ParseMapping(mt)
		if err != nil {
			return fmt.Errorf("%s: %w", pickMapping, err)
		}
		seed := pickSeed
		if !cmd.Flags().Changed("seed") {
			seed = settings().Seed
		}
		rng, used := newRand(seed)
		debugf("pick seed %d", used)

		out, err := matrix.PickRepresentatives(mx, mapping, rng)
		if err != nil {
			return err
		}
		outPath := pickOutput
		if outPath == "" {
			base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			outPath = filepath.Join(filepath.Dir(in), base+".species.csv")
		}
		if err := table.Write(outPath, out, delim); err != nil {
			return err
		}
		fmt.Printf("✓ Picked %d species columns for %d rows (seed %d): %s\n", len(out.Header), len(out.Rows), used, outPath)
		return recordStep("pick", []string{in, pickMapping}, []string{outPath}, map[string]string{
			"species": strconv.Itoa(len(out.Header)),
			"seed":    strconv.FormatInt(used, 10),
		})
	},
}

func init() {
	rootCmd.AddCommand(pickCmd)
	pickCmd.Flags().StringVarP(&pickMapping, "mapping", "m", "", "column-to-species mapping CSV (required)")
	pickCmd.Flags().StringVarP(&pickOutput, "output", "o", "", "output path (default: <input>.species.csv)")
	pickCmd.Flags().Int64Var(&pickSeed, "seed", 0, "random seed (0 = time based; default from config)")
	pickCmd.Flags().StringVar(&pickDelimiter, "delimiter", "", "field delimiter (default: from extension or config)")
}
