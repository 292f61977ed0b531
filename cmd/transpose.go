package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/matrix"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/spf13/cobra"
)

var (
	transposeOutput    string
	transposeCorner    string
	transposeNoHeader  bool
	transposeDelimiter string
)

var transposeCmd = &cobra.Command{
	Use:   "transpose <table>",
	Short: "Swap rows and columns of a table",
	Long: `Transpose a table. With a header (the default) the header row becomes the first
column and the new header is --corner followed by 1..n.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		delim, err := resolveDelimiter(transposeDelimiter, in)
		if err != nil {
			return err
		}
		t, err := table.Read(in, table.ReadOptions{Delimiter: delim, Header: !transposeNoHeader})
		if err != nil {
			return err
		}
		out := matrix.Transpose(t, transposeCorner)
		outPath := transposeOutput
		if outPath == "" {
			base := strings.TrimSuffix(filepath.Base(in), ".gz")
			base = strings.TrimSuffix(base, filepath.Ext(base))
			outPath = filepath.Join(filepath.Dir(in), base+"_transposed.csv")
		}
		if err := table.Write(outPath, out, delim); err != nil {
			return err
		}
		fmt.Printf("✓ Transposed %d×%d to %d rows: %s\n", len(t.Rows), t.Width(), len(out.Rows), outPath)
		return recordStep("transpose", []string{in}, []string{outPath}, map[string]string{
			"rows": strconv.Itoa(len(out.Rows)),
		})
	},
}

func init() {
	rootCmd.AddCommand(transposeCmd)
	transposeCmd.Flags().StringVarP(&transposeOutput, "output", "o", "", "output path (default: <input>_transposed.csv)")
	transposeCmd.Flags().StringVar(&transposeCorner, "corner", matrix.DefaultCorner, "name of the first output column")
	transposeCmd.Flags().BoolVar(&transposeNoHeader, "no-header", false, "treat every line as data")
	transposeCmd.Flags().StringVar(&transposeDelimiter, "delimiter", "", "field delimiter (default: from extension or config)")
}
