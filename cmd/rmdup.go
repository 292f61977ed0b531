package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/syntree-cli/internal/matrix"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	rmdupOutput    string
	rmdupReport    string
	rmdupStrict    bool
	rmdupDropZero  bool
	rmdupDelimiter string
	rmdupSheet     string
)

var rmdupCmd = &cobra.Command{
	Use:   "rmdup <table>",
	Short: "Merge rows sharing a key (column-wise max) and report all-zero columns",
	Long: `Collapse rows of a syntenic matrix that share the same first-column key into a
single row holding the column-wise maximum, then list the feature columns whose
sum is zero. Keys keep the order of their first appearance and values are written
as integers.

The merged table is written to -o (default: the input name with the configured
input suffix replaced by the final suffix) and the zero-column report to --report
(default: zero_columns.txt next to the output). The report is also printed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		in := args[0]
		delim, err := resolveDelimiter(rmdupDelimiter, in)
		if err != nil {
			return err
		}
		t, err := table.Read(in, table.ReadOptions{Delimiter: delim, Header: true, Sheet: rmdupSheet})
		if err != nil {
			return err
		}
		debugf("read %s: %d columns, %d data rows", in, len(t.Header), len(t.Rows))

		res, err := matrix.Merge(t, matrix.Options{Strict: rmdupStrict || c.StrictNumeric})
		if err != nil {
			return err
		}
		if res.Coerced > 0 {
			fc := res.FirstCoercion
			warnf("%d empty or non-numeric cells read as 0 (first: row %d, column %q, value %q)", res.Coerced, fc.Row, fc.Column, fc.Value)
		}

		rep := matrix.ZeroColumns(res.Table)
		out := res.Table
		if rmdupDropZero && rep.Count > 0 {
			out = matrix.DropColumns(out, rep.Columns)
		}

		outPath := rmdupOutput
		if outPath == "" {
			outPath = utils.DeriveOutputPath(in, c.InputSuffix, c.FinalSuffix)
		}
		reportPath := rmdupReport
		if reportPath == "" {
			reportPath = filepath.Join(filepath.Dir(outPath), c.ZeroReportName)
		}
		// Both files or neither: the report directory must exist before the
		// table lands, and a failed report takes the table with it.
		if err := utils.EnsureDir(filepath.Dir(reportPath)); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
		if err := table.Write(outPath, out, delim); err != nil {
			return err
		}
		if err := rep.WriteFile(reportPath); err != nil {
			if rmErr := os.Remove(outPath); rmErr != nil {
				warnf("could not remove %s after failed report: %v", outPath, rmErr)
			}
			return err
		}

		fmt.Print(rep.String())
		fmt.Printf("✓ Merged %d rows into %d keys: %s\n", res.InputRows, len(res.Table.Rows), outPath)
		if rmdupDropZero && rep.Count > 0 {
			fmt.Printf("✓ Dropped %d all-zero columns\n", rep.Count)
		}
		fmt.Printf("✓ Zero-column report: %s\n", reportPath)

		return recordStep("rmdup", []string{in}, []string{outPath, reportPath}, map[string]string{
			"input_rows":   strconv.Itoa(res.InputRows),
			"keys":         strconv.Itoa(len(res.Table.Rows)),
			"coerced":      strconv.Itoa(res.Coerced),
			"zero_columns": strconv.Itoa(rep.Count),
		})
	},
}

func init() {
	rootCmd.AddCommand(rmdupCmd)
	rmdupCmd.Flags().StringVarP(&rmdupOutput, "output", "o", "", "output table path")
	rmdupCmd.Flags().StringVar(&rmdupReport, "report", "", "zero-column report path")
	rmdupCmd.Flags().BoolVar(&rmdupStrict, "strict", false, "fail on non-numeric cells instead of reading them as 0")
	rmdupCmd.Flags().BoolVar(&rmdupDropZero, "drop-zero", false, "remove all-zero columns from the output table")
	rmdupCmd.Flags().StringVar(&rmdupDelimiter, "delimiter", "", "field delimiter: ',' | ';' | 'tab' | '|' (default: from extension or config)")
	rmdupCmd.Flags().StringVar(&rmdupSheet, "sheet", "", "worksheet name for .xlsx input (default: first sheet)")
}
