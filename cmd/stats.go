package cmd

import (
	"fmt"

	"github.com/KaramelBytes/syntree-cli/internal/matrix"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	statsOutput     string
	statsDelimiter  string
	statsNoHeader   bool
	statsSheetName  string
	statsSheetIndex int
)

var statsCmd = &cobra.Command{
	Use:   "stats <table>",
	Short: "Summarize column occupancy and value ranges of a matrix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		delim, err := resolveDelimiter(statsDelimiter, path)
		if err != nil {
			return err
		}
		t, err := table.Read(path, table.ReadOptions{
			Delimiter:  delim,
			Header:     !statsNoHeader,
			Sheet:      statsSheetName,
			SheetIndex: statsSheetIndex,
		})
		if err != nil {
			return err
		}
		md := matrix.Summarize(t).Markdown()
		if statsOutput == "" {
			fmt.Print(md)
			return nil
		}
		if err := utils.SafeWriteFile(statsOutput, []byte(md)); err != nil {
			return err
		}
		fmt.Printf("✓ Summary written to %s\n", statsOutput)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
	statsCmd.Flags().StringVarP(&statsOutput, "output", "o", "", "write the summary to a file instead of stdout")
	statsCmd.Flags().StringVar(&statsDelimiter, "delimiter", "", "field delimiter (default: from extension or config)")
	statsCmd.Flags().BoolVar(&statsNoHeader, "no-header", false, "treat every line as data")
	statsCmd.Flags().StringVar(&statsSheetName, "sheet-name", "", "XLSX: sheet name to read (default: first sheet)")
	statsCmd.Flags().IntVar(&statsSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (overrides name when > 0)")
}
