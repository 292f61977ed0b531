package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/KaramelBytes/syntree-cli/internal/seqs"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/spf13/cobra"
)

var (
	extractFasta     string
	extractOutDir    string
	extractHeader    bool
	extractDelimiter string
	extractQuiet     bool
)

var extractCmd = &cobra.Command{
	Use:   "extract <matrix>",
	Short: "Write one FASTA file per syntenic matrix row",
	Long: `For every row of a syntenic matrix, gather the sequences of its genes from
--fasta and write them to <out-dir>/<first gene>.fa. Sequences are renamed to their
column: the header label with --header, otherwise the 1-based column number.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if extractFasta == "" {
			return errors.New("--fasta is required")
		}
		in := args[0]
		delim, err := resolveDelimiter(extractDelimiter, in)
		if err != nil {
			return err
		}
		mx, err := table.Read(in, table.ReadOptions{Delimiter: delim, Header: extractHeader})
		if err != nil {
			return err
		}
		idx, err := seqs.ReadIndex(extractFasta)
		if err != nil {
			return err
		}
		debugf("indexed %d sequences from %s", len(idx), extractFasta)

		st, err := seqs.ExtractRows(mx, idx, extractOutDir, settings().FastaWidth)
		if err != nil {
			return err
		}
		if n := len(st.Missing); n > 0 {
			warnf("%d genes not found in %s", n, extractFasta)
			if !extractQuiet {
				for _, g := range st.Missing {
					fmt.Printf("  missing: %s\n", g)
				}
			}
		}
		fmt.Printf("✓ Wrote %d FASTA files (%d sequences) to %s\n", st.Files, st.Sequences, extractOutDir)
		return recordStep("extract", []string{in, extractFasta}, []string{extractOutDir}, map[string]string{
			"files":   strconv.Itoa(st.Files),
			"missing": strconv.Itoa(len(st.Missing)),
		})
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)
	extractCmd.Flags().StringVarP(&extractFasta, "fasta", "f", "", "FASTA file with all gene sequences (required)")
	extractCmd.Flags().StringVarP(&extractOutDir, "out-dir", "o", "genes", "output directory")
	extractCmd.Flags().BoolVar(&extractHeader, "header", false, "matrix has a header row naming the columns")
	extractCmd.Flags().StringVar(&extractDelimiter, "delimiter", "", "field delimiter (default: from extension or config)")
	extractCmd.Flags().BoolVarP(&extractQuiet, "quiet", "q", false, "do not list missing genes")
}
