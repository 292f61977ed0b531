package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/KaramelBytes/syntree-cli/internal/orthology"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	orthoBlastDir string
	orthoGlob     string
	orthoIDs      string
	orthoSpecies  string
	orthoPrefix   string
	orthoKnown    string
	orthoOutDir   string
	orthoHitsDir  string
	orthoSummary  string
	orthoRemapOut string
	orthoQuiet    bool
)

var orthologyCmd = &cobra.Command{
	Use:   "orthology",
	Short: "Check inferred orthologs against BLAST hits",
}

var orthologyHitsCmd = &cobra.Command{
	Use:   "hits",
	Short: "Write <reference>.final.csv hit tables from BLAST results",
	Long: `For every reference gene of --ids (reference,gene,gene,...) look up each gene in
the BLAST result files: a line counts as a hit when it mentions both the gene and
the species code --species-genes (species,gene,gene,...) assigns it. One table per
reference lists gene_id, species_code, found_in_blast, total_hits and the files hit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if orthoIDs == "" || orthoSpecies == "" {
			return errors.New("--ids and --species-genes are required")
		}
		files, err := orthology.LoadHitFiles(orthoBlastDir, orthoGlob)
		if err != nil {
			return err
		}
		if err := utils.EnsureDir(orthoOutDir); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		st, err := table.Read(orthoSpecies, table.ReadOptions{})
		if err != nil {
			return err
		}
		speciesOf := orthology.GeneSpecies(st)
		it, err := table.Read(orthoIDs, table.ReadOptions{})
		if err != nil {
			return err
		}
		refs := orthology.References(it, orthoPrefix)
		known := map[string]bool{}
		if orthoKnown != "" {
			if known, err = orthology.KnownReferences(orthoKnown); err != nil {
				return err
			}
		}
		debugf("%d reference genes, %d BLAST files, %d genes with a species", len(refs), len(files), len(speciesOf))

		outputs := make([]string, 0, len(refs))
		found := 0
		for _, ref := range refs {
			hits := make([]orthology.GeneHit, 0, len(ref.Genes))
			for _, g := range ref.Genes {
				h := orthology.Lookup(g, speciesOf[g], files)
				if h.Hits > 0 {
					found++
				}
				hits = append(hits, h)
			}
			p := filepath.Join(orthoOutDir, ref.Name+orthology.HitSuffix)
			if err := table.Write(p, orthology.HitTable(hits), ','); err != nil {
				return err
			}
			if len(known) > 0 && !known[ref.Name] {
				warnf("%s not listed in %s", ref.Name, orthoKnown)
			}
			if !orthoQuiet {
				fmt.Printf("  wrote %s\n", p)
			}
			outputs = append(outputs, p)
		}
		fmt.Printf("✓ Wrote %d hit tables to %s (%d genes found in BLAST)\n", len(outputs), orthoOutDir, found)
		return recordStep("orthology hits", []string{orthoIDs, orthoSpecies, orthoBlastDir}, []string{orthoOutDir}, map[string]string{
			"references": strconv.Itoa(len(refs)),
			"found":      strconv.Itoa(found),
		})
	},
}

var orthologyCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Summarize hit tables: species confirmed per reference gene",
	Long: `Read <hits-dir>/<reference>.final.csv for each reference of --ids, in order, and
write yes_count,file,files rows: yes_count is the number of species with at least one
BLAST-confirmed gene. A species with several distinct genes adds a DUP row; a missing
hit table is flagged with yes_count 0.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if orthoIDs == "" {
			return errors.New("--ids is required")
		}
		it, err := table.Read(orthoIDs, table.ReadOptions{})
		if err != nil {
			return err
		}
		order := orthology.ReferenceOrder(it)
		sum, err := orthology.Summarize(order, orthoHitsDir)
		if err != nil {
			return err
		}
		if err := table.Write(orthoSummary, sum, ','); err != nil {
			return err
		}
		fmt.Printf("✓ Summarized %d reference genes → %s\n", len(order), orthoSummary)
		return recordStep("orthology count", []string{orthoIDs, orthoHitsDir}, []string{orthoSummary}, map[string]string{
			"references": strconv.Itoa(len(order)),
		})
	},
}

var orthologyRemapCmd = &cobra.Command{
	Use:   "remap <file.csv>",
	Short: "Map a kept ID list to the statistics of a full ID list",
	Long: `The input holds three rows: all IDs, one statistic per ID, and the IDs to keep.
The output holds two rows: the kept IDs and their statistics. IDs without a statistic
are left empty and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := args[0]
		t, err := table.Read(in, table.ReadOptions{Delimiter: ','})
		if err != nil {
			return err
		}
		out, missing, err := orthology.Remap(t)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		if err := table.Write(orthoRemapOut, out, ','); err != nil {
			return err
		}
		if n := len(missing); n > 0 {
			warnf("%d IDs not found in row 1; values left empty", n)
			if !orthoQuiet {
				for _, id := range missing {
					fmt.Printf("  missing: %s\n", id)
				}
			}
		}
		fmt.Printf("✓ Mapped %d IDs → %s\n", len(out.Rows[0]), orthoRemapOut)
		return recordStep("orthology remap", []string{in}, []string{orthoRemapOut}, map[string]string{
			"kept":    strconv.Itoa(len(out.Rows[0])),
			"missing": strconv.Itoa(len(missing)),
		})
	},
}

func init() {
	rootCmd.AddCommand(orthologyCmd)
	orthologyCmd.AddCommand(orthologyHitsCmd, orthologyCountCmd, orthologyRemapCmd)
	orthologyCmd.PersistentFlags().BoolVarP(&orthoQuiet, "quiet", "q", false, "do not list per-item progress")

	orthologyHitsCmd.Flags().StringVar(&orthoBlastDir, "blast-dir", "00.all.blast", "directory of BLAST result files")
	orthologyHitsCmd.Flags().StringVar(&orthoGlob, "glob", "*_blast_filtered.txt", "BLAST file pattern inside --blast-dir")
	orthologyHitsCmd.Flags().StringVar(&orthoIDs, "ids", "", "headerless reference,gene,... CSV (required)")
	orthologyHitsCmd.Flags().StringVar(&orthoSpecies, "species-genes", "", "headerless species,gene,... CSV (required)")
	orthologyHitsCmd.Flags().StringVar(&orthoPrefix, "ref-prefix", "", "only references starting with this prefix")
	orthologyHitsCmd.Flags().StringVar(&orthoKnown, "known", "", "optional list of expected references (first tab field per line)")
	orthologyHitsCmd.Flags().StringVarP(&orthoOutDir, "out-dir", "o", "02.result", "output directory")

	orthologyCountCmd.Flags().StringVar(&orthoIDs, "ids", "", "headerless reference,... CSV giving the order (required)")
	orthologyCountCmd.Flags().StringVar(&orthoHitsDir, "hits-dir", ".", "directory of <reference>.final.csv tables")
	orthologyCountCmd.Flags().StringVarP(&orthoSummary, "output", "o", "summary.csv", "summary CSV path")

	orthologyRemapCmd.Flags().StringVarP(&orthoRemapOut, "output", "o", "mapped.csv", "output CSV path")
}
