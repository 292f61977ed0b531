package cmd

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/syntree-cli/internal/pipeline"
	"github.com/KaramelBytes/syntree-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	treeplSpec     string
	treeplOutput   string
	treeplTree     string
	treeplNumSites int
)

var treeplCmd = &cobra.Command{
	Use:   "treepl",
	Short: "Render a treePL control file from a YAML description",
	Long: `Read tree path, alignment length and calibrations from a YAML file and write the
treePL control file. --tree and --numsites override the YAML values.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if treeplSpec == "" {
			return errors.New("--from is required")
		}
		c, err := pipeline.LoadTreePL(treeplSpec)
		if err != nil {
			return err
		}
		if treeplTree != "" {
			c.TreeFile = treeplTree
		}
		if treeplNumSites > 0 {
			c.NumSites = treeplNumSites
		}
		if c.Threads == 0 {
			c.Threads = settings().Threads
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%s: %w", treeplSpec, err)
		}
		text := c.Render()
		if treeplOutput == "" {
			fmt.Print(text)
			return nil
		}
		if err := utils.SafeWriteFile(treeplOutput, []byte(text)); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote treePL config with %d calibrations to %s\n", len(c.Calibrations), treeplOutput)
		return recordStep("treepl", []string{treeplSpec}, []string{treeplOutput}, nil)
	},
}

func init() {
	rootCmd.AddCommand(treeplCmd)
	treeplCmd.Flags().StringVarP(&treeplSpec, "from", "f", "", "YAML file with treefile, numsites and calibrations (required)")
	treeplCmd.Flags().StringVarP(&treeplOutput, "output", "o", "", "control file path (default: stdout)")
	treeplCmd.Flags().StringVar(&treeplTree, "tree", "", "input tree (overrides YAML)")
	treeplCmd.Flags().IntVar(&treeplNumSites, "numsites", 0, "alignment length (overrides YAML)")
}
