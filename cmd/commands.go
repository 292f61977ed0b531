package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/KaramelBytes/syntree-cli/internal/pipeline"
	"github.com/KaramelBytes/syntree-cli/internal/seqs"
	"github.com/spf13/cobra"
)

var (
	commandsOutput    string
	commandsOutDir    string
	commandsThreads   int
	commandsModel     string
	commandsBootstrap int
)

var commandsCmd = &cobra.Command{
	Use:   "commands <stage> <file|dir|glob>...",
	Short: "Render one command line per input for an external tool",
	Long: fmt.Sprintf(`Print (or write with -o) the shell commands that run a workflow stage over
many inputs, ready for a parallel job runner. Directory arguments expand to the
FASTA files they contain.

Stages: %s`, strings.Join(pipeline.Stages(), ", ")),
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		stage := args[0]
		if _, err := pipeline.Lookup(stage); err != nil {
			return err
		}
		var inputs []string
		for _, a := range args[1:] {
			if info, err := os.Stat(a); err == nil && info.IsDir() {
				files, err := seqs.ListDir(a)
				if err != nil {
					return fmt.Errorf("%s: %w", a, err)
				}
				inputs = append(inputs, files...)
				continue
			}
			matches, err := expandGlobs([]string{a})
			if err != nil {
				return err
			}
			inputs = append(inputs, matches...)
		}

		c := settings()
		o := pipeline.Options{
			MafftPath:      c.MafftPath,
			TrimalPath:     c.TrimalPath,
			IQTreePath:     c.IQTreePath,
			TreeShrinkPath: c.TreeShrinkPath,
			Model:          c.IQTreeModel,
			Bootstrap:      c.IQTreeBootstrap,
			Threads:        c.Threads,
			OutDir:         commandsOutDir,
		}
		if cmd.Flags().Changed("threads") {
			o.Threads = commandsThreads
		}
		if commandsModel != "" {
			o.Model = commandsModel
		}
		if cmd.Flags().Changed("bootstrap") {
			o.Bootstrap = commandsBootstrap
		}
		lines, err := pipeline.Commands(stage, inputs, o)
		if err != nil {
			return err
		}
		if commandsOutput == "" {
			for _, l := range lines {
				fmt.Println(l)
			}
			return nil
		}
		if err := pipeline.WriteCommandList(commandsOutput, lines); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %d %s commands to %s\n", len(lines), stage, commandsOutput)
		return recordStep("commands "+stage, inputs, []string{commandsOutput}, map[string]string{
			"commands": fmt.Sprint(len(lines)),
		})
	},
}

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.Flags().StringVarP(&commandsOutput, "output", "o", "", "write the command list to this file instead of stdout")
	commandsCmd.Flags().StringVar(&commandsOutDir, "out-dir", "", "directory for tool outputs (default: next to each input)")
	commandsCmd.Flags().IntVarP(&commandsThreads, "threads", "T", 0, "threads per job (default from config)")
	commandsCmd.Flags().StringVarP(&commandsModel, "model", "m", "", "IQ-TREE model (default from config)")
	commandsCmd.Flags().IntVarP(&commandsBootstrap, "bootstrap", "B", 0, "IQ-TREE ultrafast bootstrap replicates (default from config)")
}
