package cmd

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	cfgpkg "github.com/KaramelBytes/syntree-cli/internal/config"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/KaramelBytes/syntree-cli/internal/workspace"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	workspaceFlag string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "syntree",
	Short: "syntree: syntenic matrix and gene-tree workflow helpers",
	Long: `syntree prepares the inputs of a synteny-based phylogenomics workflow: it
merges and filters syntenic matrices, builds per-gene and concatenated FASTA files,
renders command lists for the alignment and tree programs, and filters the
resulting Newick gene trees.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(loadConfig)
	rootCmd.SilenceErrors = true
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.syntree/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVar(&workspaceFlag, "workspace", "", "record this run in the workspace at (or above) this directory")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		return
	}
	cfg = c
}

// settings returns the loaded configuration, loading defaults when the
// config file could not be read.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	c, err := cfgpkg.Load("")
	if err != nil {
		return &cfgpkg.Global{Delimiter: ",", FinalSuffix: "_final.csv", ZeroReportName: "zero_columns.txt", FastaWidth: 60, Threads: 1}
	}
	cfg = c
	return cfg
}

func debugf(format string, args ...any) {
	if debug {
		fmt.Fprintf(os.Stderr, "[debug] "+format+"\n", args...)
	}
}

func warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "⚠ Warning: "+format+"\n", args...)
}

// resolveDelimiter picks the delimiter for path: the flag value when given,
// tab for .tsv-like names, otherwise the configured default.
func resolveDelimiter(flag, path string) (rune, error) {
	if flag != "" {
		return table.ParseDelimiter(flag)
	}
	if table.SniffDelimiter(path) == '\t' {
		return '\t', nil
	}
	d, err := table.ParseDelimiter(settings().Delimiter)
	if err != nil {
		return 0, fmt.Errorf("config delimiter: %w", err)
	}
	if d == 0 {
		d = ','
	}
	return d, nil
}

// newRand seeds from seed, or from the clock when seed is 0.
func newRand(seed int64) (*rand.Rand, int64) {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed)), seed
}

// recordStep appends a step to the workspace named by --workspace.
func recordStep(command string, inputs, outputs []string, summary map[string]string) error {
	if workspaceFlag == "" {
		return nil
	}
	w, err := workspace.Locate(workspaceFlag)
	if err != nil {
		return fmt.Errorf("open workspace: %w", err)
	}
	s := w.Record(command, inputs, outputs, summary)
	if err := w.Save(); err != nil {
		return fmt.Errorf("save workspace: %w", err)
	}
	debugf("recorded step %s in %s", s.ID, w.RootDir())
	return nil
}
