package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/syntree-cli/internal/config"
	"github.com/KaramelBytes/syntree-cli/internal/table"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set syntree configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		for _, k := range cfgpkg.Keys {
			v, _ := configValue(c, k)
			fmt.Printf("%s: %s\n", k, v)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		posInt := func() (int, error) {
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return 0, fmt.Errorf("invalid positive int for %s: %v", key, val)
			}
			return i, nil
		}
		switch key {
		case "delimiter":
			d, err := table.ParseDelimiter(val)
			if err != nil {
				return err
			}
			if d == 0 {
				return fmt.Errorf("delimiter cannot be empty")
			}
			cfg.Delimiter = string(d)
		case "input_suffix":
			cfg.InputSuffix = val
		case "final_suffix":
			if val == "" {
				return fmt.Errorf("final_suffix cannot be empty")
			}
			cfg.FinalSuffix = val
		case "zero_report_name":
			if val == "" {
				return fmt.Errorf("zero_report_name cannot be empty")
			}
			cfg.ZeroReportName = val
		case "strict_numeric":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for strict_numeric: %v", val)
			}
			cfg.StrictNumeric = b
		case "fasta_width":
			i, err := posInt()
			if err != nil {
				return err
			}
			cfg.FastaWidth = i
		case "seed":
			i, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid int for seed: %w", err)
			}
			cfg.Seed = i
		case "threads":
			i, err := posInt()
			if err != nil {
				return err
			}
			cfg.Threads = i
		case "mafft_path":
			cfg.MafftPath = val
		case "trimal_path":
			cfg.TrimalPath = val
		case "iqtree_path":
			cfg.IQTreePath = val
		case "treeshrink_path":
			cfg.TreeShrinkPath = val
		case "iqtree_model":
			cfg.IQTreeModel = val
		case "iqtree_bootstrap":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for iqtree_bootstrap: %v", val)
			}
			cfg.IQTreeBootstrap = i
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(cfg, cfgFile); err != nil {
			return err
		}
		fmt.Println("Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

// configValue renders a config field for display.
func configValue(c *cfgpkg.Global, key string) (string, bool) {
	switch key {
	case "delimiter":
		if c.Delimiter == "\t" {
			return "tab", true
		}
		return c.Delimiter, true
	case "input_suffix":
		return c.InputSuffix, true
	case "final_suffix":
		return c.FinalSuffix, true
	case "zero_report_name":
		return c.ZeroReportName, true
	case "strict_numeric":
		return strconv.FormatBool(c.StrictNumeric), true
	case "fasta_width":
		return strconv.Itoa(c.FastaWidth), true
	case "seed":
		return strconv.FormatInt(c.Seed, 10), true
	case "threads":
		return strconv.Itoa(c.Threads), true
	case "mafft_path":
		return c.MafftPath, true
	case "trimal_path":
		return c.TrimalPath, true
	case "iqtree_path":
		return c.IQTreePath, true
	case "treeshrink_path":
		return c.TreeShrinkPath, true
	case "iqtree_model":
		return c.IQTreeModel, true
	case "iqtree_bootstrap":
		return strconv.Itoa(c.IQTreeBootstrap), true
	}
	return "", false
}
