package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Tables
	Delimiter      string `mapstructure:"delimiter" yaml:"delimiter"`
	InputSuffix    string `mapstructure:"input_suffix" yaml:"input_suffix"`
	FinalSuffix    string `mapstructure:"final_suffix" yaml:"final_suffix"`
	ZeroReportName string `mapstructure:"zero_report_name" yaml:"zero_report_name"`
	StrictNumeric  bool   `mapstructure:"strict_numeric" yaml:"strict_numeric"`

	// Sequences
	FastaWidth int   `mapstructure:"fasta_width" yaml:"fasta_width"`
	Seed       int64 `mapstructure:"seed" yaml:"seed"`

	// External tools
	Threads         int    `mapstructure:"threads" yaml:"threads"`
	MafftPath       string `mapstructure:"mafft_path" yaml:"mafft_path"`
	TrimalPath      string `mapstructure:"trimal_path" yaml:"trimal_path"`
	IQTreePath      string `mapstructure:"iqtree_path" yaml:"iqtree_path"`
	TreeShrinkPath  string `mapstructure:"treeshrink_path" yaml:"treeshrink_path"`
	IQTreeModel     string `mapstructure:"iqtree_model" yaml:"iqtree_model"`
	IQTreeBootstrap int    `mapstructure:"iqtree_bootstrap" yaml:"iqtree_bootstrap"`
}

// Keys lists the settable configuration keys in display order.
var Keys = []string{
	"delimiter", "input_suffix", "final_suffix", "zero_report_name", "strict_numeric",
	"fasta_width", "seed",
	"threads", "mafft_path", "trimal_path", "iqtree_path", "treeshrink_path", "iqtree_model", "iqtree_bootstrap",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".syntree"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.syntree/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func defaults(v *viper.Viper) {
	v.SetDefault("delimiter", ",")
	v.SetDefault("input_suffix", "_0-1.transposed.csv")
	v.SetDefault("final_suffix", "_final.csv")
	v.SetDefault("zero_report_name", "zero_columns.txt")
	v.SetDefault("strict_numeric", false)
	v.SetDefault("fasta_width", 60)
	v.SetDefault("seed", 0)
	v.SetDefault("threads", 4)
	v.SetDefault("mafft_path", "mafft")
	v.SetDefault("trimal_path", "trimal")
	v.SetDefault("iqtree_path", "iqtree2")
	v.SetDefault("treeshrink_path", "run_treeshrink.py")
	v.SetDefault("iqtree_model", "MFP")
	v.SetDefault("iqtree_bootstrap", 1000)
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by callers.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("SYNTREE")
	v.AutomaticEnv()
	defaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
