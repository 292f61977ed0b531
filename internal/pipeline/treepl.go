package pipeline

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Calibration constrains the age of the MRCA of two taxa. A zero bound is
// omitted from the output.
type Calibration struct {
	Name string    `yaml:"name"`
	Taxa [2]string `yaml:"taxa"`
	Min  float64   `yaml:"min"`
	Max  float64   `yaml:"max"`
}

// TreePLConfig is a treePL control file.
type TreePLConfig struct {
	TreeFile     string            `yaml:"treefile"`
	OutFile      string            `yaml:"outfile"`
	NumSites     int               `yaml:"numsites"`
	Smooth       float64           `yaml:"smooth,omitempty"`
	Threads      int               `yaml:"nthreads,omitempty"`
	Calibrations []Calibration     `yaml:"calibrations"`
	Options      map[string]string `yaml:"options,omitempty"`
	// Flags are bare keywords such as prime, thorough or cv.
	Flags []string `yaml:"flags,omitempty"`
}

// LoadTreePL reads a TreePLConfig from a YAML file.
func LoadTreePL(path string) (*TreePLConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read treePL config: %w", err)
	}
	var c TreePLConfig
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &c, nil
}

// Validate checks the fields treePL needs before it can start.
func (c *TreePLConfig) Validate() error {
	if c.TreeFile == "" {
		return fmt.Errorf("treefile is required")
	}
	if c.NumSites <= 0 {
		return fmt.Errorf("numsites must be positive")
	}
	seen := map[string]bool{}
	for i, cal := range c.Calibrations {
		if cal.Name == "" || strings.ContainsAny(cal.Name, " \t") {
			return fmt.Errorf("calibration %d: name must be a single word", i+1)
		}
		if seen[cal.Name] {
			return fmt.Errorf("calibration %q defined twice", cal.Name)
		}
		seen[cal.Name] = true
		if cal.Taxa[0] == "" || cal.Taxa[1] == "" {
			return fmt.Errorf("calibration %q: two taxa are required", cal.Name)
		}
		if cal.Min < 0 || cal.Max < 0 {
			return fmt.Errorf("calibration %q: ages must be non-negative", cal.Name)
		}
		if cal.Min > 0 && cal.Max > 0 && cal.Min > cal.Max {
			return fmt.Errorf("calibration %q: min %s exceeds max %s", cal.Name, formatFloat(cal.Min), formatFloat(cal.Max))
		}
	}
	return nil
}

// Render produces the control file text.
func (c *TreePLConfig) Render() string {
	var b strings.Builder
	kv := func(k, v string) { fmt.Fprintf(&b, "%s = %s\n", k, v) }
	kv("treefile", c.TreeFile)
	if c.Smooth > 0 {
		kv("smooth", formatFloat(c.Smooth))
	}
	kv("numsites", fmt.Sprint(c.NumSites))
	for _, cal := range c.Calibrations {
		kv("mrca", cal.Name+" "+cal.Taxa[0]+" "+cal.Taxa[1])
		if cal.Min > 0 {
			kv("min", cal.Name+" "+formatFloat(cal.Min))
		}
		if cal.Max > 0 {
			kv("max", cal.Name+" "+formatFloat(cal.Max))
		}
	}
	if c.OutFile != "" {
		kv("outfile", c.OutFile)
	}
	if c.Threads > 0 {
		kv("nthreads", fmt.Sprint(c.Threads))
	}
	keys := make([]string, 0, len(c.Options))
	for k := range c.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		kv(k, c.Options[k])
	}
	for _, f := range c.Flags {
		b.WriteString(f)
		b.WriteByte('\n')
	}
	return b.String()
}
