// Package config holds the project configuration for the PTM harmonization
// pipeline. A project is a directory containing one phospho and one protein
// DEA folder; ptm_config.yaml is written by `ptm init` and read by every
// other command.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the canonical config filename inside a project directory.
const ConfigFileName = "ptm_config.yaml"

// Config holds all pipeline configuration.
type Config struct {
	// Output directory for harmonized results, relative to the project root.
	DirOut string `yaml:"dir_out"`

	// DEA input locations, relative to the project root.
	PhosphoDEADir string `yaml:"phospho_dea_dir"`
	ProteinDEADir string `yaml:"protein_dea_dir"`
	AnnotFile     string `yaml:"annot_file"`

	// Contrast names carried over from the annotation file.
	Contrasts []string `yaml:"contrasts"`

	// Significance thresholds passed through to downstream reports.
	FDR    float64 `yaml:"fdr"`
	Log2FC float64 `yaml:"log2fc"`

	// Identifier prefix marking reversed-sequence decoy entries.
	DecoyPrefix string `yaml:"decoy_prefix"`

	Abundance AbundanceConfig `yaml:"abundance"`
}

// AbundanceConfig names the columns of the long-format normalized abundance
// tables. The defaults match prolfqua's lfqdata_normalized.parquet output.
type AbundanceConfig struct {
	SiteColumn    string `yaml:"site_column"`
	ProteinColumn string `yaml:"protein_column"`
	SampleColumn  string `yaml:"sample_column"`
	ValueColumn   string `yaml:"value_column"`
}

// DefaultConfig returns the configuration used when init runs non-interactively.
func DefaultConfig() *Config {
	return &Config{
		DirOut:      fmt.Sprintf("PTM_%s", time.Now().Format("20060102")),
		FDR:         0.25,
		Log2FC:      0.5,
		DecoyPrefix: "REV_",
		Abundance: AbundanceConfig{
			SiteColumn:    "site",
			ProteinColumn: "protein_Id",
			SampleColumn:  "sampleName",
			ValueColumn:   "transformedIntensity",
		},
	}
}

// Load reads configuration from a YAML file. Missing fields fall back to
// defaults; a missing file is an error because every command except init
// requires an initialized project.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if prefix := os.Getenv("PTM_DECOY_PREFIX"); prefix != "" {
		c.DecoyPrefix = prefix
	}
	if dirOut := os.Getenv("PTM_DIR_OUT"); dirOut != "" {
		c.DirOut = dirOut
	}
}
