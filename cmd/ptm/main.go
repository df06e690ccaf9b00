package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/logging"
)

const version = "0.3.0"

var (
	// Global flags
	verbose    bool
	projectDir string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ptm",
	Short: "PTM pipeline - harmonize phosphoproteomics differential-expression results",
	Long: `ptm scaffolds phosphoproteomics analysis projects and harmonizes the
three parallel PTM analysis variants (abundance, usage, protein-corrected
usage) into one consistent result bundle for enrichment analysis.

A project is initialized from the DEA folders the upstream differential
expression runner produced; the harmonize step standardizes the per-variant
result workbooks, derives protein-corrected site abundances and emits
per-contrast rank lists.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the ptm version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ptm %s\n", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project", "p", ".", "project directory")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(harmonizeCmd)
	rootCmd.AddCommand(ranksCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadProjectConfig reads ptm_config.yaml from the project directory.
func loadProjectConfig() (*config.Config, error) {
	path := filepath.Join(projectDir, config.ConfigFileName)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("no initialized project in %s (run 'ptm init' first): %w", projectDir, err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
