package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/harmonize"
)

var harmonizeStat string

var harmonizeCmd = &cobra.Command{
	Use:   "harmonize",
	Short: "Standardize variant results and build the harmonized bundle",
	Long: `harmonize reads the three variant result workbooks from the project
output directory, standardizes their schemas, reconciles site against protein
abundances into a corrected matrix, writes per-contrast rank lists and emits
the harmonized workbook plus its SQLite companion.

A variant whose workbook is missing or malformed is skipped with a warning;
the remaining variants still reach the bundle. Missing abundance tables abort
the run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProjectConfig()
		if err != nil {
			return err
		}

		report, err := harmonize.Run(harmonize.Options{
			ProjectDir:  projectDir,
			Config:      cfg,
			Log:         logger,
			ToolVersion: version,
			StatColumn:  harmonizeStat,
		})
		if err != nil {
			return err
		}

		fmt.Printf("run %s complete\n", report.RunID)
		for _, v := range config.Variants() {
			if n, ok := report.VariantRows[v]; ok {
				fmt.Printf("  %-3s %d rows\n", v, n)
			}
		}
		fmt.Printf("  corrected sites: %d\n", report.CorrectedSites)
		fmt.Printf("  workbook: %s\n", report.WorkbookPath)
		fmt.Printf("  database: %s\n", report.DatabasePath)
		fmt.Printf("  rank lists: %s\n", report.RankDir)

		if len(report.Failures) > 0 {
			for _, f := range report.Failures {
				fmt.Printf("  variant %s failed: %v\n", f.Variant, f.Err)
			}
			return fmt.Errorf("%d of %d variants failed", len(report.Failures), len(config.Variants()))
		}
		return nil
	},
}

func init() {
	harmonizeCmd.Flags().StringVar(&harmonizeStat, "stat", "", "ranking statistic column (default: per-variant statistic)")
}
