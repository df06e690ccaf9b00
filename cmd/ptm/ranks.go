package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/harmonize"
)

var ranksStat string

var ranksCmd = &cobra.Command{
	Use:   "ranks",
	Short: "Rebuild the per-contrast rank lists without rewriting the bundle",
	Long: `ranks re-reads the variant result workbooks and regenerates the
.rnk files and sequence-window lists. Useful after tweaking the ranking
statistic without re-running the full harmonization.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadProjectConfig()
		if err != nil {
			return err
		}

		report, err := harmonize.BuildRanks(harmonize.Options{
			ProjectDir: projectDir,
			Config:     cfg,
			Log:        logger,
			StatColumn: ranksStat,
		})
		if err != nil {
			return err
		}

		for _, v := range config.Variants() {
			if n, ok := report.VariantRows[v]; ok {
				fmt.Printf("  %-3s %d rows ranked\n", v, n)
			}
		}
		fmt.Printf("rank lists written to %s\n", report.RankDir)

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
	ranksCmd.Flags().StringVar(&ranksStat, "stat", "", "ranking statistic column (default: per-variant statistic)")
}
