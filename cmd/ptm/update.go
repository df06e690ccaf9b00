package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ptmpipeline/internal/scaffold"
)

var updateDryRun bool

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Refresh the generated workflow files",
	Long: `update rewrites the Makefile and Snakefile from the templates bundled
with this ptm version. ptm_config.yaml is left untouched, so folder
selections, contrasts and thresholds survive the refresh.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		written, err := scaffold.Update(projectDir, updateDryRun)
		if err != nil {
			return err
		}
		for _, name := range written {
			if updateDryRun {
				fmt.Printf("would update %s\n", name)
			} else {
				fmt.Printf("updated %s\n", name)
			}
		}
		return nil
	},
}

func init() {
	updateCmd.Flags().BoolVar(&updateDryRun, "dry-run", false, "list files without rewriting them")
}
