package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ptmpipeline/internal/scaffold"
)

var (
	cleanDryRun bool
	cleanForce  bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the files init created",
	Long: `clean removes ptm_config.yaml and the generated Makefile and Snakefile
from the project directory. DEA folders and analysis output are never touched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		removable := scaffold.Removable(projectDir)
		if len(removable) == 0 {
			fmt.Println("nothing to clean")
			return nil
		}
		if cleanDryRun || !cleanForce {
			for _, name := range removable {
				fmt.Printf("would remove %s\n", name)
			}
			if !cleanDryRun {
				fmt.Println("re-run with --force to remove")
			}
			return nil
		}
		removed, err := scaffold.Clean(projectDir)
		if err != nil {
			return err
		}
		for _, name := range removed {
			fmt.Printf("removed %s\n", name)
		}
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanDryRun, "dry-run", false, "list files without removing them")
	cleanCmd.Flags().BoolVar(&cleanForce, "force", false, "actually remove the files")
}
