package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ptmpipeline/internal/scaffold"
)

var (
	initName       string
	initInputDir   string
	initPhosphoDir string
	initProteinDir string
	initDryRun     bool
	initForce      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a PTM project from existing DEA output folders",
	Long: `init inspects the input directory for the DEA folders produced by the
upstream differential expression run, picks the newest phospho and protein
folders, reads the contrasts from the annotation file and writes
ptm_config.yaml plus the Makefile and Snakefile drivers.

Explicit --phospho-dir / --protein-dir selections override discovery.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := scaffold.Init(projectDir, scaffold.InitOptions{
			InputDir:   initInputDir,
			Name:       initName,
			PhosphoDir: initPhosphoDir,
			ProteinDir: initProteinDir,
			DryRun:     initDryRun,
			Force:      initForce,
		}, logger)
		if err != nil {
			return err
		}
		if initDryRun {
			fmt.Printf("dry run: would initialize project %q in %s\n", res.Config.DirOut, projectDir)
			return nil
		}
		fmt.Printf("initialized project in %s\n", projectDir)
		fmt.Printf("  output directory: %s\n", res.Config.DirOut)
		fmt.Printf("  phospho DEA:      %s\n", res.PhosphoDir)
		fmt.Printf("  protein DEA:      %s\n", res.ProteinDir)
		fmt.Printf("  contrasts:        %d\n", len(res.Contrasts))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initName, "name", "", "project name (default: derived from the phospho DEA folder)")
	initCmd.Flags().StringVar(&initInputDir, "input-dir", "", "directory holding the DEA folders (default: project directory)")
	initCmd.Flags().StringVar(&initPhosphoDir, "phospho-dir", "", "phospho DEA folder (overrides discovery)")
	initCmd.Flags().StringVar(&initProteinDir, "protein-dir", "", "protein DEA folder (overrides discovery)")
	initCmd.Flags().BoolVar(&initDryRun, "dry-run", false, "report what would be written without writing")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing ptm_config.yaml")
}
