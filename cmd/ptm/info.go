package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ptmpipeline/internal/discover"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show what the project directory contains",
	Long: `info scans the project directory for DEA folders and, when the project
is initialized, prints the configured analysis parameters and contrasts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		folders, err := discover.FindDEAFolders(projectDir)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "phospho DEA folders:\t%d\n", len(folders.Phospho))
		for _, d := range folders.Phospho {
			fmt.Fprintf(w, "\t%s\n", d)
		}
		fmt.Fprintf(w, "protein DEA folders:\t%d\n", len(folders.Protein))
		for _, d := range folders.Protein {
			fmt.Fprintf(w, "\t%s\n", d)
		}

		cfg, err := loadProjectConfig()
		if err != nil {
			fmt.Fprintf(w, "project:\tnot initialized\n")
			return w.Flush()
		}

		fmt.Fprintf(w, "project:\tinitialized\n")
		fmt.Fprintf(w, "output directory:\t%s\n", cfg.DirOut)
		fmt.Fprintf(w, "phospho DEA:\t%s\n", cfg.PhosphoDEADir)
		fmt.Fprintf(w, "protein DEA:\t%s\n", cfg.ProteinDEADir)
		fmt.Fprintf(w, "annotation file:\t%s\n", cfg.AnnotFile)
		fmt.Fprintf(w, "FDR threshold:\t%g\n", cfg.FDR)
		fmt.Fprintf(w, "log2FC threshold:\t%g\n", cfg.Log2FC)
		fmt.Fprintf(w, "decoy prefix:\t%s\n", cfg.DecoyPrefix)
		fmt.Fprintf(w, "contrasts:\t%d\n", len(cfg.Contrasts))
		for _, c := range cfg.Contrasts {
			fmt.Fprintf(w, "\t%s\n", c)
		}
		return w.Flush()
	},
}
