package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"ptmpipeline/internal/validate"
)

var validateQuick bool

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that the project is ready to harmonize",
	Long: `validate runs preflight checks on the project: the configuration file,
the configured DEA folders, the annotation file and the external tools the
generated drivers invoke. Critical failures make the command exit non-zero.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		checks, ok := validate.Project(projectDir, validate.Options{Quick: validateQuick})

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		for _, c := range checks {
			status := "PASS"
			if !c.Passed {
				status = "FAIL"
				if !c.Critical {
					status = "WARN"
				}
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", status, c.Name, c.Detail)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("project validation failed")
		}
		fmt.Println("project is ready")
		return nil
	},
}

func init() {
	validateCmd.Flags().BoolVar(&validateQuick, "quick", false, "skip external tool checks")
}
