// Package validate checks that an initialized project has everything the
// pipeline needs before a run is attempted.
package validate

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"ptmpipeline/internal/config"
)

// Check is one validation result.
type Check struct {
	Name     string
	Passed   bool
	Detail   string
	Critical bool
}

// Options controls which checks run.
type Options struct {
	// Quick skips external command lookups.
	Quick bool
}

// Project validates projectDir and returns the individual check results.
// The boolean is true when every critical check passed.
func Project(projectDir string, opts Options) ([]Check, bool) {
	var checks []Check

	configPath := filepath.Join(projectDir, config.ConfigFileName)
	checks = append(checks, fileCheck(config.ConfigFileName, configPath, true))

	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		if loaded, err := config.Load(configPath); err == nil {
			cfg = loaded
		} else {
			checks = append(checks, Check{
				Name: "config parse", Passed: false, Detail: err.Error(), Critical: true,
			})
		}
	}

	checks = append(checks, fileCheck("Makefile", filepath.Join(projectDir, "Makefile"), false))
	checks = append(checks, fileCheck("Snakefile", filepath.Join(projectDir, "Snakefile"), false))

	if cfg != nil {
		checks = append(checks,
			dirCheck("phospho DEA folder", filepath.Join(projectDir, cfg.PhosphoDEADir), true),
			dirCheck("protein DEA folder", filepath.Join(projectDir, cfg.ProteinDEADir), true),
			fileCheck("annotation file", filepath.Join(projectDir, cfg.AnnotFile), false),
		)
		if len(cfg.Contrasts) == 0 {
			checks = append(checks, Check{
				Name: "contrasts", Passed: false, Detail: "no contrasts configured", Critical: false,
			})
		} else {
			checks = append(checks, Check{
				Name: "contrasts", Passed: true,
				Detail: fmt.Sprintf("%d configured", len(cfg.Contrasts)),
			})
		}
	}

	if !opts.Quick {
		for _, cmd := range []string{"snakemake", "Rscript"} {
			checks = append(checks, commandCheck(cmd))
		}
	}

	ok := true
	for _, c := range checks {
		if c.Critical && !c.Passed {
			ok = false
		}
	}
	return checks, ok
}

func fileCheck(name, path string, critical bool) Check {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return Check{Name: name, Passed: false, Detail: "not found: " + path, Critical: critical}
	}
	return Check{Name: name, Passed: true, Detail: path, Critical: critical}
}

func dirCheck(name, path string, critical bool) Check {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return Check{Name: name, Passed: false, Detail: "not found: " + path, Critical: critical}
	}
	return Check{Name: name, Passed: true, Detail: path, Critical: critical}
}

func commandCheck(cmd string) Check {
	path, err := exec.LookPath(cmd)
	if err != nil {
		return Check{Name: cmd, Passed: false, Detail: "command not found"}
	}
	return Check{Name: cmd, Passed: true, Detail: path}
}
