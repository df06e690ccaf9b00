// Package scaffold initializes project directories: it discovers DEA inputs,
// generates ptm_config.yaml and writes the embedded workflow files the
// surrounding orchestration consumes.
package scaffold

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/discover"
)

//go:embed templates
var templates embed.FS

// templateFiles are written into the project root on init and removed by
// Clean. ptm_config.yaml is handled separately so update runs never clobber
// an edited config.
var templateFiles = []string{"Makefile", "Snakefile"}

// InitOptions configures project initialization.
type InitOptions struct {
	// InputDir is scanned for DEA folders; defaults to ProjectDir.
	InputDir string
	// Name overrides the auto-detected experiment name.
	Name string
	// PhosphoDir and ProteinDir override folder auto-selection.
	PhosphoDir string
	ProteinDir string

	DryRun bool
	Force  bool
}

// InitResult reports what init selected and wrote.
type InitResult struct {
	Config     *config.Config
	ConfigPath string
	PhosphoDir string
	ProteinDir string
	AnnotFile  string
	Contrasts  []string
	Written    []string
}

// Init initializes the project at projectDir. It refuses to overwrite an
// existing ptm_config.yaml unless forced.
func Init(projectDir string, opts InitOptions, log *zap.Logger) (*InitResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	inputDir := opts.InputDir
	if inputDir == "" {
		inputDir = projectDir
	}

	configPath := filepath.Join(projectDir, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !opts.Force && !opts.DryRun {
		return nil, fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigFileName)
	}

	folders, err := discover.FindDEAFolders(inputDir)
	if err != nil {
		return nil, err
	}

	phosphoDir := opts.PhosphoDir
	if phosphoDir == "" {
		if len(folders.Phospho) == 0 {
			return nil, fmt.Errorf("no phospho DEA folder found in %s (expected DEA_*_WUphospho_*, DEA_*_WUcombined_* or DEA_*_*STY*)", inputDir)
		}
		phosphoDir = folders.Phospho[0]
		if len(folders.Phospho) > 1 {
			log.Info("multiple phospho DEA folders, newest selected",
				zap.String("chosen", filepath.Base(phosphoDir)),
				zap.Int("candidates", len(folders.Phospho)))
		}
	}

	proteinDir := opts.ProteinDir
	if proteinDir == "" {
		if len(folders.Protein) == 0 {
			return nil, fmt.Errorf("no protein DEA folder found in %s (expected DEA_*_WUprot_* or DEA_*_WUtotal_*)", inputDir)
		}
		proteinDir = folders.Protein[0]
		if len(folders.Protein) > 1 {
			log.Info("multiple protein DEA folders, newest selected",
				zap.String("chosen", filepath.Base(proteinDir)),
				zap.Int("candidates", len(folders.Protein)))
		}
	}

	annotFile, ok := discover.FindAnnotationFile(phosphoDir)
	if !ok {
		return nil, fmt.Errorf("no annotation file found under %s (expected Inputs_*/*_annot_*.tsv or Inputs_*/*_dataset*.tsv)", phosphoDir)
	}

	contrasts, err := discover.ParseContrasts(annotFile)
	if err != nil {
		return nil, err
	}
	if len(contrasts) == 0 {
		log.Warn("no contrasts found in annotation file", zap.String("file", annotFile))
	}

	name := opts.Name
	if name == "" {
		name = discover.ExperimentName(phosphoDir)
	}

	cfg := config.DefaultConfig()
	cfg.DirOut = "PTM_" + name
	cfg.PhosphoDEADir = relPath(projectDir, phosphoDir)
	cfg.ProteinDEADir = relPath(projectDir, proteinDir)
	cfg.AnnotFile = relPath(projectDir, annotFile)
	cfg.Contrasts = contrasts

	res := &InitResult{
		Config:     cfg,
		ConfigPath: configPath,
		PhosphoDir: phosphoDir,
		ProteinDir: proteinDir,
		AnnotFile:  annotFile,
		Contrasts:  contrasts,
	}

	if opts.DryRun {
		return res, nil
	}

	if err := cfg.Save(configPath); err != nil {
		return nil, err
	}
	res.Written = append(res.Written, config.ConfigFileName)

	written, err := WriteTemplates(projectDir)
	if err != nil {
		return nil, err
	}
	res.Written = append(res.Written, written...)
	return res, nil
}

// Update refreshes the embedded workflow files of an initialized project.
// ptm_config.yaml is required and never rewritten, so a newer tool version
// can replace the Makefile and Snakefile without disturbing the project's
// folder selections and contrasts.
func Update(projectDir string, dryRun bool) ([]string, error) {
	if _, err := os.Stat(filepath.Join(projectDir, config.ConfigFileName)); err != nil {
		return nil, fmt.Errorf("no initialized project in %s: %w", projectDir, err)
	}
	if dryRun {
		return append([]string(nil), templateFiles...), nil
	}
	return WriteTemplates(projectDir)
}

// WriteTemplates copies the embedded workflow files into projectDir,
// overwriting existing copies. The config file is never touched.
func WriteTemplates(projectDir string) ([]string, error) {
	var written []string
	for _, name := range templateFiles {
		data, err := templates.ReadFile("templates/" + name)
		if err != nil {
			return nil, fmt.Errorf("embedded template %s: %w", name, err)
		}
		if err := os.WriteFile(filepath.Join(projectDir, name), data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		written = append(written, name)
	}
	return written, nil
}

// relPath makes path relative to base when possible, mirroring how the
// generated config keeps projects relocatable.
func relPath(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return path
	}
	return rel
}
