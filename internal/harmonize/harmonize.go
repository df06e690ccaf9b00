// Package harmonize drives one full harmonization run: artifact resolution,
// per-variant schema normalization, abundance reconciliation, rank-list
// emission and bundle writing.
package harmonize

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ptmpipeline/internal/abundance"
	"ptmpipeline/internal/bundle"
	"ptmpipeline/internal/config"
	"ptmpipeline/internal/normalize"
	"ptmpipeline/internal/ranks"
	"ptmpipeline/internal/resolve"
	"ptmpipeline/internal/xlsxio"
)

// Output filenames inside dir_out.
const (
	WorkbookName = "harmonized_results.xlsx"
	DatabaseName = "harmonized_results.db"
	RankDirName  = "rank_lists"
)

// Options configures one run.
type Options struct {
	// ProjectDir is the initialized project root; config paths are relative
	// to it.
	ProjectDir string
	Config     *config.Config
	Log        *zap.Logger

	// ToolVersion is recorded in the bundle manifest.
	ToolVersion string

	// StatColumn overrides the per-variant ranking statistic; empty means
	// each variant's configured statistic column.
	StatColumn string
}

// VariantFailure records one variant whose normalization failed. Sibling
// variants are unaffected.
type VariantFailure struct {
	Variant config.Variant
	Err     error
}

// Report summarizes a completed run.
type Report struct {
	RunID        string
	WorkbookPath string
	DatabasePath string
	RankDir      string

	// Rows per successfully standardized variant.
	VariantRows map[config.Variant]int
	Failures    []VariantFailure

	CorrectedSites int
}

// Run executes the harmonization pipeline. Variant normalization failures
// are isolated into the report; input resolution for the abundance tables
// and bundle writing are run-fatal.
func Run(opts Options) (*Report, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	cfg := opts.Config

	if opts.StatColumn != "" {
		if err := ranks.ValidateStatColumn(opts.StatColumn); err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	resolver := resolve.New(log)
	outDir := filepath.Join(opts.ProjectDir, cfg.DirOut)
	sources := make(map[string]string)

	report := &Report{
		RunID:        runID,
		WorkbookPath: filepath.Join(outDir, WorkbookName),
		DatabasePath: filepath.Join(outDir, DatabaseName),
		RankDir:      filepath.Join(outDir, RankDirName),
		VariantRows:  make(map[config.Variant]int),
	}

	// Standardize the three result variants independently.
	types := config.AnalysisTypes()
	results := make(map[config.Variant]*normalize.Result)
	for _, v := range config.Variants() {
		at := types[v]
		res, path, err := processVariant(resolver, outDir, at, log)
		if err != nil {
			log.Warn("variant failed, continuing with siblings",
				zap.String("variant", string(v)), zap.Error(err))
			report.Failures = append(report.Failures, VariantFailure{Variant: v, Err: err})
			continue
		}
		sources[string(v)+"_workbook"] = path
		results[v] = res
		report.VariantRows[v] = len(res.Records)
	}

	// Abundance reconciliation; these inputs are shared by all variants and
	// their absence fails the run.
	siteLong, sitePath, err := readAbundance(resolver, filepath.Join(opts.ProjectDir, cfg.PhosphoDEADir), cfg, abundance.ReadSiteLong)
	if err != nil {
		return nil, err
	}
	sources["site_abundance"] = sitePath

	proteinLong, proteinPath, err := readAbundance(resolver, filepath.Join(opts.ProjectDir, cfg.ProteinDEADir), cfg, abundance.ReadProteinLong)
	if err != nil {
		return nil, err
	}
	sources["protein_abundance"] = proteinPath

	resolveMetadata(resolver, filepath.Join(opts.ProjectDir, cfg.PhosphoDEADir), "site_metadata", sources, log)
	resolveMetadata(resolver, filepath.Join(opts.ProjectDir, cfg.ProteinDEADir), "protein_metadata", sources, log)

	site, protein, corrected, err := abundance.Reconcile(siteLong, proteinLong, cfg.DecoyPrefix, log)
	if err != nil {
		return nil, fmt.Errorf("abundance reconciliation failed: %w", err)
	}
	report.CorrectedSites = len(corrected.Rows)

	// Rank lists for enrichment, per surviving variant.
	for _, v := range config.Variants() {
		res, ok := results[v]
		if !ok {
			continue
		}
		statColumn := types[v].StatColumn
		if opts.StatColumn != "" {
			statColumn = opts.StatColumn
		}
		lists := ranks.Build(res, statColumn)
		if err := ranks.WriteFiles(report.RankDir, v, statColumn, lists); err != nil {
			return nil, err
		}
	}

	b := &bundle.Bundle{
		Results:   results,
		Site:      site,
		Protein:   protein,
		Corrected: corrected,
		Manifest: bundle.Manifest{
			RunID:       runID,
			CreatedAt:   time.Now().UTC(),
			ToolVersion: opts.ToolVersion,
			Sources:     sources,
		},
	}
	if err := bundle.Write(b, report.WorkbookPath, report.DatabasePath); err != nil {
		return nil, err
	}

	log.Info("harmonization complete",
		zap.Int("variants", len(results)),
		zap.Int("variant_failures", len(report.Failures)),
		zap.Int("corrected_sites", report.CorrectedSites))
	return report, nil
}

// processVariant resolves and normalizes one variant's result workbook.
func processVariant(resolver *resolve.Resolver, outDir string, at config.AnalysisType, log *zap.Logger) (*normalize.Result, string, error) {
	path, err := resolver.Resolve(filepath.Join(outDir, at.Subdir), resolve.Request{
		Kind:      resolve.ResultWorkbook,
		Pattern:   "*.xlsx",
		Preferred: at.Workbook,
	})
	if err != nil {
		return nil, "", err
	}

	raw, err := xlsxio.ReadSheet(path, at.Sheet)
	if err != nil {
		return nil, "", err
	}

	res, err := normalize.Normalize(raw, at, log)
	if err != nil {
		return nil, "", err
	}
	return res, path, nil
}

func readAbundance(resolver *resolve.Resolver, deaDir string, cfg *config.Config, read func(string, config.AbundanceConfig) ([]abundance.Row, error)) ([]abundance.Row, string, error) {
	path, err := resolver.Resolve(deaDir, resolve.Request{
		Kind:      resolve.AbundanceTable,
		Pattern:   "*.parquet",
		Preferred: "lfqdata_normalized.parquet",
	})
	if err != nil {
		return nil, "", err
	}
	rows, err := read(path, cfg.Abundance)
	if err != nil {
		return nil, "", err
	}
	return rows, path, nil
}

// resolveMetadata records the lfqdata.yaml companion document when present.
// Its absence is informational, not fatal: the bundle is complete without it.
func resolveMetadata(resolver *resolve.Resolver, deaDir, key string, sources map[string]string, log *zap.Logger) {
	path, err := resolver.Resolve(deaDir, resolve.Request{
		Kind:      resolve.MetadataDocument,
		Pattern:   "*.yaml",
		Preferred: "lfqdata.yaml",
	})
	if err != nil {
		log.Info("metadata document not found", zap.String("artifact", key), zap.Error(err))
		return
	}
	sources[key] = path
}
