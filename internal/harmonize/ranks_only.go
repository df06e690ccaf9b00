package harmonize

import (
	"path/filepath"

	"go.uber.org/zap"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/ranks"
	"ptmpipeline/internal/resolve"
)

// BuildRanks regenerates the enrichment rank files without touching the
// abundance tables or the bundle, for quick iteration on a different
// ranking statistic.
func BuildRanks(opts Options) (*Report, error) {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	if opts.StatColumn != "" {
		if err := ranks.ValidateStatColumn(opts.StatColumn); err != nil {
			return nil, err
		}
	}

	resolver := resolve.New(log)
	outDir := filepath.Join(opts.ProjectDir, opts.Config.DirOut)

	report := &Report{
		RankDir:     filepath.Join(outDir, RankDirName),
		VariantRows: make(map[config.Variant]int),
	}

	types := config.AnalysisTypes()
	for _, v := range config.Variants() {
		at := types[v]
		res, _, err := processVariant(resolver, outDir, at, log)
		if err != nil {
			log.Warn("variant failed, continuing with siblings",
				zap.String("variant", string(v)), zap.Error(err))
			report.Failures = append(report.Failures, VariantFailure{Variant: v, Err: err})
			continue
		}
		report.VariantRows[v] = len(res.Records)

		statColumn := at.StatColumn
		if opts.StatColumn != "" {
			statColumn = opts.StatColumn
		}
		lists := ranks.Build(res, statColumn)
		if err := ranks.WriteFiles(report.RankDir, v, statColumn, lists); err != nil {
			return nil, err
		}
	}
	return report, nil
}
