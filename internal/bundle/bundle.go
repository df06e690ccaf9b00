// Package bundle assembles the harmonized result tables and serializes them
// as one multi-sheet workbook plus one SQLite database for programmatic
// reuse without re-parsing the workbook.
package bundle

import (
	"math"
	"time"

	"ptmpipeline/internal/abundance"
	"ptmpipeline/internal/config"
	"ptmpipeline/internal/normalize"
)

// Manifest records provenance for one harmonization run.
type Manifest struct {
	RunID       string
	CreatedAt   time.Time
	ToolVersion string
	// Sources maps logical artifact names to the resolved input paths.
	Sources map[string]string
}

// Bundle is the terminal aggregate of one run: up to three standardized
// result tables plus the three abundance matrices. Variants whose
// normalization failed are simply absent from Results.
type Bundle struct {
	Results map[config.Variant]*normalize.Result

	Site      *abundance.Matrix
	Protein   *abundance.Matrix
	Corrected *abundance.Matrix

	Manifest Manifest
}

// Sheet names of the output workbook and table names of the SQLite bundle.
const (
	SheetSite      = "site_abundances"
	SheetProtein   = "protein_abundances"
	SheetCorrected = "corrected_abundances"
)

// ResultSheet returns the workbook sheet / SQL table name for a variant's
// standardized results.
func ResultSheet(v config.Variant) string {
	return "results_" + string(v)
}

// resultRows renders a variant's records as typed cells in canonical column
// order. Missing numerics become nil so both serializers emit real blanks
// instead of NaN text.
func resultRows(res *normalize.Result, at config.AnalysisType) (header []string, rows [][]interface{}) {
	header = at.Columns
	rows = make([][]interface{}, 0, len(res.Records))
	for _, rec := range res.Records {
		row := make([]interface{}, 0, len(header))
		for _, col := range header {
			row = append(row, recordCell(rec, col))
		}
		rows = append(rows, row)
	}
	return header, rows
}

func recordCell(rec normalize.Record, col string) interface{} {
	switch col {
	case config.ColProtein:
		return rec.Protein
	case config.ColSite:
		return rec.Site
	case config.ColContrast:
		return rec.Contrast
	case config.ColPosition:
		return rec.Position
	case config.ColModAA:
		return rec.ModAA
	case config.ColWindow:
		return rec.Window
	case config.ColProteinLength:
		return rec.ProteinLength
	case config.ColDiff:
		return floatCell(rec.Diff)
	case config.ColFDR:
		return floatCell(rec.FDR)
	case config.ColStatistic:
		return floatCell(rec.Statistic)
	case config.ColGene:
		return rec.Gene
	case config.ColDiffProtein:
		return optCell(rec.DiffProtein)
	case config.ColFDRProtein:
		return optCell(rec.FDRProtein)
	case config.ColStatProtein:
		return optCell(rec.StatProtein)
	}
	return nil
}

func floatCell(v float64) interface{} {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func optCell(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// matrixRows renders a wide abundance matrix; absent cells become nil.
func matrixRows(m *abundance.Matrix) (header []string, rows [][]interface{}) {
	header = append([]string{m.Key}, m.Samples...)
	rows = make([][]interface{}, 0, len(m.Rows))
	for _, r := range m.Rows {
		row := make([]interface{}, 0, len(header))
		row = append(row, r.Entity)
		for _, s := range m.Samples {
			if v, ok := r.Values[s]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		rows = append(rows, row)
	}
	return header, rows
}
