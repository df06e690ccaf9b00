// Package normalize maps the three variant-specific raw result schemas onto
// the one canonical schema, producing typed records so later stages never
// need defensive column lookups.
package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"ptmpipeline/internal/config"
	"ptmpipeline/internal/frame"
)

// SchemaError reports mandatory canonical columns absent from a raw table
// after rename mapping.
type SchemaError struct {
	Variant config.Variant
	Sheet   string
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("variant %s: sheet %q is missing mandatory columns %s",
		e.Variant, e.Sheet, strings.Join(e.Missing, ", "))
}

// Record is one per-site row in canonical form. The protein-level triple is
// populated for the abundance variant only; the usage variants legitimately
// lack it.
type Record struct {
	Protein       string
	Site          string
	Contrast      string
	Position      int
	ModAA         string
	Window        string
	ProteinLength int
	Diff          float64
	FDR           float64
	Statistic     float64
	Gene          string

	DiffProtein *float64
	FDRProtein  *float64
	StatProtein *float64
}

// Stat returns the named canonical statistic of the record, used by the rank
// builder to stay column-driven without re-reading raw tables.
func (r Record) Stat(column string) (float64, bool) {
	switch column {
	case config.ColStatistic:
		return r.Statistic, !math.IsNaN(r.Statistic)
	case config.ColDiff:
		return r.Diff, !math.IsNaN(r.Diff)
	case config.ColFDR:
		return r.FDR, !math.IsNaN(r.FDR)
	case config.ColStatProtein:
		if r.StatProtein == nil {
			return 0, false
		}
		return *r.StatProtein, true
	}
	return 0, false
}

// Result is one variant's standardized table.
type Result struct {
	Variant config.Variant
	Records []Record

	// Frame holds the same rows in canonical column order for serialization.
	Frame *frame.Frame

	// DroppedRows counts rows discarded for missing identity cells,
	// DedupedRows rows discarded as duplicate (protein, site, contrast) keys.
	DroppedRows int
	DedupedRows int
}

// Normalize converts a raw result sheet into the canonical schema described
// by the variant's analysis type. Mandatory columns missing after renaming
// are a SchemaError; optional allow-listed columns are silently omitted.
func Normalize(raw *frame.Frame, at config.AnalysisType, log *zap.Logger) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}

	renamed := raw.Rename(at.Rename)
	if missing := renamed.Missing(at.Mandatory); len(missing) > 0 {
		return nil, &SchemaError{Variant: at.Variant, Sheet: at.Sheet, Missing: missing}
	}
	projected := renamed.Select(at.Columns)

	res := &Result{Variant: at.Variant, Frame: frame.New(projected.Columns()...)}
	seen := make(map[[3]string]bool, projected.Len())

	for i := 0; i < projected.Len(); i++ {
		rec, ok := parseRecord(projected, i)
		if !ok {
			res.DroppedRows++
			continue
		}
		key := [3]string{rec.Protein, rec.Site, rec.Contrast}
		if seen[key] {
			res.DedupedRows++
			continue
		}
		seen[key] = true
		res.Records = append(res.Records, rec)
		res.Frame.Append(projected.Row(i))
	}

	if res.DroppedRows > 0 || res.DedupedRows > 0 {
		log.Info("normalized with discarded rows",
			zap.String("variant", string(at.Variant)),
			zap.Int("kept", len(res.Records)),
			zap.Int("dropped", res.DroppedRows),
			zap.Int("deduplicated", res.DedupedRows))
	}
	return res, nil
}

// parseRecord converts one projected row; ok is false when the row lacks its
// identity cells and cannot be keyed. Statistic cells may legitimately be NA
// (sites absent from a contrast) and are kept as NaN; the rank builder and
// report layer decide what to do with them.
func parseRecord(f *frame.Frame, i int) (Record, bool) {
	rec := Record{
		Protein:  strings.TrimSpace(f.Cell(i, config.ColProtein)),
		Site:     strings.TrimSpace(f.Cell(i, config.ColSite)),
		Contrast: strings.TrimSpace(f.Cell(i, config.ColContrast)),
		ModAA:    strings.TrimSpace(f.Cell(i, config.ColModAA)),
		Window:   strings.TrimSpace(f.Cell(i, config.ColWindow)),
		Gene:     strings.TrimSpace(f.Cell(i, config.ColGene)),
	}
	if rec.Protein == "" || rec.Site == "" || rec.Contrast == "" {
		return Record{}, false
	}

	rec.Diff, _ = parseFloat(f.Cell(i, config.ColDiff))
	rec.FDR, _ = parseFloat(f.Cell(i, config.ColFDR))
	rec.Statistic, _ = parseFloat(f.Cell(i, config.ColStatistic))

	rec.Position = parseInt(f.Cell(i, config.ColPosition))
	rec.ProteinLength = parseInt(f.Cell(i, config.ColProteinLength))
	rec.DiffProtein = parseOptFloat(f.Cell(i, config.ColDiffProtein))
	rec.FDRProtein = parseOptFloat(f.Cell(i, config.ColFDRProtein))
	rec.StatProtein = parseOptFloat(f.Cell(i, config.ColStatProtein))

	return rec, true
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "NaN") {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false
	}
	return v, true
}

func parseOptFloat(s string) *float64 {
	if v, ok := parseFloat(s); ok {
		return &v
	}
	return nil
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Workbook readers render integers as "12" or "12.0" depending on cell
	// formatting.
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		return int(v)
	}
	return 0
}
