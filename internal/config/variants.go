package config

import "fmt"

// Variant identifies one of the three parallel differential analysis flavors
// produced upstream for every PTM dataset.
type Variant string

const (
	// Abundance tests raw PTM-site intensity change (DPA).
	Abundance Variant = "dpa"
	// Usage tests site intensity relative to protein intensity (DPU).
	Usage Variant = "dpu"
	// CorrectedUsage tests protein-corrected site abundance (correct-first DPU).
	CorrectedUsage Variant = "cf"
)

// Variants lists all analysis variants in their canonical processing order.
func Variants() []Variant {
	return []Variant{Abundance, Usage, CorrectedUsage}
}

// ParseVariant converts a user-supplied variant name.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case Abundance, Usage, CorrectedUsage:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown analysis variant %q (expected dpa, dpu or cf)", s)
}

// AnalysisType describes how one variant's raw result table maps onto the
// canonical schema. Instances are built once by AnalysisTypes and never
// mutated; the normalizer, rank builder and writer all consult the same
// table so the three stay in agreement.
type AnalysisType struct {
	Variant Variant

	// Workbook is the expected result workbook filename and Sheet the tab
	// holding the per-site rows.
	Workbook string
	Sheet    string

	// Subdir is the per-variant output directory under dir_out.
	Subdir string

	// Rename maps raw source column names to canonical names. Multiple
	// source names may map to the same canonical name; the first one found
	// in the raw table wins.
	Rename map[string]string

	// Columns is the ordered canonical allow-list. Canonical columns absent
	// from the source are omitted unless listed in Mandatory.
	Columns []string

	// Mandatory is the subset of Columns whose absence is a schema error.
	Mandatory []string

	// StatColumn is the canonical column ranked for enrichment input.
	StatColumn string
}

// Canonical column names shared by all variants.
const (
	ColProtein       = "protein_Id"
	ColSite          = "site"
	ColContrast      = "contrast"
	ColPosition      = "position"
	ColModAA         = "modAA"
	ColWindow        = "SequenceWindow"
	ColProteinLength = "protein_length"
	ColDiff          = "diff"
	ColFDR           = "FDR"
	ColStatistic     = "statistic"
	ColGene          = "gene_name"
	ColDiffProtein   = "diff_protein"
	ColFDRProtein    = "FDR_protein"
	ColStatProtein   = "statistic_protein"
)

func baseRename() map[string]string {
	return map[string]string{
		"protein_Id":     ColProtein,
		"site":           ColSite,
		"contrast":       ColContrast,
		"Position":       ColPosition,
		"modAA":          ColModAA,
		"SequenceWindow": ColWindow,
		"proteinLength":  ColProteinLength,
		"diff.site":      ColDiff,
		"FDR.site":       ColFDR,
		"statistic.site": ColStatistic,
		"IDcolumn":       ColGene,
	}
}

func baseColumns() []string {
	return []string{
		ColProtein, ColSite, ColContrast, ColPosition, ColModAA,
		ColWindow, ColProteinLength, ColDiff, ColFDR, ColStatistic, ColGene,
	}
}

func baseMandatory() []string {
	return []string{ColProtein, ColSite, ColContrast, ColWindow, ColDiff, ColFDR, ColStatistic}
}

// AnalysisTypes builds the immutable per-variant descriptor table. Callers
// must not modify the returned values.
func AnalysisTypes() map[Variant]AnalysisType {
	dpa := AnalysisType{
		Variant:  Abundance,
		Workbook: "Result_DPA.xlsx",
		Sheet:    "DPA",
		Subdir:   "PTM_DPA",
		Rename:   baseRename(),
		Columns: append(baseColumns(),
			ColDiffProtein, ColFDRProtein, ColStatProtein),
		Mandatory:  baseMandatory(),
		StatColumn: ColStatistic,
	}
	dpa.Rename["diff.protein"] = ColDiffProtein
	dpa.Rename["FDR.protein"] = ColFDRProtein
	dpa.Rename["statistic.protein"] = ColStatProtein

	dpu := AnalysisType{
		Variant:    Usage,
		Workbook:   "Result_DPU.xlsx",
		Sheet:      "DPU",
		Subdir:     "PTM_DPU",
		Rename:     baseRename(),
		Columns:    baseColumns(),
		Mandatory:  baseMandatory(),
		StatColumn: ColStatistic,
	}

	cf := AnalysisType{
		Variant:    CorrectedUsage,
		Workbook:   "CorrectFirst_PTM_usage_results.xlsx",
		Sheet:      "CF",
		Subdir:     "PTM_CF_DPU",
		Rename:     baseRename(),
		Columns:    baseColumns(),
		Mandatory:  baseMandatory(),
		StatColumn: ColStatistic,
	}
	// The correct-first workbook has shipped with both suffixed and
	// unsuffixed statistic headers; accept either until upstream settles.
	cf.Rename["statistic"] = ColStatistic
	cf.Rename["diff"] = ColDiff
	cf.Rename["FDR"] = ColFDR

	return map[Variant]AnalysisType{
		Abundance:      dpa,
		Usage:          dpu,
		CorrectedUsage: cf,
	}
}
