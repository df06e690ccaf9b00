package bundle

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ptmpipeline/internal/abundance"
	"ptmpipeline/internal/config"
	"ptmpipeline/internal/normalize"
	"ptmpipeline/internal/xlsxio"
)

func testBundle() *Bundle {
	stat := 0.8
	return &Bundle{
		Results: map[config.Variant]*normalize.Result{
			config.Abundance: {
				Variant: config.Abundance,
				Records: []normalize.Record{
					{
						Protein: "P1", Site: "P1~S12", Contrast: "KO_vs_WT",
						Position: 12, ModAA: "S", Window: "AAASAAA",
						ProteinLength: 440, Diff: 1.5, FDR: 0.01, Statistic: 3.2,
						Gene: "GENE1", StatProtein: &stat,
					},
				},
			},
			config.Usage: {
				Variant: config.Usage,
				Records: []normalize.Record{
					{
						Protein: "P1", Site: "P1~S12", Contrast: "KO_vs_WT",
						Window: "AAASAAA", Diff: 0.5, FDR: 0.2, Statistic: 1.1,
					},
				},
			},
		},
		Site: &abundance.Matrix{
			Key: "site", Samples: []string{"A", "B"},
			Rows: []abundance.MatrixRow{
				{Entity: "P1~S12", Values: map[string]float64{"A": 5.0, "B": 6.0}},
			},
		},
		Protein: &abundance.Matrix{
			Key: "protein_Id", Samples: []string{"A"},
			Rows: []abundance.MatrixRow{
				{Entity: "P1", Values: map[string]float64{"A": 2.0}},
			},
		},
		Corrected: &abundance.Matrix{
			Key: "site", Samples: []string{"A"},
			Rows: []abundance.MatrixRow{
				{Entity: "P1~S12", Values: map[string]float64{"A": 3.0}},
			},
		},
		Manifest: Manifest{
			RunID:       "0e3f5b52-8a4e-4c5a-9a63-1f2d3c4b5a69",
			CreatedAt:   time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC),
			ToolVersion: "0.3.0",
			Sources: map[string]string{
				"dpa_workbook": "/data/Result_DPA.xlsx",
			},
		},
	}
}

func TestWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	workbook := filepath.Join(dir, "harmonized.xlsx")
	dbPath := filepath.Join(dir, "harmonized.db")

	require.NoError(t, Write(testBundle(), workbook, dbPath))

	// No staging files may survive a successful write.
	for _, tmp := range []string{workbook + ".tmp", dbPath + ".tmp"} {
		if _, err := os.Stat(tmp); !os.IsNotExist(err) {
			t.Errorf("staging file %s left behind", tmp)
		}
	}

	names, err := xlsxio.SheetNames(workbook)
	require.NoError(t, err)
	require.Equal(t, []string{
		"results_dpa", "results_dpu",
		SheetSite, SheetProtein, SheetCorrected,
	}, names)

	f, err := xlsxio.ReadSheet(workbook, SheetCorrected)
	require.NoError(t, err)
	require.Equal(t, []string{"site", "A"}, f.Columns())
	require.Equal(t, "3", f.Cell(0, "A"))

	counts, err := TableCounts(dbPath)
	require.NoError(t, err)
	require.Equal(t, 1, counts["results_dpa"])
	require.Equal(t, 1, counts["results_dpu"])
	require.Equal(t, 1, counts[SheetSite])
	require.Equal(t, 1, counts[SheetCorrected])
	_, hasCF := counts["results_cf"]
	require.False(t, hasCF, "absent variant must not produce a table")

	m, err := ReadManifest(dbPath)
	require.NoError(t, err)
	require.Equal(t, "0e3f5b52-8a4e-4c5a-9a63-1f2d3c4b5a69", m.RunID)
	require.Equal(t, "0.3.0", m.ToolVersion)
	require.Equal(t, "/data/Result_DPA.xlsx", m.Sources["dpa_workbook"])
}

func TestWriteKeepsPreviousGenerationWhenDatabaseRenameFails(t *testing.T) {
	dir := t.TempDir()
	workbook := filepath.Join(dir, "harmonized.xlsx")
	dbPath := filepath.Join(dir, "harmonized.db")

	require.NoError(t, Write(testBundle(), workbook, dbPath))
	previous, err := os.ReadFile(workbook)
	require.NoError(t, err)

	// Make the database rename fail: its target becomes a non-empty directory.
	require.NoError(t, os.Remove(dbPath))
	require.NoError(t, os.MkdirAll(filepath.Join(dbPath, "blocker"), 0755))

	err = Write(testBundle(), workbook, dbPath)
	require.Error(t, err)

	// The previous workbook must be back in place, not the new generation.
	restored, err := os.ReadFile(workbook)
	require.NoError(t, err)
	require.Equal(t, previous, restored)

	for _, stale := range []string{workbook + ".tmp", dbPath + ".tmp", workbook + ".bak"} {
		if _, err := os.Stat(stale); !os.IsNotExist(err) {
			t.Errorf("staging file %s left behind", stale)
		}
	}
}

func TestWriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	workbook := filepath.Join(dir, "harmonized.xlsx")
	dbPath := filepath.Join(dir, "harmonized.db")

	require.NoError(t, Write(testBundle(), workbook, dbPath))
	require.NoError(t, Write(testBundle(), workbook, dbPath))

	counts, err := TableCounts(dbPath)
	require.NoError(t, err)
	require.Equal(t, 1, counts["results_dpa"], "rerun must overwrite, not append")
}
