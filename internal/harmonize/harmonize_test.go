package harmonize

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/require"

	"ptmpipeline/internal/bundle"
	"ptmpipeline/internal/config"
	"ptmpipeline/internal/xlsxio"
)

const (
	phosphoDEA = "DEA_20260209_WUphospho_STY_vsn"
	proteinDEA = "DEA_20260209_WUtotal_proteome_vsn"
)

func writeParquet(t *testing.T, path, values string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))

	connector, err := duckdb.NewConnector("", nil)
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(`COPY (
		SELECT * FROM (VALUES %s)
		AS t(site, protein_Id, sampleName, transformedIntensity)
	) TO '%s' (FORMAT PARQUET)`, values, path))
	require.NoError(t, err)
}

func writeResultWorkbook(t *testing.T, path, sheet string, header []string, rows [][]interface{}) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	w := xlsxio.NewWriter()
	require.NoError(t, w.AddRows(sheet, header, rows))
	require.NoError(t, w.Save(path))
}

var rawHeader = []string{
	"protein_Id", "site", "contrast", "SequenceWindow", "diff.site", "FDR.site", "statistic.site",
}

func rawRow(protein, site, contrast, window string, stat float64) []interface{} {
	return []interface{}{protein, site, contrast, window, 1.5, 0.01, stat}
}

// setupProject builds an initialized project with all three variant
// workbooks and both abundance tables.
func setupProject(t *testing.T) (string, *config.Config) {
	t.Helper()
	dir := t.TempDir()

	writeParquet(t, filepath.Join(dir, phosphoDEA, "Results_WU_phospho_STY", "lfqdata_normalized.parquet"),
		`('P1~S12', 'P1', 'A', 5.0),
		 ('P1~S12', 'P1', 'B', 6.0),
		 ('REV_P9~S1', 'REV_P9', 'A', 9.0)`)
	writeParquet(t, filepath.Join(dir, proteinDEA, "Results_WU_total_proteome", "lfqdata_normalized.parquet"),
		`('P1', 'P1', 'A', 2.0),
		 ('REV_P9', 'REV_P9', 'A', 1.0)`)

	types := config.AnalysisTypes()
	outDir := filepath.Join(dir, "PTM_test")
	for _, v := range config.Variants() {
		at := types[v]
		writeResultWorkbook(t,
			filepath.Join(outDir, at.Subdir, at.Workbook), at.Sheet,
			rawHeader, [][]interface{}{
				rawRow("P1", "P1~S12", "KO_vs_WT", "AAASAAA", 3.2),
				rawRow("P1", "P1~T44", "KO_vs_WT", "CCCTCCC", -1.1),
			})
	}

	cfg := config.DefaultConfig()
	cfg.DirOut = "PTM_test"
	cfg.PhosphoDEADir = phosphoDEA
	cfg.ProteinDEADir = proteinDEA
	cfg.Contrasts = []string{"KO_vs_WT"}
	return dir, cfg
}

func TestRunEndToEnd(t *testing.T) {
	dir, cfg := setupProject(t)

	report, err := Run(Options{ProjectDir: dir, Config: cfg, ToolVersion: "test"})
	require.NoError(t, err)
	require.Empty(t, report.Failures)
	require.NotEmpty(t, report.RunID)

	for _, v := range config.Variants() {
		require.Equal(t, 2, report.VariantRows[v], "variant %s", v)
	}

	// Corrected abundance: site 5.0/6.0 minus protein 2.0 in sample A only;
	// the decoy site must be gone.
	require.Equal(t, 1, report.CorrectedSites)
	f, err := xlsxio.ReadSheet(report.WorkbookPath, bundle.SheetCorrected)
	require.NoError(t, err)
	require.Equal(t, []string{"site", "A"}, f.Columns())
	require.Equal(t, 1, f.Len())
	require.Equal(t, "3", f.Cell(0, "A"))

	counts, err := bundle.TableCounts(report.DatabasePath)
	require.NoError(t, err)
	require.Equal(t, 2, counts["results_dpa"])
	require.Equal(t, 2, counts["results_cf"])

	m, err := bundle.ReadManifest(report.DatabasePath)
	require.NoError(t, err)
	require.Equal(t, report.RunID, m.RunID)
	require.Contains(t, m.Sources, "site_abundance")
	require.Contains(t, m.Sources, "dpa_workbook")

	// One rank file per contrast per variant plus the window lists.
	for _, name := range []string{
		"dpa_KO_vs_WT.rnk", "dpu_KO_vs_WT.rnk", "cf_KO_vs_WT.rnk",
		"dpa_sequence_windows.txt",
	} {
		_, err := os.Stat(filepath.Join(report.RankDir, name))
		require.NoError(t, err, "missing rank artifact %s", name)
	}

	data, err := os.ReadFile(filepath.Join(report.RankDir, "dpa_KO_vs_WT.rnk"))
	require.NoError(t, err)
	require.Equal(t, "SequenceWindow\tstatistic\nAAASAAA\t3.2\nCCCTCCC\t-1.1\n", string(data))
}

func TestRunIsolatesMalformedVariant(t *testing.T) {
	dir, cfg := setupProject(t)

	// Rewrite the DPU workbook without its statistic column.
	at := config.AnalysisTypes()[config.Usage]
	writeResultWorkbook(t,
		filepath.Join(dir, "PTM_test", at.Subdir, at.Workbook), at.Sheet,
		[]string{"protein_Id", "site", "contrast", "SequenceWindow", "diff.site", "FDR.site"},
		[][]interface{}{{"P1", "P1~S12", "KO_vs_WT", "AAASAAA", 1.5, 0.01}})

	report, err := Run(Options{ProjectDir: dir, Config: cfg, ToolVersion: "test"})
	require.NoError(t, err)

	require.Len(t, report.Failures, 1)
	require.Equal(t, config.Usage, report.Failures[0].Variant)

	// The well-formed variants still reach the bundle.
	counts, err := bundle.TableCounts(report.DatabasePath)
	require.NoError(t, err)
	require.Equal(t, 2, counts["results_dpa"])
	require.Equal(t, 2, counts["results_cf"])
	_, hasDPU := counts["results_dpu"]
	require.False(t, hasDPU)
}

func TestRunFailsWithoutAbundanceTable(t *testing.T) {
	dir, cfg := setupProject(t)
	require.NoError(t, os.RemoveAll(filepath.Join(dir, proteinDEA)))

	_, err := Run(Options{ProjectDir: dir, Config: cfg, ToolVersion: "test"})
	require.Error(t, err)
}

func TestRunRejectsUnknownStatColumn(t *testing.T) {
	opts := Options{
		ProjectDir: t.TempDir(),
		Config:     config.DefaultConfig(),
		StatColumn: "statistic.site",
	}

	_, err := Run(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown ranking statistic")

	_, err = BuildRanks(opts)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown ranking statistic")
}
