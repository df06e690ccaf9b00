package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	cfg := DefaultConfig()
	cfg.DirOut = "PTM_SHP2_vsn"
	cfg.PhosphoDEADir = "DEA_20260109_WUphospho_SHP2_vsn"
	cfg.ProteinDEADir = "DEA_20260109_WUtotal_SHP2_vsn"
	cfg.AnnotFile = "DEA_20260109_WUphospho_SHP2_vsn/Inputs_x/e_annot_1.tsv"
	cfg.Contrasts = []string{"TreatA_vs_Ctrl", "TreatB_vs_Ctrl"}

	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	assert.Error(t, err)
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("dir_out: PTM_x\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "PTM_x", cfg.DirOut)
	assert.Equal(t, 0.25, cfg.FDR)
	assert.Equal(t, "REV_", cfg.DecoyPrefix)
	assert.Equal(t, "transformedIntensity", cfg.Abundance.ValueColumn)
}

func TestEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, DefaultConfig().Save(path))

	t.Setenv("PTM_DECOY_PREFIX", "DECOY_")
	t.Setenv("PTM_DIR_OUT", "PTM_elsewhere")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "DECOY_", cfg.DecoyPrefix)
	assert.Equal(t, "PTM_elsewhere", cfg.DirOut)
}

func TestParseVariant(t *testing.T) {
	for _, v := range Variants() {
		got, err := ParseVariant(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	_, err := ParseVariant("dea")
	assert.Error(t, err)
}

func TestAnalysisTypesTable(t *testing.T) {
	types := AnalysisTypes()
	require.Len(t, types, len(Variants()))

	for v, at := range types {
		assert.Equal(t, v, at.Variant)
		assert.NotEmpty(t, at.Workbook)
		assert.NotEmpty(t, at.Sheet)
		assert.NotEmpty(t, at.Subdir)
		assert.Equal(t, ColStatistic, at.StatColumn)

		// Mandatory columns must be a subset of the allow-list.
		cols := make(map[string]bool, len(at.Columns))
		for _, c := range at.Columns {
			cols[c] = true
		}
		for _, m := range at.Mandatory {
			assert.True(t, cols[m], "%s: mandatory column %s not in Columns", v, m)
		}

		// Every rename target must land on an allowed column.
		for src, dst := range at.Rename {
			assert.True(t, cols[dst], "%s: rename %s -> %s targets unknown column", v, src, dst)
		}
	}

	assert.Contains(t, types[Abundance].Columns, ColStatProtein)
	assert.NotContains(t, types[Usage].Columns, ColStatProtein)

	// The correct-first sheet accepts unsuffixed statistic headers.
	assert.Equal(t, ColStatistic, types[CorrectedUsage].Rename["statistic"])
	assert.Equal(t, ColStatistic, types[CorrectedUsage].Rename["statistic.site"])
}

func TestAnalysisTypesIndependentCopies(t *testing.T) {
	a := AnalysisTypes()
	a[Usage].Rename["statistic.site"] = "tampered"

	b := AnalysisTypes()
	assert.Equal(t, ColStatistic, b[Usage].Rename["statistic.site"])
}
