package xlsxio

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"ptmpipeline/internal/frame"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	f := frame.New("site", "contrast", "statistic")
	f.Append([]string{"P1~S12", "KO_vs_WT", "2.5"})
	f.Append([]string{"P2~T44", "KO_vs_WT", "-1.25"})

	w := NewWriter()
	require.NoError(t, w.AddFrame("DPA", f))
	require.NoError(t, w.AddRows("abundances", []string{"site", "A"}, [][]interface{}{
		{"P1~S12", 5.5},
	}))
	require.NoError(t, w.Save(path))

	names, err := SheetNames(path)
	require.NoError(t, err)
	require.Equal(t, []string{"DPA", "abundances"}, names)

	got, err := ReadSheet(path, "DPA")
	require.NoError(t, err)
	if diff := cmp.Diff(f.Columns(), got.Columns()); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 2, got.Len())
	require.Equal(t, "-1.25", got.Cell(1, "statistic"))
}

func TestReadSheetMissing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.xlsx")

	w := NewWriter()
	require.NoError(t, w.AddFrame("DPA", frame.New("site")))
	require.NoError(t, w.Save(path))

	_, err := ReadSheet(path, "DPU")
	require.Error(t, err)
}
