package abundance

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	duckdb "github.com/duckdb/duckdb-go/v2"
	"github.com/stretchr/testify/require"

	"ptmpipeline/internal/config"
)

// writeParquet fabricates a long-format fixture through DuckDB itself.
func writeParquet(t *testing.T, path string) {
	t.Helper()
	connector, err := duckdb.NewConnector("", nil)
	require.NoError(t, err)
	db := sql.OpenDB(connector)
	defer db.Close()

	_, err = db.Exec(fmt.Sprintf(`COPY (
		SELECT * FROM (VALUES
			('P1~S12', 'P1', 'sampleA', 5.5),
			('P1~S12', 'P1', 'sampleB', 6.0),
			('P2~T44', 'P2', 'sampleA', NULL)
		) AS t(site, protein_Id, sampleName, transformedIntensity)
	) TO '%s' (FORMAT PARQUET)`, path))
	require.NoError(t, err)
}

func TestReadSiteLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lfqdata_normalized.parquet")
	writeParquet(t, path)

	rows, err := ReadSiteLong(path, config.DefaultConfig().Abundance)
	require.NoError(t, err)

	// The NULL intensity row is a missing measurement, not a zero.
	require.Len(t, rows, 2)
	require.Equal(t, Row{Entity: "P1~S12", Protein: "P1", Sample: "sampleA", Value: 5.5}, rows[0])
	require.Equal(t, "sampleB", rows[1].Sample)
}

func TestReadProteinLong(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lfqdata_normalized.parquet")
	writeParquet(t, path)

	rows, err := ReadProteinLong(path, config.DefaultConfig().Abundance)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Entity and protein coincide at protein level.
	require.Equal(t, rows[0].Entity, rows[0].Protein)
}

func TestReadLongMissingFile(t *testing.T) {
	_, err := ReadSiteLong(filepath.Join(t.TempDir(), "nope.parquet"), config.DefaultConfig().Abundance)
	require.Error(t, err)
}
