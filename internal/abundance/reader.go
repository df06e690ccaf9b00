package abundance

import (
	"database/sql"
	"fmt"

	duckdb "github.com/duckdb/duckdb-go/v2"

	"ptmpipeline/internal/config"
)

// ReadSiteLong loads a site-level long-format parquet table.
func ReadSiteLong(path string, cfg config.AbundanceConfig) ([]Row, error) {
	return readLong(path, cfg.SiteColumn, cfg.ProteinColumn, cfg.SampleColumn, cfg.ValueColumn)
}

// ReadProteinLong loads a protein-level long-format parquet table. Protein
// tables carry no site column; the protein identifier is the entity.
func ReadProteinLong(path string, cfg config.AbundanceConfig) ([]Row, error) {
	return readLong(path, cfg.ProteinColumn, cfg.ProteinColumn, cfg.SampleColumn, cfg.ValueColumn)
}

// readLong queries the parquet file through an in-memory DuckDB instance.
// NULL intensities are missing measurements and are skipped, never imputed.
func readLong(path, entityCol, proteinCol, sampleCol, valueCol string) ([]Row, error) {
	connector, err := duckdb.NewConnector("", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	db := sql.OpenDB(connector)
	defer db.Close()

	query := fmt.Sprintf(
		"SELECT %s, %s, %s, %s FROM read_parquet(?)",
		quoteIdent(entityCol), quoteIdent(proteinCol), quoteIdent(sampleCol), quoteIdent(valueCol),
	)
	rows, err := db.Query(query, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	defer rows.Close()

	var out []Row
	for rows.Next() {
		var entity, protein, sample string
		var value sql.NullFloat64
		if err := rows.Scan(&entity, &protein, &sample, &value); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", path, err)
		}
		if !value.Valid {
			continue
		}
		out = append(out, Row{Entity: entity, Protein: protein, Sample: sample, Value: value.Float64})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return out, nil
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
