package bundle

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ReadManifest loads the provenance manifest of a persisted bundle.
func ReadManifest(dbPath string) (Manifest, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to open bundle %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT key, value FROM manifest")
	if err != nil {
		return Manifest{}, fmt.Errorf("failed to read manifest from %s: %w", dbPath, err)
	}
	defer rows.Close()

	m := Manifest{Sources: make(map[string]string)}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return Manifest{}, err
		}
		switch {
		case key == "run_id":
			m.RunID = value
		case key == "created_at":
			m.CreatedAt, _ = time.Parse("2006-01-02T15:04:05Z", value)
		case key == "tool_version":
			m.ToolVersion = value
		case strings.HasPrefix(key, "source."):
			m.Sources[strings.TrimPrefix(key, "source.")] = value
		}
	}
	return m, rows.Err()
}

// TableCounts returns the row count of every table in a persisted bundle,
// manifest included.
func TableCounts(dbPath string) (map[string]int, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundle %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type = 'table'")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(tables))
	for _, t := range tables {
		var n int
		if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(t))).Scan(&n); err != nil {
			return nil, err
		}
		counts[t] = n
	}
	return counts, nil
}
