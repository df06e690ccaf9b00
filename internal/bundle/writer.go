package bundle

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"ptmpipeline/internal/abundance"
	"ptmpipeline/internal/config"
	"ptmpipeline/internal/xlsxio"
)

// WriteError reports a failed bundle serialization. Neither output artifact
// is left half-written: both are staged to temporary siblings and renamed
// only after every table serialized.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed to write bundle artifact %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Write serializes the bundle as a multi-sheet workbook at workbookPath and
// a SQLite database at dbPath.
func Write(b *Bundle, workbookPath, dbPath string) error {
	if err := os.MkdirAll(filepath.Dir(workbookPath), 0755); err != nil {
		return &WriteError{Path: workbookPath, Err: err}
	}

	tmpWorkbook := workbookPath + ".tmp"
	tmpDB := dbPath + ".tmp"
	// Stale staging files from an interrupted run would make the database
	// bootstrap fail, so clear them up front.
	os.Remove(tmpWorkbook)
	os.Remove(tmpDB)
	cleanup := func() {
		os.Remove(tmpWorkbook)
		os.Remove(tmpDB)
	}

	if err := writeWorkbook(b, tmpWorkbook); err != nil {
		cleanup()
		return &WriteError{Path: workbookPath, Err: err}
	}
	if err := writeDatabase(b, tmpDB); err != nil {
		cleanup()
		return &WriteError{Path: dbPath, Err: err}
	}

	// The two renames must land together or not at all: a new workbook next
	// to a stale database would mix generations. The previous workbook is
	// parked as a .bak sibling and restored if the database rename fails.
	backup := workbookPath + ".bak"
	os.Remove(backup)
	hadPrevious := false
	if _, err := os.Stat(workbookPath); err == nil {
		if err := os.Rename(workbookPath, backup); err != nil {
			cleanup()
			return &WriteError{Path: workbookPath, Err: err}
		}
		hadPrevious = true
	}
	restore := func() {
		os.Remove(workbookPath)
		if hadPrevious {
			os.Rename(backup, workbookPath)
		}
	}

	if err := os.Rename(tmpWorkbook, workbookPath); err != nil {
		restore()
		cleanup()
		return &WriteError{Path: workbookPath, Err: err}
	}
	if err := os.Rename(tmpDB, dbPath); err != nil {
		restore()
		cleanup()
		return &WriteError{Path: dbPath, Err: err}
	}
	os.Remove(backup)
	return nil
}

func writeWorkbook(b *Bundle, path string) error {
	w := xlsxio.NewWriter()
	types := config.AnalysisTypes()

	for _, v := range config.Variants() {
		res, ok := b.Results[v]
		if !ok {
			continue
		}
		header, rows := resultRows(res, types[v])
		if err := w.AddRows(ResultSheet(v), header, rows); err != nil {
			return err
		}
	}

	for _, t := range []struct {
		sheet  string
		matrix *abundance.Matrix
	}{
		{SheetSite, b.Site},
		{SheetProtein, b.Protein},
		{SheetCorrected, b.Corrected},
	} {
		header, rows := matrixRows(t.matrix)
		if err := w.AddRows(t.sheet, header, rows); err != nil {
			return err
		}
	}

	return w.Save(path)
}

func writeDatabase(b *Bundle, path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeManifest(tx, b.Manifest); err != nil {
		return err
	}

	types := config.AnalysisTypes()
	for _, v := range config.Variants() {
		res, ok := b.Results[v]
		if !ok {
			continue
		}
		header, rows := resultRows(res, types[v])
		if err := writeTable(tx, ResultSheet(v), header, numericResultColumns(), rows); err != nil {
			return err
		}
	}

	for _, t := range []struct {
		table  string
		matrix *abundance.Matrix
	}{
		{SheetSite, b.Site},
		{SheetProtein, b.Protein},
		{SheetCorrected, b.Corrected},
	} {
		header, rows := matrixRows(t.matrix)
		numeric := make(map[string]bool, len(t.matrix.Samples))
		for _, s := range t.matrix.Samples {
			numeric[s] = true
		}
		if err := writeTable(tx, t.table, header, numeric, rows); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func writeManifest(tx *sql.Tx, m Manifest) error {
	const schema = `
	CREATE TABLE manifest (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	if _, err := tx.Exec(schema); err != nil {
		return fmt.Errorf("failed to create manifest table: %w", err)
	}

	entries := map[string]string{
		"run_id":       m.RunID,
		"created_at":   m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		"tool_version": m.ToolVersion,
	}
	keys := make([]string, 0, len(m.Sources))
	for k := range m.Sources {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		entries["source."+k] = m.Sources[k]
	}

	sorted := make([]string, 0, len(entries))
	for k := range entries {
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)
	for _, k := range sorted {
		if _, err := tx.Exec("INSERT INTO manifest (key, value) VALUES (?, ?)", k, entries[k]); err != nil {
			return fmt.Errorf("failed to write manifest entry %q: %w", k, err)
		}
	}
	return nil
}

func writeTable(tx *sql.Tx, table string, header []string, numeric map[string]bool, rows [][]interface{}) error {
	cols := make([]string, len(header))
	for i, c := range header {
		kind := "TEXT"
		if numeric[c] {
			kind = "REAL"
		}
		cols[i] = fmt.Sprintf("%s %s", quoteIdent(c), kind)
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
	if _, err := tx.Exec(create); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table, err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(header)), ", ")
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(table), placeholders))
	if err != nil {
		return fmt.Errorf("failed to prepare insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(row...); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}
	return nil
}

// numericResultColumns lists canonical result columns stored as REAL.
func numericResultColumns() map[string]bool {
	return map[string]bool{
		config.ColPosition:      true,
		config.ColProteinLength: true,
		config.ColDiff:          true,
		config.ColFDR:           true,
		config.ColStatistic:     true,
		config.ColDiffProtein:   true,
		config.ColFDRProtein:    true,
		config.ColStatProtein:   true,
	}
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
