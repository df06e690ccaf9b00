// Package xlsxio reads result workbook sheets into frames and writes the
// harmonized tables back out as multi-sheet workbooks.
package xlsxio

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"ptmpipeline/internal/frame"
)

// ReadSheet loads one worksheet into a frame. The first row is the header.
func ReadSheet(path, sheet string) (*frame.Frame, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer wb.Close()

	rows, err := wb.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q from %s: %w", sheet, path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q in %s is empty", sheet, path)
	}

	f, err := frame.FromRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("sheet %q in %s: %w", sheet, path, err)
	}
	return f, nil
}

// SheetNames returns the worksheet names of a workbook.
func SheetNames(path string) ([]string, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer wb.Close()
	return wb.GetSheetList(), nil
}

// Writer accumulates sheets and saves them as one workbook.
type Writer struct {
	wb    *excelize.File
	first bool
}

// NewWriter creates an empty workbook writer.
func NewWriter() *Writer {
	return &Writer{wb: excelize.NewFile(), first: true}
}

// AddFrame appends a sheet holding the frame's header and rows.
func (w *Writer) AddFrame(sheet string, f *frame.Frame) error {
	if err := w.addSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, 0, len(f.Columns()))
	for _, c := range f.Columns() {
		header = append(header, c)
	}
	if err := w.setRow(sheet, 1, header); err != nil {
		return err
	}

	for i := 0; i < f.Len(); i++ {
		row := f.Row(i)
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := w.setRow(sheet, i+2, cells); err != nil {
			return err
		}
	}
	return nil
}

// AddRows appends a sheet from a header and pre-built cell rows. Numeric
// cells should be passed as float64 so spreadsheet consumers see numbers,
// not strings.
func (w *Writer) AddRows(sheet string, header []string, rows [][]interface{}) error {
	if err := w.addSheet(sheet); err != nil {
		return err
	}
	h := make([]interface{}, len(header))
	for i, c := range header {
		h[i] = c
	}
	if err := w.setRow(sheet, 1, h); err != nil {
		return err
	}
	for i, row := range rows {
		if err := w.setRow(sheet, i+2, row); err != nil {
			return err
		}
	}
	return nil
}

// Save writes the workbook to disk. The workbook bytes are streamed to the
// file directly so callers may save under staging names (e.g. *.tmp) that
// excelize's SaveAs extension check would reject.
func (w *Writer) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	if err := w.wb.Write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return w.wb.Close()
}

func (w *Writer) addSheet(sheet string) error {
	if w.first {
		// Reuse the default sheet excelize creates with the workbook.
		if err := w.wb.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
		w.first = false
		return nil
	}
	if _, err := w.wb.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %q: %w", sheet, err)
	}
	return nil
}

func (w *Writer) setRow(sheet string, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := w.wb.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("failed to write row %d of sheet %q: %w", rowNum, sheet, err)
	}
	return nil
}
