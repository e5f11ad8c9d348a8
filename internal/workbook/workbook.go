// Package workbook reads and writes named tabular sheets inside one .xlsx
// file. Writes replace only the named sheets; every other sheet in the file
// is preserved untouched. Callers are expected to hold the workbook lock
// (internal/flock) around any write.
package workbook

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
)

// Sheet is one named tab: a header row plus data rows. Cells written as
// float64 or int become numeric cells; everything else is written as text.
type Sheet struct {
	Columns []string
	Rows    [][]any
}

// File wraps one workbook on disk.
type File struct {
	path string
}

// New returns a File for the workbook at path. The file may not exist yet;
// the first WriteSheets creates it.
func New(path string) *File {
	return &File{path: path}
}

// Path returns the workbook location on disk.
func (f *File) Path() string { return f.path }

// Exists reports whether the workbook file is present.
func (f *File) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// ReadSheets returns the named sheets that exist in the workbook. Names
// absent from the file are omitted from the result, not an error. Cells come
// back as strings, the way Excel's shared-string table stores them.
func (f *File) ReadSheets(names ...string) (map[string]Sheet, error) {
	wb, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", f.path, err)
	}
	defer wb.Close()

	out := make(map[string]Sheet, len(names))
	for _, name := range names {
		if idx, _ := wb.GetSheetIndex(name); idx < 0 {
			continue
		}
		rows, err := wb.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		var sheet Sheet
		if len(rows) > 0 {
			sheet.Columns = rows[0]
			for _, row := range rows[1:] {
				cells := make([]any, len(row))
				for i, c := range row {
					cells[i] = c
				}
				sheet.Rows = append(sheet.Rows, cells)
			}
		}
		out[name] = sheet
	}
	return out, nil
}

// WriteSheets replaces the given sheets in the workbook, creating the file
// when it does not exist. The underlying writer cannot overwrite a sheet in
// place, so an existing sheet is rebuilt under a scratch name and swapped in
// once the old one is removed; the workbook therefore never loses its last
// visible sheet mid-rewrite.
func (f *File) WriteSheets(sheets map[string]Sheet) error {
	if len(sheets) == 0 {
		return nil
	}

	if !f.Exists() {
		return f.createFresh(sheets)
	}

	wb, err := excelize.OpenFile(f.path)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", f.path, err)
	}
	defer wb.Close()

	for name, sheet := range sheets {
		if idx, _ := wb.GetSheetIndex(name); idx < 0 {
			if _, err := wb.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %q: %w", name, err)
			}
			if err := fillSheet(wb, name, sheet); err != nil {
				return err
			}
			continue
		}

		// excelize sheet names are capped at 31 chars, so the scratch name
		// trims the original before prefixing.
		scratch := "~" + name
		if len(scratch) > 31 {
			scratch = scratch[:31]
		}
		if _, err := wb.NewSheet(scratch); err != nil {
			return fmt.Errorf("create scratch sheet for %q: %w", name, err)
		}
		if err := fillSheet(wb, scratch, sheet); err != nil {
			return err
		}
		if err := wb.DeleteSheet(name); err != nil {
			return fmt.Errorf("remove sheet %q: %w", name, err)
		}
		if err := wb.SetSheetName(scratch, name); err != nil {
			return fmt.Errorf("rename scratch sheet to %q: %w", name, err)
		}
	}

	if err := wb.Save(); err != nil {
		return fmt.Errorf("save workbook %s: %w", f.path, err)
	}
	return nil
}

// createFresh writes a brand-new workbook containing only the given sheets.
func (f *File) createFresh(sheets map[string]Sheet) error {
	wb := excelize.NewFile()
	defer wb.Close()

	for name, sheet := range sheets {
		if idx, _ := wb.GetSheetIndex(name); idx < 0 {
			if _, err := wb.NewSheet(name); err != nil {
				return fmt.Errorf("create sheet %q: %w", name, err)
			}
		}
		if err := fillSheet(wb, name, sheet); err != nil {
			return err
		}
	}

	// Drop excelize's default sheet unless the caller asked for it.
	const defaultSheet = "Sheet1"
	if _, ok := sheets[defaultSheet]; !ok {
		if err := wb.DeleteSheet(defaultSheet); err != nil {
			return fmt.Errorf("remove default sheet: %w", err)
		}
	}

	if err := wb.SaveAs(f.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", f.path, err)
	}
	return nil
}

func fillSheet(wb *excelize.File, name string, sheet Sheet) error {
	header := make([]any, len(sheet.Columns))
	for i, c := range sheet.Columns {
		header[i] = c
	}
	if err := wb.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("write header of %q: %w", name, err)
	}
	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := wb.SetSheetRow(name, cell, &r); err != nil {
			return fmt.Errorf("write row %d of %q: %w", i+2, name, err)
		}
	}
	return nil
}
