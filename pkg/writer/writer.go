// Package writer renders a merge result into a spreadsheet artifact:
// metadata preamble verbatim, then the header row, then the sorted
// normalized rows.
package writer

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/minhlq/saoke/pkg/models"
)

// Workbook builds the output workbook for one merged group.
func Workbook(res *models.Result) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	line := 1
	for _, row := range res.Preamble {
		if err := writeRow(f, sheet, line, row); err != nil {
			return nil, err
		}
		line++
	}
	if err := writeRow(f, sheet, line, res.Header); err != nil {
		return nil, err
	}
	line++
	for _, row := range res.Rows {
		if err := writeRow(f, sheet, line, row); err != nil {
			return nil, err
		}
		line++
	}
	return f, nil
}

// Write renders the workbook to w.
func Write(w io.Writer, res *models.Result) error {
	f, err := Workbook(res)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Save renders the workbook to disk under the result's suggested filename
// inside dir and returns the full path.
func Save(dir string, res *models.Result) (string, error) {
	f, err := Workbook(res)
	if err != nil {
		return "", err
	}
	defer f.Close()
	path := filepath.Join(dir, res.Filename())
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func writeRow(f *excelize.File, sheet string, line int, row models.Row) error {
	values := make([]interface{}, len(row))
	for i, c := range row {
		switch c.Kind {
		case models.CellNumber:
			values[i] = c.Number
		case models.CellDate:
			values[i] = c.Time
		default:
			values[i] = c.Text
		}
	}
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", line, err)
	}
	return nil
}
