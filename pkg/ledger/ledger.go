// Package ledger implements the bookkeeping collaborator on top of an
// accounting workbook: one sheet of recorded transactions per ledger id, a
// balance sheet, and per-project routing sheets. The merge engine itself
// never touches this package; only the cutover step talks to it.
package ledger

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/xuri/excelize/v2"

	"github.com/minhlq/saoke/pkg/models"
)

const balanceSheet = "Balances"

var ledgerHeader = []interface{}{"Date", "Description", "Debit", "Credit", "Balance", "Reference"}

// Workbook is a cutover.Ledger backed by a spreadsheet file. Writes stay in
// memory until Save; callers serialize access, there is no locking here.
type Workbook struct {
	path   string
	file   *excelize.File
	logger *log.Logger
}

// Open loads the workbook at path, creating a fresh one when the file does
// not exist yet.
func Open(path string, logger *log.Logger) (*Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if _, err := f.NewSheet(balanceSheet); err != nil {
			return nil, fmt.Errorf("failed to create balance sheet: %w", err)
		}
		logger.Info("creating new ledger workbook", "path", path)
		return &Workbook{path: path, file: f, logger: logger}, nil
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger workbook: %w", err)
	}
	return &Workbook{path: path, file: f, logger: logger}, nil
}

// Save writes the workbook back to disk.
func (w *Workbook) Save() error {
	if err := w.file.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save ledger workbook: %w", err)
	}
	return nil
}

// Close releases the underlying file without saving.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// LastReference returns the reference of the bottom row of the ledger
// sheet, or "" when the ledger has no history.
func (w *Workbook) LastReference(ledgerID string) (string, error) {
	rows, err := w.sheetRows(ledgerID)
	if err != nil || len(rows) < 2 {
		return "", err
	}
	last := rows[len(rows)-1]
	if len(last) < 6 {
		return "", nil
	}
	return last[5], nil
}

// RecordedBalance reads the balance of record for the ledger id.
func (w *Workbook) RecordedBalance(ledgerID string) (int64, error) {
	rows, err := w.sheetRowsNamed(balanceSheet)
	if err != nil {
		return 0, err
	}
	for _, row := range rows {
		if len(row) >= 2 && row[0] == ledgerID {
			v, err := strconv.ParseInt(row[1], 10, 64)
			if err != nil {
				return 0, fmt.Errorf("malformed balance for %s: %w", ledgerID, err)
			}
			return v, nil
		}
	}
	return 0, nil
}

// AppendTransaction adds one recorded transaction to the ledger sheet,
// creating the sheet with its header on first use.
func (w *Workbook) AppendTransaction(ledgerID string, tx models.Transaction) error {
	line, err := w.nextLine(ledgerID, ledgerHeader)
	if err != nil {
		return err
	}
	row := []interface{}{
		tx.Date.Format("02/01/2006"), tx.Description,
		tx.Debit, tx.Credit, tx.Balance, tx.Reference,
	}
	return w.setRow(ledgerID, line, row)
}

// AdjustBalance applies a signed delta to the balance of record.
func (w *Workbook) AdjustBalance(ledgerID string, delta int64) error {
	current, err := w.RecordedBalance(ledgerID)
	if err != nil {
		return err
	}
	if err := w.ensureSheet(balanceSheet); err != nil {
		return err
	}
	rows, err := w.sheetRowsNamed(balanceSheet)
	if err != nil {
		return err
	}
	line := len(rows) + 1
	for i, row := range rows {
		if len(row) >= 1 && row[0] == ledgerID {
			line = i + 1
			break
		}
	}
	return w.setRow(balanceSheet, line, []interface{}{ledgerID, current + delta})
}

// AppendToProjectLedger routes one line into the project's own sheet.
func (w *Workbook) AppendToProjectLedger(projectID string, date time.Time, description string, signedAmount int64) error {
	sheet := "prj_" + projectID
	line, err := w.nextLine(sheet, []interface{}{"Date", "Description", "Amount"})
	if err != nil {
		return err
	}
	return w.setRow(sheet, line, []interface{}{date.Format("02/01/2006"), description, signedAmount})
}

func (w *Workbook) sheetRows(ledgerID string) ([][]string, error) {
	return w.sheetRowsNamed(ledgerID)
}

func (w *Workbook) sheetRowsNamed(sheet string) ([][]string, error) {
	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return nil, nil
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (w *Workbook) ensureSheet(sheet string) error {
	idx, err := w.file.GetSheetIndex(sheet)
	if err == nil && idx >= 0 {
		return nil
	}
	if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	return nil
}

// nextLine ensures the sheet exists with its header row and returns the
// first free line.
func (w *Workbook) nextLine(sheet string, header []interface{}) (int, error) {
	idx, err := w.file.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		if _, err := w.file.NewSheet(sheet); err != nil {
			return 0, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if err := w.setRow(sheet, 1, header); err != nil {
			return 0, err
		}
		return 2, nil
	}
	rows, err := w.file.GetRows(sheet)
	if err != nil {
		return 0, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return len(rows) + 1, nil
}

func (w *Workbook) setRow(sheet string, line int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := w.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, line, err)
	}
	return nil
}
