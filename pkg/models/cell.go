package models

import (
	"strconv"
	"strings"
	"time"
)

// CellKind discriminates the value variants a spreadsheet or delimited-text
// reader can produce. Readers resolve the variant once at read time; the rest
// of the engine only ever consumes Cell.
type CellKind int

const (
	CellEmpty CellKind = iota
	CellText
	CellNumber
	CellDate
)

// Cell is one raw value from a source document grid.
type Cell struct {
	Kind   CellKind
	Text   string
	Number float64
	Time   time.Time
}

func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Kind: CellText, Text: s}
}

func NumberCell(f float64) Cell {
	return Cell{Kind: CellNumber, Number: f}
}

func DateCell(t time.Time) Cell {
	return Cell{Kind: CellDate, Time: t}
}

func (c Cell) IsEmpty() bool {
	return c.Kind == CellEmpty || (c.Kind == CellText && strings.TrimSpace(c.Text) == "")
}

// String renders the cell the way it would appear in a flattened text view.
func (c Cell) String() string {
	switch c.Kind {
	case CellText:
		return c.Text
	case CellNumber:
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	case CellDate:
		return c.Time.Format("02/01/2006")
	default:
		return ""
	}
}

// Row is one ordered line of cells from a source document.
type Row []Cell

// Flatten joins the non-empty cells of the row with single spaces.
func (r Row) Flatten() string {
	parts := make([]string, 0, len(r))
	for _, c := range r {
		if !c.IsEmpty() {
			parts = append(parts, c.String())
		}
	}
	return strings.Join(parts, " ")
}

// Cell returns the i-th cell, or an empty cell when the row is shorter.
func (r Row) Cell(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}
