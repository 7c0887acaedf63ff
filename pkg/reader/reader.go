// Package reader decodes uploaded statement files into grids of cells. It
// is the only place that touches file bytes; the engine downstream consumes
// cells and never sees encodings or file formats.
package reader

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/minhlq/saoke/pkg/models"
)

// maxRows caps how much of a workbook is read. No supported bank exports
// statements anywhere near this long per file.
const maxRows = 10000

// Read decodes one uploaded file into a document grid. The format is picked
// from the filename extension the way the sources name their exports:
// delimited text, legacy binary workbook, or modern workbook.
func Read(data []byte, filename string) (models.Document, error) {
	var rows []models.Row
	var err error

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".txt":
		rows, err = readDelimited(data)
	case ".xls":
		rows, err = readLegacyWorkbook(data)
	default:
		rows, err = readWorkbook(data)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return models.Document{Filename: filename, Rows: rows}, nil
}

func readWorkbook(data []byte) ([]models.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("error opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in workbook")
	}
	raw, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("error reading sheet: %w", err)
	}

	rows := make([]models.Row, 0, len(raw))
	for _, r := range raw {
		row := make(models.Row, len(r))
		for i, cell := range r {
			row[i] = models.TextCell(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readLegacyWorkbook(data []byte) ([]models.Row, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "cp1252")
	if err != nil {
		return nil, fmt.Errorf("error opening legacy workbook: %w", err)
	}
	raw := workbook.ReadAllCells(maxRows)
	if len(raw) == 0 {
		return nil, fmt.Errorf("no data found in sheet")
	}

	rows := make([]models.Row, 0, len(raw))
	for _, r := range raw {
		row := make(models.Row, len(r))
		for i, cell := range r {
			row[i] = models.TextCell(cell)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// readDelimited handles the bank CSV dialects: either `;` or `,` separated,
// quoted fields, optional BOM, and rows of uneven width. The separator is
// decided per line because some exports mix a `,`-separated metadata block
// with a `;`-separated table.
func readDelimited(data []byte) ([]models.Row, error) {
	text := decodeText(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var rows []models.Row
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			rows = append(rows, models.Row{})
			continue
		}
		sep := byte(',')
		if strings.Count(line, ";") > strings.Count(line, ",") {
			sep = ';'
		}
		fields := splitQuoted(line, sep)
		row := make(models.Row, len(fields))
		for i, f := range fields {
			row[i] = models.TextCell(strings.TrimSpace(f))
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	return rows, nil
}

// splitQuoted splits on sep outside double quotes. Quote characters are
// consumed, not kept.
func splitQuoted(line string, sep byte) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '"':
			inQuote = !inQuote
		case line[i] == sep && !inQuote:
			fields = append(fields, cur.String())
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	fields = append(fields, cur.String())
	return fields
}

// decodeText strips a UTF-8 BOM and falls back to Windows-1252 when the
// bytes are not valid UTF-8; older bank portals still serve that encoding.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
