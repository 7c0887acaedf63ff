package writer

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/minhlq/saoke/pkg/models"
)

func textRow(cells ...string) models.Row {
	row := make(models.Row, len(cells))
	for i, c := range cells {
		row[i] = models.TextCell(c)
	}
	return row
}

func sampleResult() *models.Result {
	return &models.Result{
		BankID:    "ACB",
		AccountNo: "123456789",
		Preamble: []models.Row{
			textRow("BẢNG SAO KÊ GIAO DỊCH"),
			textRow("Số tài khoản: 123456789"),
		},
		Header: textRow("Ngày hiệu lực", "Số GD", "Nợ", "Có"),
		Rows: []models.Row{
			{models.TextCell("01/01/2024"), models.TextCell("R1"), models.NumberCell(0), models.NumberCell(1000000)},
			{models.TextCell("02/01/2024"), models.TextCell("R2"), models.NumberCell(250000), models.NumberCell(0)},
		},
		MinDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		MaxDate: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
}

func TestWriteRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleResult()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a readable workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want preamble(2)+header+data(2)", len(rows))
	}
	if rows[0][0] != "BẢNG SAO KÊ GIAO DỊCH" {
		t.Errorf("preamble lost: %q", rows[0][0])
	}
	if rows[2][1] != "Số GD" {
		t.Errorf("header lost: %v", rows[2])
	}
	if rows[3][3] != "1000000" {
		t.Errorf("amount cell = %q, want 1000000", rows[3][3])
	}
}

func TestSaveUsesSuggestedFilename(t *testing.T) {
	dir := t.TempDir()
	path, err := Save(dir, sampleResult())
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	want := dir + "/ACB_123456789_01012024to02012024.xlsx"
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
}
