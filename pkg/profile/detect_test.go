package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/minhlq/saoke/pkg/models"
)

func textRow(cells ...string) models.Row {
	row := make(models.Row, len(cells))
	for i, c := range cells {
		row[i] = models.TextCell(c)
	}
	return row
}

func TestDetect(t *testing.T) {
	set := Builtin()
	cases := []struct {
		name string
		rows []models.Row
		want string
	}{
		{
			name: "acb marker",
			rows: []models.Row{textRow("BẢNG SAO KÊ GIAO DỊCH"), textRow("Số tài khoản: 123456789")},
			want: "ACB",
		},
		{
			name: "vcb english marker",
			rows: []models.Row{textRow("STATEMENT OF ACCOUNT"), textRow("Account number", "987654321")},
			want: "VCB",
		},
		{
			name: "tcb needs both markers",
			rows: []models.Row{textRow("So but toan", "Ngay giao dich")},
			want: "TCB",
		},
		{
			name: "vietinbank efast",
			rows: []models.Row{textRow("eFAST corporate banking")},
			want: "VTB",
		},
		{
			name: "mb",
			rows: []models.Row{textRow("MB BANK - MILITARY COMMERCIAL JOINT STOCK BANK")},
			want: "MB",
		},
	}
	for _, c := range cases {
		p := set.Detect(c.rows)
		if p == nil {
			t.Errorf("%s: no profile detected", c.name)
			continue
		}
		if p.ID != c.want {
			t.Errorf("%s: detected %s, want %s", c.name, p.ID, c.want)
		}
	}
}

func TestDetectUnknown(t *testing.T) {
	rows := []models.Row{textRow("Some random export"), textRow("nothing to see")}
	if p := Builtin().Detect(rows); p != nil {
		t.Errorf("expected nil profile, got %s", p.ID)
	}
}

func TestDetectPriorityOrder(t *testing.T) {
	// A document carrying both ACB and VCB markers resolves to the
	// earliest profile in the set.
	rows := []models.Row{textRow("BẢNG SAO KÊ GIAO DỊCH"), textRow("STATEMENT OF ACCOUNT")}
	p := Builtin().Detect(rows)
	if p == nil || p.ID != "ACB" {
		t.Errorf("ambiguous document resolved to %v, want ACB", p)
	}
}

func TestAccountNumberStrategies(t *testing.T) {
	set := Builtin()
	byID := map[string]*Profile{}
	for i := range set.Profiles {
		byID[set.Profiles[i].ID] = &set.Profiles[i]
	}

	t.Run("label colon", func(t *testing.T) {
		rows := []models.Row{textRow("BẢNG SAO KÊ GIAO DỊCH"), textRow("Số tài khoản của quý khách: 123456789")}
		if got := byID["ACB"].AccountNumber(rows); got != "123456789" {
			t.Errorf("got %q, want 123456789", got)
		}
	})

	t.Run("label then numeric cell", func(t *testing.T) {
		rows := []models.Row{textRow("SAO KÊ TÀI KHOẢN"), textRow("Số tài khoản / Account number", "", "00123456789")}
		if got := byID["VCB"].AccountNumber(rows); got != "00123456789" {
			t.Errorf("got %q, want 00123456789", got)
		}
	})

	t.Run("number embedded in label cell", func(t *testing.T) {
		rows := []models.Row{textRow("Account number: 55512345678")}
		if got := byID["VCB"].AccountNumber(rows); got != "55512345678" {
			t.Errorf("got %q, want 55512345678", got)
		}
	})

	t.Run("fixed cell", func(t *testing.T) {
		rows := []models.Row{textRow("So but toan", "Ngay giao dich"), textRow("Tai khoan", "19036512345678")}
		if got := byID["TCB"].AccountNumber(rows); got != "19036512345678" {
			t.Errorf("got %q, want 19036512345678", got)
		}
	})

	t.Run("adjacent cell", func(t *testing.T) {
		rows := []models.Row{textRow("VIETINBANK"), textRow("Số tài khoản", "113002345678")}
		if got := byID["VTB"].AccountNumber(rows); got != "113002345678" {
			t.Errorf("got %q, want 113002345678", got)
		}
	})

	t.Run("unknown sentinel", func(t *testing.T) {
		rows := []models.Row{textRow("BẢNG SAO KÊ GIAO DỊCH"), textRow("no account anywhere")}
		if got := byID["ACB"].AccountNumber(rows); got != UnknownAccount {
			t.Errorf("got %q, want %q", got, UnknownAccount)
		}
	})
}

func TestHeaderRow(t *testing.T) {
	set := Builtin()
	acb := &set.Profiles[0]

	rows := []models.Row{
		textRow("BẢNG SAO KÊ GIAO DỊCH"),
		textRow("Số tài khoản: 123456789"),
		textRow(""),
		textRow("Ngày hiệu lực", "Số GD", "Nợ", "Có", "Số dư"),
		textRow("01/01/2024", "GD001", "", "1,000,000", "5,000,000"),
	}
	if got := acb.HeaderRow(rows); got != 3 {
		t.Errorf("HeaderRow = %d, want 3", got)
	}
}

func TestHeaderRowMultilineCells(t *testing.T) {
	set := Builtin()
	vtb := &set.Profiles[3]
	rows := []models.Row{
		textRow("Ngày hạch toán\nPosting date", "Nợ/ Debit", "Có/ Credit"),
	}
	if got := vtb.HeaderRow(rows); got != 0 {
		t.Errorf("HeaderRow = %d, want 0", got)
	}
}

func TestHeaderRowNotFound(t *testing.T) {
	set := Builtin()
	acb := &set.Profiles[0]
	rows := []models.Row{textRow("no header anywhere"), textRow("still nothing")}
	if got := acb.HeaderRow(rows); got != -1 {
		t.Errorf("HeaderRow = %d, want -1", got)
	}
}

func TestLoadYAML(t *testing.T) {
	content := `profiles:
  - id: XB
    markers:
      - ["example bank"]
    header_keywords: ["date", "amount"]
    strategy: adjacent-cell
    account_labels: ["account no"]
`
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write profile file: %v", err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(set.Profiles) != 1 || set.Profiles[0].ID != "XB" {
		t.Fatalf("unexpected set: %+v", set)
	}
	rows := []models.Row{textRow("EXAMPLE BANK statement"), textRow("Account No", "12345678")}
	if p := set.Detect(rows); p == nil || p.ID != "XB" {
		t.Errorf("yaml profile did not detect its own document")
	}
}

func TestLoadEmptyPathFallsBack(t *testing.T) {
	set, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") failed: %v", err)
	}
	if len(set.Profiles) != 5 {
		t.Errorf("builtin set has %d profiles, want 5", len(set.Profiles))
	}
}
