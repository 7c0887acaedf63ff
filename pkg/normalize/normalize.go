// Package normalize rewrites raw statement rows into canonical form and
// projects them into Transactions. Column roles are decided once from the
// header text, never from runtime values, so an empty amount cell still
// normalizes as an amount.
package normalize

import (
	"strings"
	"time"

	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/parser"
)

// dateWindow is how many leading cells are probed for a date when deciding
// whether a row is a real transaction. Metadata, footer and subtotal rows
// never carry a date this early.
const dateWindow = 5

// Role is the semantic meaning of a column, derived from its header text.
type Role int

const (
	RoleText Role = iota
	RoleDate
	RoleDescription
	RoleDebit
	RoleCredit
	RoleBalance
	RoleReference
	RoleCounterpartyName
	RoleCounterpartyAccount
	// RoleAmount is a single signed-amount column (seen on MB exports
	// without separate debit/credit columns): positive values are
	// credits, negative values debits.
	RoleAmount
)

// roleKeywords is the ordered classification table: the first role whose
// keyword set hits the header wins. More specific roles sit above generic
// ones so that e.g. "tài khoản đối ứng" is a counterparty account, not a
// balance.
var roleKeywords = []struct {
	role     Role
	keywords []string
}{
	{RoleCounterpartyAccount, []string{"tài khoản đối ứng", "tk đối ứng", "offset account", "counter account"}},
	{RoleCounterpartyName, []string{"tên đối ứng", "đối tượng", "beneficiary", "counterparty"}},
	{RoleReference, []string{"số gd", "so but toan", "số giao dịch", "reference", "số tham chiếu", "voucher"}},
	{RoleBalance, []string{"số dư", "so du", "dư", "balance"}},
	{RoleDebit, []string{"nợ", "no/", "debit", "rút", "rut tien", "withdraw", "ghi nợ", "ghi no"}},
	{RoleCredit, []string{"có", "co/", "credit", "gửi", "gui vao", "deposit", "ghi có", "ghi co"}},
	{RoleAmount, []string{"số tiền", "so tien", "tiền", "amount"}},
	{RoleDate, []string{"ngày", "ngay", "date"}},
	{RoleDescription, []string{"diễn giải", "dien giai", "nội dung", "noi dung", "mô tả", "description", "chi tiết", "remark", "narrative"}},
}

// IsAmountHeader reports whether the header text names an amount-bearing
// column. Derived from the role table, so a header classified as a monetary
// role is amount-bearing and vice versa, with no second keyword list to
// drift out of sync.
func IsAmountHeader(header string) bool {
	switch RoleOf(header) {
	case RoleDebit, RoleCredit, RoleBalance, RoleAmount:
		return true
	}
	return false
}

// RoleOf classifies a single header cell.
func RoleOf(header string) Role {
	h := strings.ToLower(header)
	for _, entry := range roleKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(h, kw) {
				return entry.role
			}
		}
	}
	return RoleText
}

// Roles classifies every header cell once; the result is reused for every
// data row of the document.
func Roles(headers models.Row) []Role {
	roles := make([]Role, len(headers))
	for i, h := range headers {
		roles[i] = RoleOf(h.String())
	}
	return roles
}

// Admit applies the row admission rule: a row is a transaction only if its
// flattened text is non-empty and one of its first cells parses as a date.
// The parsed date is returned for sorting.
func Admit(row models.Row) (time.Time, bool) {
	var flat strings.Builder
	for _, c := range row {
		flat.WriteString(c.String())
	}
	if strings.TrimSpace(flat.String()) == "" {
		return time.Time{}, false
	}
	for i := 0; i < dateWindow && i < len(row); i++ {
		if d, ok := parser.Date(row[i]); ok {
			return d, true
		}
	}
	return time.Time{}, false
}

// Row rewrites a data row against its header: amount columns go through the
// amount parser, everything else becomes trimmed text. Column order and
// count follow the header.
func Row(headers, row models.Row) models.Row {
	out := make(models.Row, len(row))
	for i, cell := range row {
		header := ""
		if i < len(headers) {
			header = headers[i].String()
		}
		if IsAmountHeader(header) {
			out[i] = models.NumberCell(float64(parser.AmountValue(cell)))
		} else {
			out[i] = models.TextCell(strings.TrimSpace(cell.String()))
		}
	}
	return out
}

// Project builds the canonical transaction view of a row using the header
// role table, the same table IsAmountHeader answers from, so the two views
// of a column always agree.
func Project(headers, row models.Row) models.Transaction {
	roles := Roles(headers)
	var t models.Transaction
	for i, role := range roles {
		cell := row.Cell(i)
		switch role {
		case RoleDate:
			if t.RawDate == "" {
				t.RawDate = strings.TrimSpace(cell.String())
				if d, ok := parser.Date(cell); ok {
					t.Date = d
				}
			}
		case RoleDescription:
			if t.Description == "" {
				t.Description = strings.TrimSpace(cell.String())
			}
		case RoleDebit:
			if t.Debit == 0 {
				t.Debit = parser.AmountValue(cell)
			}
		case RoleCredit:
			if t.Credit == 0 {
				t.Credit = parser.AmountValue(cell)
			}
		case RoleAmount:
			if t.Debit == 0 && t.Credit == 0 {
				if v := parser.AmountValue(cell); v < 0 {
					t.Debit = -v
				} else {
					t.Credit = v
				}
			}
		case RoleBalance:
			if t.Balance == 0 {
				t.Balance = parser.AmountValue(cell)
			}
		case RoleReference:
			if t.Reference == "" {
				t.Reference = strings.TrimSpace(cell.String())
			}
		case RoleCounterpartyName:
			if t.CounterpartyName == "" {
				t.CounterpartyName = strings.TrimSpace(cell.String())
			}
		case RoleCounterpartyAccount:
			if t.CounterpartyAccount == "" {
				t.CounterpartyAccount = strings.TrimSpace(cell.String())
			}
		}
	}
	if t.Date.IsZero() {
		// Fall back to the admission scan window when no column is
		// labeled as a date.
		for i := 0; i < dateWindow && i < len(row); i++ {
			if d, ok := parser.Date(row[i]); ok {
				t.Date = d
				if t.RawDate == "" {
					t.RawDate = strings.TrimSpace(row[i].String())
				}
				break
			}
		}
	}
	return t
}
