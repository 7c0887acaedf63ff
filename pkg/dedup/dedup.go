// Package dedup derives the identity key used to recognize the same
// transaction across multiple uploaded statement files.
package dedup

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/normalize"
	"github.com/minhlq/saoke/pkg/parser"
)

// referenceKeywords locate a bank-issued reference column, the most reliable
// natural key when present. Checked in order.
var referenceKeywords = []string{
	"số gd", "so but toan", "số giao dịch", "reference", "số tham chiếu",
}

// dateKeywords locate the transaction date column for the fallback key.
var dateKeywords = []string{
	"ngày giao dịch", "ngay giao dich", "ngày hạch toán", "transaction date",
}

// Key builds the dedup identity of a row, scoped by bank and account.
//
// With a reference the key is bankID_accountNo_ref. Without one it degrades
// to bankID_accountNo_dateText_amounts, where amounts is the sorted multiset
// of positive values under debit, credit and signed-amount headers; balance
// columns carry running state, not identity, so they stay out of the key. Two genuinely distinct
// same-day transactions with identical amounts and no reference collapse
// under the fallback; that is an accepted limitation of referenceless
// exports, not something to patch here.
func Key(row, headers models.Row, bankID, accountNo string) string {
	lowered := loweredHeaders(headers)

	if ref := findByKeyword(row, lowered, referenceKeywords); ref != "" {
		return fmt.Sprintf("%s_%s_%s", bankID, accountNo, ref)
	}

	dateText := findByKeyword(row, lowered, dateKeywords)
	if dateText == "" && len(row) > 0 {
		dateText = strings.TrimSpace(row[0].String())
	}

	var amounts []int64
	for i, h := range lowered {
		switch normalize.RoleOf(h) {
		case normalize.RoleDebit, normalize.RoleCredit, normalize.RoleAmount:
			if v := parser.AmountValue(row.Cell(i)); v > 0 {
				amounts = append(amounts, v)
			}
		}
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })
	parts := make([]string, len(amounts))
	for i, v := range amounts {
		parts[i] = strconv.FormatInt(v, 10)
	}

	return fmt.Sprintf("%s_%s_%s_%s", bankID, accountNo, dateText, strings.Join(parts, "|"))
}

func loweredHeaders(headers models.Row) []string {
	out := make([]string, len(headers))
	for i, h := range headers {
		out[i] = strings.ToLower(h.String())
	}
	return out
}

// findByKeyword walks the keyword list in priority order and returns the
// trimmed cell text under the first matching header.
func findByKeyword(row models.Row, lowered []string, keywords []string) string {
	for _, kw := range keywords {
		for i, h := range lowered {
			if strings.Contains(h, kw) {
				if v := strings.TrimSpace(row.Cell(i).String()); v != "" {
					return v
				}
				break
			}
		}
	}
	return ""
}
