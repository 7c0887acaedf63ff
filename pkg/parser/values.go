// Package parser converts raw cell values into typed amounts and dates.
//
// Both parsers are deliberately lenient: statement exports routinely carry
// footer and subtotal rows with junk in amount columns, so an unparseable
// value degrades to its zero value instead of raising. The second return
// value distinguishes a parsed value from a defaulted one so callers that
// care can tell "genuinely zero" from "unparseable".
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/minhlq/saoke/pkg/models"
)

var (
	suffixRe    = regexp.MustCompile(`[\p{L}\s]+$`)
	separatorRe = regexp.MustCompile(`[,.]`)

	dmySlashRe = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})`)
	ymdDashRe  = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`)
	dmyDashRe  = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})`)
)

// Amount parses a monetary cell into whole currency units. Thousand
// separators (both `.` and `,` are seen across banks) and trailing currency
// suffixes like " VND" or "đ" are stripped; there is no decimal-fraction
// support.
// Returns (0, false) for empty or malformed input.
func Amount(c models.Cell) (int64, bool) {
	if c.Kind == models.CellNumber {
		return int64(c.Number), true
	}
	s := strings.TrimSpace(c.String())
	if s == "" {
		return 0, false
	}
	s = suffixRe.ReplaceAllString(s, "")
	s = separatorRe.ReplaceAllString(s, "")
	if s == "" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AmountValue is Amount with the defaulted flag discarded.
func AmountValue(c models.Cell) int64 {
	v, _ := Amount(c)
	return v
}

// Date parses a calendar date out of a cell. Natively typed dates pass
// through untouched. Text values are matched against dd/mm/yyyy, yyyy-mm-dd
// and dd-mm-yyyy in that order; anything after the first line break is
// ignored because some exports merge a date and a time label into one cell.
// Returns (zero, false) when no layout matches or the date is not a real
// calendar date.
func Date(c models.Cell) (time.Time, bool) {
	if c.Kind == models.CellDate {
		return c.Time, true
	}
	if c.IsEmpty() {
		return time.Time{}, false
	}
	s := strings.TrimSpace(c.String())
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}

	if m := dmySlashRe.FindStringSubmatch(s); m != nil {
		return makeDate(m[3], m[2], m[1])
	}
	if m := ymdDashRe.FindStringSubmatch(s); m != nil {
		return makeDate(m[1], m[2], m[3])
	}
	if m := dmyDashRe.FindStringSubmatch(s); m != nil {
		return makeDate(m[3], m[2], m[1])
	}
	return time.Time{}, false
}

func makeDate(ys, ms, ds string) (time.Time, bool) {
	y, _ := strconv.Atoi(ys)
	m, _ := strconv.Atoi(ms)
	d, _ := strconv.Atoi(ds)
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes out-of-range components (32/01 becomes 01/02),
	// so a round-trip mismatch means the input was not a real date.
	if t.Year() != y || t.Month() != time.Month(m) || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}
