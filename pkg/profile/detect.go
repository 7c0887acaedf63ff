package profile

import (
	"regexp"
	"strings"

	"github.com/minhlq/saoke/pkg/models"
)

const (
	// metadataRows bounds how deep into a document detection and account
	// extraction look. Every supported bank keeps its metadata block
	// within the first 15 rows.
	metadataRows = 15
	// labelScanRows bounds the narrower label-cell scan.
	labelScanRows = 10
)

var accountNumberRe = regexp.MustCompile(`^\d{8,}$`)
var digitRunRe = regexp.MustCompile(`\d{8,}`)

// Detect returns the first profile whose markers all appear in the flattened
// leading rows of the document, or nil when no profile matches. Ambiguous
// documents resolve to the earliest profile in the set.
func (s *Set) Detect(rows []models.Row) *Profile {
	limit := len(rows)
	if limit > metadataRows {
		limit = metadataRows
	}
	var b strings.Builder
	for _, row := range rows[:limit] {
		b.WriteString(row.Flatten())
		b.WriteByte(' ')
	}
	flat := strings.ToLower(b.String())

	for i := range s.Profiles {
		p := &s.Profiles[i]
		for _, group := range p.Markers {
			all := true
			for _, marker := range group {
				if !strings.Contains(flat, strings.ToLower(marker)) {
					all = false
					break
				}
			}
			if all {
				return p
			}
		}
	}
	return nil
}

// AccountNumber applies the profile's extraction strategy against the
// metadata block. Failure yields the UnknownAccount sentinel rather than an
// error; the sentinel becomes a real group key.
func (p *Profile) AccountNumber(rows []models.Row) string {
	switch p.Strategy {
	case StrategyLabelColon:
		return p.accountFromPatterns(rows)
	case StrategyFixedCell:
		if p.AccountRow < len(rows) {
			if v := strings.TrimSpace(rows[p.AccountRow].Cell(p.AccountCol).String()); v != "" {
				return v
			}
		}
	case StrategyLabelNumericCell:
		return p.accountFromLabelScan(rows, labelScanRows, true)
	case StrategyAdjacentCell:
		return p.accountFromLabelScan(rows, metadataRows, false)
	}
	return UnknownAccount
}

func (p *Profile) accountFromPatterns(rows []models.Row) string {
	limit := len(rows)
	if limit > metadataRows {
		limit = metadataRows
	}
	for _, pat := range p.AccountPatterns {
		re, err := regexp.Compile(pat)
		if err != nil {
			continue
		}
		for _, row := range rows[:limit] {
			if m := re.FindStringSubmatch(row.Flatten()); m != nil {
				return m[1]
			}
		}
	}
	return UnknownAccount
}

func (p *Profile) accountFromLabelScan(rows []models.Row, depth int, scanWholeRow bool) string {
	limit := len(rows)
	if limit > depth {
		limit = depth
	}
	for _, row := range rows[:limit] {
		for i, cell := range row {
			if cell.IsEmpty() {
				continue
			}
			text := strings.ToLower(cell.String())
			if !p.hasLabel(text) {
				continue
			}
			if scanWholeRow {
				// Any later cell in the row that is all digits wins;
				// as a fallback the label cell itself may embed the
				// number.
				for j := i + 1; j < len(row); j++ {
					v := strings.TrimSpace(row[j].String())
					if accountNumberRe.MatchString(v) {
						return v
					}
				}
				if m := digitRunRe.FindString(cell.String()); m != "" {
					return m
				}
			} else if i+1 < len(row) {
				if m := digitRunRe.FindString(row[i+1].String()); m != "" {
					return m
				}
			}
		}
	}
	return UnknownAccount
}

func (p *Profile) hasLabel(lowered string) bool {
	for _, label := range p.AccountLabels {
		if strings.Contains(lowered, label) {
			return true
		}
	}
	return false
}

// HeaderRow returns the index of the first row containing every header
// keyword of the profile, or -1. Cells are lowercased and line breaks and
// tabs collapse to spaces before matching, so multi-line header cells still
// match.
func (p *Profile) HeaderRow(rows []models.Row) int {
	for i, row := range rows {
		flat := normalizeHeaderText(row)
		all := true
		for _, kw := range p.HeaderKeywords {
			if !strings.Contains(flat, strings.ToLower(kw)) {
				all = false
				break
			}
		}
		if all {
			return i
		}
	}
	return -1
}

func normalizeHeaderText(row models.Row) string {
	var b strings.Builder
	for _, c := range row {
		b.WriteString(strings.ToLower(c.String()))
		b.WriteByte(' ')
	}
	s := b.String()
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return s
}
