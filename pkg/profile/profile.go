// Package profile defines the supported bank statement layouts as data.
// Adding a bank means adding a table entry (or a YAML document), not code.
package profile

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Strategy selects how the account number is pulled out of the metadata
// block above the header row.
type Strategy string

const (
	// StrategyLabelColon scans flattened metadata lines with regular
	// expressions of the form "label: digits".
	StrategyLabelColon Strategy = "label-colon"
	// StrategyFixedCell reads a constant row/column position.
	StrategyFixedCell Strategy = "fixed-cell"
	// StrategyLabelNumericCell finds a label cell and takes the next cell
	// in the same row that looks like an account number.
	StrategyLabelNumericCell Strategy = "label-numeric-cell"
	// StrategyAdjacentCell finds a label cell and reads digits out of the
	// cell immediately to its right.
	StrategyAdjacentCell Strategy = "adjacent-cell"
)

// UnknownAccount is the sentinel group key component used when no strategy
// matches. Distinct unidentifiable accounts on the same bank collapse into
// one group under it; that behavior is load-bearing for existing users and
// must not change without a profile-schema revision.
const UnknownAccount = "unknown"

// Profile is the immutable ruleset for one supported issuer.
type Profile struct {
	ID string `yaml:"id"`

	// Markers identify the bank from the first rows of a document. The
	// outer list is OR, the inner list is AND; comparison is
	// case-insensitive on the flattened row text.
	Markers [][]string `yaml:"markers"`

	// HeaderKeywords must all appear, case/whitespace-normalized, in the
	// header row. The match is keyword membership, not position: column
	// order varies between exports of the same bank.
	HeaderKeywords []string `yaml:"header_keywords"`

	Strategy Strategy `yaml:"strategy"`

	// AccountPatterns are the regexes for StrategyLabelColon; the first
	// capture group is the account number.
	AccountPatterns []string `yaml:"account_patterns,omitempty"`

	// AccountLabels are the label substrings for the cell-scanning
	// strategies.
	AccountLabels []string `yaml:"account_labels,omitempty"`

	// AccountRow/AccountCol locate the value for StrategyFixedCell.
	AccountRow int `yaml:"account_row,omitempty"`
	AccountCol int `yaml:"account_col,omitempty"`
}

// Set is an ordered list of profiles. Detection walks it front to back, so
// earlier profiles win ambiguous documents.
type Set struct {
	Profiles []Profile `yaml:"profiles"`
}

// Builtin returns the default profile table covering ACB, VCB, TCB,
// VietinBank and MB statement exports.
func Builtin() *Set {
	return &Set{Profiles: []Profile{
		{
			ID:              "ACB",
			Markers:         [][]string{{"bảng sao kê giao dịch"}},
			HeaderKeywords:  []string{"ngày hiệu lực", "số gd"},
			Strategy:        StrategyLabelColon,
			AccountPatterns: []string{`(?i)số tài khoản.*?:\s*(\d+)`, `(?i)tài khoản số:\s*(\d+)`},
		},
		{
			ID:             "VCB",
			Markers:        [][]string{{"sao kê tài khoản"}, {"statement of account"}},
			HeaderKeywords: []string{"debit", "credit"},
			Strategy:       StrategyLabelNumericCell,
			AccountLabels:  []string{"tài khoản", "account number"},
		},
		{
			ID:             "TCB",
			Markers:        [][]string{{"so but toan", "ngay giao dich"}},
			HeaderKeywords: []string{"so but toan", "no/debit"},
			Strategy:       StrategyFixedCell,
			AccountRow:     1,
			AccountCol:     1,
		},
		{
			ID:             "VTB",
			Markers:        [][]string{{"vietinbank"}, {"efast"}},
			HeaderKeywords: []string{"ngày hạch toán", "nợ/ debit"},
			Strategy:       StrategyAdjacentCell,
			AccountLabels:  []string{"account no", "số tài khoản"},
		},
		{
			ID:             "MB",
			Markers:        [][]string{{"mb bank"}, {"military"}},
			HeaderKeywords: []string{"ngày giao dịch", "số tiền"},
			Strategy:       StrategyAdjacentCell,
			AccountLabels:  []string{"account no", "số tài khoản"},
		},
	}}
}

// Load reads a profile set from a YAML file. An empty path falls back to the
// builtin table.
func Load(path string) (*Set, error) {
	if path == "" {
		return Builtin(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}
	var s Set
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse profile yaml: %w", err)
	}
	if len(s.Profiles) == 0 {
		return nil, fmt.Errorf("profile file %s defines no profiles", path)
	}
	for i, p := range s.Profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("profile %d has no id", i)
		}
		if len(p.Markers) == 0 {
			return nil, fmt.Errorf("profile %s has no detection markers", p.ID)
		}
	}
	return &s, nil
}
