package models

import "time"

// Direction of money movement relative to the account holder.
type Direction int

const (
	Outbound Direction = iota
	Inbound
)

// Transaction is the canonical view of one statement row. Amounts are whole
// VND (the smallest unit); there is no fractional part in any supported
// export.
type Transaction struct {
	Date                time.Time
	RawDate             string
	Description         string
	Debit               int64
	Credit              int64
	Balance             int64
	Reference           string
	CounterpartyName    string
	CounterpartyAccount string
}

// Direction derives the movement from the filled amount slot.
func (t Transaction) Direction() Direction {
	if t.Credit > 0 {
		return Inbound
	}
	return Outbound
}

// SignedAmount is positive for inbound and negative for outbound money.
func (t Transaction) SignedAmount() int64 {
	return t.Credit - t.Debit
}

// Zero reports whether neither amount slot is filled. Such a row is not a
// transaction and must not survive normalization.
func (t Transaction) Zero() bool {
	return t.Debit == 0 && t.Credit == 0
}

// Anomalous reports whether both amount slots are filled. Debit and credit
// are exclusive in every supported export, so this is surfaced to the caller
// rather than resolved here.
func (t Transaction) Anomalous() bool {
	return t.Debit != 0 && t.Credit != 0
}
