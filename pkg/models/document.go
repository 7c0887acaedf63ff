package models

import (
	"fmt"
	"time"
)

// Document is one uploaded statement file, already decoded into a grid of
// cells by the reader. It is immutable once built.
type Document struct {
	Filename string
	Rows     []Row
}

// Group collects every document that belongs to the same bank account. One
// group drives exactly one merge run.
type Group struct {
	BankID    string
	AccountNo string
	Documents []Document
}

// Key is the stable group identity, also used as the routing key by the
// downstream bookkeeping collaborator.
func (g *Group) Key() string {
	return fmt.Sprintf("%s_%s", g.BankID, g.AccountNo)
}

// Result is the hand-off artifact of one successful merge run.
type Result struct {
	BankID    string
	AccountNo string

	// Preamble holds the metadata rows found above the header row of the
	// group's first document, preserved verbatim.
	Preamble []Row
	Header   Row
	Rows     []Row

	Transactions []Transaction

	TotalInput        int
	DuplicatesRemoved int
	MinDate           time.Time
	MaxDate           time.Time
}

// Key returns the group identity the result was produced for.
func (r *Result) Key() string {
	return fmt.Sprintf("%s_%s", r.BankID, r.AccountNo)
}

// Filename suggests an export name covering the merged date range.
func (r *Result) Filename() string {
	return fmt.Sprintf("%s_%s_%sto%s.xlsx",
		r.BankID, r.AccountNo,
		r.MinDate.Format("02012006"), r.MaxDate.Format("02012006"))
}
