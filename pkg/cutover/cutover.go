// Package cutover splits a merged transaction set into what an external
// ledger already recorded and what is new, and posts the new part through
// the ledger collaborator.
package cutover

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/minhlq/saoke/pkg/models"
)

// Ledger is the external bookkeeping collaborator. Every read is treated as
// a point-in-time snapshot; serializing writes on retry is the caller's
// responsibility, not this package's.
type Ledger interface {
	// LastReference returns the reference of the most recently recorded
	// transaction, or "" when the ledger has no history yet.
	LastReference(ledgerID string) (string, error)
	// RecordedBalance returns the current balance of record.
	RecordedBalance(ledgerID string) (int64, error)
	AppendTransaction(ledgerID string, tx models.Transaction) error
	AdjustBalance(ledgerID string, delta int64) error
	AppendToProjectLedger(projectID string, date time.Time, description string, signedAmount int64) error
}

// ErrBalanceMismatch blocks posting when the ledger balance does not line up
// with the statement at the cutover point. It catches missing files and
// partially posted prior runs; callers may override explicitly.
var ErrBalanceMismatch = errors.New("recorded balance does not match statement balance at cutover")

// Resolution is the outcome of locating the cutover point.
type Resolution struct {
	// New holds every transaction strictly after the last recorded one,
	// in merged order.
	New []models.Transaction
	// Warning is set when the last reference could not be found and the
	// resolver degraded to treating everything as new.
	Warning string
	// OpeningBalance is the balance on the matched cutover transaction,
	// used for reconciliation. Only meaningful when HasOpeningBalance.
	OpeningBalance    int64
	HasOpeningBalance bool
}

// Resolve locates lastRef in the merged, sorted transaction list. An empty
// lastRef means no history: everything is new. A non-empty lastRef that is
// not present is a soft failure (the reference may belong to a period
// outside the uploaded files), so it degrades to all-new with a warning.
func Resolve(merged []models.Transaction, lastRef string) Resolution {
	if lastRef == "" {
		return Resolution{New: merged}
	}
	for i, tx := range merged {
		if tx.Reference == lastRef {
			return Resolution{
				New:               merged[i+1:],
				OpeningBalance:    tx.Balance,
				HasOpeningBalance: true,
			}
		}
	}
	return Resolution{
		New:     merged,
		Warning: fmt.Sprintf("last recorded reference %q not found in merged statements; treating all transactions as new", lastRef),
	}
}

// CheckBalance compares the captured opening balance against the externally
// reported balance of record. A mismatch is blocking.
func (r Resolution) CheckBalance(recorded int64) error {
	if !r.HasOpeningBalance {
		return nil
	}
	if recorded != r.OpeningBalance {
		return fmt.Errorf("%w: recorded %d, statement %d", ErrBalanceMismatch, recorded, r.OpeningBalance)
	}
	return nil
}

// Poster pushes resolved transactions into the ledger.
type Poster struct {
	ledger Ledger
	logger *log.Logger
}

func NewPoster(ledger Ledger, logger *log.Logger) *Poster {
	return &Poster{ledger: ledger, logger: logger}
}

// Post resolves the cutover for one merged group and appends everything new
// to the ledger and the project ledger routed by the group key. The balance
// check blocks unless override is set. Retries and at-most-once posting are
// the collaborator's concern.
func (p *Poster) Post(res *models.Result, override bool) (Resolution, error) {
	ledgerID := res.Key()

	lastRef, err := p.ledger.LastReference(ledgerID)
	if err != nil {
		return Resolution{}, fmt.Errorf("failed to read last reference: %w", err)
	}
	resolution := Resolve(res.Transactions, lastRef)
	if resolution.Warning != "" {
		p.logger.Warn("cutover degraded", "ledger", ledgerID, "warning", resolution.Warning)
	}

	if resolution.HasOpeningBalance {
		recorded, err := p.ledger.RecordedBalance(ledgerID)
		if err != nil {
			return resolution, fmt.Errorf("failed to read recorded balance: %w", err)
		}
		if err := resolution.CheckBalance(recorded); err != nil && !override {
			return resolution, err
		} else if err != nil {
			p.logger.Warn("balance mismatch overridden", "ledger", ledgerID, "err", err)
		}
	}

	for _, tx := range resolution.New {
		if err := p.ledger.AppendTransaction(ledgerID, tx); err != nil {
			return resolution, fmt.Errorf("failed to append transaction %s: %w", tx.Reference, err)
		}
		if err := p.ledger.AdjustBalance(ledgerID, tx.SignedAmount()); err != nil {
			return resolution, fmt.Errorf("failed to adjust balance: %w", err)
		}
		if err := p.ledger.AppendToProjectLedger(ledgerID, tx.Date, tx.Description, tx.SignedAmount()); err != nil {
			return resolution, fmt.Errorf("failed to append to project ledger: %w", err)
		}
	}
	p.logger.Info("posted new transactions", "ledger", ledgerID, "count", len(resolution.New))
	return resolution, nil
}
