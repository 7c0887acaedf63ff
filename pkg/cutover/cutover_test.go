package cutover

import (
	"errors"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/minhlq/saoke/pkg/models"
)

func tx(ref string, day int, credit, balance int64) models.Transaction {
	return models.Transaction{
		Date:      time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
		Reference: ref,
		Credit:    credit,
		Balance:   balance,
	}
}

func merged() []models.Transaction {
	return []models.Transaction{
		tx("R1", 1, 100, 1100),
		tx("R2", 2, 200, 1300),
		tx("R3", 3, 300, 1600),
		tx("R4", 4, 400, 2000),
	}
}

func TestResolveNoHistory(t *testing.T) {
	res := Resolve(merged(), "")
	if len(res.New) != 4 {
		t.Errorf("got %d new, want all 4", len(res.New))
	}
	if res.Warning != "" || res.HasOpeningBalance {
		t.Errorf("unexpected warning/balance: %+v", res)
	}
}

func TestResolveFoundReference(t *testing.T) {
	res := Resolve(merged(), "R2")
	if len(res.New) != 2 {
		t.Fatalf("got %d new, want 2", len(res.New))
	}
	if res.New[0].Reference != "R3" || res.New[1].Reference != "R4" {
		t.Errorf("new = %+v", res.New)
	}
	if !res.HasOpeningBalance || res.OpeningBalance != 1300 {
		t.Errorf("opening balance = %d (has=%v), want 1300", res.OpeningBalance, res.HasOpeningBalance)
	}
}

func TestResolveLastTransactionIsCutover(t *testing.T) {
	res := Resolve(merged(), "R4")
	if len(res.New) != 0 {
		t.Errorf("got %d new, want 0", len(res.New))
	}
}

func TestResolveMissingReferenceDegrades(t *testing.T) {
	res := Resolve(merged(), "GHOST")
	if len(res.New) != 4 {
		t.Errorf("got %d new, want all 4", len(res.New))
	}
	if res.Warning == "" {
		t.Error("expected a warning for unresolvable reference")
	}
	if res.HasOpeningBalance {
		t.Error("no opening balance should be captured")
	}
}

func TestCheckBalance(t *testing.T) {
	res := Resolve(merged(), "R2")
	if err := res.CheckBalance(1300); err != nil {
		t.Errorf("matching balance rejected: %v", err)
	}
	err := res.CheckBalance(999)
	if !errors.Is(err, ErrBalanceMismatch) {
		t.Errorf("err = %v, want ErrBalanceMismatch", err)
	}
}

// fakeLedger records collaborator calls in order.
type fakeLedger struct {
	lastRef  string
	balance  int64
	appended []models.Transaction
	deltas   []int64
	project  []string
	failNext error
}

func (f *fakeLedger) LastReference(string) (string, error)  { return f.lastRef, nil }
func (f *fakeLedger) RecordedBalance(string) (int64, error) { return f.balance, nil }

func (f *fakeLedger) AppendTransaction(_ string, tx models.Transaction) error {
	if f.failNext != nil {
		return f.failNext
	}
	f.appended = append(f.appended, tx)
	return nil
}

func (f *fakeLedger) AdjustBalance(_ string, delta int64) error {
	f.deltas = append(f.deltas, delta)
	return nil
}

func (f *fakeLedger) AppendToProjectLedger(projectID string, _ time.Time, _ string, _ int64) error {
	f.project = append(f.project, projectID)
	return nil
}

func result() *models.Result {
	return &models.Result{BankID: "ACB", AccountNo: "123456789", Transactions: merged()}
}

func TestPost(t *testing.T) {
	ledger := &fakeLedger{lastRef: "R2", balance: 1300}
	poster := NewPoster(ledger, log.Default())

	res, err := poster.Post(result(), false)
	if err != nil {
		t.Fatalf("Post failed: %v", err)
	}
	if len(ledger.appended) != 2 {
		t.Fatalf("appended %d, want 2", len(ledger.appended))
	}
	if ledger.appended[0].Reference != "R3" {
		t.Errorf("first appended = %q", ledger.appended[0].Reference)
	}
	if ledger.deltas[0] != 300 || ledger.deltas[1] != 400 {
		t.Errorf("deltas = %v", ledger.deltas)
	}
	if ledger.project[0] != "ACB_123456789" {
		t.Errorf("project routing key = %q", ledger.project[0])
	}
	if len(res.New) != 2 {
		t.Errorf("resolution: %+v", res)
	}
}

func TestPostBalanceMismatchBlocks(t *testing.T) {
	ledger := &fakeLedger{lastRef: "R2", balance: 42}
	poster := NewPoster(ledger, log.Default())

	_, err := poster.Post(result(), false)
	if !errors.Is(err, ErrBalanceMismatch) {
		t.Fatalf("err = %v, want ErrBalanceMismatch", err)
	}
	if len(ledger.appended) != 0 {
		t.Error("nothing may be appended on a blocked mismatch")
	}
}

func TestPostBalanceMismatchOverride(t *testing.T) {
	ledger := &fakeLedger{lastRef: "R2", balance: 42}
	poster := NewPoster(ledger, log.Default())

	if _, err := poster.Post(result(), true); err != nil {
		t.Fatalf("override should proceed: %v", err)
	}
	if len(ledger.appended) != 2 {
		t.Errorf("appended %d, want 2", len(ledger.appended))
	}
}
