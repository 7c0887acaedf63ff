// Package merge turns a group of statement documents into one canonical,
// deduplicated, chronologically sorted ledger.
package merge

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"

	"github.com/minhlq/saoke/pkg/dedup"
	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/normalize"
	"github.com/minhlq/saoke/pkg/profile"
)

// State of a group merge. Transitions are strictly forward: HeaderPending →
// Accumulating → Sorted → Complete, with Failed reachable from HeaderPending
// (no header in the first document) and Sorted (nothing survived filtering).
type State int

const (
	HeaderPending State = iota
	Accumulating
	Sorted
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case HeaderPending:
		return "header-pending"
	case Accumulating:
		return "accumulating"
	case Sorted:
		return "sorted"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Merger runs group merges against a profile set.
type Merger struct {
	profiles *profile.Set
	logger   *log.Logger
}

func New(profiles *profile.Set, logger *log.Logger) *Merger {
	return &Merger{profiles: profiles, logger: logger}
}

type pending struct {
	date time.Time
	row  models.Row
	tx   models.Transaction
}

// run carries the per-group merge state.
type run struct {
	state    State
	group    *models.Group
	profile  *profile.Profile
	preamble []models.Row
	header   models.Row
	seen     map[string]struct{}
	retained []pending
	input    int
	dups     int
}

// Merge drives one group through the state machine and returns its result.
// Failure abandons the whole group: the first document's header supplies
// both the canonical output header and the classification vocabulary, so
// there is no meaningful partial merge without it.
func (m *Merger) Merge(g *models.Group) (*models.Result, error) {
	r := &run{state: HeaderPending, group: g, seen: map[string]struct{}{}}

	if err := m.locateHeader(r); err != nil {
		r.state = Failed
		return nil, err
	}
	m.accumulate(r)
	m.sortRetained(r)
	return m.complete(r)
}

func (m *Merger) locateHeader(r *run) error {
	if len(r.group.Documents) == 0 {
		return fmt.Errorf("group %s has no documents", r.group.Key())
	}
	first := r.group.Documents[0]

	for i := range m.profiles.Profiles {
		if m.profiles.Profiles[i].ID == r.group.BankID {
			r.profile = &m.profiles.Profiles[i]
			break
		}
	}
	if r.profile == nil {
		return fmt.Errorf("no profile for bank %s", r.group.BankID)
	}

	idx := r.profile.HeaderRow(first.Rows)
	if idx < 0 {
		return fmt.Errorf("no header row in %s", first.Filename)
	}
	r.preamble = first.Rows[:idx]
	r.header = first.Rows[idx]
	r.state = Accumulating
	m.logger.Debug("header located", "group", r.group.Key(), "file", first.Filename, "row", idx)
	return nil
}

func (m *Merger) accumulate(r *run) {
	for _, doc := range r.group.Documents {
		// Each document relocates its own header: metadata blocks vary
		// in length between exports of the same account.
		idx := r.profile.HeaderRow(doc.Rows)
		if idx < 0 {
			m.logger.Warn("no header row, skipping document", "group", r.group.Key(), "file", doc.Filename)
			continue
		}
		for _, row := range doc.Rows[idx+1:] {
			date, ok := normalize.Admit(row)
			if !ok {
				continue
			}
			r.input++

			key := dedup.Key(row, r.header, r.group.BankID, r.group.AccountNo)
			if _, dup := r.seen[key]; dup {
				r.dups++
				continue
			}
			r.seen[key] = struct{}{}

			tx := normalize.Project(r.header, row)
			if tx.Zero() {
				continue
			}
			if tx.Anomalous() {
				m.logger.Warn("row has both debit and credit filled",
					"group", r.group.Key(), "file", doc.Filename, "reference", tx.Reference)
			}
			r.retained = append(r.retained, pending{
				date: date,
				row:  normalize.Row(r.header, row),
				tx:   tx,
			})
		}
	}
}

func (m *Merger) sortRetained(r *run) {
	// Stable: rows sharing a date keep document-then-row input order.
	sort.SliceStable(r.retained, func(i, j int) bool {
		return r.retained[i].date.Before(r.retained[j].date)
	})
	r.state = Sorted
}

func (m *Merger) complete(r *run) (*models.Result, error) {
	if len(r.retained) == 0 {
		r.state = Failed
		return nil, fmt.Errorf("no data after filtering")
	}

	res := &models.Result{
		BankID:            r.group.BankID,
		AccountNo:         r.group.AccountNo,
		Preamble:          r.preamble,
		Header:            r.header,
		TotalInput:        r.input,
		DuplicatesRemoved: r.dups,
		MinDate:           r.retained[0].date,
		MaxDate:           r.retained[len(r.retained)-1].date,
	}
	for _, p := range r.retained {
		res.Rows = append(res.Rows, p.row)
		res.Transactions = append(res.Transactions, p.tx)
	}
	r.state = Complete
	m.logger.Info("group merged",
		"group", r.group.Key(),
		"transactions", len(res.Rows),
		"duplicates_removed", res.DuplicatesRemoved,
		"from", res.MinDate.Format("02/01/2006"),
		"to", res.MaxDate.Format("02/01/2006"))
	return res, nil
}

// Failure reports one group that produced no output.
type Failure struct {
	Group string
	Err   error
}

// Run merges every group independently. A failing group surfaces its reason
// in the failure list and never aborts its siblings.
func (m *Merger) Run(groups []*models.Group) ([]*models.Result, []Failure) {
	var results []*models.Result
	var failures []Failure
	for _, g := range groups {
		res, err := m.Merge(g)
		if err != nil {
			m.logger.Warn("group failed", "group", g.Key(), "err", err)
			failures = append(failures, Failure{Group: g.Key(), Err: err})
			continue
		}
		results = append(results, res)
	}
	return results, failures
}
