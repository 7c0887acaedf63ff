package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/minhlq/saoke/pkg/cutover"
	"github.com/minhlq/saoke/pkg/models"
	"github.com/minhlq/saoke/pkg/service"
)

type filters struct {
	startDate string
	endDate   string
}

// apply narrows a transaction list to the configured date window. The window
// only trims what is displayed; merging and posting always cover the full
// set, because dropping the transaction that carries the ledger's last
// reference would make the cutover treat already-posted history as new.
func (f *filters) apply(txs []models.Transaction) []models.Transaction {
	start, hasStart := parseFlagDate(f.startDate)
	end, hasEnd := parseFlagDate(f.endDate)
	if !hasStart && !hasEnd {
		return txs
	}
	var out []models.Transaction
	for _, tx := range txs {
		if hasStart && tx.Date.Before(start) {
			continue
		}
		if hasEnd && tx.Date.After(end) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func parseFlagDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("02/01/2006", s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // green
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // yellow
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))  // red
)

func printReport(report *service.Report) {
	for _, res := range report.Results {
		line := fmt.Sprintf("%s: %d transactions, %d duplicates removed, %s → %s",
			res.Key(), len(res.Rows), res.DuplicatesRemoved,
			res.MinDate.Format("02/01/2006"), res.MaxDate.Format("02/01/2006"))
		fmt.Println(okStyle.Render("✓ " + line))
	}
	for _, path := range report.Written {
		fmt.Printf("  wrote %s\n", path)
	}
	for _, ue := range report.Unclassified {
		fmt.Println(warnStyle.Render(fmt.Sprintf("? %s: %s", ue.Filename, ue.Reason)))
	}
	for _, fail := range report.Failures {
		fmt.Println(failStyle.Render(fmt.Sprintf("! %s: %v", fail.Group, fail.Err)))
	}
}

func printResolution(group string, res cutover.Resolution) {
	if res.Warning != "" {
		fmt.Println(warnStyle.Render("? " + group + ": " + res.Warning))
	}
	shown := cliFilters.apply(res.New)
	for _, tx := range shown {
		sign := "+"
		amount := tx.Credit
		if tx.Direction() == models.Outbound {
			sign = "-"
			amount = tx.Debit
		}
		fmt.Printf("  %s | %-30s | %s%d | %s\n",
			tx.Date.Format("02/01/2006"), tx.Description, sign, amount, tx.Reference)
	}
	fmt.Println(okStyle.Render("✓ " + postSummary(group, len(res.New), len(shown))))
}

// postSummary reports the posted count and, when a display window hides some
// of it, how many lines were actually shown.
func postSummary(group string, posted, shown int) string {
	s := fmt.Sprintf("%s: posted %d new transactions", group, posted)
	if shown != posted {
		s += fmt.Sprintf(" (%d shown in date window)", shown)
	}
	return s
}
