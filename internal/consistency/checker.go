// Package consistency verifies business rules over a cleaned table. Every
// check is advisory: a failed check is reported, never repaired, because a
// flagged row after cleaning points at an upstream rule worth a human look
// rather than at something this stage should silently fix.
package consistency

import (
	"context"
	"log/slog"

	"fraudcli/internal/dataset"
)

// Check identifiers.
const (
	CheckIDRiskAnomaly     = "risk_anomaly_mismatch"
	CheckIDLargeNewAccount = "large_new_account_transactions"
	CheckIDNegativeAmount  = "negative_amounts"
	CheckIDSessionDuration = "excessive_session_duration"
)

// Business rule bounds.
const (
	highRiskFloor        = 75.0
	lowRiskCeiling       = 25.0
	largeAmountThreshold = 50000.0
	sessionDurationLimit = 500.0
)

// Report tallies the consistency checks for one table.
type Report struct {
	// Passed counts checks that flagged no rows; Total counts all checks.
	Passed int
	Total  int

	Checks []CheckResult
}

// AllPassed reports whether every check came back clean.
func (r *Report) AllPassed() bool {
	return r.Passed == r.Total
}

// CheckResult is the outcome of a single check. FlaggedRows holds the
// indices of offending rows in the checked table, in row order.
type CheckResult struct {
	ID          string
	Name        string
	Passed      bool
	FlaggedRows []int
}

// Checker runs the consistency checks.
type Checker struct {
	logger *slog.Logger
}

// NewChecker creates a checker. A nil logger falls back to the default.
func NewChecker(logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Checker{logger: logger.With(slog.String("component", "consistency"))}
}

// Check runs every check against the table and returns the tally. The
// table is read-only here; a cell that cannot be read as the type a check
// needs simply does not match that check.
func (c *Checker) Check(ctx context.Context, table *dataset.Table) *Report {
	checks := []struct {
		id   string
		name string
		flag func(*dataset.Table) []int
	}{
		{CheckIDRiskAnomaly, "Risk score vs anomaly label", flagRiskAnomalyMismatches},
		{CheckIDLargeNewAccount, "Large transactions from new accounts", flagLargeNewAccountTransactions},
		{CheckIDNegativeAmount, "Negative amounts", flagNegativeAmounts},
		{CheckIDSessionDuration, "Excessive session duration", flagExcessiveSessions},
	}

	report := &Report{Total: len(checks)}
	for _, check := range checks {
		flagged := check.flag(table)
		passed := len(flagged) == 0
		if passed {
			report.Passed++
		}
		report.Checks = append(report.Checks, CheckResult{
			ID:          check.id,
			Name:        check.name,
			Passed:      passed,
			FlaggedRows: flagged,
		})

		c.logger.InfoContext(ctx, "Consistency check finished",
			slog.String("check", check.id),
			slog.Bool("passed", passed),
			slog.Int("flagged_rows", len(flagged)))
	}
	return report
}

// flagRiskAnomalyMismatches finds rows whose risk_score contradicts the
// anomaly label: a high score marked low_risk or a low score marked
// high_risk.
func flagRiskAnomalyMismatches(table *dataset.Table) []int {
	var flagged []int
	for row := 0; row < table.NumRows(); row++ {
		risk, ok := table.Value(row, dataset.ColRiskScore).AsNumber()
		if !ok {
			continue
		}
		anomaly := table.Value(row, dataset.ColAnomaly).String()
		if (risk > highRiskFloor && anomaly == "low_risk") ||
			(risk < lowRiskCeiling && anomaly == "high_risk") {
			flagged = append(flagged, row)
		}
	}
	return flagged
}

// flagLargeNewAccountTransactions finds big transfers from accounts in the
// "new" age group.
func flagLargeNewAccountTransactions(table *dataset.Table) []int {
	var flagged []int
	for row := 0; row < table.NumRows(); row++ {
		amount, ok := table.Value(row, dataset.ColAmount).AsNumber()
		if !ok {
			continue
		}
		if amount > largeAmountThreshold && table.Value(row, dataset.ColAgeGroup).String() == "new" {
			flagged = append(flagged, row)
		}
	}
	return flagged
}

// flagNegativeAmounts finds rows with a negative amount. Cleaning cannot
// produce one, so any hit means an upstream invariant broke.
func flagNegativeAmounts(table *dataset.Table) []int {
	var flagged []int
	for row := 0; row < table.NumRows(); row++ {
		amount, ok := table.Value(row, dataset.ColAmount).AsNumber()
		if !ok {
			continue
		}
		if amount < 0 {
			flagged = append(flagged, row)
		}
	}
	return flagged
}

// flagExcessiveSessions finds rows whose session_duration exceeds the
// plausible ceiling.
func flagExcessiveSessions(table *dataset.Table) []int {
	var flagged []int
	for row := 0; row < table.NumRows(); row++ {
		duration, ok := table.Value(row, dataset.ColSessionDuration).AsNumber()
		if !ok {
			continue
		}
		if duration > sessionDurationLimit {
			flagged = append(flagged, row)
		}
	}
	return flagged
}
