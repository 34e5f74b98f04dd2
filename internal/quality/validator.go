// Package quality implements the pre-cleaning data quality checks. The
// validator inspects a freshly loaded table and reports missing values,
// duplicate rows, out-of-domain categories and out-of-range numerics. It
// never mutates the table and never fails: findings are advisory and the
// pipeline proceeds regardless of what is reported here.
package quality

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"fraudcli/internal/dataset"
)

// ValidationReport captures what the validator found in a raw table. A
// section is populated only when the corresponding check found something,
// so an empty report means the table passed every check.
type ValidationReport struct {
	Rows    int
	Columns int

	// MissingCounts holds, per column, the number of missing cells.
	// Columns with zero missing cells carry no entry.
	MissingCounts map[string]int

	// DuplicateRows counts rows that exactly repeat an earlier row
	// across all columns.
	DuplicateRows int

	// InvalidCategories holds, per categorical column, the distinct
	// observed values outside the column's domain, sorted. Missing
	// sentinels are not treated as invalid.
	InvalidCategories map[string][]string

	// RangeViolations holds, per numeric column, how many values fell
	// outside the documented bounds and how many could not be converted
	// to a number at all.
	RangeViolations map[string]RangeViolation
}

// RangeViolation describes the numeric findings for one column.
type RangeViolation struct {
	Range              dataset.NumericRange
	OutOfRange         int
	ConversionFailures int
}

// HasIssues reports whether any check produced a finding.
func (r *ValidationReport) HasIssues() bool {
	return len(r.MissingCounts) > 0 ||
		r.DuplicateRows > 0 ||
		len(r.InvalidCategories) > 0 ||
		len(r.RangeViolations) > 0
}

// IssueCount totals the individual findings across all checks: each missing
// cell, duplicate row, invalid category value and numeric violation counts
// as one.
func (r *ValidationReport) IssueCount() int {
	count := r.DuplicateRows
	for _, n := range r.MissingCounts {
		count += n
	}
	for _, values := range r.InvalidCategories {
		count += len(values)
	}
	for _, violation := range r.RangeViolations {
		count += violation.OutOfRange + violation.ConversionFailures
	}
	return count
}

// Validator runs the quality checks against a table.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator. A nil logger falls back to the default.
func NewValidator(logger *slog.Logger) *Validator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Validator{logger: logger.With(slog.String("component", "quality"))}
}

// Validate runs all checks and assembles the report. The four checks are
// independent, so they run concurrently; each one reads the table and
// writes only its own report section.
func (v *Validator) Validate(ctx context.Context, table *dataset.Table) *ValidationReport {
	report := &ValidationReport{
		Rows:    table.NumRows(),
		Columns: table.NumColumns(),
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		report.MissingCounts = missingCounts(table)
		return nil
	})
	g.Go(func() error {
		report.DuplicateRows = duplicateRows(table)
		return nil
	})
	g.Go(func() error {
		report.InvalidCategories = invalidCategories(table)
		return nil
	})
	g.Go(func() error {
		report.RangeViolations = rangeViolations(table)
		return nil
	})
	// The checks never return errors; Wait only synchronizes them.
	_ = g.Wait()

	v.logger.InfoContext(ctx, "Validation completed",
		slog.Int("rows", report.Rows),
		slog.Int("columns_missing_values", len(report.MissingCounts)),
		slog.Int("duplicate_rows", report.DuplicateRows),
		slog.Int("columns_invalid_categories", len(report.InvalidCategories)),
		slog.Int("columns_range_violations", len(report.RangeViolations)))

	return report
}

// missingCounts counts missing cells per column, keeping only columns
// where the count is positive.
func missingCounts(table *dataset.Table) map[string]int {
	counts := make(map[string]int)
	for col, name := range table.Columns() {
		n := 0
		for row := 0; row < table.NumRows(); row++ {
			if table.ValueAt(row, col).IsMissing() {
				n++
			}
		}
		if n > 0 {
			counts[name] = n
		}
	}
	if len(counts) == 0 {
		return nil
	}
	return counts
}

// duplicateRows counts rows identical to an earlier row across all columns.
func duplicateRows(table *dataset.Table) int {
	seen := make(map[string]struct{}, table.NumRows())
	duplicates := 0
	for row := 0; row < table.NumRows(); row++ {
		key := table.RowKey(row)
		if _, ok := seen[key]; ok {
			duplicates++
			continue
		}
		seen[key] = struct{}{}
	}
	return duplicates
}

// invalidCategories collects, per categorical column present in the table,
// the distinct values outside the declared domain. location_region is
// matched case-insensitively because raw feeds carry mixed-case region
// names that normalize to valid entries later in the pipeline.
func invalidCategories(table *dataset.Table) map[string][]string {
	findings := make(map[string][]string)
	for _, name := range dataset.CategoricalColumns() {
		col, ok := table.ColumnIndex(name)
		if !ok {
			continue
		}
		domain, _ := dataset.DomainOf(name)
		allowed := make(map[string]struct{}, len(domain))
		for _, d := range domain {
			allowed[d] = struct{}{}
		}
		foldCase := name == dataset.ColLocationRegion

		invalid := make(map[string]struct{})
		for row := 0; row < table.NumRows(); row++ {
			value := table.ValueAt(row, col)
			if value.IsMissing() {
				continue
			}
			observed := value.String()
			if dataset.IsMissingSentinel(observed) {
				continue
			}
			candidate := observed
			if foldCase {
				candidate = strings.ToLower(observed)
			}
			if _, ok := allowed[candidate]; !ok {
				invalid[observed] = struct{}{}
			}
		}
		if len(invalid) == 0 {
			continue
		}
		values := make([]string, 0, len(invalid))
		for v := range invalid {
			values = append(values, v)
		}
		sort.Strings(values)
		findings[name] = values
	}
	if len(findings) == 0 {
		return nil
	}
	return findings
}

// rangeViolations checks every bounded numeric column present in the table.
// Missing cells are skipped; non-missing cells that cannot be read as a
// number count as conversion failures, not as range violations.
func rangeViolations(table *dataset.Table) map[string]RangeViolation {
	findings := make(map[string]RangeViolation)
	for _, name := range dataset.NumericColumns() {
		col, ok := table.ColumnIndex(name)
		if !ok {
			continue
		}
		bounds, ok := dataset.RangeOf(name)
		if !ok {
			continue
		}

		violation := RangeViolation{Range: bounds}
		for row := 0; row < table.NumRows(); row++ {
			value := table.ValueAt(row, col)
			if value.IsMissing() {
				continue
			}
			num, ok := value.AsNumber()
			if !ok {
				violation.ConversionFailures++
				continue
			}
			if !bounds.Contains(num) {
				violation.OutOfRange++
			}
		}
		if violation.OutOfRange > 0 || violation.ConversionFailures > 0 {
			findings[name] = violation
		}
	}
	if len(findings) == 0 {
		return nil
	}
	return findings
}
