// Package profile computes exploratory statistics over a table: shape,
// value frequencies, numeric summaries and interquartile-range outliers.
// Profiles are purely informational and never influence cleaning decisions.
package profile

import (
	"context"
	"log/slog"
	"math"
	"sort"

	"fraudcli/internal/dataset"
)

// TopValueCount caps how many distinct values a column profile lists.
const TopValueCount = 10

// iqrFenceFactor scales the interquartile range when fencing outliers.
const iqrFenceFactor = 1.5

// TableProfile describes a table's shape and per-column content.
type TableProfile struct {
	Rows    int
	Columns int

	// ColumnProfiles follows the table's column order.
	ColumnProfiles []ColumnProfile
}

// ColumnProfile describes one column.
type ColumnProfile struct {
	Name    string
	Missing int

	// TopValues lists the most frequent distinct values, most frequent
	// first; equal counts order lexically. OtherDistinct counts the
	// distinct values beyond the listed ones.
	TopValues     []ValueCount
	OtherDistinct int

	// Numeric summarizes the cells readable as numbers; nil when the
	// column holds none.
	Numeric *NumericSummary
}

// ValueCount pairs a cell's display form with its frequency.
type ValueCount struct {
	Value string
	Count int
}

// NumericSummary holds describe-style statistics over the readable numbers
// of a column. StdDev is NaN for fewer than two values.
type NumericSummary struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64

	// Outliers counts values outside the Tukey fences; OutlierRate is
	// that count as a percentage of the readable numbers.
	Outliers    int
	OutlierRate float64
	LowerFence  float64
	UpperFence  float64
}

// ColumnDistribution holds the full value frequencies for one column.
type ColumnDistribution struct {
	Column string
	Values []ValueCount
}

// Profiler computes table profiles.
type Profiler struct {
	logger *slog.Logger
}

// NewProfiler creates a profiler. A nil logger falls back to the default.
func NewProfiler(logger *slog.Logger) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{logger: logger.With(slog.String("component", "profile"))}
}

// Profile inspects every column of the table.
func (p *Profiler) Profile(ctx context.Context, table *dataset.Table) *TableProfile {
	profile := &TableProfile{
		Rows:    table.NumRows(),
		Columns: table.NumColumns(),
	}

	for col, name := range table.Columns() {
		profile.ColumnProfiles = append(profile.ColumnProfiles, p.profileColumn(table, col, name))
	}

	p.logger.DebugContext(ctx, "Table profiled",
		slog.Int("rows", profile.Rows),
		slog.Int("columns", profile.Columns))
	return profile
}

// Distributions returns the complete value frequencies for the named
// columns, skipping columns the table does not have.
func (p *Profiler) Distributions(ctx context.Context, table *dataset.Table, columns []string) []ColumnDistribution {
	var distributions []ColumnDistribution
	for _, name := range columns {
		col, ok := table.ColumnIndex(name)
		if !ok {
			continue
		}
		counts := valueCounts(table, col)
		distributions = append(distributions, ColumnDistribution{
			Column: name,
			Values: counts,
		})
	}
	return distributions
}

func (p *Profiler) profileColumn(table *dataset.Table, col int, name string) ColumnProfile {
	profile := ColumnProfile{Name: name}

	var numbers []float64
	for row := 0; row < table.NumRows(); row++ {
		value := table.ValueAt(row, col)
		if value.IsMissing() {
			profile.Missing++
			continue
		}
		if num, ok := value.AsNumber(); ok {
			numbers = append(numbers, num)
		}
	}

	counts := valueCounts(table, col)
	if len(counts) > TopValueCount {
		profile.OtherDistinct = len(counts) - TopValueCount
		counts = counts[:TopValueCount]
	}
	profile.TopValues = counts

	if len(numbers) > 0 {
		profile.Numeric = summarize(numbers)
	}
	return profile
}

// valueCounts tallies the non-missing cells of a column by display form,
// most frequent first, ties ordered lexically.
func valueCounts(table *dataset.Table, col int) []ValueCount {
	tally := make(map[string]int)
	for row := 0; row < table.NumRows(); row++ {
		value := table.ValueAt(row, col)
		if value.IsMissing() {
			continue
		}
		tally[value.String()]++
	}

	counts := make([]ValueCount, 0, len(tally))
	for value, count := range tally {
		counts = append(counts, ValueCount{Value: value, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Value < counts[j].Value
	})
	return counts
}

// summarize computes the describe-style statistics for a non-empty sample.
func summarize(values []float64) *NumericSummary {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	summary := &NumericSummary{
		Count:  len(sorted),
		Mean:   mean(sorted),
		StdDev: sampleStdDev(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}

	iqr := summary.Q3 - summary.Q1
	summary.LowerFence = summary.Q1 - iqrFenceFactor*iqr
	summary.UpperFence = summary.Q3 + iqrFenceFactor*iqr
	for _, v := range sorted {
		if v < summary.LowerFence || v > summary.UpperFence {
			summary.Outliers++
		}
	}
	summary.OutlierRate = 100 * float64(summary.Outliers) / float64(summary.Count)
	return summary
}

// quantile computes the q-th quantile of a sorted sample with linear
// interpolation between the closest order statistics.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[upper]-sorted[lower])
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns NaN for fewer than two values, where the sample
// deviation is undefined.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)-1))
}
