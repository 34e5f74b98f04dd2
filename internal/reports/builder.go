// Package reports derives the two analytical tables from a cleaned
// dataset: regional risk statistics and the top sale addresses. The
// builder never mutates its input table.
package reports

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"fraudcli/internal/dataset"
)

// TopSalesLimit is how many addresses the top-sales report selects.
const TopSalesLimit = 3

// RegionRiskReport holds per-region risk_score statistics, ordered by
// descending average. Values are rounded to two decimals; ties and regions
// with equal averages keep alphabetical order.
type RegionRiskReport struct {
	Rows []RegionRiskRow
}

// RegionRiskRow is the statistics line for one region.
type RegionRiskRow struct {
	Region           string
	AverageRiskScore float64

	// StdDev is the sample standard deviation. It is NaN when the region
	// has fewer than two usable scores, and renders as an empty cell.
	StdDev float64

	Count int
}

// TopSalesReport lists the highest-value sale per distinct receiving
// address, at most TopSalesLimit rows. Note explains an empty or short
// report.
type TopSalesReport struct {
	Rows []TopSaleRow
	Note string
}

// TopSaleRow is one selected sale record.
type TopSaleRow struct {
	ReceivingAddress string
	Amount           float64

	// Timestamp is the instant of the sale; the zero value means the
	// record carried no usable instant.
	Timestamp time.Time
}

// Builder assembles the reports.
type Builder struct {
	logger *slog.Logger
}

// NewBuilder creates a builder. A nil logger falls back to the default.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{logger: logger.With(slog.String("component", "reports"))}
}

// Build derives both reports from the cleaned table. A report whose
// required columns are absent comes back nil rather than failing the run.
func (b *Builder) Build(ctx context.Context, table *dataset.Table) (*RegionRiskReport, *TopSalesReport) {
	regionRisk := b.buildRegionRisk(ctx, table)
	topSales := b.buildTopSales(ctx, table)
	return regionRisk, topSales
}

// buildRegionRisk computes count, average and sample standard deviation of
// risk_score per region.
func (b *Builder) buildRegionRisk(ctx context.Context, table *dataset.Table) *RegionRiskReport {
	regionCol, okRegion := table.ColumnIndex(dataset.ColLocationRegion)
	riskCol, okRisk := table.ColumnIndex(dataset.ColRiskScore)
	if !okRegion || !okRisk {
		b.logger.WarnContext(ctx, "Skipping region risk report, columns absent",
			slog.Bool("has_region", okRegion),
			slog.Bool("has_risk_score", okRisk))
		return nil
	}

	// Group the usable scores by region.
	scores := make(map[string][]float64)
	for row := 0; row < table.NumRows(); row++ {
		region := table.ValueAt(row, regionCol)
		if region.IsMissing() {
			continue
		}
		key := region.String()
		if _, seen := scores[key]; !seen {
			// The region stays visible even if no score is usable.
			scores[key] = nil
		}
		if num, ok := table.ValueAt(row, riskCol).AsNumber(); ok {
			scores[key] = append(scores[key], num)
		}
	}

	// Alphabetical base order makes equal averages deterministic.
	regions := make([]string, 0, len(scores))
	for region := range scores {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	report := &RegionRiskReport{Rows: make([]RegionRiskRow, 0, len(regions))}
	for _, region := range regions {
		values := scores[region]
		report.Rows = append(report.Rows, RegionRiskRow{
			Region:           region,
			AverageRiskScore: round2(mean(values)),
			StdDev:           round2(sampleStdDev(values)),
			Count:            len(values),
		})
	}

	sort.SliceStable(report.Rows, func(i, j int) bool {
		a, e := report.Rows[i].AverageRiskScore, report.Rows[j].AverageRiskScore
		switch {
		case math.IsNaN(a):
			return false
		case math.IsNaN(e):
			return true
		default:
			return a > e
		}
	})

	b.logger.InfoContext(ctx, "Region risk report built",
		slog.Int("regions", len(report.Rows)))
	return report
}

// buildTopSales selects, per distinct receiving address, that address's
// most recent sale, then keeps the TopSalesLimit largest amounts.
func (b *Builder) buildTopSales(ctx context.Context, table *dataset.Table) *TopSalesReport {
	typeCol, okType := table.ColumnIndex(dataset.ColTransactionType)
	addrCol, okAddr := table.ColumnIndex(dataset.ColReceivingAddress)
	amountCol, okAmount := table.ColumnIndex(dataset.ColAmount)
	timeCol, okTime := table.ColumnIndex(dataset.ColTimestamp)
	if !okType || !okAddr || !okAmount || !okTime {
		b.logger.WarnContext(ctx, "Skipping top sales report, columns absent",
			slog.Bool("has_transaction_type", okType),
			slog.Bool("has_receiving_address", okAddr),
			slog.Bool("has_amount", okAmount),
			slog.Bool("has_timestamp", okTime))
		return nil
	}

	type sale struct {
		address string
		amount  float64
		hasAmt  bool
		instant time.Time
	}

	var sales []sale
	for row := 0; row < table.NumRows(); row++ {
		if table.ValueAt(row, typeCol).String() != "sale" {
			continue
		}
		address := table.ValueAt(row, addrCol)
		if address.IsMissing() {
			continue
		}
		s := sale{address: address.String()}
		s.amount, s.hasAmt = table.ValueAt(row, amountCol).AsNumber()
		if instant, ok := table.ValueAt(row, timeCol).Instant(); ok {
			s.instant = instant
		}
		sales = append(sales, s)
	}

	if len(sales) == 0 {
		b.logger.InfoContext(ctx, "Top sales report is empty, no sale transactions")
		return &TopSalesReport{Note: "no sale transactions in the dataset"}
	}

	// Oldest first; records without an instant sort before everything, so
	// a dated record always wins the most-recent slot for its address.
	sort.SliceStable(sales, func(i, j int) bool {
		return sales[i].instant.Before(sales[j].instant)
	})

	lastSeen := make(map[string]int, len(sales))
	for i, s := range sales {
		lastSeen[s.address] = i
	}
	latest := make([]sale, 0, len(lastSeen))
	for i, s := range sales {
		if lastSeen[s.address] != i {
			continue
		}
		if !s.hasAmt {
			// An unreadable amount cannot compete for the top slots.
			continue
		}
		latest = append(latest, s)
	}

	// Largest amounts first; the stable sort keeps the timestamp order
	// for equal amounts.
	sort.SliceStable(latest, func(i, j int) bool {
		return latest[i].amount > latest[j].amount
	})
	if len(latest) > TopSalesLimit {
		latest = latest[:TopSalesLimit]
	}

	report := &TopSalesReport{Rows: make([]TopSaleRow, 0, len(latest))}
	for _, s := range latest {
		report.Rows = append(report.Rows, TopSaleRow{
			ReceivingAddress: s.address,
			Amount:           s.amount,
			Timestamp:        s.instant,
		})
	}
	if len(report.Rows) < TopSalesLimit {
		report.Note = fmt.Sprintf("fewer than %d distinct sale addresses: %d", TopSalesLimit, len(report.Rows))
	}

	b.logger.InfoContext(ctx, "Top sales report built",
		slog.Int("rows", len(report.Rows)),
		slog.String("note", report.Note))
	return report
}

// mean returns the arithmetic mean, NaN for an empty sample.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation. Fewer than two
// values leave it undefined, reported as NaN.
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

// round2 rounds to two decimals, halves to even, leaving NaN untouched.
func round2(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.RoundToEven(v*100) / 100
}
