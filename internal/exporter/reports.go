package exporter

import (
	"fmt"
	"math"
	"time"

	"fraudcli/internal/config"
	"fraudcli/internal/reports"
)

// ReportExporter writes the analysis reports produced at the end of a run
type ReportExporter struct {
	csvWriter *CSVWriter
}

// NewReportExporter creates a new report exporter
func NewReportExporter(paths *config.Paths) *ReportExporter {
	return &ReportExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportRegionRisk writes the regional risk statistics to outputPath,
// preserving the report's row order.
func (r *ReportExporter) ExportRegionRisk(report *reports.RegionRiskReport, outputPath string) error {
	records := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		records = append(records, r.regionRiskToCSVRow(row))
	}

	if err := r.csvWriter.WriteSimpleCSV(outputPath, r.regionRiskHeaders(), records); err != nil {
		return fmt.Errorf("failed to write region risk report: %w", err)
	}
	return nil
}

// ExportTopSales writes the top sale addresses to outputPath.
func (r *ReportExporter) ExportTopSales(report *reports.TopSalesReport, outputPath string) error {
	records := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		records = append(records, r.topSaleToCSVRow(row))
	}

	if err := r.csvWriter.WriteSimpleCSV(outputPath, r.topSalesHeaders(), records); err != nil {
		return fmt.Errorf("failed to write top sales report: %w", err)
	}
	return nil
}

// regionRiskHeaders returns the CSV headers for the regional statistics
func (r *ReportExporter) regionRiskHeaders() []string {
	return []string{"region", "average_risk_score", "std", "count"}
}

// regionRiskToCSVRow converts one statistics row to CSV cells. An
// undefined deviation renders as an empty cell.
func (r *ReportExporter) regionRiskToCSVRow(row reports.RegionRiskRow) []string {
	std := ""
	if !math.IsNaN(row.StdDev) {
		std = formatFloat(row.StdDev)
	}
	average := ""
	if !math.IsNaN(row.AverageRiskScore) {
		average = formatFloat(row.AverageRiskScore)
	}
	return []string{
		row.Region,
		average,
		std,
		formatInt(row.Count),
	}
}

// topSalesHeaders returns the CSV headers for the top sale addresses
func (r *ReportExporter) topSalesHeaders() []string {
	return []string{"receiving_address", "amount", "timestamp"}
}

// topSaleToCSVRow converts one sale row to CSV cells. Amounts keep their
// source precision; an undated sale renders an empty timestamp.
func (r *ReportExporter) topSaleToCSVRow(row reports.TopSaleRow) []string {
	timestamp := ""
	if !row.Timestamp.IsZero() {
		timestamp = row.Timestamp.UTC().Format(time.RFC3339)
	}
	return []string{
		row.ReceivingAddress,
		formatNumber(row.Amount),
		timestamp,
	}
}
