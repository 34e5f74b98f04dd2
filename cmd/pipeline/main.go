package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"fraudcli/internal/cleaning"
	"fraudcli/internal/config"
	"fraudcli/internal/consistency"
	apperrors "fraudcli/internal/errors"
	"fraudcli/internal/exporter"
	"fraudcli/internal/infrastructure"
	"fraudcli/internal/pipeline"
	"fraudcli/internal/profile"
	"fraudcli/internal/quality"
	"fraudcli/internal/reports"
)

func main() {
	inputFile := flag.String("input", "", "input CSV or Excel file (defaults to the configured pipeline input)")
	outputFile := flag.String("output", "", "destination for the cleaned CSV (defaults to the configured cleaned file)")
	reportsDir := flag.String("reports", "", "directory for report CSVs (defaults to the configured reports directory)")
	configFile := flag.String("config", "", "path to a YAML config file (defaults to the first well-known location)")
	logLevel := flag.String("log-level", "", "override the configured log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", config.AppName, config.AppVersion)
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags override file and environment configuration.
	if *inputFile != "" {
		cfg.Pipeline.InputFile = *inputFile
	}
	if *outputFile != "" {
		cfg.Pipeline.CleanedFile = *outputFile
	}
	if *reportsDir != "" {
		cfg.Pipeline.ReportsDir = *reportsDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	paths, err := config.NewPaths(cfg)
	if err != nil {
		slog.Error("Failed to resolve paths", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer infrastructure.CloseLogFile()

	paths.LogPathResolution()

	// One process-level trace ID covers everything logged before the
	// runner swaps in the run ID.
	ctx := infrastructure.EnsureTraceID(context.Background())

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		logger.Error("Failed to initialize telemetry", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			infrastructure.LoggerFromContext(ctx).Warn("Telemetry shutdown incomplete",
				slog.String("error", err.Error()))
		}
	}()

	runTracer, err := pipeline.NewRunTracer(providers)
	if err != nil {
		logger.Error("Failed to create run tracer", slog.String("error", err.Error()))
		os.Exit(1)
	}
	stageTracer, err := cleaning.NewStageTracer(providers)
	if err != nil {
		logger.Error("Failed to create stage tracer", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Starting fraud transaction pipeline",
		slog.String("version", config.AppVersion),
		slog.String("input_file", paths.InputFile),
		slog.String("cleaned_file", paths.CleanedFile),
		slog.String("reports_dir", paths.ReportsDir))

	runner := pipeline.NewRunner(logger).WithTelemetry(runTracer, stageTracer)

	result, err := runner.Run(ctx, paths.InputFile)
	if err != nil {
		logger.ErrorContext(ctx, "Pipeline run aborted", slog.String("error", err.Error()))
		if apperrors.IsNotFound(err) {
			fmt.Fprintf(os.Stderr, "Input file not found: %s\n", paths.InputFile)
		} else {
			fmt.Fprintf(os.Stderr, "Pipeline failed: %v\n", err)
		}
		os.Exit(1)
	}

	printProfile(result.Profile)
	printValidation(result.Validation)
	printOutcome(result.Outcome)
	printConsistency(result.Consistency)
	printRegionRisk(result.RegionRisk)
	printTopSales(result.TopSales)
	printDistributions(result.Distributions)
	printSummary(result)

	if err := persistOutputs(ctx, logger, cfg, paths, result); err != nil {
		logger.ErrorContext(ctx, "Failed to persist outputs", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "Failed to write outputs: %v\n", err)
		os.Exit(1)
	}

	providers.LogCollectedMetrics(ctx)
	infrastructure.LogRuntimeSnapshot(ctx, logger)
}

// persistOutputs writes the cleaned table and, when enabled, the report CSVs.
func persistOutputs(ctx context.Context, logger *slog.Logger, cfg *config.Config, paths *config.Paths, result *pipeline.RunResult) error {
	tableExporter := exporter.NewTableExporter(paths)
	if err := tableExporter.ExportCleanedTable(result.Cleaned, paths.CleanedFile); err != nil {
		return fmt.Errorf("cleaned table: %w", err)
	}
	fmt.Printf("Cleaned dataset written to %s\n", paths.CleanedFile)

	if !cfg.Pipeline.WriteReports {
		logger.InfoContext(ctx, "Report CSVs disabled by configuration")
		return nil
	}

	reportExporter := exporter.NewReportExporter(paths)
	if result.RegionRisk != nil {
		if err := reportExporter.ExportRegionRisk(result.RegionRisk, paths.RegionRiskCSV); err != nil {
			return fmt.Errorf("region risk report: %w", err)
		}
		fmt.Printf("Region risk report written to %s\n", paths.RegionRiskCSV)
	}
	if result.TopSales != nil {
		if err := reportExporter.ExportTopSales(result.TopSales, paths.TopSalesCSV); err != nil {
			return fmt.Errorf("top sales report: %w", err)
		}
		fmt.Printf("Top sales report written to %s\n", paths.TopSalesCSV)
	}
	return nil
}

func printProfile(p *profile.TableProfile) {
	if p == nil {
		return
	}
	fmt.Printf("\nInput profile (%d rows, %d columns)\n", p.Rows, p.Columns)
	for _, col := range p.ColumnProfiles {
		line := fmt.Sprintf("  %-18s missing=%-4d distinct=%d", col.Name, col.Missing, len(col.TopValues)+col.OtherDistinct)
		if len(col.TopValues) > 0 {
			top := col.TopValues[0]
			line += fmt.Sprintf(" top=%s(%d)", top.Value, top.Count)
		}
		if n := col.Numeric; n != nil {
			line += fmt.Sprintf(" mean=%.2f std=%s outliers=%d(%.1f%%)",
				n.Mean, formatStd(n.StdDev), n.Outliers, n.OutlierRate)
		}
		fmt.Println(line)
	}
}

func printValidation(report *quality.ValidationReport) {
	if report == nil {
		return
	}
	fmt.Printf("\nData quality findings\n")
	if !report.HasIssues() {
		fmt.Println("  none")
		return
	}
	if report.DuplicateRows > 0 {
		fmt.Printf("  duplicate rows: %d\n", report.DuplicateRows)
	}
	for _, col := range sortedKeys(report.MissingCounts) {
		fmt.Printf("  %s: %d missing\n", col, report.MissingCounts[col])
	}
	for _, col := range sortedKeys(report.InvalidCategories) {
		fmt.Printf("  %s: invalid values %s\n", col, strings.Join(report.InvalidCategories[col], ", "))
	}
	for _, col := range sortedKeys(report.RangeViolations) {
		v := report.RangeViolations[col]
		fmt.Printf("  %s: %d outside [%g, %g], %d unreadable\n",
			col, v.OutOfRange, v.Range.Min, v.Range.Max, v.ConversionFailures)
	}
}

func printOutcome(outcome *cleaning.Outcome) {
	if outcome == nil {
		return
	}
	fmt.Printf("\nCleaning stages\n")
	fmt.Printf("  %-24s %8s %8s %9s %10s\n", "stage", "in", "out", "imputed", "rewritten")
	for _, stage := range outcome.Stages {
		if stage.Skipped {
			fmt.Printf("  %-24s skipped: %s\n", stage.ID, stage.SkipReason)
			continue
		}
		fmt.Printf("  %-24s %8d %8d %9d %10d\n",
			stage.ID, stage.RowsIn, stage.RowsOut, stage.CellsImputed, stage.CellsRewritten)
	}
}

func printConsistency(report *consistency.Report) {
	if report == nil {
		return
	}
	fmt.Printf("\nConsistency checks (%d/%d passed)\n", report.Passed, report.Total)
	for _, check := range report.Checks {
		status := "pass"
		if !check.Passed {
			status = fmt.Sprintf("%d rows flagged", len(check.FlaggedRows))
		}
		fmt.Printf("  %-40s %s\n", check.Name, status)
	}
}

func printSummary(result *pipeline.RunResult) {
	s := result.Summary
	fmt.Printf("\nPipeline run %s completed in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Printf("  Input rows:       %d\n", s.InitialRows)
	fmt.Printf("  Rows removed:     %d\n", s.RowsRemoved)
	fmt.Printf("  Final rows:       %d (%.1f%% retained)\n", s.FinalRows, s.RetentionRate)
	fmt.Printf("  Cells imputed:    %d\n", s.CellsImputed)
	fmt.Printf("  Quality findings: %d\n", s.QualityIssues)
	fmt.Printf("  Consistency:      %d/%d checks passed\n", s.ChecksPassed, s.ChecksTotal)
	if !s.MostRecentTransaction.IsZero() {
		fmt.Printf("  Latest activity:  %s\n", formatInstant(s.MostRecentTransaction))
	}
}

// sortedKeys returns the map keys in lexical order for stable console output.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func printRegionRisk(report *reports.RegionRiskReport) {
	if report == nil {
		return
	}
	fmt.Printf("\nRisk score by region\n")
	fmt.Printf("  %-16s %10s %10s %8s\n", "region", "avg", "std", "count")
	for _, row := range report.Rows {
		fmt.Printf("  %-16s %10.2f %10s %8d\n",
			row.Region, row.AverageRiskScore, formatStd(row.StdDev), row.Count)
	}
}

func printTopSales(report *reports.TopSalesReport) {
	if report == nil {
		return
	}
	fmt.Printf("\nTop sale addresses by amount\n")
	for _, row := range report.Rows {
		fmt.Printf("  %s  %s  %s\n",
			row.ReceivingAddress,
			strconv.FormatFloat(row.Amount, 'f', -1, 64),
			formatInstant(row.Timestamp))
	}
	if report.Note != "" {
		fmt.Printf("  note: %s\n", report.Note)
	}
}

func printDistributions(distributions []profile.ColumnDistribution) {
	for _, distribution := range distributions {
		fmt.Printf("\n%s distribution\n", distribution.Column)
		for _, vc := range distribution.Values {
			fmt.Printf("  %-16s %6d\n", vc.Value, vc.Count)
		}
	}
}

// formatStd renders a standard deviation, which is NaN for singleton groups.
func formatStd(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatInstant(t time.Time) string {
	if t.IsZero() {
		return "no timestamp"
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
