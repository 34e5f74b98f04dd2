package main

import (
	"context"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudcli/internal/config"
	"fraudcli/internal/dataset"
	"fraudcli/internal/pipeline"
	"fraudcli/internal/reports"
)

func TestFormatStd(t *testing.T) {
	assert.Equal(t, "n/a", formatStd(math.NaN()))
	assert.Equal(t, "7.07", formatStd(7.07))
	assert.Equal(t, "0.00", formatStd(0))
}

func TestFormatInstant(t *testing.T) {
	assert.Equal(t, "no timestamp", formatInstant(time.Time{}))

	instant := time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2023-05-01 08:00:00", formatInstant(instant))
}

func TestSortedKeys(t *testing.T) {
	m := map[string]int{"b": 1, "a": 2, "c": 3}
	assert.Equal(t, []string{"a", "b", "c"}, sortedKeys(m))
	assert.Empty(t, sortedKeys(map[string]int{}))
}

func testConfig(t *testing.T) (*config.Config, *config.Paths) {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Pipeline.InputFile = filepath.Join(base, "data", "input.csv")
	cfg.Pipeline.CleanedFile = filepath.Join(base, "data", "cleaned.csv")
	cfg.Pipeline.ReportsDir = filepath.Join(base, "data", "reports")
	cfg.Logging.FilePath = filepath.Join(base, "logs", "test.log")
	paths, err := config.NewPaths(cfg)
	require.NoError(t, err)
	require.NoError(t, paths.EnsureDirectories())
	return cfg, paths
}

func testResult(t *testing.T) *pipeline.RunResult {
	t.Helper()
	table, err := dataset.NewTable([]string{"amount"})
	require.NoError(t, err)
	require.NoError(t, table.AppendRow([]dataset.Value{dataset.NumberValue(10)}))

	return &pipeline.RunResult{
		RunID:   "test-run",
		Cleaned: table,
		RegionRisk: &reports.RegionRiskReport{
			Rows: []reports.RegionRiskRow{
				{Region: "europe", AverageRiskScore: 50, StdDev: math.NaN(), Count: 1},
			},
		},
		TopSales: &reports.TopSalesReport{
			Rows: []reports.TopSaleRow{
				{ReceivingAddress: "0xabc", Amount: 900},
			},
		},
	}
}

func TestPersistOutputs(t *testing.T) {
	cfg, paths := testConfig(t)
	cfg.Pipeline.WriteReports = true
	result := testResult(t)

	err := persistOutputs(context.Background(), slog.Default(), cfg, paths, result)
	require.NoError(t, err)

	for _, path := range []string{paths.CleanedFile, paths.RegionRiskCSV, paths.TopSalesCSV} {
		_, statErr := os.Stat(path)
		assert.NoError(t, statErr, path)
	}
}

func TestPersistOutputs_ReportsDisabled(t *testing.T) {
	cfg, paths := testConfig(t)
	cfg.Pipeline.WriteReports = false
	result := testResult(t)

	err := persistOutputs(context.Background(), slog.Default(), cfg, paths, result)
	require.NoError(t, err)

	_, statErr := os.Stat(paths.CleanedFile)
	assert.NoError(t, statErr)
	_, statErr = os.Stat(paths.RegionRiskCSV)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(paths.TopSalesCSV)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPersistOutputs_NilReportsAreSkipped(t *testing.T) {
	cfg, paths := testConfig(t)
	cfg.Pipeline.WriteReports = true
	result := testResult(t)
	result.RegionRisk = nil
	result.TopSales = nil

	err := persistOutputs(context.Background(), slog.Default(), cfg, paths, result)
	require.NoError(t, err)

	_, statErr := os.Stat(paths.RegionRiskCSV)
	assert.True(t, os.IsNotExist(statErr))
}
