package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every resolved file system location the pipeline touches.
// All relative configuration paths resolve against the working directory,
// which matches how the tool is invoked from a data project checkout.
type Paths struct {
	WorkingDir  string
	InputFile   string
	CleanedFile string
	ReportsDir  string
	LogsDir     string

	// Well-known report files inside ReportsDir
	RegionRiskCSV string
	TopSalesCSV   string
}

// NewPaths resolves all configured paths to absolute form
func NewPaths(cfg *Config) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}

	p := &Paths{
		WorkingDir:  wd,
		InputFile:   resolve(wd, cfg.Pipeline.InputFile),
		CleanedFile: resolve(wd, cfg.Pipeline.CleanedFile),
		ReportsDir:  resolve(wd, cfg.Pipeline.ReportsDir),
		LogsDir:     resolve(wd, DefaultLogsDir),
	}
	p.RegionRiskCSV = filepath.Join(p.ReportsDir, RegionRiskReportFile)
	p.TopSalesCSV = filepath.Join(p.ReportsDir, TopSalesReportFile)

	return p, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

// EnsureDirectories creates the directories the pipeline writes into. The
// input side is left alone: a missing input directory surfaces as a missing
// source, not as something the tool creates.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{
		filepath.Dir(p.CleanedFile),
		p.ReportsDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// ReportFile returns the absolute path of a report file inside ReportsDir
func (p *Paths) ReportFile(name string) string {
	return filepath.Join(p.ReportsDir, name)
}

// LogPathResolution logs the resolved paths for troubleshooting
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Resolved pipeline paths",
		slog.String("working_dir", p.WorkingDir),
		slog.String("input_file", p.InputFile),
		slog.String("cleaned_file", p.CleanedFile),
		slog.String("reports_dir", p.ReportsDir))
}
