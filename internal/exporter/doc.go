// Package exporter provides CSV export functionality for pipeline artifacts.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers, streaming,
// and UTF-8 BOM for Excel compatibility.
//
// TableExporter: Persists a cleaned dataset table, streaming rows so large
// inputs never materialize a second copy in memory.
//
// ReportExporter: Writes the analysis report files (regional risk statistics
// and top sale addresses) produced at the end of a pipeline run.
//
// Example usage:
//
//	writer := exporter.NewCSVWriter(paths)
//
//	// Persist the cleaned dataset
//	tables := exporter.NewTableExporter(paths)
//	err := tables.ExportCleanedTable(table, paths.CleanedFile)
//
//	// Write report CSVs
//	reports := exporter.NewReportExporter(paths)
//	err = reports.ExportRegionRisk(regionRisk, paths.RegionRiskCSV)
package exporter
