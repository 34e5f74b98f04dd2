package exporter

import (
	"fmt"

	"fraudcli/internal/config"
	"fraudcli/internal/dataset"
)

// TableExporter persists dataset tables produced by the cleaning pipeline
type TableExporter struct {
	csvWriter *CSVWriter
}

// NewTableExporter creates a new table exporter
func NewTableExporter(paths *config.Paths) *TableExporter {
	return &TableExporter{
		csvWriter: NewCSVWriter(paths),
	}
}

// ExportCleanedTable writes the cleaned dataset to outputPath, one CSV row
// per table row in table order. Rows are streamed so a large dataset is
// never duplicated in memory. The file carries no BOM because it feeds
// analysis tools rather than Excel.
func (t *TableExporter) ExportCleanedTable(table *dataset.Table, outputPath string) error {
	stream, err := t.csvWriter.CreateStreamWriter(outputPath, table.Columns())
	if err != nil {
		return fmt.Errorf("failed to create stream writer: %w", err)
	}

	for i := 0; i < table.NumRows(); i++ {
		if err := stream.WriteRecord(t.rowToCSVRow(table, i)); err != nil {
			stream.Close()
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := stream.Close(); err != nil {
		return fmt.Errorf("failed to close stream: %w", err)
	}
	return nil
}

// rowToCSVRow renders one table row as CSV cells. Missing values render
// as empty cells.
func (t *TableExporter) rowToCSVRow(table *dataset.Table, row int) []string {
	record := make([]string, table.NumColumns())
	for col := 0; col < table.NumColumns(); col++ {
		record[col] = table.ValueAt(row, col).String()
	}
	return record
}
