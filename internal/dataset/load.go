package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "fraudcli/internal/errors"
)

// Load reads a tabular source into a Table. The format is chosen by file
// extension: .xlsx and .xlsm load the first worksheet, everything else is
// read as CSV. Cells arrive as string values; blank cells are missing.
func Load(ctx context.Context, path string) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperrors.NewNotFoundError("source file").WithContext("path", path)
		}
		return nil, apperrors.NewStructuralError("failed to stat source file", err).WithContext("path", path)
	}

	var (
		table *Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		table, err = loadExcel(path)
	default:
		table, err = loadCSV(path)
	}
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "Loaded source table",
		slog.String("path", path),
		slog.Int("rows", table.NumRows()),
		slog.Int("columns", table.NumColumns()))

	return table, nil
}

// loadCSV reads a CSV source with a mandatory header row
func loadCSV(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStructuralError("failed to open source file", err).WithContext("path", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.NewStructuralError("source file is empty", nil).WithContext("path", path)
	}
	if err != nil {
		return nil, apperrors.NewStructuralError("failed to read header row", err).WithContext("path", path)
	}
	header[0] = strings.TrimPrefix(header[0], "\uFEFF")

	table, err := NewTable(header)
	if err != nil {
		return nil, apperrors.NewStructuralError("invalid header row", err).WithContext("path", path)
	}

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.NewStructuralError("malformed csv record", err).
				WithContext("path", path).
				WithContext("row", rowNum)
		}

		if err := table.AppendRow(cellsFromStrings(record)); err != nil {
			return nil, apperrors.NewStructuralError("row width mismatch", err).
				WithContext("path", path).
				WithContext("row", rowNum)
		}
	}

	return table, nil
}

// loadExcel reads the first worksheet of an Excel workbook. Trailing cells
// excelize omits on short rows are padded out as missing.
func loadExcel(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewStructuralError("failed to open workbook", err).WithContext("path", path)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewStructuralError("workbook has no sheets", nil).WithContext("path", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewStructuralError("failed to read worksheet", err).
			WithContext("path", path).
			WithContext("sheet", sheets[0])
	}
	if len(rows) == 0 {
		return nil, apperrors.NewStructuralError("source file is empty", nil).WithContext("path", path)
	}

	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	table, err := NewTable(header)
	if err != nil {
		return nil, apperrors.NewStructuralError("invalid header row", err).WithContext("path", path)
	}

	width := table.NumColumns()
	for i, row := range rows[1:] {
		if len(row) > width {
			return nil, apperrors.NewStructuralError(
				fmt.Sprintf("row has %d cells, header has %d", len(row), width), nil).
				WithContext("path", path).
				WithContext("row", i+2)
		}
		padded := make([]string, width)
		copy(padded, row)
		if err := table.AppendRow(cellsFromStrings(padded)); err != nil {
			return nil, apperrors.NewStructuralError("row width mismatch", err).
				WithContext("path", path).
				WithContext("row", i+2)
		}
	}

	return table, nil
}

// cellsFromStrings converts raw cells to values; blank cells are missing
func cellsFromStrings(record []string) []Value {
	values := make([]Value, len(record))
	for i, cell := range record {
		if cell == "" {
			values[i] = Missing()
		} else {
			values[i] = StringValue(cell)
		}
	}
	return values
}
