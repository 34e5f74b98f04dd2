package dataset

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "fraudcli/internal/errors"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_CSV(t *testing.T) {
	path := writeTempCSV(t, "amount,risk_score,location_region\n100,42,Europe\n,None,\n")

	table, err := Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"amount", "risk_score", "location_region"}, table.Columns())
	require.Equal(t, 2, table.NumRows())

	// Every populated cell loads as a string; conversion happens downstream.
	assert.Equal(t, StringValue("100"), table.Value(0, ColAmount))
	assert.Equal(t, StringValue("None"), table.Value(1, ColRiskScore))

	// Empty cells load as missing.
	assert.True(t, table.Value(1, ColAmount).IsMissing())
	assert.True(t, table.Value(1, ColLocationRegion).IsMissing())
}

func TestLoad_CSVStripsByteOrderMark(t *testing.T) {
	path := writeTempCSV(t, "\uFEFFamount,risk_score\n10,20\n")

	table, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, table.HasColumn(ColAmount))
}

func TestLoad_MissingFile(t *testing.T) {
	err := func() error {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
		return err
	}()

	require.Error(t, err)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsFatal(err))
}

func TestLoad_StructuralFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "ragged row", content: "a,b\n1,2,3\n"},
		{name: "blank header cell", content: "a,,c\n1,2,3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(context.Background(), writeTempCSV(t, tt.content))
			require.Error(t, err)
			assert.True(t, apperrors.IsStructural(err), "got %v", err)
		})
	}
}

func TestLoad_HeaderOnlyCSV(t *testing.T) {
	path := writeTempCSV(t, "amount,risk_score\n")

	table, err := Load(context.Background(), path)
	require.NoError(t, err)
	assert.Zero(t, table.NumRows())
	assert.Equal(t, 2, table.NumColumns())
}

func TestLoad_Workbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"amount", "risk_score"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"100", "42"}))
	// Short row: trailing cells come back absent and must load as missing.
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]interface{}{"55"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	table, err := Load(context.Background(), path)
	require.NoError(t, err)

	require.Equal(t, 2, table.NumRows())
	assert.Equal(t, StringValue("42"), table.Value(0, ColRiskScore))
	assert.Equal(t, StringValue("55"), table.Value(1, ColAmount))
	assert.True(t, table.Value(1, ColRiskScore).IsMissing())
}
