package exporter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudcli/internal/dataset"
)

func TestTableExporter_ExportCleanedTable(t *testing.T) {
	table, err := dataset.NewTable([]string{
		dataset.ColReceivingAddress, dataset.ColAmount, dataset.ColRiskScore, dataset.ColTimestamp,
	})
	require.NoError(t, err)

	ts := time.Date(2023, 5, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, table.AppendRow([]dataset.Value{
		dataset.StringValue("0xabc"),
		dataset.NumberValue(1500.5),
		dataset.NumberValue(42),
		dataset.TimeValue(ts),
	}))
	require.NoError(t, table.AppendRow([]dataset.Value{
		dataset.StringValue("0xdef"),
		dataset.NumberValue(20),
		dataset.Missing(),
		dataset.Missing(),
	}))

	paths := testPaths(t)
	out := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, NewTableExporter(paths).ExportCleanedTable(table, out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)

	want := "receiving_address,amount,risk_score,timestamp\n" +
		"0xabc,1500.5,42,2023-05-01 08:00:00\n" +
		"0xdef,20,,\n"
	assert.Equal(t, want, string(got))
}

func TestTableExporter_EmptyTableWritesHeaderOnly(t *testing.T) {
	table, err := dataset.NewTable([]string{dataset.ColAmount})
	require.NoError(t, err)

	paths := testPaths(t)
	out := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, NewTableExporter(paths).ExportCleanedTable(table, out))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "amount\n", string(got))
}
