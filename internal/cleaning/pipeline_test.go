package cleaning

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudcli/internal/dataset"
)

// buildTable assembles a table from raw string cells, mirroring how the
// loader presents a source file: empty cells are missing, everything else
// is a string.
func buildTable(t *testing.T, columns []string, rows [][]string) *dataset.Table {
	t.Helper()
	table, err := dataset.NewTable(columns)
	require.NoError(t, err)
	for _, row := range rows {
		values := make([]dataset.Value, len(row))
		for i, cell := range row {
			if cell == "" {
				values[i] = dataset.Missing()
			} else {
				values[i] = dataset.StringValue(cell)
			}
		}
		require.NoError(t, table.AppendRow(values))
	}
	return table
}

// testAddr builds a well-formed 42-character address from a repeated rune.
func testAddr(c string) string {
	return addressPrefix + strings.Repeat(c, addressLength-len(addressPrefix))
}

func fullColumns() []string {
	return []string{
		dataset.ColSendingAddress,
		dataset.ColReceivingAddress,
		dataset.ColIPPrefix,
		dataset.ColTransactionType,
		dataset.ColLocationRegion,
		dataset.ColAnomaly,
		dataset.ColAmount,
		dataset.ColRiskScore,
		dataset.ColTimestamp,
	}
}

func fullRow(overrides map[string]string) []string {
	row := map[string]string{
		dataset.ColSendingAddress:   testAddr("a"),
		dataset.ColReceivingAddress: testAddr("b"),
		dataset.ColIPPrefix:         "192.0",
		dataset.ColTransactionType:  "sale",
		dataset.ColLocationRegion:   "Europe",
		dataset.ColAnomaly:          "low_risk",
		dataset.ColAmount:           "1000",
		dataset.ColRiskScore:        "40",
		dataset.ColTimestamp:        "1609459200",
	}
	for k, v := range overrides {
		row[k] = v
	}
	cells := make([]string, 0, len(fullColumns()))
	for _, col := range fullColumns() {
		cells = append(cells, row[col])
	}
	return cells
}

func TestPipeline_Run(t *testing.T) {
	table := buildTable(t, fullColumns(), [][]string{
		fullRow(nil),
		fullRow(map[string]string{dataset.ColSendingAddress: "0xshort"}), // dropped by addresses
		fullRow(map[string]string{dataset.ColLocationRegion: "NONE"}),    // dropped by regions
		// The distinct amount keeps this row from collapsing into row 0
		// once its risk score is imputed.
		fullRow(map[string]string{dataset.ColRiskScore: "None", dataset.ColAmount: "2500"}),
		fullRow(nil), // exact duplicate of the first row, dropped last
	})

	cleaned, outcome, err := NewPipeline(nil).Run(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 5, outcome.InitialRows)
	assert.Equal(t, 2, outcome.FinalRows)
	assert.Equal(t, 3, outcome.RowsRemoved)
	assert.InDelta(t, 40.0, outcome.RetentionRate, 0.001)
	require.Len(t, outcome.Stages, 7)

	// Stage accounting matches the row flow.
	assert.Equal(t, 1, outcome.Stage(StageIDAddresses).RowsRemoved)
	assert.Equal(t, 1, outcome.Stage(StageIDRegions).RowsRemoved)
	assert.Equal(t, 1, outcome.Stage(StageIDDuplicates).RowsRemoved)
	assert.Equal(t, 1, outcome.Stage(StageIDRiskScore).CellsImputed)

	// The imputed score is the median of the surviving 40s.
	score, ok := cleaned.Value(1, dataset.ColRiskScore).Num()
	require.True(t, ok)
	assert.Equal(t, 40.0, score)

	// Regions are lowercased in the output.
	assert.Equal(t, "europe", cleaned.Value(0, dataset.ColLocationRegion).String())

	// The input table is untouched: still 5 rows, still raw strings.
	assert.Equal(t, 5, table.NumRows())
	assert.Equal(t, dataset.StringValue("Europe"), table.Value(0, dataset.ColLocationRegion))
}

func TestPipeline_RunTwiceIsIdempotent(t *testing.T) {
	table := buildTable(t, fullColumns(), [][]string{
		fullRow(nil),
		fullRow(map[string]string{dataset.ColRiskScore: "", dataset.ColLocationRegion: "Asia"}),
		fullRow(map[string]string{dataset.ColIPPrefix: "0.0", dataset.ColAmount: "None"}),
		fullRow(map[string]string{dataset.ColTimestamp: "not-a-time"}),
	})

	once, _, err := NewPipeline(nil).Run(context.Background(), table)
	require.NoError(t, err)

	twice, outcome, err := NewPipeline(nil).Run(context.Background(), once)
	require.NoError(t, err)

	assert.Equal(t, once, twice, "a second run must change nothing")
	assert.Zero(t, outcome.RowsRemoved)
	for _, stage := range outcome.Stages {
		assert.Zero(t, stage.CellsImputed, stage.ID)
		assert.Zero(t, stage.CellsRewritten, stage.ID)
	}
}

func TestPipeline_EmptyInput(t *testing.T) {
	table := buildTable(t, fullColumns(), nil)

	cleaned, outcome, err := NewPipeline(nil).Run(context.Background(), table)
	require.NoError(t, err)

	assert.Zero(t, cleaned.NumRows())
	assert.Zero(t, outcome.InitialRows)
	assert.Zero(t, outcome.FinalRows)
	assert.Equal(t, 100.0, outcome.RetentionRate, "an empty input retains everything")
}

func TestPipeline_SkipsStagesForAbsentColumns(t *testing.T) {
	table := buildTable(t,
		[]string{dataset.ColAmount},
		[][]string{{"100"}, {"100"}, {"200"}})

	cleaned, outcome, err := NewPipeline(nil).Run(context.Background(), table)
	require.NoError(t, err)

	assert.True(t, outcome.Stage(StageIDAddresses).Skipped)
	assert.True(t, outcome.Stage(StageIDIPPrefix).Skipped)
	assert.True(t, outcome.Stage(StageIDRiskScore).Skipped)
	assert.True(t, outcome.Stage(StageIDTimestamps).Skipped)
	assert.True(t, outcome.Stage(StageIDRegions).Skipped)

	// Amount imputation and deduplication still run.
	assert.False(t, outcome.Stage(StageIDAmount).Skipped)
	assert.False(t, outcome.Stage(StageIDDuplicates).Skipped)
	assert.Equal(t, 2, cleaned.NumRows(), "duplicate amount row still collapses")
}

func TestRetentionRate(t *testing.T) {
	assert.Equal(t, 100.0, retentionRate(0, 0))
	assert.Equal(t, 100.0, retentionRate(10, 10))
	assert.Equal(t, 50.0, retentionRate(10, 5))
	assert.Equal(t, 0.0, retentionRate(10, 0))
}
