package cleaning

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudcli/internal/dataset"
)

func TestAddressStage(t *testing.T) {
	columns := []string{dataset.ColSendingAddress, dataset.ColReceivingAddress}
	table := buildTable(t, columns, [][]string{
		{testAddr("a"), testAddr("b")},            // kept
		{testAddr("a")[:41], testAddr("b")},       // sending too short
		{testAddr("a"), "ab" + testAddr("c")[2:]}, // receiving lacks the 0x prefix
		{"", testAddr("b")},                       // sending missing
		{testAddr("d"), testAddr("e")},            // kept
	})

	out, result, err := NewAddressStage().Apply(context.Background(), table)
	require.NoError(t, err)
	assert.False(t, result.Skipped)

	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, testAddr("a"), out.Value(0, dataset.ColSendingAddress).String())
	assert.Equal(t, testAddr("d"), out.Value(1, dataset.ColSendingAddress).String())
}

func TestAddressStage_SkipsWithoutColumns(t *testing.T) {
	table := buildTable(t, []string{dataset.ColAmount}, [][]string{{"1"}})

	out, result, err := NewAddressStage().Apply(context.Background(), table)
	require.NoError(t, err)
	assert.True(t, result.Skipped)
	assert.Equal(t, 1, out.NumRows())
}

func TestIPPrefixStage(t *testing.T) {
	table := buildTable(t, []string{dataset.ColIPPrefix}, [][]string{
		{"0.0"},
		{"0"},
		{"NaN"},
		{"NONE"},
		{""},
		{"172.16"},
		{InvalidIPSentinel},
	})

	out, result, err := NewIPPrefixStage().Apply(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 5, result.CellsRewritten)
	assert.Equal(t, 7, out.NumRows(), "flagging never drops rows")

	for _, row := range []int{0, 1, 2, 3, 4, 6} {
		assert.Equal(t, InvalidIPSentinel, out.Value(row, dataset.ColIPPrefix).String(), "row %d", row)
	}
	assert.Equal(t, "172.16", out.Value(5, dataset.ColIPPrefix).String())
}

func TestTimestampStage(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	table := buildTable(t, []string{dataset.ColTimestamp}, [][]string{
		{"1609459200"},    // 2021-01-01, fine
		{"631152000"},     // 1990-01-01, pre-2000
		{"4102444800"},    // 2100-01-01, future
		{"not-a-time"},    // conversion failure
		{""},              // already missing
		{"1e300"},         // beyond representable instants
		{"1609459200.25"}, // fractional seconds survive
	})

	stage := NewTimestampStage(func() time.Time { return now })
	out, result, err := stage.Apply(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 7, out.NumRows(), "validation never drops rows")
	assert.Equal(t, map[string]int{
		"pre_2000_instants": 1,
		"future_instants":   1,
		// not-a-time and 1e300 fail conversion; the empty cell only
		// counts toward invalid instants.
		"conversion_failures": 2,
		"invalid_instants":    3,
	}, result.Details)
	assert.Equal(t, 4, result.CellsRewritten)

	instant, ok := out.Value(0, dataset.ColTimestamp).Instant()
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), instant)

	fractional, ok := out.Value(6, dataset.ColTimestamp).Instant()
	require.True(t, ok)
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 250000000, time.UTC), fractional)

	assert.True(t, out.Value(3, dataset.ColTimestamp).IsMissing())
	assert.True(t, out.Value(5, dataset.ColTimestamp).IsMissing())
}

func TestRegionStage(t *testing.T) {
	table := buildTable(t, []string{dataset.ColLocationRegion, dataset.ColAmount}, [][]string{
		{"Europe", "1"},
		{"NONE", "2"},
		{"nan", "3"},
		{"0", "4"},
		{"", "5"},
		{"south america", "6"},
	})

	out, result, err := NewRegionStage().Apply(context.Background(), table)
	require.NoError(t, err)

	assert.Equal(t, 2, result.CellsRewritten, "Europe and NONE change case")
	require.Equal(t, 2, out.NumRows())
	assert.Equal(t, "europe", out.Value(0, dataset.ColLocationRegion).String())
	assert.Equal(t, "south america", out.Value(1, dataset.ColLocationRegion).String())
}

func TestDuplicateStage(t *testing.T) {
	table := buildTable(t, []string{dataset.ColAmount, dataset.ColRiskScore}, [][]string{
		{"1", "10"},
		{"1", "10"},
		{"1", "20"},
		{"1", "10"},
	})

	out, _, err := NewDuplicateStage().Apply(context.Background(), table)
	require.NoError(t, err)

	require.Equal(t, 2, out.NumRows(), "first occurrence survives, repeats do not")
	assert.Equal(t, "10", out.Value(0, dataset.ColRiskScore).String())
	assert.Equal(t, "20", out.Value(1, dataset.ColRiskScore).String())
}
