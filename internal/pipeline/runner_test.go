package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudcli/internal/cleaning"
	apperrors "fraudcli/internal/errors"
	"fraudcli/internal/profile"
)

func writeInputCSV(t *testing.T, lines []string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	content := strings.Join(lines, "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func testAddr(c string) string {
	return "0x" + strings.Repeat(c, 40)
}

func TestRunner_Run(t *testing.T) {
	header := "sending_address,receiving_address,ip_prefix,transaction_type," +
		"location_region,purchase_pattern,age_group,anomaly,amount," +
		"login_frequency,session_duration,risk_score,timestamp"
	a, b, c, d := testAddr("a"), testAddr("b"), testAddr("c"), testAddr("d")
	path := writeInputCSV(t, []string{
		header,
		a + "," + b + ",192.0,sale,Europe,focused,new,low_risk,1000,5,40,25,1609459200",
		a + "," + c + ",0.0,purchase,asia,random,veteran,high_risk,500,10,100,None,1609459300",
		"bad," + c + ",172.16,sale,europe,focused,new,low_risk,200,3,30,80,1609459400",
		a + "," + b + ",192.0,sale,Europe,focused,new,low_risk,1000,5,40,25,1609459200",
		a + "," + d + ",10.0,sale,nan,focused,new,moderate_risk,750,2,20,60,1609459500",
	})

	result, err := NewRunner(nil).Run(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.NotEmpty(t, result.RunID)

	// One row falls to address validation, one to region normalization and
	// one to duplicate removal.
	assert.Equal(t, 5, result.Summary.InitialRows)
	assert.Equal(t, 2, result.Summary.FinalRows)
	assert.Equal(t, 3, result.Summary.RowsRemoved)
	assert.InDelta(t, 40.0, result.Summary.RetentionRate, 1e-9)
	require.NotNil(t, result.Cleaned)
	assert.Equal(t, 2, result.Cleaned.NumRows())

	// The raw table profile sees all five rows.
	require.NotNil(t, result.Profile)
	assert.Equal(t, 5, result.Profile.Rows)
	assert.Equal(t, 13, result.Profile.Columns)

	// The duplicate row and the unreadable risk score are the only raw
	// quality findings.
	require.NotNil(t, result.Validation)
	assert.Equal(t, 2, result.Summary.QualityIssues)
	assert.Equal(t, 1, result.Validation.DuplicateRows)

	// The purchase row's None risk score is the single imputed cell.
	assert.Equal(t, 1, result.Summary.CellsImputed)
	risk := result.Outcome.Stage(cleaning.StageIDRiskScore)
	require.NotNil(t, risk)
	assert.Equal(t, 1, risk.CellsImputed)

	require.NotNil(t, result.Consistency)
	assert.True(t, result.Consistency.AllPassed())
	assert.Equal(t, 4, result.Summary.ChecksPassed)
	assert.Equal(t, 4, result.Summary.ChecksTotal)

	require.NotNil(t, result.RegionRisk)
	assert.Equal(t, 2, result.Summary.RegionsAnalyzed)

	// Only the surviving sale row contributes a top-sale address.
	require.NotNil(t, result.TopSales)
	require.Len(t, result.TopSales.Rows, 1)
	assert.Equal(t, b, result.TopSales.Rows[0].ReceivingAddress)
	assert.Equal(t, 1, result.Summary.TopSaleAddresses)

	require.Len(t, result.Distributions, 3)
	assert.Equal(t, "location_region", result.Distributions[0].Column)
	assert.ElementsMatch(t, []profile.ValueCount{
		{Value: "europe", Count: 1},
		{Value: "asia", Count: 1},
	}, result.Distributions[0].Values)
	assert.Equal(t, "transaction_type", result.Distributions[1].Column)
	assert.Equal(t, "anomaly", result.Distributions[2].Column)

	// The purchase row carries the latest surviving timestamp.
	latest := time.Date(2021, 1, 1, 0, 1, 40, 0, time.UTC)
	assert.True(t, latest.Equal(result.Summary.MostRecentTransaction))

	assert.Equal(t, path, result.Summary.InputPath)
	assert.False(t, result.Summary.StartedAt.IsZero())
}

func TestRunner_Run_MissingInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")

	result, err := NewRunner(nil).Run(context.Background(), path)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsNotFound(err))
	assert.True(t, apperrors.IsFatal(err))
}

func TestRunner_Run_StructuralFailure(t *testing.T) {
	path := writeInputCSV(t, []string{
		"sending_address,amount",
		"0xabc,100,extra",
	})

	result, err := NewRunner(nil).Run(context.Background(), path)

	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, apperrors.IsStructural(err))
	assert.True(t, apperrors.IsFatal(err))
}

func TestRunner_Run_UnrelatedColumns(t *testing.T) {
	path := writeInputCSV(t, []string{
		"alpha,beta",
		"1,2",
		"1,2",
	})

	result, err := NewRunner(nil).Run(context.Background(), path)
	require.NoError(t, err)

	// Cleaning still removes the exact duplicate; every other stage skips.
	assert.Equal(t, 1, result.Summary.FinalRows)
	duplicates := result.Outcome.Stage(cleaning.StageIDDuplicates)
	require.NotNil(t, duplicates)
	assert.False(t, duplicates.Skipped)
	addresses := result.Outcome.Stage(cleaning.StageIDAddresses)
	require.NotNil(t, addresses)
	assert.True(t, addresses.Skipped)

	// Checks pass vacuously and no report can be built.
	assert.True(t, result.Consistency.AllPassed())
	assert.Nil(t, result.RegionRisk)
	assert.Nil(t, result.TopSales)
	assert.Empty(t, result.Distributions)
	assert.Zero(t, result.Summary.RegionsAnalyzed)
	assert.Zero(t, result.Summary.TopSaleAddresses)
	assert.True(t, result.Summary.MostRecentTransaction.IsZero())
}
