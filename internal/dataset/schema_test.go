package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainOf(t *testing.T) {
	domain, ok := DomainOf(ColAnomaly)
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"low_risk", "moderate_risk", "high_risk"}, domain)

	regions, ok := DomainOf(ColLocationRegion)
	require.True(t, ok)
	assert.Contains(t, regions, "europe")
	assert.Contains(t, regions, "south america")

	_, ok = DomainOf(ColAmount)
	assert.False(t, ok, "numeric columns carry no category domain")
}

func TestRangeOf(t *testing.T) {
	r, ok := RangeOf(ColRiskScore)
	require.True(t, ok)
	assert.True(t, r.Contains(0), "bounds are inclusive")
	assert.True(t, r.Contains(100))
	assert.False(t, r.Contains(100.01))
	assert.False(t, r.Contains(-1))

	r, ok = RangeOf(ColAmount)
	require.True(t, ok)
	assert.True(t, r.Contains(1_000_000))
	assert.False(t, r.Contains(1_000_001))

	_, ok = RangeOf(ColAnomaly)
	assert.False(t, ok)
}

func TestSentinels(t *testing.T) {
	for _, s := range []string{"nan", "NaN", "None", "none"} {
		assert.True(t, IsMissingSentinel(s), s)
	}
	assert.False(t, IsMissingSentinel("NAN"), "sentinel match is exact")
	assert.False(t, IsMissingSentinel("europe"))

	for _, s := range []string{"none", "None", "NULL", "null", ""} {
		assert.True(t, IsNullSentinel(s), s)
	}
	assert.False(t, IsNullSentinel("nan"), "nan is a missing marker, not a null marker")
}

func TestColumnLists(t *testing.T) {
	cats := CategoricalColumns()
	nums := NumericColumns()

	assert.Contains(t, cats, ColTransactionType)
	assert.Contains(t, nums, ColSessionDuration)

	// Returned slices are copies; mutating them must not corrupt the schema.
	cats[0] = "tampered"
	assert.NotContains(t, CategoricalColumns(), "tampered")
}
