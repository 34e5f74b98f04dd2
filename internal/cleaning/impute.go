package cleaning

import (
	"context"
	"sort"

	"fraudcli/internal/dataset"
)

// imputeStage fills missing values in one numeric column with the median of
// the row's region, falling back to the global median for rows no region
// can serve. It also commits the column to numeric form: every surviving
// cell is a number afterwards, except cells that could not be imputed at
// all because the whole table holds no usable value.
type imputeStage struct {
	id     string
	name   string
	column string
}

// NewRiskScoreStage creates the risk_score imputation stage
func NewRiskScoreStage() Stage {
	return &imputeStage{id: StageIDRiskScore, name: StageNameRiskScore, column: dataset.ColRiskScore}
}

// NewAmountStage creates the amount imputation stage
func NewAmountStage() Stage {
	return &imputeStage{id: StageIDAmount, name: StageNameAmount, column: dataset.ColAmount}
}

func (s *imputeStage) ID() string   { return s.id }
func (s *imputeStage) Name() string { return s.name }

func (s *imputeStage) Apply(ctx context.Context, table *dataset.Table) (*dataset.Table, StageResult, error) {
	col, ok := table.ColumnIndex(s.column)
	if !ok {
		return table, skipped("column " + s.column + " not present"), nil
	}
	regionCol, hasRegion := table.ColumnIndex(dataset.ColLocationRegion)

	result := StageResult{}
	n := table.NumRows()
	numbers := make([]float64, n)
	present := make([]bool, n)
	byRegion := make(map[string][]float64)

	// Conversion pass: read every cell, remembering which rows hold a
	// usable number and which region each contributes to.
	for row := 0; row < n; row++ {
		num, ok, failed := numericCell(table.ValueAt(row, col))
		if failed {
			result.bump("conversion_failures", 1)
		}
		if !ok {
			continue
		}
		numbers[row] = num
		present[row] = true
		if hasRegion {
			if region, ok := regionKey(table.ValueAt(row, regionCol)); ok {
				byRegion[region] = append(byRegion[region], num)
			}
		}
	}

	missingBefore := 0
	for row := 0; row < n; row++ {
		if !present[row] {
			missingBefore++
		}
	}
	result.bump("missing_before", missingBefore)

	// Per-region pass. Medians come from the original values only.
	medians := make(map[string]float64, len(byRegion))
	for region, values := range byRegion {
		medians[region] = median(values)
	}
	for row := 0; row < n; row++ {
		if present[row] || !hasRegion {
			continue
		}
		region, ok := regionKey(table.ValueAt(row, regionCol))
		if !ok {
			continue
		}
		m, ok := medians[region]
		if !ok {
			continue
		}
		numbers[row] = m
		present[row] = true
		result.CellsImputed++
		result.bump("imputed_by_region", 1)
	}

	// Global pass over every value present at this point, the regionally
	// imputed ones included.
	var all []float64
	for row := 0; row < n; row++ {
		if present[row] {
			all = append(all, numbers[row])
		}
	}
	if len(all) > 0 {
		global := median(all)
		for row := 0; row < n; row++ {
			if present[row] {
				continue
			}
			numbers[row] = global
			present[row] = true
			result.CellsImputed++
			result.bump("imputed_globally", 1)
		}
	}

	// Commit the column to numeric form.
	for row := 0; row < n; row++ {
		if present[row] {
			table.SetValueAt(row, col, dataset.NumberValue(numbers[row]))
		} else {
			table.SetValueAt(row, col, dataset.Missing())
			result.bump("unimputed", 1)
		}
	}
	return table, result, nil
}

// numericCell reads a cell as a number for imputation purposes. Missing
// cells and null sentinels are missing; any other unparseable cell is a
// conversion failure, which degrades to missing as well.
func numericCell(v dataset.Value) (num float64, ok bool, failed bool) {
	if v.IsMissing() {
		return 0, false, false
	}
	if s, isStr := v.Str(); isStr && dataset.IsNullSentinel(s) {
		return 0, false, false
	}
	num, ok = v.AsNumber()
	if !ok {
		return 0, false, true
	}
	return num, true, false
}

// regionKey returns the grouping key for a region cell. Missing regions
// belong to no group; any non-missing cell groups by its exact string form,
// so pre-normalization spellings like "Europe" and "europe" are distinct
// groups here.
func regionKey(v dataset.Value) (string, bool) {
	if v.IsMissing() {
		return "", false
	}
	return v.String(), true
}

// median returns the standard sample median: the middle order statistic
// for an odd-sized sample, the mean of the two central ones for even.
// values must be non-empty; the input slice is not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
