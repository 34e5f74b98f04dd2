package cleaning

import (
	"context"

	"fraudcli/internal/dataset"
)

// Stage identifiers, in execution order.
const (
	StageIDAddresses  = "address_validation"
	StageIDIPPrefix   = "ip_normalization"
	StageIDRiskScore  = "risk_score_imputation"
	StageIDAmount     = "amount_imputation"
	StageIDTimestamps = "timestamp_validation"
	StageIDRegions    = "region_normalization"
	StageIDDuplicates = "duplicate_removal"
)

// Human-readable stage names.
const (
	StageNameAddresses  = "Address Validation"
	StageNameIPPrefix   = "IP Prefix Normalization"
	StageNameRiskScore  = "Risk Score Imputation"
	StageNameAmount     = "Amount Imputation"
	StageNameTimestamps = "Timestamp Validation"
	StageNameRegions    = "Region Normalization"
	StageNameDuplicates = "Duplicate Removal"
)

// InvalidIPSentinel is the literal written over unusable ip_prefix values.
const InvalidIPSentinel = "INVALID_IP"

// Stage is a single cleaning step.
type Stage interface {
	// ID returns the stable identifier for this stage
	ID() string

	// Name returns the human-readable name for this stage
	Name() string

	// Apply consumes the input table and returns its replacement. A stage
	// may mutate the input in place and return it, or build a new table;
	// either way the caller must not touch the input afterwards.
	Apply(ctx context.Context, table *dataset.Table) (*dataset.Table, StageResult, error)
}

// StageResult carries the counters a stage produced while running. Row
// counts are not part of it; the pipeline derives those from the table
// sizes around each stage.
type StageResult struct {
	// CellsImputed counts missing cells replaced with a computed value.
	CellsImputed int

	// CellsRewritten counts non-missing cells replaced in place, such as
	// flagged IP prefixes, converted timestamps or lowercased regions.
	CellsRewritten int

	// Skipped marks a stage that could not run, typically because its
	// columns are absent from the table.
	Skipped    bool
	SkipReason string

	// Details holds stage-specific counters keyed by counter name.
	Details map[string]int
}

// bump adds delta to a named detail counter, allocating the map lazily so
// stages with nothing to report stay allocation-free.
func (r *StageResult) bump(key string, delta int) {
	if delta == 0 {
		return
	}
	if r.Details == nil {
		r.Details = make(map[string]int)
	}
	r.Details[key] += delta
}

// skipped builds the result for a stage that cannot run on this table.
func skipped(reason string) StageResult {
	return StageResult{Skipped: true, SkipReason: reason}
}
