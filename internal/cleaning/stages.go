package cleaning

import (
	"context"
	"math"
	"strings"
	"time"

	"fraudcli/internal/dataset"
)

const (
	addressLength = 42
	addressPrefix = "0x"
)

// maxEpochSeconds bounds the epoch values that convert to an instant.
// Instants carry nanosecond precision, so seconds beyond the int64
// nanosecond horizon cannot be represented and degrade to missing.
const maxEpochSeconds = float64(math.MaxInt64) / float64(time.Second)

// addressStage drops rows whose transaction addresses are malformed.
type addressStage struct{}

// NewAddressStage creates the address validation stage
func NewAddressStage() Stage { return addressStage{} }

func (addressStage) ID() string   { return StageIDAddresses }
func (addressStage) Name() string { return StageNameAddresses }

func (addressStage) Apply(ctx context.Context, table *dataset.Table) (*dataset.Table, StageResult, error) {
	sendCol, okSend := table.ColumnIndex(dataset.ColSendingAddress)
	recvCol, okRecv := table.ColumnIndex(dataset.ColReceivingAddress)
	if !okSend || !okRecv {
		return table, skipped("address columns not present"), nil
	}

	out := table.Filter(func(row int) bool {
		return wellFormedAddress(table.ValueAt(row, sendCol)) &&
			wellFormedAddress(table.ValueAt(row, recvCol))
	})
	return out, StageResult{}, nil
}

// wellFormedAddress reports whether a cell holds a 42-character address
// beginning with 0x. No repair is attempted on any other shape.
func wellFormedAddress(v dataset.Value) bool {
	s, ok := v.Str()
	if !ok {
		return false
	}
	return len(s) == addressLength && strings.HasPrefix(s, addressPrefix)
}

// ipStage rewrites unusable ip_prefix values to the INVALID_IP sentinel.
type ipStage struct{}

// NewIPPrefixStage creates the IP normalization stage
func NewIPPrefixStage() Stage { return ipStage{} }

func (ipStage) ID() string   { return StageIDIPPrefix }
func (ipStage) Name() string { return StageNameIPPrefix }

func (ipStage) Apply(ctx context.Context, table *dataset.Table) (*dataset.Table, StageResult, error) {
	col, ok := table.ColumnIndex(dataset.ColIPPrefix)
	if !ok {
		return table, skipped("ip_prefix column not present"), nil
	}

	result := StageResult{}
	for row := 0; row < table.NumRows(); row++ {
		if invalidIPPrefix(table.ValueAt(row, col)) {
			table.SetValueAt(row, col, dataset.StringValue(InvalidIPSentinel))
			result.CellsRewritten++
		}
	}
	return table, result, nil
}

// invalidIPPrefix matches the placeholder shapes a broken ip_prefix takes
// in source feeds: 0.0, 0 or a missing-value sentinel, compared
// case-insensitively on the cell's string form. A missing prefix is as
// unusable as a placeholder, so missing cells match too.
func invalidIPPrefix(v dataset.Value) bool {
	if v.IsMissing() {
		return true
	}
	switch strings.ToLower(v.String()) {
	case "0.0", "0", "nan", "none":
		return true
	}
	return false
}

// timestampStage converts epoch-second cells into instants and counts the
// suspicious ones. Rows are never dropped here.
type timestampStage struct {
	now func() time.Time
}

// NewTimestampStage creates the timestamp validation stage. now supplies
// the reference instant for the future-timestamp check; nil means the wall
// clock.
func NewTimestampStage(now func() time.Time) Stage {
	if now == nil {
		now = time.Now
	}
	return &timestampStage{now: now}
}

func (*timestampStage) ID() string   { return StageIDTimestamps }
func (*timestampStage) Name() string { return StageNameTimestamps }

func (s *timestampStage) Apply(ctx context.Context, table *dataset.Table) (*dataset.Table, StageResult, error) {
	col, ok := table.ColumnIndex(dataset.ColTimestamp)
	if !ok {
		return table, skipped("timestamp column not present"), nil
	}

	result := StageResult{}
	now := s.now()
	epochCutoff := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

	flag := func(instant time.Time) {
		if instant.After(now) {
			result.bump("future_instants", 1)
		}
		if instant.Before(epochCutoff) {
			result.bump("pre_2000_instants", 1)
		}
	}

	for row := 0; row < table.NumRows(); row++ {
		value := table.ValueAt(row, col)

		// Cells converted on a previous run only need re-flagging.
		if instant, ok := value.Instant(); ok {
			flag(instant)
			continue
		}
		if value.IsMissing() {
			result.bump("invalid_instants", 1)
			continue
		}

		num, ok, _ := numericCell(value)
		if !ok || num < -maxEpochSeconds || num > maxEpochSeconds {
			table.SetValueAt(row, col, dataset.Missing())
			result.bump("conversion_failures", 1)
			result.bump("invalid_instants", 1)
			continue
		}

		sec, frac := math.Modf(num)
		instant := time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
		flag(instant)
		table.SetValueAt(row, col, dataset.TimeValue(instant))
		result.CellsRewritten++
	}
	return table, result, nil
}

// regionStage lowercases location_region and drops rows whose normalized
// region is a placeholder.
type regionStage struct{}

// NewRegionStage creates the region normalization stage
func NewRegionStage() Stage { return regionStage{} }

func (regionStage) ID() string   { return StageIDRegions }
func (regionStage) Name() string { return StageNameRegions }

func (regionStage) Apply(ctx context.Context, table *dataset.Table) (*dataset.Table, StageResult, error) {
	col, ok := table.ColumnIndex(dataset.ColLocationRegion)
	if !ok {
		return table, skipped("location_region column not present"), nil
	}

	result := StageResult{}
	for row := 0; row < table.NumRows(); row++ {
		s, isStr := table.ValueAt(row, col).Str()
		if !isStr {
			continue
		}
		lowered := strings.ToLower(s)
		if lowered != s {
			table.SetValueAt(row, col, dataset.StringValue(lowered))
			result.CellsRewritten++
		}
	}

	out := table.Filter(func(row int) bool {
		return !invalidRegion(table.ValueAt(row, col))
	})
	return out, result, nil
}

// invalidRegion reports whether a normalized region cell disqualifies its
// row: a missing region or one of the placeholder strings 0, nan, none and
// the empty string.
func invalidRegion(v dataset.Value) bool {
	if v.IsMissing() {
		return true
	}
	switch v.String() {
	case "0", "nan", "none", "":
		return true
	}
	return false
}

// duplicateStage drops exact duplicates of earlier surviving rows.
type duplicateStage struct{}

// NewDuplicateStage creates the duplicate removal stage
func NewDuplicateStage() Stage { return duplicateStage{} }

func (duplicateStage) ID() string   { return StageIDDuplicates }
func (duplicateStage) Name() string { return StageNameDuplicates }

func (duplicateStage) Apply(ctx context.Context, table *dataset.Table) (*dataset.Table, StageResult, error) {
	seen := make(map[string]struct{}, table.NumRows())
	out := table.Filter(func(row int) bool {
		key := table.RowKey(row)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		return true
	})
	return out, StageResult{}, nil
}
