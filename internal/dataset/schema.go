package dataset

// Column names of the transaction schema, known a priori
const (
	ColSendingAddress   = "sending_address"
	ColReceivingAddress = "receiving_address"
	ColIPPrefix         = "ip_prefix"
	ColTransactionType  = "transaction_type"
	ColLocationRegion   = "location_region"
	ColPurchasePattern  = "purchase_pattern"
	ColAgeGroup         = "age_group"
	ColAnomaly          = "anomaly"
	ColAmount           = "amount"
	ColLoginFrequency   = "login_frequency"
	ColSessionDuration  = "session_duration"
	ColRiskScore        = "risk_score"
	ColTimestamp        = "timestamp"
)

// NumericRange is the documented inclusive bounds of a numeric column
type NumericRange struct {
	Min float64
	Max float64
}

// Contains reports whether v lies inside the range, bounds included
func (r NumericRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

var categoricalDomains = map[string][]string{
	ColTransactionType: {"transfer", "purchase", "sale", "exchange"},
	ColLocationRegion:  {"north america", "south america", "europe", "asia", "africa"},
	ColPurchasePattern: {"focused", "high_value", "random"},
	ColAgeGroup:        {"new", "established", "veteran"},
	ColAnomaly:         {"low_risk", "moderate_risk", "high_risk"},
}

var numericRanges = map[string]NumericRange{
	ColAmount:          {Min: 0, Max: 1000000},
	ColLoginFrequency:  {Min: 0, Max: 50},
	ColSessionDuration: {Min: 0, Max: 1000},
	ColRiskScore:       {Min: 0, Max: 100},
}

// categoricalColumns fixes the scan order of the categorical checks
var categoricalColumns = []string{
	ColTransactionType,
	ColLocationRegion,
	ColPurchasePattern,
	ColAgeGroup,
	ColAnomaly,
}

// numericColumns fixes the scan order of the numeric range checks
var numericColumns = []string{
	ColAmount,
	ColLoginFrequency,
	ColSessionDuration,
	ColRiskScore,
}

// DomainOf returns the expected values of a categorical column
func DomainOf(column string) ([]string, bool) {
	domain, ok := categoricalDomains[column]
	return domain, ok
}

// RangeOf returns the documented bounds of a numeric column
func RangeOf(column string) (NumericRange, bool) {
	r, ok := numericRanges[column]
	return r, ok
}

// CategoricalColumns returns the categorical columns in scan order
func CategoricalColumns() []string {
	out := make([]string, len(categoricalColumns))
	copy(out, categoricalColumns)
	return out
}

// NumericColumns returns the range-checked numeric columns in scan order
func NumericColumns() []string {
	out := make([]string, len(numericColumns))
	copy(out, numericColumns)
	return out
}

// missingSentinels are the spellings of missingness that raw exports use in
// categorical cells. Values equal to one of these are not domain violations.
var missingSentinels = map[string]bool{
	"nan":  true,
	"NaN":  true,
	"None": true,
	"none": true,
}

// nullSentinels are the spellings of missingness the numeric columns use.
// The empty string covers cells that were blank in the source.
var nullSentinels = map[string]bool{
	"none": true,
	"None": true,
	"NULL": true,
	"null": true,
	"":     true,
}

// IsMissingSentinel reports whether s is a categorical missing-value marker
func IsMissingSentinel(s string) bool {
	return missingSentinels[s]
}

// IsNullSentinel reports whether s is a numeric missing-value marker
func IsNullSentinel(s string) bool {
	return nullSentinels[s]
}
