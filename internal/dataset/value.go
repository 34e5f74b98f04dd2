package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindNumber
	KindTime
)

// Value is one table cell. The zero value is the missing cell.
type Value struct {
	kind Kind
	str  string
	num  float64
	ts   time.Time
}

// Missing returns the missing cell
func Missing() Value {
	return Value{}
}

// StringValue returns a string cell
func StringValue(s string) Value {
	return Value{kind: KindString, str: s}
}

// NumberValue returns a numeric cell
func NumberValue(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// TimeValue returns an instant cell
func TimeValue(t time.Time) Value {
	return Value{kind: KindTime, ts: t}
}

// Kind returns the variant this value holds
func (v Value) Kind() Kind {
	return v.kind
}

// IsMissing reports whether the cell is missing
func (v Value) IsMissing() bool {
	return v.kind == KindMissing
}

// Str returns the string payload and whether the cell is a string
func (v Value) Str() (string, bool) {
	return v.str, v.kind == KindString
}

// Num returns the numeric payload and whether the cell is a number
func (v Value) Num() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// Instant returns the time payload and whether the cell is an instant
func (v Value) Instant() (time.Time, bool) {
	return v.ts, v.kind == KindTime
}

// AsNumber performs the tolerant numeric conversion used throughout the
// pipeline: numbers pass through, strings are parsed as decimal floats,
// everything else fails. The second return is false on conversion failure.
// A parse that yields IEEE NaN counts as a failure: NaN is unusable in
// range checks and medians, so strings like "nan" degrade to missing.
func (v Value) AsNumber() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.num, true
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// String renders the cell the way it is persisted: missing cells render
// empty, numbers in their shortest decimal form, instants as UTC wall time.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindTime:
		return v.ts.UTC().Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// Equal reports whether two cells hold the same variant and payload
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindNumber:
		return v.num == o.num
	case KindTime:
		return v.ts.Equal(o.ts)
	default:
		return true
	}
}

// appendKey writes a collision-free encoding of the cell, used to build
// whole-row identity keys for duplicate detection. Instants encode with
// nanosecond precision so rows differing only in sub-second timestamps
// stay distinct.
func (v Value) appendKey(b *strings.Builder) {
	payload := v.String()
	if v.kind == KindTime {
		payload = v.ts.UTC().Format(time.RFC3339Nano)
	}
	b.WriteByte(byte('0' + v.kind))
	b.WriteByte(':')
	b.WriteString(strconv.Itoa(len(payload)))
	b.WriteByte(':')
	b.WriteString(payload)
}
