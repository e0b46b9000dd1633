// Package records defines the dynamic record type shared by the parser, the
// data-quality engine, and the warehouse loader, plus the canonical key
// normalizer used for every business-key comparison.
package records

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is a single row keyed by canonical column name. Values are untyped;
// the quality engine coerces them as it validates.
type Record map[string]any

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Has reports whether the field is present with a non-nil, non-empty value.
func (r Record) Has(field string) bool {
	v, ok := r[field]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}

// String converts common value types to their string form without fmt
// overhead; uncommon types fall back to fmt.Sprint.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	case time.Time:
		return t.Format("2006-01-02")
	default:
		return fmt.Sprint(t)
	}
}

// Float extracts a numeric value. Strings are parsed; the second return is
// false when the value is absent or not numeric.
func Float(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// CanonicalKey reduces a business-key value to the single comparison form used
// by deduplication and all foreign-key resolutions. Source files disagree on
// both casing ("C1" vs "c1") and typing (a key serialized as 1000 in one file
// and "1000.0" in another), so both sides of every join must pass through here
// before equality comparison.
func CanonicalKey(v any) string {
	s := strings.TrimSpace(String(v))
	if s == "" {
		return ""
	}
	// Collapse integral floats so "1000.0" and "1000" key the same row.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && math.Abs(f) < 1e15 {
			s = strconv.FormatInt(int64(f), 10)
		}
	}
	return strings.ToUpper(s)
}
