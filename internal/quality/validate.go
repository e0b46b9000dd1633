package quality

import (
	"math"
	"strings"
	"unicode"

	"storedw/pkg/records"
)

// validateStage enforces field contracts beyond numeric ranges: enum
// membership, string length, ID ranges, and cross-field consistency. Enum
// comparison is case-insensitive on the trimmed value because this stage runs
// before standardization; "east " is a casing problem, not a bad region.
type validateStage struct {
	contract Contract
}

func (validateStage) Name() string { return "validate" }

func (s validateStage) Apply(rows []records.Record, rep *Report) []records.Record {
	out := rows[:0:0]
rowLoop:
	for _, row := range rows {
		for _, f := range s.contract.Fields {
			if reason, ok := s.checkField(row, f); !ok {
				rep.Drop(s.Name(), reason)
				continue rowLoop
			}
		}
		for _, cr := range s.contract.Cross {
			if !s.checkCross(row, cr) {
				rep.Drop(s.Name(), "cross:"+cr.Name)
				continue rowLoop
			}
		}
		out = append(out, row)
	}
	return out
}

func (s validateStage) checkField(row records.Record, f Field) (string, bool) {
	v := row[f.Name]

	if len(f.Enum) > 0 {
		canon, ok := enumMember(records.String(v), f.Enum)
		if v == nil || !ok {
			return "enum:" + f.Name, false
		}
		// Rewrite to the approved spelling so "vip" and "east " leave this
		// stage as "VIP" and "East".
		row[f.Name] = canon
	}

	if f.MinLen > 0 || f.MaxLen > 0 {
		n := len(strings.TrimSpace(records.String(v)))
		if n < f.MinLen || (f.MaxLen > 0 && n > f.MaxLen) {
			return "length:" + f.Name, false
		}
	}

	if f.RequireLetter && !containsLetter(records.String(v)) {
		return "letters:" + f.Name, false
	}

	if f.IDRange.Has {
		if n, ok := records.Float(v); ok && !f.IDRange.Contains(n) {
			return "id-range:" + f.Name, false
		}
	}

	if f.ValueRange.Has {
		if n, ok := records.Float(v); ok && !f.ValueRange.Contains(n) {
			return "value:" + f.Name, false
		}
	}
	return "", true
}

// checkCross verifies amount against quantity. With a unit-price field
// present the declared amount must match price*quantity within the relative
// tolerance; without one the derived unit price must fall inside the allowed
// band.
func (s validateStage) checkCross(row records.Record, cr CrossRule) bool {
	amount, okA := records.Float(row[cr.Amount])
	qty, okQ := records.Float(row[cr.Quantity])
	if !okA || !okQ || qty == 0 {
		return true
	}

	if cr.Price != "" {
		if price, ok := records.Float(row[cr.Price]); ok {
			expected := price * qty
			if expected == 0 {
				return amount == 0
			}
			return math.Abs(amount-expected) <= cr.Tolerance*math.Abs(expected)
		}
	}
	if cr.UnitPrice.Has {
		return cr.UnitPrice.Contains(amount / qty)
	}
	return true
}

func enumMember(v string, enum []string) (string, bool) {
	v = strings.TrimSpace(v)
	for _, e := range enum {
		if strings.EqualFold(v, e) {
			return e, true
		}
	}
	return "", false
}

func containsLetter(v string) bool {
	for _, r := range v {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
