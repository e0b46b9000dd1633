package quality

import (
	"fmt"
	"strconv"

	"storedw/pkg/records"
)

// missingStage applies the per-field missing-value policy. Numeric fields are
// coerced first so a value like "12.5" and a value like "abc" diverge here:
// the former becomes a float64, the latter becomes missing and is subject to
// the field's fill policy.
type missingStage struct {
	contract Contract
}

func (missingStage) Name() string { return "missing" }

func (s missingStage) Apply(rows []records.Record, rep *Report) []records.Record {
	s.coerceNumerics(rows, rep)

	out := rows[:0:0]
rowLoop:
	for _, row := range rows {
		for _, f := range s.contract.Fields {
			if f.Critical && isMissing(row[f.Name]) {
				rep.Drop(s.Name(), "critical:"+f.Name)
				continue rowLoop
			}
		}
		out = append(out, row)
	}

	for _, f := range s.contract.Fields {
		if f.Fill.Kind != FillNone {
			s.fill(out, f, rep)
		}
	}
	return out
}

// coerceNumerics replaces each numeric field's value with a float64, or nil
// when the value does not parse.
func (s missingStage) coerceNumerics(rows []records.Record, rep *Report) {
	for _, f := range s.contract.Fields {
		if f.Kind != Numeric {
			continue
		}
		for _, row := range rows {
			v, ok := row[f.Name]
			if !ok || v == nil {
				continue
			}
			if n, ok := records.Float(v); ok {
				row[f.Name] = n
			} else {
				row[f.Name] = nil
				rep.Flag("coerced:"+f.Name, 1)
			}
		}
	}
}

func (s missingStage) fill(rows []records.Record, f Field, rep *Report) {
	var filled int
	switch f.Fill.Kind {
	case FillConst:
		filled = s.fillConst(rows, f)
	case FillMode:
		filled = s.fillMode(rows, f)
	case FillMedian:
		filled = s.fillMedian(rows, f)
	case FillDerived:
		filled = s.fillDerived(rows, f)
	}
	rep.Flag("filled:"+f.Name, filled)
}

func (s missingStage) fillConst(rows []records.Record, f Field) int {
	return fillWith(rows, f.Name, func(records.Record) any {
		return sentinelValue(f)
	})
}

// fillMode fills with the most frequent observed value; the sentinel covers
// an entirely empty column.
func (s missingStage) fillMode(rows []records.Record, f Field) int {
	var observed []string
	for _, row := range rows {
		if !isMissing(row[f.Name]) {
			observed = append(observed, records.String(row[f.Name]))
		}
	}
	var v any
	if top, n := mode(observed); n > 0 {
		v = top
	} else {
		v = sentinelValue(f)
	}
	return fillWith(rows, f.Name, func(records.Record) any { return v })
}

// fillMedian fills numerics with the per-group median when GroupBy names a
// categorical field and the group has observed values, else the column
// median, else the sentinel.
func (s missingStage) fillMedian(rows []records.Record, f Field) int {
	var all []float64
	byGroup := map[string][]float64{}
	for _, row := range rows {
		n, ok := records.Float(row[f.Name])
		if !ok {
			continue
		}
		all = append(all, n)
		if f.Fill.GroupBy != "" {
			g := records.CanonicalKey(row[f.Fill.GroupBy])
			byGroup[g] = append(byGroup[g], n)
		}
	}

	return fillWith(rows, f.Name, func(row records.Record) any {
		if f.Fill.GroupBy != "" {
			g := records.CanonicalKey(row[f.Fill.GroupBy])
			if vals := byGroup[g]; len(vals) > 0 {
				return median(vals)
			}
		}
		if len(all) > 0 {
			return median(all)
		}
		return sentinelValue(f)
	})
}

// fillDerived builds "<group>-<Sentinel>-<business key>", dropping the group
// part when the grouping value is itself missing.
func (s missingStage) fillDerived(rows []records.Record, f Field) int {
	return fillWith(rows, f.Name, func(row records.Record) any {
		id := records.String(row[s.contract.Key])
		if f.Fill.GroupBy != "" && !isMissing(row[f.Fill.GroupBy]) {
			return fmt.Sprintf("%s-%s-%s", records.String(row[f.Fill.GroupBy]), f.Fill.Sentinel, id)
		}
		return fmt.Sprintf("%s-%s", f.Fill.Sentinel, id)
	})
}

func fillWith(rows []records.Record, name string, value func(records.Record) any) int {
	filled := 0
	for _, row := range rows {
		if isMissing(row[name]) {
			row[name] = value(row)
			filled++
		}
	}
	return filled
}

// sentinelValue parses the sentinel numerically for numeric fields so filled
// values stay comparable with coerced ones.
func sentinelValue(f Field) any {
	if f.Kind == Numeric {
		n, err := strconv.ParseFloat(f.Fill.Sentinel, 64)
		if err != nil {
			return float64(0)
		}
		return n
	}
	return f.Fill.Sentinel
}

func isMissing(v any) bool {
	return v == nil || records.String(v) == ""
}
