package quality

import (
	"log"

	"storedw/pkg/records"
)

// outlierStage removes rows outside combined statistical and business bounds.
// Fields are processed in contract order and each field filters the survivors
// of the previous one, so a row bad on two fields is attributed to the first.
//
// Business bounds are hard domain limits and are applied before the IQR fence.
// The fence itself is Q1-k*IQR..Q3+k*IQR with linearly interpolated quartiles,
// then clamped to the business range, so the statistical bound can only ever
// tighten the hard one. A larger k never removes more rows than a smaller one.
type outlierStage struct {
	contract Contract
	k        float64
}

func (outlierStage) Name() string { return "outlier" }

func (s outlierStage) Apply(rows []records.Record, rep *Report) []records.Record {
	for _, f := range s.contract.Fields {
		switch {
		case f.Kind == Date:
			rows = s.dateRange(rows, f, rep)
		case f.Business.Has || f.IQR:
			rows = s.business(rows, f, rep)
			if f.IQR {
				rows = s.iqrFence(rows, f, rep)
			}
		}
	}
	return rows
}

// business drops parseable numeric values outside the hard domain range.
// Values that do not parse numerically pass through; text business keys are
// not numbers and the validation stage owns their contracts.
func (s outlierStage) business(rows []records.Record, f Field, rep *Report) []records.Record {
	if !f.Business.Has {
		return rows
	}
	out := rows[:0:0]
	for _, row := range rows {
		if n, ok := records.Float(row[f.Name]); ok && !f.Business.Contains(n) {
			rep.Drop(s.Name(), "business:"+f.Name)
			continue
		}
		out = append(out, row)
	}
	return out
}

// iqrFence drops values outside the statistical fence computed from the
// surviving rows.
func (s outlierStage) iqrFence(rows []records.Record, f Field, rep *Report) []records.Record {
	var vals []float64
	for _, row := range rows {
		if n, ok := records.Float(row[f.Name]); ok {
			vals = append(vals, n)
		}
	}
	if len(vals) == 0 {
		return rows
	}

	q1 := quantile(vals, 0.25)
	q3 := quantile(vals, 0.75)
	iqr := q3 - q1
	lower := q1 - s.k*iqr
	upper := q3 + s.k*iqr
	if f.Business.Has {
		if lower < f.Business.Min {
			lower = f.Business.Min
		}
		if !f.Business.NoMax && upper > f.Business.Max {
			upper = f.Business.Max
		}
	}
	log.Printf("outlier: dataset=%s field=%s q1=%.2f q3=%.2f lower=%.2f upper=%.2f",
		s.contract.Dataset, f.Name, q1, q3, lower, upper)

	out := rows[:0:0]
	for _, row := range rows {
		n, ok := records.Float(row[f.Name])
		if ok && (n > upper || (!f.IQRUpperOnly && n < lower)) {
			rep.Drop(s.Name(), "iqr:"+f.Name)
			continue
		}
		out = append(out, row)
	}
	return out
}

// dateRange drops parseable dates outside [DateMin, now]. Unparseable values
// pass through here; standardization decides their fate.
func (s outlierStage) dateRange(rows []records.Record, f Field, rep *Report) []records.Record {
	if f.DateMin == "" && !f.DateMaxNow {
		return rows
	}
	var minT, maxT = parseBound(f.DateMin), timeNow()

	out := rows[:0:0]
	for _, row := range rows {
		v := row[f.Name]
		if v == nil {
			out = append(out, row)
			continue
		}
		t, ok := ParseAnyDate(records.String(v))
		if !ok {
			out = append(out, row)
			continue
		}
		if (f.DateMin != "" && t.Before(minT)) || (f.DateMaxNow && t.After(maxT)) {
			rep.Drop(s.Name(), "date:"+f.Name)
			continue
		}
		out = append(out, row)
	}
	return out
}
