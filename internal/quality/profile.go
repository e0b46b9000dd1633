package quality

import (
	"log"

	"github.com/zeebo/xxh3"

	"storedw/pkg/records"
)

// ColumnProfile is the diagnostic summary of one input column, computed before
// any row is mutated or removed.
type ColumnProfile struct {
	Name     string
	Type     Kind
	Nulls    int
	Distinct int

	// TopValue is the most frequent non-null value (imputation default).
	TopValue string
	TopCount int

	// Median is set for columns that profile as numeric.
	Median    float64
	HasMedian bool

	// Complete is the non-null fraction in percent.
	Complete float64
}

// profileStage computes per-column profiles and writes them to the report. It
// never changes the row set.
type profileStage struct {
	contract Contract
}

func (profileStage) Name() string { return "profile" }

func (s profileStage) Apply(rows []records.Record, rep *Report) []records.Record {
	for _, f := range s.contract.Fields {
		rep.Columns = append(rep.Columns, profileColumn(f.Name, rows))
	}
	for _, c := range rep.Columns {
		log.Printf("profile: dataset=%s column=%s type=%s nulls=%d distinct=%d complete=%.1f%% top=%q",
			rep.Dataset, c.Name, c.Type, c.Nulls, c.Distinct, c.Complete, c.TopValue)
	}
	return rows
}

// profileColumn scans one column. Distinct values are counted through a hash
// set of xxh3 digests so wide text columns do not retain every string.
func profileColumn(name string, rows []records.Record) ColumnProfile {
	p := ColumnProfile{Name: name}

	seen := map[uint64]struct{}{}
	counts := map[string]int{}
	var nums []float64
	numeric, dateLike, nonNull := 0, 0, 0

	for _, row := range rows {
		v, ok := row[name]
		if !ok || v == nil {
			p.Nulls++
			continue
		}
		s := records.String(v)
		if s == "" {
			p.Nulls++
			continue
		}
		nonNull++
		seen[xxh3.HashString(s)] = struct{}{}
		counts[s]++
		if f, ok := records.Float(v); ok {
			numeric++
			nums = append(nums, f)
		} else if _, ok := ParseAnyDate(s); ok {
			dateLike++
		}
	}

	p.Distinct = len(seen)
	if len(rows) > 0 {
		p.Complete = float64(nonNull) / float64(len(rows)) * 100
	}
	for v, n := range counts {
		if n > p.TopCount || (n == p.TopCount && v < p.TopValue) {
			p.TopValue, p.TopCount = v, n
		}
	}

	switch {
	case nonNull > 0 && numeric == nonNull:
		p.Type = Numeric
		p.Median = median(nums)
		p.HasMedian = true
	case nonNull > 0 && dateLike == nonNull:
		p.Type = Date
	default:
		p.Type = Text
	}
	return p
}
