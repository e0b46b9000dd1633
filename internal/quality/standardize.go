package quality

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"storedw/pkg/records"
)

// standardizeStage is the last mutation pass: casing, whitespace, currency
// precision, integer coercion, and canonical ISO dates. It is the one stage
// besides missing-handling that rewrites values, and the only one where an
// unparseable date finally drops the row.
type standardizeStage struct {
	contract Contract
	titler   cases.Caser
}

func newStandardizeStage(c Contract) standardizeStage {
	return standardizeStage{contract: c, titler: cases.Title(language.English)}
}

func (standardizeStage) Name() string { return "standardize" }

func (s standardizeStage) Apply(rows []records.Record, rep *Report) []records.Record {
	out := rows[:0:0]
rowLoop:
	for _, row := range rows {
		for _, f := range s.contract.Fields {
			if !s.standardizeField(row, f) {
				rep.Drop(s.Name(), "date:"+f.Name)
				continue rowLoop
			}
		}
		out = append(out, row)
	}
	return out
}

// standardizeField rewrites one value in place. The false return means the
// row must go: a date field whose value cannot be parsed.
func (s standardizeStage) standardizeField(row records.Record, f Field) bool {
	v := row[f.Name]
	if v == nil {
		return true
	}

	if f.Kind == Date {
		t, ok := ParseAnyDate(records.String(v))
		if !ok {
			return false
		}
		row[f.Name] = t.Format(ISODate)
		return true
	}

	if n, isNum := records.Float(v); isNum {
		switch {
		case f.Integer:
			row[f.Name] = int64(math.Round(n))
		case f.Round2:
			row[f.Name] = round2(n)
		}
		if f.Integer || f.Round2 {
			return true
		}
	}

	sv := strings.TrimSpace(records.String(v))
	if f.CollapseSpace {
		sv = strings.Join(strings.Fields(sv), " ")
	}
	if f.UnderscoreToHyphen {
		sv = strings.ReplaceAll(sv, "_", "-")
	}
	if f.TitleCase {
		sv = s.titler.String(strings.ToLower(sv))
	}
	row[f.Name] = sv
	return true
}
