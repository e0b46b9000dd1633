// Package csv parses raw tabular input files into records with canonical
// column names. Header handling is deliberately tolerant: the three source
// datasets disagree on naming conventions (PascalCase in one file, lowercase
// in another), and the HeaderMap plus a snake_case fallback absorb that at
// the boundary instead of scattering fixes downstream.
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"storedw/pkg/records"
)

// Options configures the parser. All fields are optional; sensible defaults
// are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// HeaderMap maps source header names to canonical field names. Headers
	// with no mapping fall back to lowercased snake_case.
	HeaderMap map[string]string
}

// Result carries the parsed rows plus the canonical header set, which the
// quality engine uses to detect entirely missing mandatory columns.
type Result struct {
	Rows    []records.Record
	Columns []string

	// Skipped counts rows whose width did not match the header.
	Skipped int
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Parse reads the whole input. Empty cells become nil so downstream
// missing-value handling sees a single representation of "absent".
// Short/long rows are skipped and counted, not fatal.
func Parse(r io.Reader, opt Options) (Result, error) {
	cr := csv.NewReader(r)
	if opt.Comma != 0 {
		cr.Comma = opt.Comma
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return Result{}, fmt.Errorf("csv: read header: %w", err)
	}

	cols := make([]string, len(header))
	for i, raw := range header {
		if i == 0 {
			raw = strings.TrimPrefix(raw, utf8BOM)
		}
		cols[i] = canonicalName(raw, opt.HeaderMap)
	}

	res := Result{Columns: cols}
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("csv: read row: %w", err)
		}
		if len(row) != len(cols) {
			res.Skipped++
			continue
		}
		rec := make(records.Record, len(cols))
		for i, v := range row {
			if opt.TrimSpace {
				v = strings.TrimSpace(v)
			}
			if v == "" {
				rec[cols[i]] = nil
				continue
			}
			rec[cols[i]] = v
		}
		res.Rows = append(res.Rows, rec)
	}
	return res, nil
}

// canonicalName maps a raw header through HeaderMap, falling back to
// lowercased snake_case.
func canonicalName(raw string, headerMap map[string]string) string {
	name := strings.TrimSpace(raw)
	if headerMap != nil {
		if mapped, ok := headerMap[name]; ok && mapped != "" {
			return mapped
		}
	}
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "_")
	return name
}
