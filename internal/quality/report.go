// Package quality implements the per-dataset cleaning pipeline: profiling,
// deduplication, missing-value handling, outlier detection, business-rule
// validation, and format standardization.
//
// Every stage is fail-soft per row: a row failing a check is excluded and
// attributed to a reason in the Report, never aborting the batch. The only
// fatal condition is a mandatory column entirely absent from the input schema.
package quality

import (
	"fmt"
	"log"
	"sort"
)

// Report accumulates the outcome of one dataset's pipeline run. It is threaded
// explicitly through the stages instead of living in ambient shared state so
// each stage stays independently testable.
type Report struct {
	Dataset string
	Input   int
	Output  int

	// Removed counts excluded rows keyed "stage/reason",
	// e.g. "outlier/iqr:unit_price".
	Removed map[string]int

	// Flagged counts informational findings that do not remove rows,
	// e.g. duplicate product names under distinct business keys.
	Flagged map[string]int

	// Columns holds the diagnostic profile emitted before any mutation.
	Columns []ColumnProfile
}

// NewReport returns an empty report for the named dataset.
func NewReport(dataset string) *Report {
	return &Report{
		Dataset: dataset,
		Removed: map[string]int{},
		Flagged: map[string]int{},
	}
}

// Drop attributes one excluded row to stage/reason.
func (r *Report) Drop(stage, reason string) {
	r.Removed[stage+"/"+reason]++
}

// Flag records n informational findings under reason.
func (r *Report) Flag(reason string, n int) {
	if n > 0 {
		r.Flagged[reason] += n
	}
}

// TotalRemoved sums removed rows across all reasons.
func (r *Report) TotalRemoved() int {
	total := 0
	for _, n := range r.Removed {
		total += n
	}
	return total
}

// StageRemoved sums removed rows for one stage.
func (r *Report) StageRemoved(stage string) int {
	total := 0
	prefix := stage + "/"
	for k, n := range r.Removed {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			total += n
		}
	}
	return total
}

// Log emits the report in the key=value style used across the pipeline.
func (r *Report) Log() {
	log.Printf("quality: dataset=%s input=%d output=%d removed=%d",
		r.Dataset, r.Input, r.Output, r.TotalRemoved())
	for _, k := range sortedKeys(r.Removed) {
		log.Printf("quality: dataset=%s removed reason=%s count=%d", r.Dataset, k, r.Removed[k])
	}
	for _, k := range sortedKeys(r.Flagged) {
		log.Printf("quality: dataset=%s flagged reason=%s count=%d", r.Dataset, k, r.Flagged[k])
	}
}

// Summary renders a one-line human summary.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d in, %d out, %d removed, %d flagged",
		r.Dataset, r.Input, r.Output, r.TotalRemoved(), len(r.Flagged))
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
