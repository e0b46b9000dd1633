// This file adds a lightweight linter/validator for Run values. It performs
// static checks over a decoded Run and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests.
package config

import (
	"fmt"
	"strings"
	"time"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but may not necessarily block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding for a Run. Path is a dotted
// path into the config (e.g. "warehouse.kind").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// Validate performs static validation of a Run. It does not mutate the run;
// callers decide whether warnings block execution.
func Validate(r Run) []Issue {
	var issues []Issue

	if strings.TrimSpace(r.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}

	issues = append(issues, validateDataset("datasets.customers", r.Datasets.Customers)...)
	issues = append(issues, validateDataset("datasets.products", r.Datasets.Products)...)
	issues = append(issues, validateDataset("datasets.sales", r.Datasets.Sales)...)
	issues = append(issues, validateQuality(r.Quality)...)
	issues = append(issues, validateWarehouse(r.Warehouse)...)

	return issues
}

func validateDataset(path string, d Dataset) []Issue {
	var issues []Issue
	if strings.TrimSpace(d.Path) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     path + ".path",
			Message:  "input file path must not be empty",
		})
	}
	if len(d.Comma) > 1 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     path + ".comma",
			Message:  "delimiter has more than one character; only the first rune is used",
		})
	}
	return issues
}

func validateQuality(q Quality) []Issue {
	var issues []Issue
	if q.IQRMultiplier < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "quality.iqr_multiplier",
			Message:  "IQR multiplier must not be negative",
		})
	}
	if q.IQRMultiplier > 0 && q.IQRMultiplier < 1.0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "quality.iqr_multiplier",
			Message:  "IQR multiplier below 1.0 will prune aggressively on small datasets",
		})
	}
	if q.AmountTolerance < 0 || q.AmountTolerance >= 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "quality.amount_tolerance",
			Message:  "amount tolerance must be in [0, 1)",
		})
	}
	return issues
}

func validateWarehouse(w Warehouse) []Issue {
	var issues []Issue

	switch w.Kind {
	case "sqlite", "postgres", "mysql":
	case "":
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  "storage kind must not be empty",
		})
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  fmt.Sprintf("unknown storage kind %q (expected sqlite, postgres, or mysql)", w.Kind),
		})
	}

	if strings.TrimSpace(w.DSN) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.dsn",
			Message:  "DSN must not be empty",
		})
	}
	if w.BatchSize < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.batch_size",
			Message:  "batch size must not be negative",
		})
	}

	start, errStart := time.Parse("2006-01-02", w.DateDim.Start)
	if errStart != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.date_dim.start",
			Message:  fmt.Sprintf("not an ISO date: %q", w.DateDim.Start),
		})
	}
	end, errEnd := time.Parse("2006-01-02", w.DateDim.End)
	if errEnd != nil {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.date_dim.end",
			Message:  fmt.Sprintf("not an ISO date: %q", w.DateDim.End),
		})
	}
	if errStart == nil && errEnd == nil && end.Before(start) {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.date_dim",
			Message:  "end date precedes start date",
		})
	}

	return issues
}
