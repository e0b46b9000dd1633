// Package config defines the JSON-serializable run configuration for the
// warehouse builder. It is intentionally small, explicit, and dependency-free
// so runs can be loaded from disk and passed through the program without
// additional glue code.
//
// Design goals:
//
//  1. Stability: changes to this package should be additive and backwards-
//     compatible whenever possible.
//  2. Minimalism: no third-party config libraries; decoding is performed by
//     the standard library.
package config

import (
	"encoding/json"
	"io"
	"time"
)

// Run is the top-level object decoded from a run file.
type Run struct {
	// Job is the logical run name, used for metrics labeling.
	Job string `json:"job"`

	// Datasets locates the three raw input files and their header mappings.
	Datasets Datasets `json:"datasets"`

	// Quality tunes the data-quality engine.
	Quality Quality `json:"quality"`

	// Warehouse configures the target store and the date dimension range.
	Warehouse Warehouse `json:"warehouse"`
}

// Datasets holds per-dataset input configuration.
type Datasets struct {
	Customers Dataset `json:"customers"`
	Products  Dataset `json:"products"`
	Sales     Dataset `json:"sales"`
}

// Dataset describes one raw CSV input.
type Dataset struct {
	// Path is the local filesystem path to the raw CSV file.
	Path string `json:"path"`

	// HeaderMap maps raw header names onto canonical snake_case field names.
	// When empty, the dataset's built-in mapping is used. Source files use
	// inconsistent conventions ("CustomerID" vs "productid"); this is an input
	// contract the pipeline tolerates, not something fixed upstream.
	HeaderMap map[string]string `json:"header_map,omitempty"`

	// Comma overrides the field delimiter (first rune used). Default ",".
	Comma string `json:"comma,omitempty"`
}

// Quality tunes the data-quality engine.
type Quality struct {
	// IQRMultiplier is the k in Q1 - k*IQR .. Q3 + k*IQR. The default 2.0 is
	// looser than the conventional 1.5 to avoid over-pruning small datasets.
	IQRMultiplier float64 `json:"iqr_multiplier"`

	// AmountTolerance is the relative tolerance for the
	// amount = unit price * quantity consistency rule. Default 0.01 (1%).
	AmountTolerance float64 `json:"amount_tolerance"`
}

// Warehouse configures the target store.
type Warehouse struct {
	// Kind selects the storage backend: "sqlite" (default), "postgres",
	// or "mysql".
	Kind string `json:"kind"`

	// DSN is the backend connection string (file path or URL).
	DSN string `json:"dsn"`

	// BatchSize bounds rows per insert batch. Default 500.
	BatchSize int `json:"batch_size"`

	// DateDim fixes the calendar range generated for the date dimension.
	// The range never shrinks to match observed transaction dates.
	DateDim DateRange `json:"date_dim"`
}

// DateRange is an inclusive calendar interval in ISO form (2006-01-02).
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Defaults applied by Load when fields are zero.
const (
	DefaultIQRMultiplier   = 2.0
	DefaultAmountTolerance = 0.01
	DefaultBatchSize       = 500
	DefaultDateDimStart    = "2020-01-01"
	DefaultDateDimEnd      = "2025-12-31"
	DefaultKind            = "sqlite"
)

// Load decodes a Run from r and applies defaults. Validation is separate; see
// Validate.
func Load(r io.Reader) (Run, error) {
	var run Run
	if err := json.NewDecoder(r).Decode(&run); err != nil {
		return Run{}, err
	}
	run.ApplyDefaults()
	return run, nil
}

// ApplyDefaults fills zero-valued tunables with their documented defaults.
func (r *Run) ApplyDefaults() {
	if r.Quality.IQRMultiplier == 0 {
		r.Quality.IQRMultiplier = DefaultIQRMultiplier
	}
	if r.Quality.AmountTolerance == 0 {
		r.Quality.AmountTolerance = DefaultAmountTolerance
	}
	if r.Warehouse.Kind == "" {
		r.Warehouse.Kind = DefaultKind
	}
	if r.Warehouse.BatchSize == 0 {
		r.Warehouse.BatchSize = DefaultBatchSize
	}
	if r.Warehouse.DateDim.Start == "" {
		r.Warehouse.DateDim.Start = DefaultDateDimStart
	}
	if r.Warehouse.DateDim.End == "" {
		r.Warehouse.DateDim.End = DefaultDateDimEnd
	}
}

// DateDimRange parses the configured date-dimension bounds.
func (r Run) DateDimRange() (start, end time.Time, err error) {
	start, err = time.Parse("2006-01-02", r.Warehouse.DateDim.Start)
	if err != nil {
		return
	}
	end, err = time.Parse("2006-01-02", r.Warehouse.DateDim.End)
	return
}
