// Package storage contains the storage-agnostic contracts for the warehouse:
// a Repository interface, a factory keyed by storage kind, and a DDL bootstrap
// registry. Concrete backends (sqlite, postgres, mysql) register themselves at
// init time; callers select a backend by configuration alone.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"storedw/pkg/records"
)

// Querier is the method set available both on a Repository and inside a
// transaction.
type Querier interface {
	// Exec runs a statement (DDL or bulk DELETE), discarding any result rows.
	Exec(ctx context.Context, query string, args ...any) error

	// CopyFrom bulk-inserts rows aligned to the column order into table,
	// using the backend's most efficient primitive, and returns the number
	// of rows inserted.
	CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)

	// Select runs a read-only query and returns the rows keyed by column
	// name.
	Select(ctx context.Context, query string, args ...any) ([]records.Record, error)
}

// Repository is a live connection to one warehouse backend.
//
// WithTx runs fn inside a single transaction: fn's Querier routes every
// statement through that transaction, a non-nil error from fn rolls the whole
// transaction back, and a nil error commits it. The full-refresh load depends
// on this contract to never leave a half-loaded schema behind.
type Repository interface {
	Querier
	WithTx(ctx context.Context, fn func(Querier) error) error
	Close()
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind      string
	DSN       string
	BatchSize int
}

// Factory opens a Repository for a Config of its kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	factoryMu sync.RWMutex
	factories = map[string]Factory{}
)

// Register makes a backend available under kind. It is called from backend
// packages' init() functions; importing storage/all registers every built-in
// backend.
func Register(kind string, fn Factory) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository for cfg.Kind, or fails with the list of registered
// kinds when the kind is unknown.
func New(ctx context.Context, cfg Config) (Repository, error) {
	factoryMu.RLock()
	fn, ok := factories[cfg.Kind]
	factoryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return fn(ctx, cfg)
}

// Kinds lists the registered backend kinds, sorted.
func Kinds() []string {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}
