package storage

import (
	"context"
	"fmt"
	"sync"

	"storedw/internal/ddl"
)

// DDLBootstrapper renders the given table definitions into the backend's
// dialect and applies them through the Querier (CREATE TABLE, CREATE INDEX).
// Backends register their implementation for a storage kind at init time.
type DDLBootstrapper func(ctx context.Context, q Querier, tables []ddl.TableDef) error

var (
	ddlMu  sync.RWMutex
	ddlFns = map[string]DDLBootstrapper{}
)

// RegisterDDL registers (or replaces) a DDLBootstrapper for the given storage
// kind. It is typically called from backend packages' init() functions.
func RegisterDDL(kind string, fn DDLBootstrapper) {
	ddlMu.Lock()
	defer ddlMu.Unlock()
	ddlFns[kind] = fn
}

// EnsureSchema locates the DDLBootstrapper for kind and applies the schema.
// Callers do not need to know which backend they are using; they pass the
// already-open Repository and the logical table definitions.
func EnsureSchema(ctx context.Context, kind string, q Querier, tables []ddl.TableDef) error {
	ddlMu.RLock()
	fn, ok := ddlFns[kind]
	ddlMu.RUnlock()
	if !ok {
		return fmt.Errorf("storage: no DDL bootstrapper registered for kind=%q", kind)
	}
	return fn(ctx, q, tables)
}
