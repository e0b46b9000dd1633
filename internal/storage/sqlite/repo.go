// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. SQLite has no dedicated bulk-load API like Postgres COPY, so
// CopyFrom uses a prepared INSERT; inside WithTx the statements share the
// surrounding transaction, which keeps full refreshes atomic and fast enough
// for moderate volumes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"storedw/internal/ddl"
	"storedw/internal/storage"
	"storedw/pkg/records"
)

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
	storage.RegisterDDL("sqlite", bootstrapDDL)
}

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

// dbtx is the subset of *sql.DB and *sql.Tx the session methods need.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// NewRepository opens a SQLite connection for cfg.DSN, for example:
//
//	"file:warehouse.db?cache=shared"
//	"warehouse.db"
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	// Enable foreign keys; ignore error if the driver does not support it.
	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")

	return &Repository{db: db}, nil
}

func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	return execOn(ctx, r.db, query, args...)
}

func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyOn(ctx, r.db, table, columns, rows)
}

func (r *Repository) Select(ctx context.Context, query string, args ...any) ([]records.Record, error) {
	return selectOn(ctx, r.db, query, args...)
}

// WithTx runs fn inside one transaction; any error from fn rolls it back.
func (r *Repository) WithTx(ctx context.Context, fn func(storage.Querier) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	if err := fn(&txSession{tx: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

func (r *Repository) Close() { r.db.Close() }

// txSession routes the Querier methods through an open transaction.
type txSession struct {
	tx *sql.Tx
}

func (s *txSession) Exec(ctx context.Context, query string, args ...any) error {
	return execOn(ctx, s.tx, query, args...)
}

func (s *txSession) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyOn(ctx, s.tx, table, columns, rows)
}

func (s *txSession) Select(ctx context.Context, query string, args ...any) ([]records.Record, error) {
	return selectOn(ctx, s.tx, query, args...)
}

func execOn(ctx context.Context, db dbtx, query string, args ...any) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("sqlite: exec: %w", err)
	}
	return nil
}

// copyOn inserts rows through a prepared statement. Row length must match the
// column list for every row.
func copyOn(ctx context.Context, db dbtx, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("sqlite: CopyFrom: columns must not be empty")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmtSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
	)

	stmt, err := db.PrepareContext(ctx, stmtSQL)
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range rows {
		if len(row) != len(columns) {
			return inserted, fmt.Errorf("sqlite: CopyFrom: row length %d != columns length %d", len(row), len(columns))
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert into %s: %w", table, err)
		}
		inserted++
	}
	return inserted, nil
}

func selectOn(ctx context.Context, db dbtx, query string, args ...any) ([]records.Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("sqlite: columns: %w", err)
	}

	var out []records.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("sqlite: scan: %w", err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: rows: %w", err)
	}
	return out, nil
}

// typeFor maps logical column kinds to SQLite storage classes.
func typeFor(k ddl.Kind) string {
	switch k {
	case ddl.Integer, ddl.Bool:
		return "INTEGER"
	case ddl.Real:
		return "REAL"
	default:
		return "TEXT"
	}
}

func bootstrapDDL(ctx context.Context, q storage.Querier, tables []ddl.TableDef) error {
	for _, t := range tables {
		stmt, err := ddl.BuildCreateTableSQL(t, typeFor, "INTEGER PRIMARY KEY AUTOINCREMENT")
		if err != nil {
			return err
		}
		if err := q.Exec(ctx, stmt); err != nil {
			return err
		}
		idx, err := ddl.BuildCreateIndexSQL(t)
		if err != nil {
			return err
		}
		for _, s := range idx {
			if err := q.Exec(ctx, s); err != nil {
				return err
			}
		}
	}
	return nil
}
