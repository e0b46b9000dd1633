// Package mysql implements a MySQL-backed storage.Repository using
// database/sql. CopyFrom builds multi-row INSERT statements, which is the
// practical bulk path for MySQL without LOAD DATA INFILE.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"storedw/internal/ddl"
	"storedw/internal/storage"
	"storedw/pkg/records"
)

const defaultBatchSize = 500

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg)
	})
	storage.RegisterDDL("mysql", bootstrapDDL)
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db        *sql.DB
	batchSize int
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// NewRepository opens a connection pool for cfg.DSN, for example:
//
//	"user:pass@tcp(localhost:3306)/warehouse?parseTime=true"
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("mysql: DSN must not be empty")
	}
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}

	batch := cfg.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	return &Repository{db: db, batchSize: batch}, nil
}

func (r *Repository) Exec(ctx context.Context, query string, args ...any) error {
	return execOn(ctx, r.db, query, args...)
}

func (r *Repository) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyOn(ctx, r.db, r.batchSize, table, columns, rows)
}

func (r *Repository) Select(ctx context.Context, query string, args ...any) ([]records.Record, error) {
	return selectOn(ctx, r.db, query, args...)
}

// WithTx runs fn inside one transaction; any error from fn rolls it back.
func (r *Repository) WithTx(ctx context.Context, fn func(storage.Querier) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("mysql: begin tx: %w", err)
	}
	if err := fn(&txSession{tx: tx, batchSize: r.batchSize}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("mysql: commit: %w", err)
	}
	return nil
}

func (r *Repository) Close() { r.db.Close() }

type txSession struct {
	tx        *sql.Tx
	batchSize int
}

func (s *txSession) Exec(ctx context.Context, query string, args ...any) error {
	return execOn(ctx, s.tx, query, args...)
}

func (s *txSession) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return copyOn(ctx, s.tx, s.batchSize, table, columns, rows)
}

func (s *txSession) Select(ctx context.Context, query string, args ...any) ([]records.Record, error) {
	return selectOn(ctx, s.tx, query, args...)
}

func execOn(ctx context.Context, db dbtx, query string, args ...any) error {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}

// copyOn inserts rows in multi-row INSERT batches.
func copyOn(ctx context.Context, db dbtx, batchSize int, table string, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: CopyFrom: columns must not be empty")
	}

	rowPlaceholder := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	var inserted int64
	for start := 0; start < len(rows); start += batchSize {
		end := start + batchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		placeholders := make([]string, len(batch))
		args := make([]any, 0, len(batch)*len(columns))
		for i, row := range batch {
			if len(row) != len(columns) {
				return inserted, fmt.Errorf("mysql: CopyFrom: row length %d != columns length %d", len(row), len(columns))
			}
			placeholders[i] = rowPlaceholder
			args = append(args, row...)
		}

		stmt := fmt.Sprintf(
			"INSERT INTO %s (%s) VALUES %s",
			table,
			strings.Join(columns, ", "),
			strings.Join(placeholders, ", "),
		)
		res, err := db.ExecContext(ctx, stmt, args...)
		if err != nil {
			return inserted, fmt.Errorf("mysql: insert into %s: %w", table, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += n
		} else {
			inserted += int64(len(batch))
		}
	}
	return inserted, nil
}

func selectOn(ctx context.Context, db dbtx, query string, args ...any) ([]records.Record, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("mysql: query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("mysql: columns: %w", err)
	}

	var out []records.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("mysql: scan: %w", err)
		}
		rec := make(records.Record, len(cols))
		for i, c := range cols {
			// The MySQL driver returns []byte for text columns.
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("mysql: rows: %w", err)
	}
	return out, nil
}

// typeFor maps logical column kinds to MySQL types.
func typeFor(k ddl.Kind) string {
	switch k {
	case ddl.Integer:
		return "BIGINT"
	case ddl.Real:
		return "DOUBLE"
	case ddl.Bool:
		return "TINYINT(1)"
	default:
		return "VARCHAR(255)"
	}
}

func bootstrapDDL(ctx context.Context, q storage.Querier, tables []ddl.TableDef) error {
	for _, t := range tables {
		stmt, err := ddl.BuildCreateTableSQL(t, typeFor, "BIGINT AUTO_INCREMENT PRIMARY KEY")
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
			// MySQL has no CREATE INDEX IF NOT EXISTS; tolerate duplicates.
			if err := q.Exec(ctx, strings.Replace(s, "IF NOT EXISTS ", "", 1)); err != nil && !isDuplicateIndex(err) {
				return err
			}
		}
	}
	return nil
}

func isDuplicateIndex(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate key name")
}
