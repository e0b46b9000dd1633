package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"storedw/internal/ddl"
	"storedw/internal/storage"
	"storedw/pkg/records"
)

// newTestRepo opens a repository against a throwaway file database. A file
// beats ":memory:" here: database/sql pools connections, and each in-memory
// connection would see its own empty database.
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "warehouse.db")
	r, err := NewRepository(context.Background(), storage.Config{DSN: dsn})
	if err != nil {
		t.Fatalf("NewRepository(%q) error = %v", dsn, err)
	}
	t.Cleanup(r.Close)
	return r
}

func mustExec(t *testing.T, r *Repository, stmt string) {
	t.Helper()
	if err := r.Exec(context.Background(), stmt); err != nil {
		t.Fatalf("exec %q: %v", stmt, err)
	}
}

func countRows(t *testing.T, r *Repository, table string) int64 {
	t.Helper()
	recs, err := r.Select(context.Background(), "SELECT COUNT(*) AS n FROM "+table+";")
	if err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	if len(recs) != 1 {
		t.Fatalf("count %s: %d rows", table, len(recs))
	}
	n, ok := records.Float(recs[0]["n"])
	if !ok {
		t.Fatalf("count %s: non-numeric %v", table, recs[0]["n"])
	}
	return int64(n)
}

func TestNewRepositoryRequiresDSN(t *testing.T) {
	t.Parallel()

	if _, err := NewRepository(context.Background(), storage.Config{}); err == nil {
		t.Fatal("NewRepository with empty DSN: expected error")
	}
}

func TestCopyFromRoundTrip(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE dim_regions (region_key INTEGER, region TEXT)`)

	rows := [][]any{
		{int64(1), "East"},
		{int64(2), "West"},
		{int64(3), "Central"},
	}
	n, err := r.CopyFrom(ctx, "dim_regions", []string{"region_key", "region"}, rows)
	if err != nil {
		t.Fatalf("CopyFrom() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("CopyFrom() inserted = %d, want 3", n)
	}

	got, err := r.Select(ctx, "SELECT region_key, region FROM dim_regions ORDER BY region_key;")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Select() rows = %d, want 3", len(got))
	}
	if records.String(got[0]["region"]) != "East" || records.String(got[2]["region"]) != "Central" {
		t.Errorf("rows = %v", got)
	}
	if k, _ := records.Float(got[1]["region_key"]); k != 2 {
		t.Errorf("region_key = %v, want 2", got[1]["region_key"])
	}
}

func TestCopyFromRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	mustExec(t, r, `CREATE TABLE t (a INTEGER, b TEXT)`)

	_, err := r.CopyFrom(context.Background(), "t", []string{"a", "b"}, [][]any{{1}})
	if err == nil {
		t.Fatal("expected row/column length mismatch error")
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE fact_rows (id INTEGER, amount REAL)`)
	if _, err := r.CopyFrom(ctx, "fact_rows", []string{"id", "amount"}, [][]any{{int64(1), 9.99}}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("verification mismatch")
	err := r.WithTx(ctx, func(q storage.Querier) error {
		if err := q.Exec(ctx, "DELETE FROM fact_rows;"); err != nil {
			return err
		}
		if _, err := q.CopyFrom(ctx, "fact_rows", []string{"id", "amount"}, [][]any{
			{int64(2), 1.50},
			{int64(3), 2.50},
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTx() error = %v, want the callback error", err)
	}

	// The refresh was rolled back; the seed row survives untouched.
	if n := countRows(t, r, "fact_rows"); n != 1 {
		t.Errorf("rows after rollback = %d, want 1", n)
	}
}

func TestWithTxCommitsOnSuccess(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()
	mustExec(t, r, `CREATE TABLE fact_rows (id INTEGER, amount REAL)`)

	err := r.WithTx(ctx, func(q storage.Querier) error {
		_, err := q.CopyFrom(ctx, "fact_rows", []string{"id", "amount"}, [][]any{
			{int64(1), 1.0},
			{int64(2), 2.0},
		})
		return err
	})
	if err != nil {
		t.Fatalf("WithTx() error = %v", err)
	}
	if n := countRows(t, r, "fact_rows"); n != 2 {
		t.Errorf("rows after commit = %d, want 2", n)
	}
}

func TestBootstrapDDLCreatesTablesAndIndexes(t *testing.T) {
	t.Parallel()

	r := newTestRepo(t)
	ctx := context.Background()

	table := ddl.TableDef{
		Name: "dim_things",
		Columns: []ddl.ColumnDef{
			{Name: "thing_key", Kind: ddl.Integer, PrimaryKey: true},
			{Name: "thing_id", Kind: ddl.Text, Unique: true},
			{Name: "price", Kind: ddl.Real, Nullable: true},
		},
		Indexes: []ddl.IndexDef{
			{Name: "idx_dim_things_thing_id", Columns: []string{"thing_id"}},
		},
	}
	if err := bootstrapDDL(ctx, r, []ddl.TableDef{table}); err != nil {
		t.Fatalf("bootstrapDDL() error = %v", err)
	}
	// Idempotent thanks to IF NOT EXISTS.
	if err := bootstrapDDL(ctx, r, []ddl.TableDef{table}); err != nil {
		t.Fatalf("bootstrapDDL() second run error = %v", err)
	}

	if _, err := r.CopyFrom(ctx, "dim_things", []string{"thing_key", "thing_id", "price"}, [][]any{
		{int64(1), "T1", 9.99},
	}); err != nil {
		t.Fatalf("insert after bootstrap: %v", err)
	}
	// The UNIQUE constraint on the business key is live.
	if _, err := r.CopyFrom(ctx, "dim_things", []string{"thing_key", "thing_id", "price"}, [][]any{
		{int64(2), "T1", 1.23},
	}); err == nil {
		t.Fatal("expected unique constraint violation on thing_id")
	}
}
