package storage

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storedw/internal/ddl"
	"storedw/pkg/records"
)

type fakeRepo struct {
	execs []string
}

func (f *fakeRepo) Exec(ctx context.Context, query string, args ...any) error {
	f.execs = append(f.execs, query)
	return nil
}

func (f *fakeRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	return int64(len(rows)), nil
}

func (f *fakeRepo) Select(ctx context.Context, query string, args ...any) ([]records.Record, error) {
	return nil, nil
}

func (f *fakeRepo) WithTx(ctx context.Context, fn func(Querier) error) error {
	return fn(f)
}

func (f *fakeRepo) Close() {}

func TestNewDispatchesToRegisteredFactory(t *testing.T) {
	want := &fakeRepo{}
	Register("fake-dispatch", func(ctx context.Context, cfg Config) (Repository, error) {
		if cfg.DSN != "dsn-value" {
			t.Errorf("cfg.DSN = %q", cfg.DSN)
		}
		return want, nil
	})

	got, err := New(context.Background(), Config{Kind: "fake-dispatch", DSN: "dsn-value"})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got != Repository(want) {
		t.Error("New() returned a different repository")
	}
}

func TestNewUnknownKind(t *testing.T) {
	_, err := New(context.Background(), Config{Kind: "no-such-kind"})
	if err == nil || !strings.Contains(err.Error(), "unknown kind") {
		t.Fatalf("err = %v, want unknown kind", err)
	}
}

func TestNewFactoryErrorsBubbleUp(t *testing.T) {
	boom := errors.New("connection refused")
	Register("fake-error", func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, boom
	})
	if _, err := New(context.Background(), Config{Kind: "fake-error"}); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}

func TestEnsureSchema(t *testing.T) {
	tables := []ddl.TableDef{{Name: "dim_dates", Columns: []ddl.ColumnDef{{Name: "date_key", Kind: ddl.Integer}}}}

	if err := EnsureSchema(context.Background(), "no-such-kind", &fakeRepo{}, tables); err == nil {
		t.Fatal("expected error for unregistered kind")
	}

	var gotTables int
	RegisterDDL("fake-ddl", func(ctx context.Context, q Querier, ts []ddl.TableDef) error {
		gotTables = len(ts)
		return q.Exec(ctx, "CREATE TABLE dim_dates (date_key INTEGER);")
	})
	repo := &fakeRepo{}
	if err := EnsureSchema(context.Background(), "fake-ddl", repo, tables); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if gotTables != 1 || len(repo.execs) != 1 {
		t.Errorf("tables = %d execs = %v", gotTables, repo.execs)
	}
}
