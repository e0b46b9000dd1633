package warehouse

import (
	"context"
	"strings"
	"testing"
	"time"

	"storedw/internal/storage"
	"storedw/pkg/records"
)

// memRepo is an in-memory storage.Repository. Exec understands the bulk
// DELETE the loader issues; Select answers COUNT(*) queries from the stored
// rows. Everything runs through WithTx against a snapshot so a failed load
// leaves the previous contents intact.
type memRepo struct {
	tables map[string][][]any
	cols   map[string][]string

	// countOverride, when set, answers COUNT(*) for that table with a wrong
	// number to exercise verification.
	countOverride map[string]int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		tables:        map[string][][]any{},
		cols:          map[string][]string{},
		countOverride: map[string]int64{},
	}
}

func (m *memRepo) Exec(ctx context.Context, query string, args ...any) error {
	q := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if table, ok := strings.CutPrefix(q, "DELETE FROM "); ok {
		m.tables[table] = nil
	}
	return nil
}

func (m *memRepo) CopyFrom(ctx context.Context, table string, columns []string, rows [][]any) (int64, error) {
	m.cols[table] = columns
	m.tables[table] = append(m.tables[table], rows...)
	return int64(len(rows)), nil
}

func (m *memRepo) Select(ctx context.Context, query string, args ...any) ([]records.Record, error) {
	q := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(query), ";"))
	if table, ok := strings.CutPrefix(q, "SELECT COUNT(*) AS n FROM "); ok {
		n := int64(len(m.tables[table]))
		if override, has := m.countOverride[table]; has {
			n = override
		}
		return []records.Record{{"n": n}}, nil
	}
	return nil, nil
}

func (m *memRepo) WithTx(ctx context.Context, fn func(storage.Querier) error) error {
	snapTables := map[string][][]any{}
	for k, v := range m.tables {
		snapTables[k] = v
	}
	if err := fn(m); err != nil {
		m.tables = snapTables
		return err
	}
	return nil
}

func (m *memRepo) Close() {}

// cell returns the value of the named column in row i of a table.
func (m *memRepo) cell(table string, i int, column string) any {
	for ci, c := range m.cols[table] {
		if c == column {
			return m.tables[table][i][ci]
		}
	}
	return nil
}

var (
	loadStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	loadEnd   = time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
)

func sampleCustomers() []records.Record {
	return []records.Record{
		{"customer_id": "1001", "customer_name": "Alice", "region": "East"},
		{"customer_id": "1002", "customer_name": "Bob", "region": "West"},
	}
}

func sampleProducts() []records.Record {
	return []records.Record{
		{"product_id": "2001", "product_name": "Widget", "category": "Home", "unit_price": 9.99},
	}
}

func TestLoadAssignsSurrogateKeysInInputOrder(t *testing.T) {
	repo := newMemRepo()
	l := NewLoader(repo, 500, loadStart, loadEnd)

	res, err := l.Load(context.Background(), sampleCustomers(), sampleProducts(), nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Customers != 2 || res.Products != 1 || res.Dates != 31 || res.Sales != 0 {
		t.Fatalf("result = %+v", res)
	}

	if repo.cell(TableCustomers, 0, "customer_key") != int64(1) ||
		repo.cell(TableCustomers, 1, "customer_key") != int64(2) {
		t.Errorf("customer keys = %v, %v; want 1, 2",
			repo.cell(TableCustomers, 0, "customer_key"),
			repo.cell(TableCustomers, 1, "customer_key"))
	}
	if repo.cell(TableCustomers, 0, "customer_id") != "1001" {
		t.Errorf("first customer = %v", repo.cell(TableCustomers, 0, "customer_id"))
	}
}

func TestLoadDefensiveDimensionDedup(t *testing.T) {
	repo := newMemRepo()
	l := NewLoader(repo, 500, loadStart, loadEnd)

	customers := []records.Record{
		{"customer_id": "1001", "customer_name": "Alice"},
		{"customer_id": "1001.0", "customer_name": "Alias"},
	}
	res, err := l.Load(context.Background(), customers, nil, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Customers != 1 {
		t.Fatalf("customers = %d, want 1 (canonical keys collide)", res.Customers)
	}
	if repo.cell(TableCustomers, 0, "customer_name") != "Alice" {
		t.Errorf("survivor = %v, want first occurrence", repo.cell(TableCustomers, 0, "customer_name"))
	}
}

func TestLoadResolvesFactForeignKeys(t *testing.T) {
	repo := newMemRepo()
	l := NewLoader(repo, 500, loadStart, loadEnd)

	sales := []records.Record{
		// customer_id serialized as a float in the sales extract.
		{"transaction_id": "5001", "customer_id": "1002.0", "product_id": "2001",
			"sale_date": "2024-01-15", "quantity": int64(2), "sales_amount": 19.98},
	}
	res, err := l.Load(context.Background(), sampleCustomers(), sampleProducts(), sales)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if res.Sales != 1 || len(res.Excluded) != 0 {
		t.Fatalf("result = %+v", res)
	}

	if repo.cell(TableSales, 0, "customer_key") != int64(2) {
		t.Errorf("customer_key = %v, want 2", repo.cell(TableSales, 0, "customer_key"))
	}
	if repo.cell(TableSales, 0, "product_key") != int64(1) {
		t.Errorf("product_key = %v, want 1", repo.cell(TableSales, 0, "product_key"))
	}
	if repo.cell(TableSales, 0, "date_key") != int64(20240115) {
		t.Errorf("date_key = %v, want 20240115", repo.cell(TableSales, 0, "date_key"))
	}
}

func TestLoadExcludesUnresolvedReferencesOnce(t *testing.T) {
	repo := newMemRepo()
	l := NewLoader(repo, 500, loadStart, loadEnd)

	sales := []records.Record{
		{"transaction_id": "5001", "customer_id": "1001", "product_id": "P999",
			"sale_date": "2024-01-15", "quantity": int64(1), "sales_amount": 5.0},
		// Both references unresolved: counted once, under the customer.
		{"transaction_id": "5002", "customer_id": "9999", "product_id": "P999",
			"sale_date": "2024-01-15", "quantity": int64(1), "sales_amount": 5.0},
		{"transaction_id": "5003", "customer_id": "1001", "product_id": "2001",
			"sale_date": "2030-06-01", "quantity": int64(1), "sales_amount": 5.0},
		{"transaction_id": "5004", "customer_id": "1001", "product_id": "2001",
			"sale_date": "2024-01-20", "quantity": int64(3), "sales_amount": 15.0},
	}
	res, err := l.Load(context.Background(), sampleCustomers(), sampleProducts(), sales)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if res.Sales != 1 {
		t.Fatalf("sales = %d, want 1", res.Sales)
	}
	want := map[string]int{
		ExcludeNoProduct:  1,
		ExcludeNoCustomer: 1,
		ExcludeNoDate:     1,
	}
	for reason, n := range want {
		if res.Excluded[reason] != n {
			t.Errorf("excluded[%s] = %d, want %d", reason, res.Excluded[reason], n)
		}
	}
	if total := totalExcluded(res); total != 3 {
		t.Errorf("total excluded = %d, want 3 (no double counting)", total)
	}
	if keys := res.ExcludedKeys[ExcludeNoProduct]; len(keys) != 1 || keys[0] != "5001" {
		t.Errorf("excluded keys = %v, want [5001]", keys)
	}
}

func TestLoadIsIdempotent(t *testing.T) {
	repo := newMemRepo()
	l := NewLoader(repo, 500, loadStart, loadEnd)

	for i := 0; i < 2; i++ {
		if _, err := l.Load(context.Background(), sampleCustomers(), sampleProducts(), nil); err != nil {
			t.Fatalf("Load() #%d error = %v", i+1, err)
		}
	}
	if n := len(repo.tables[TableCustomers]); n != 2 {
		t.Errorf("customers after two loads = %d, want 2 (full refresh)", n)
	}
	if n := len(repo.tables[TableDates]); n != 31 {
		t.Errorf("dates after two loads = %d, want 31", n)
	}
}

func TestLoadVerificationMismatchFailsAndRollsBack(t *testing.T) {
	repo := newMemRepo()
	repo.countOverride[TableProducts] = 99
	l := NewLoader(repo, 500, loadStart, loadEnd)

	if _, err := l.Load(context.Background(), sampleCustomers(), sampleProducts(), nil); err == nil {
		t.Fatal("expected verification error")
	} else if !strings.Contains(err.Error(), "verify "+TableProducts) {
		t.Fatalf("err = %v", err)
	}
	if len(repo.tables[TableCustomers]) != 0 {
		t.Errorf("rows survived a rolled-back load: %d", len(repo.tables[TableCustomers]))
	}
}

func TestLoadBatchesLargeDimensions(t *testing.T) {
	repo := newMemRepo()
	l := NewLoader(repo, 10, loadStart, loadEnd)

	if _, err := l.Load(context.Background(), nil, nil, nil); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	// 31 calendar days in batches of 10 still land complete.
	if n := len(repo.tables[TableDates]); n != 31 {
		t.Errorf("dates = %d, want 31", n)
	}
}
