package quality

import (
	"errors"
	"testing"
	"time"

	"storedw/pkg/records"
)

var customerColumns = []string{
	"customer_id", "customer_name", "email", "region", "join_date",
	"customer_age", "total_spend", "customer_status",
}

func TestEngineRunCustomers(t *testing.T) {
	restore := timeNow
	timeNow = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }
	defer func() { timeNow = restore }()

	rows := []records.Record{
		{"customer_id": "1001", "customer_name": "alice smith", "region": "east ",
			"join_date": "3/5/2020", "total_spend": "120.507", "customer_status": "vip"},
		{"customer_id": "1001", "customer_name": "duplicate", "region": "West",
			"join_date": "2020-01-01", "total_spend": "10", "customer_status": "New"},
		{"customer_id": nil, "customer_name": "no id", "region": "West",
			"join_date": "2020-01-01", "total_spend": "10", "customer_status": "New"},
		{"customer_id": "1003", "customer_name": "carol", "region": "Mars",
			"join_date": "2020-01-01", "total_spend": "10", "customer_status": "New"},
		{"customer_id": "1004", "customer_name": "dave", "region": "West",
			"join_date": "2012-01-01", "total_spend": "10", "customer_status": "New"},
	}

	eng := NewEngine(CustomersContract, 2.0)
	out, rep, err := eng.Run(rows, customerColumns)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("rows = %d, want 1: %v", len(out), rep.Removed)
	}

	got := out[0]
	if got["customer_id"] != "1001" || got["customer_name"] != "Alice Smith" {
		t.Errorf("row = %v", got)
	}
	if got["region"] != "East" || got["customer_status"] != "VIP" {
		t.Errorf("enums = %v/%v", got["region"], got["customer_status"])
	}
	if got["join_date"] != "2020-03-05" {
		t.Errorf("join_date = %v, want 2020-03-05", got["join_date"])
	}
	if got["total_spend"] != 120.51 {
		t.Errorf("total_spend = %v, want 120.51", got["total_spend"])
	}
	// Unset optional fields were filled, not dropped.
	if got["email"] != "unknown@email.com" {
		t.Errorf("email = %v, want sentinel", got["email"])
	}

	if rep.Input != 5 || rep.Output != 1 {
		t.Errorf("report in/out = %d/%d", rep.Input, rep.Output)
	}
	wantReasons := map[string]int{
		"dedup/key:customer_id":        1,
		"missing/critical:customer_id": 1,
		"validate/enum:region":         1,
		"outlier/date:join_date":       1,
	}
	for reason, n := range wantReasons {
		if rep.Removed[reason] != n {
			t.Errorf("removed[%s] = %d, want %d (all: %v)", reason, rep.Removed[reason], n, rep.Removed)
		}
	}
}

func TestEngineRunMissingMandatoryColumnIsFatal(t *testing.T) {
	eng := NewEngine(SalesContract, 2.0)
	_, _, err := eng.Run(nil, []string{"transaction_id", "customer_id"})
	if !errors.Is(err, ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
}

func TestEngineProfilesBeforeMutation(t *testing.T) {
	rows := []records.Record{
		{"product_id": "2001", "unit_price": "10", "category": "Books",
			"product_name": "Atlas", "supplier_name": "Acme", "stock_level": "5"},
		{"product_id": "2002", "unit_price": nil, "category": "Books",
			"product_name": "Globe", "supplier_name": "Acme", "stock_level": "7"},
	}
	eng := NewEngine(ProductsContract, 2.0)
	_, rep, err := eng.Run(rows, []string{
		"product_id", "product_name", "category", "unit_price", "stock_level", "supplier_name",
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var price *ColumnProfile
	for i := range rep.Columns {
		if rep.Columns[i].Name == "unit_price" {
			price = &rep.Columns[i]
		}
	}
	if price == nil {
		t.Fatal("unit_price not profiled")
	}
	if price.Nulls != 1 || price.Type != Numeric || !price.HasMedian || price.Median != 10 {
		t.Errorf("profile = %+v", *price)
	}
}
