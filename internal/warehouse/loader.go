package warehouse

import (
	"context"
	"fmt"
	"log"
	"time"

	"storedw/internal/metrics"
	"storedw/internal/storage"
	"storedw/pkg/records"
)

// Exclusion reasons for fact rows that could not be resolved. A row is
// counted once, under the first reference that failed.
const (
	ExcludeNoCustomer = "unresolved-customer"
	ExcludeNoProduct  = "unresolved-product"
	ExcludeNoDate     = "unresolved-date"
)

// LoadResult reports one full refresh.
type LoadResult struct {
	Customers int64
	Products  int64
	Dates     int64
	Sales     int64

	// Excluded counts fact rows dropped per reason; ExcludedKeys carries the
	// business keys for follow-up.
	Excluded     map[string]int
	ExcludedKeys map[string][]string

	Duration time.Duration
}

// Loader performs the truncate-then-insert full refresh of the star schema.
// A load owns the warehouse exclusively; concurrent loads are not supported.
type Loader struct {
	repo      storage.Repository
	batchSize int

	dateStart time.Time
	dateEnd   time.Time
}

// NewLoader returns a loader writing through repo. The date dimension is
// generated over [dateStart, dateEnd] regardless of observed fact dates.
func NewLoader(repo storage.Repository, batchSize int, dateStart, dateEnd time.Time) *Loader {
	return &Loader{repo: repo, batchSize: batchSize, dateStart: dateStart, dateEnd: dateEnd}
}

// Load runs the whole refresh inside one transaction: truncate, dimension
// loads, date dimension, fact load with referential-integrity filtering, and
// a post-load count verification. Any error rolls the entire refresh back.
func (l *Loader) Load(ctx context.Context, customers, products, sales []records.Record) (*LoadResult, error) {
	start := time.Now()
	res := &LoadResult{
		Excluded:     map[string]int{},
		ExcludedKeys: map[string][]string{},
	}

	err := l.repo.WithTx(ctx, func(q storage.Querier) error {
		// Fact first so dimension deletes never violate references.
		for _, table := range []string{TableSales, TableCustomers, TableProducts, TableDates} {
			if err := q.Exec(ctx, "DELETE FROM "+table+";"); err != nil {
				return fmt.Errorf("truncate %s: %w", table, err)
			}
		}

		customerKeys, n, err := l.loadDimension(ctx, q, TableCustomers, customerColumns, "customer_id", customers, customerRow)
		if err != nil {
			return err
		}
		res.Customers = n

		productKeys, n, err := l.loadDimension(ctx, q, TableProducts, productColumns, "product_id", products, productRow)
		if err != nil {
			return err
		}
		res.Products = n

		dateKeys, n, err := l.loadDates(ctx, q)
		if err != nil {
			return err
		}
		res.Dates = n

		res.Sales, err = l.loadFacts(ctx, q, sales, customerKeys, productKeys, dateKeys, res)
		if err != nil {
			return err
		}

		return l.verify(ctx, q, res)
	})
	if err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	for table, n := range map[string]int64{
		TableCustomers: res.Customers,
		TableProducts:  res.Products,
		TableDates:     res.Dates,
		TableSales:     res.Sales,
	} {
		metrics.RecordRows(table, "loaded", n)
	}
	for reason, n := range res.Excluded {
		metrics.RecordRows(TableSales, reason, int64(n))
	}
	log.Printf("loader: customers=%d products=%d dates=%d sales=%d excluded=%d duration=%s",
		res.Customers, res.Products, res.Dates, res.Sales, totalExcluded(res), res.Duration.Truncate(time.Millisecond))
	return res, nil
}

// rowFn maps a clean record plus its surrogate key to an insert row.
type rowFn func(key int64, rec records.Record) []any

// loadDimension assigns surrogate keys 1..n in input order after a defensive
// keep-first dedup by canonical business key, inserts the rows, and returns
// the canonical-key lookup map for fact resolution.
func (l *Loader) loadDimension(
	ctx context.Context,
	q storage.Querier,
	table string,
	columns []string,
	keyField string,
	recs []records.Record,
	toRow rowFn,
) (map[string]int64, int64, error) {
	keys := make(map[string]int64, len(recs))
	rows := make([][]any, 0, len(recs))

	var next int64
	for _, rec := range recs {
		ck := records.CanonicalKey(rec[keyField])
		if ck == "" {
			continue
		}
		if _, dup := keys[ck]; dup {
			continue
		}
		next++
		keys[ck] = next
		rows = append(rows, toRow(next, rec))
	}

	n, err := l.copyBatched(ctx, q, table, columns, rows)
	if err != nil {
		return nil, n, fmt.Errorf("load %s: %w", table, err)
	}
	return keys, n, nil
}

func customerRow(key int64, rec records.Record) []any {
	return []any{
		key,
		records.String(rec["customer_id"]),
		rec["customer_name"],
		rec["email"],
		rec["region"],
		rec["join_date"],
		rec["customer_age"],
	}
}

func productRow(key int64, rec records.Record) []any {
	return []any{
		key,
		records.String(rec["product_id"]),
		rec["product_name"],
		rec["category"],
		rec["unit_price"],
		rec["stock_level"],
		rec["supplier_name"],
	}
}

// loadDates generates and inserts the calendar, returning the ISO-date lookup
// map.
func (l *Loader) loadDates(ctx context.Context, q storage.Querier) (map[string]int64, int64, error) {
	days := GenerateDates(l.dateStart, l.dateEnd)
	keys := make(map[string]int64, len(days))
	rows := make([][]any, len(days))
	for i, d := range days {
		keys[d.Date.Format("2006-01-02")] = d.Key
		rows[i] = []any{
			d.Key, d.Date.Format("2006-01-02"), d.Year, d.Quarter, d.Month,
			d.MonthName, d.Day, d.DayOfWeek, d.DayName, d.IsWeekend,
		}
	}
	n, err := l.copyBatched(ctx, q, TableDates, dateColumns, rows)
	if err != nil {
		return nil, n, fmt.Errorf("load %s: %w", TableDates, err)
	}
	return keys, n, nil
}

// loadFacts resolves every foreign key through the in-memory maps and inserts
// the resolvable rows. A row with any unresolved reference is excluded and
// attributed to the first failing reference, with its business key logged.
func (l *Loader) loadFacts(
	ctx context.Context,
	q storage.Querier,
	sales []records.Record,
	customerKeys, productKeys map[string]int64,
	dateKeys map[string]int64,
	res *LoadResult,
) (int64, error) {
	rows := make([][]any, 0, len(sales))
	for _, rec := range sales {
		txID := records.String(rec["transaction_id"])

		customerKey, ok := customerKeys[records.CanonicalKey(rec["customer_id"])]
		if !ok {
			exclude(res, ExcludeNoCustomer, txID, records.String(rec["customer_id"]))
			continue
		}
		productKey, ok := productKeys[records.CanonicalKey(rec["product_id"])]
		if !ok {
			exclude(res, ExcludeNoProduct, txID, records.String(rec["product_id"]))
			continue
		}
		dateKey, ok := dateKeys[records.String(rec["sale_date"])]
		if !ok {
			exclude(res, ExcludeNoDate, txID, records.String(rec["sale_date"]))
			continue
		}

		rows = append(rows, []any{
			txID, customerKey, productKey, dateKey,
			rec["quantity"], rec["sales_amount"], rec["store_id"], rec["campaign_id"],
			rec["payment_method"], rec["sales_rep"],
		})
	}

	n, err := l.copyBatched(ctx, q, TableSales, saleColumns, rows)
	if err != nil {
		return n, fmt.Errorf("load %s: %w", TableSales, err)
	}
	return n, nil
}

func exclude(res *LoadResult, reason, txID, ref string) {
	res.Excluded[reason]++
	res.ExcludedKeys[reason] = append(res.ExcludedKeys[reason], txID)
	log.Printf("loader: excluded transaction_id=%s reason=%s ref=%q", txID, reason, ref)
}

// copyBatched splits rows into batches so a single huge insert never has to
// be held by the backend at once.
func (l *Loader) copyBatched(ctx context.Context, q storage.Querier, table string, columns []string, rows [][]any) (int64, error) {
	size := l.batchSize
	if size <= 0 {
		size = 500
	}
	var total int64
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		n, err := q.CopyFrom(ctx, table, columns, rows[start:end])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// verify compares post-load COUNT(*) per table with the inserted counts. A
// mismatch inside the same transaction is a loader defect, not bad data.
func (l *Loader) verify(ctx context.Context, q storage.Querier, res *LoadResult) error {
	checks := []struct {
		table string
		want  int64
	}{
		{TableCustomers, res.Customers},
		{TableProducts, res.Products},
		{TableDates, res.Dates},
		{TableSales, res.Sales},
	}
	for _, c := range checks {
		got, err := countRows(ctx, q, c.table)
		if err != nil {
			return err
		}
		if got != c.want {
			return fmt.Errorf("verify %s: count=%d, inserted=%d", c.table, got, c.want)
		}
	}
	return nil
}

func countRows(ctx context.Context, q storage.Querier, table string) (int64, error) {
	recs, err := q.Select(ctx, "SELECT COUNT(*) AS n FROM "+table+";")
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	if len(recs) != 1 {
		return 0, fmt.Errorf("count %s: %d rows", table, len(recs))
	}
	n, ok := records.Float(recs[0]["n"])
	if !ok {
		return 0, fmt.Errorf("count %s: non-numeric %v", table, recs[0]["n"])
	}
	return int64(n), nil
}

func totalExcluded(res *LoadResult) int {
	total := 0
	for _, n := range res.Excluded {
		total += n
	}
	return total
}
