package warehouse

import (
	"context"
	"fmt"
	"log"

	"storedw/internal/storage"
	"storedw/pkg/records"
)

// Analytics executes the fixed read-only query catalogue against a loaded
// schema. Every query is parameter-free; thresholds and cutoffs (the
// high-value bar, the top-N windows) are computed inside the query from
// current data, never cached. Queries may run concurrently with each other
// but never with a load.
type Analytics struct {
	q storage.Querier
}

// NewAnalytics returns the catalogue bound to q.
func NewAnalytics(q storage.Querier) *Analytics {
	return &Analytics{q: q}
}

// QueryResult is one catalogue entry's output.
type QueryResult struct {
	Name string
	Rows []records.Record
}

// RunAll executes the whole catalogue in order. A failing query aborts with
// its name attached; results are never silently empty on error.
func (a *Analytics) RunAll(ctx context.Context) ([]QueryResult, error) {
	catalogue := []struct {
		name string
		fn   func(context.Context) ([]records.Record, error)
	}{
		{"top-customers", a.TopCustomers},
		{"revenue-by-category", a.RevenueByCategory},
		{"top-products", a.TopProducts},
		{"revenue-by-region", a.RevenueByRegion},
		{"campaign-effectiveness", a.CampaignEffectiveness},
		{"payment-method-distribution", a.PaymentMethodDistribution},
		{"purchase-frequency", a.PurchaseFrequency},
		{"high-value-transactions", a.HighValueTransactions},
	}

	out := make([]QueryResult, 0, len(catalogue))
	for _, entry := range catalogue {
		rows, err := entry.fn(ctx)
		if err != nil {
			return out, fmt.Errorf("query %s: %w", entry.name, err)
		}
		log.Printf("query: name=%s rows=%d", entry.name, len(rows))
		out = append(out, QueryResult{Name: entry.name, Rows: rows})
	}
	return out, nil
}

// TopCustomers ranks the ten customers with the highest summed spend.
func (a *Analytics) TopCustomers(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    c.customer_name,
    c.region,
    COUNT(s.sale_id) AS total_transactions,
    SUM(s.quantity) AS total_items_purchased,
    SUM(s.sales_amount) AS total_spent,
    ROUND(AVG(s.sales_amount), 2) AS avg_transaction_amount
FROM fact_sales s
JOIN dim_customers c ON s.customer_key = c.customer_key
GROUP BY c.customer_key, c.customer_name, c.region
ORDER BY total_spent DESC
LIMIT 10;`)
}

// RevenueByCategory aggregates revenue per product category.
func (a *Analytics) RevenueByCategory(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    p.category,
    COUNT(s.sale_id) AS total_sales,
    SUM(s.quantity) AS total_quantity,
    SUM(s.sales_amount) AS total_revenue,
    ROUND(AVG(s.sales_amount), 2) AS avg_sale_amount
FROM fact_sales s
JOIN dim_products p ON s.product_key = p.product_key
GROUP BY p.category
ORDER BY total_revenue DESC;`)
}

// TopProducts ranks the ten products with the highest summed revenue.
func (a *Analytics) TopProducts(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    p.product_name,
    p.category,
    p.unit_price,
    COUNT(s.sale_id) AS times_sold,
    SUM(s.quantity) AS total_quantity_sold,
    SUM(s.sales_amount) AS total_revenue
FROM fact_sales s
JOIN dim_products p ON s.product_key = p.product_key
GROUP BY p.product_key, p.product_name, p.category, p.unit_price
ORDER BY total_revenue DESC
LIMIT 10;`)
}

// RevenueByRegion aggregates revenue and distinct customer counts per region.
func (a *Analytics) RevenueByRegion(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    c.region,
    COUNT(DISTINCT c.customer_key) AS unique_customers,
    COUNT(s.sale_id) AS total_transactions,
    SUM(s.sales_amount) AS total_revenue,
    ROUND(AVG(s.sales_amount), 2) AS avg_transaction_amount
FROM fact_sales s
JOIN dim_customers c ON s.customer_key = c.customer_key
GROUP BY c.region
ORDER BY total_revenue DESC;`)
}

// CampaignEffectiveness aggregates revenue per campaign; campaign_id 0 is the
// no-campaign baseline. The label is left to the presentation layer so the
// SQL stays portable across backends.
func (a *Analytics) CampaignEffectiveness(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    s.campaign_id,
    COUNT(s.sale_id) AS total_sales,
    SUM(s.sales_amount) AS total_revenue,
    ROUND(AVG(s.sales_amount), 2) AS avg_sale_amount,
    SUM(s.quantity) AS total_items_sold
FROM fact_sales s
GROUP BY s.campaign_id
ORDER BY total_revenue DESC;`)
}

// PaymentMethodDistribution shows transaction share per payment method with
// percent-of-total computed against the full fact table.
func (a *Analytics) PaymentMethodDistribution(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    s.payment_method,
    COUNT(s.sale_id) AS transaction_count,
    SUM(s.sales_amount) AS total_revenue,
    ROUND(AVG(s.sales_amount), 2) AS avg_transaction_amount,
    ROUND(100.0 * COUNT(s.sale_id) / (SELECT COUNT(*) FROM fact_sales), 2) AS percent_of_transactions
FROM fact_sales s
GROUP BY s.payment_method
ORDER BY transaction_count DESC;`)
}

// PurchaseFrequency buckets customers by transaction count.
func (a *Analytics) PurchaseFrequency(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    CASE
        WHEN transaction_count = 1 THEN '1 purchase'
        WHEN transaction_count BETWEEN 2 AND 5 THEN '2-5 purchases'
        WHEN transaction_count BETWEEN 6 AND 10 THEN '6-10 purchases'
        ELSE '10+ purchases'
    END AS purchase_frequency,
    COUNT(*) AS customer_count,
    ROUND(AVG(total_spent), 2) AS avg_customer_value
FROM (
    SELECT
        c.customer_key,
        COUNT(s.sale_id) AS transaction_count,
        SUM(s.sales_amount) AS total_spent
    FROM dim_customers c
    LEFT JOIN fact_sales s ON c.customer_key = s.customer_key
    GROUP BY c.customer_key
) AS per_customer
GROUP BY purchase_frequency
ORDER BY MIN(transaction_count);`)
}

// HighValueTransactions lists sales above twice the global average amount.
// The threshold is a correlated sub-aggregate evaluated at query time, so it
// tracks the loaded data instead of a hardcoded constant.
func (a *Analytics) HighValueTransactions(ctx context.Context) ([]records.Record, error) {
	return a.q.Select(ctx, `
SELECT
    s.transaction_id,
    c.customer_name,
    p.product_name,
    p.category,
    s.quantity,
    s.sales_amount,
    d.full_date AS transaction_date
FROM fact_sales s
JOIN dim_customers c ON s.customer_key = c.customer_key
JOIN dim_products p ON s.product_key = p.product_key
JOIN dim_dates d ON s.date_key = d.date_key
WHERE s.sales_amount > (SELECT AVG(sales_amount) * 2 FROM fact_sales)
ORDER BY s.sales_amount DESC
LIMIT 20;`)
}
