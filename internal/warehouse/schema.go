// Package warehouse owns the star schema and the full-refresh loader that
// populates it from cleaned records, plus the fixed analytical query
// catalogue that reads it back.
package warehouse

import "storedw/internal/ddl"

// Table names.
const (
	TableCustomers = "dim_customers"
	TableProducts  = "dim_products"
	TableDates     = "dim_dates"
	TableSales     = "fact_sales"
)

// Tables is the star schema in dependency order: dimensions first, then the
// fact table that references them.
var Tables = []ddl.TableDef{
	{
		Name: TableCustomers,
		Columns: []ddl.ColumnDef{
			{Name: "customer_key", Kind: ddl.Integer, PrimaryKey: true},
			{Name: "customer_id", Kind: ddl.Text, Unique: true},
			{Name: "customer_name", Kind: ddl.Text},
			{Name: "email", Kind: ddl.Text, Nullable: true},
			{Name: "region", Kind: ddl.Text, Nullable: true},
			{Name: "join_date", Kind: ddl.Text, Nullable: true},
			{Name: "customer_age", Kind: ddl.Integer, Nullable: true},
		},
	},
	{
		Name: TableProducts,
		Columns: []ddl.ColumnDef{
			{Name: "product_key", Kind: ddl.Integer, PrimaryKey: true},
			{Name: "product_id", Kind: ddl.Text, Unique: true},
			{Name: "product_name", Kind: ddl.Text},
			{Name: "category", Kind: ddl.Text, Nullable: true},
			{Name: "unit_price", Kind: ddl.Real, Nullable: true},
			{Name: "stock_level", Kind: ddl.Integer, Nullable: true},
			{Name: "supplier_name", Kind: ddl.Text, Nullable: true},
		},
	},
	{
		Name: TableDates,
		Columns: []ddl.ColumnDef{
			{Name: "date_key", Kind: ddl.Integer, PrimaryKey: true},
			{Name: "full_date", Kind: ddl.Text, Unique: true},
			{Name: "year", Kind: ddl.Integer},
			{Name: "quarter", Kind: ddl.Integer},
			{Name: "month", Kind: ddl.Integer},
			{Name: "month_name", Kind: ddl.Text},
			{Name: "day", Kind: ddl.Integer},
			{Name: "day_of_week", Kind: ddl.Integer},
			{Name: "day_name", Kind: ddl.Text},
			{Name: "is_weekend", Kind: ddl.Bool},
		},
	},
	{
		Name: TableSales,
		Columns: []ddl.ColumnDef{
			{Name: "sale_id", Kind: ddl.Integer, AutoIncrement: true},
			{Name: "transaction_id", Kind: ddl.Text, Unique: true},
			{Name: "customer_key", Kind: ddl.Integer, References: TableCustomers + "(customer_key)"},
			{Name: "product_key", Kind: ddl.Integer, References: TableProducts + "(product_key)"},
			{Name: "date_key", Kind: ddl.Integer, References: TableDates + "(date_key)"},
			{Name: "quantity", Kind: ddl.Integer},
			{Name: "sales_amount", Kind: ddl.Real},
			{Name: "store_id", Kind: ddl.Integer, Nullable: true},
			{Name: "campaign_id", Kind: ddl.Integer, Nullable: true, Default: "0"},
			{Name: "payment_method", Kind: ddl.Text, Nullable: true},
			{Name: "sales_rep", Kind: ddl.Text, Nullable: true},
		},
		Indexes: []ddl.IndexDef{
			{Name: "idx_fact_sales_customer_key", Columns: []string{"customer_key"}},
			{Name: "idx_fact_sales_product_key", Columns: []string{"product_key"}},
			{Name: "idx_fact_sales_date_key", Columns: []string{"date_key"}},
			{Name: "idx_fact_sales_transaction_id", Columns: []string{"transaction_id"}},
		},
	},
}

// customerColumns is the dim_customers insert order.
var customerColumns = []string{
	"customer_key", "customer_id", "customer_name", "email", "region",
	"join_date", "customer_age",
}

// productColumns is the dim_products insert order.
var productColumns = []string{
	"product_key", "product_id", "product_name", "category", "unit_price",
	"stock_level", "supplier_name",
}

// dateColumns is the dim_dates insert order.
var dateColumns = []string{
	"date_key", "full_date", "year", "quarter", "month", "month_name",
	"day", "day_of_week", "day_name", "is_weekend",
}

// saleColumns is the fact_sales insert order; sale_id is backend-assigned.
var saleColumns = []string{
	"transaction_id", "customer_key", "product_key", "date_key",
	"quantity", "sales_amount", "store_id", "campaign_id",
	"payment_method", "sales_rep",
}
