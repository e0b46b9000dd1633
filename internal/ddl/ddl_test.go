package ddl

import (
	"strings"
	"testing"
)

func sqliteTypes(k Kind) string {
	switch k {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case Bool:
		return "INTEGER"
	default:
		return "TEXT"
	}
}

func TestBuildCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		def         TableDef
		want        []string
		wantErr     bool
		errContains string
	}{
		{
			name:        "empty table name returns error",
			def:         TableDef{Columns: []ColumnDef{{Name: "id", Kind: Integer}}},
			wantErr:     true,
			errContains: "table name must not be empty",
		},
		{
			name:        "no columns returns error",
			def:         TableDef{Name: "dim_products"},
			wantErr:     true,
			errContains: "at least one column is required",
		},
		{
			name: "column with empty name returns error",
			def: TableDef{
				Name:    "dim_products",
				Columns: []ColumnDef{{Kind: Integer}},
			},
			wantErr:     true,
			errContains: "column with empty name",
		},
		{
			name: "auto increment primary key uses dialect suffix",
			def: TableDef{
				Name: "fact_sales",
				Columns: []ColumnDef{
					{Name: "sale_id", Kind: Integer, AutoIncrement: true},
					{Name: "transaction_id", Kind: Text, Unique: true},
				},
			},
			want: []string{
				"CREATE TABLE IF NOT EXISTS fact_sales",
				"sale_id INTEGER PRIMARY KEY AUTOINCREMENT",
				"transaction_id TEXT NOT NULL UNIQUE",
			},
		},
		{
			name: "foreign key and default",
			def: TableDef{
				Name: "fact_sales",
				Columns: []ColumnDef{
					{Name: "sale_id", Kind: Integer, PrimaryKey: true},
					{Name: "customer_key", Kind: Integer, References: "dim_customers(customer_key)"},
					{Name: "campaign_id", Kind: Integer, Nullable: true, Default: "0"},
				},
			},
			want: []string{
				"sale_id INTEGER PRIMARY KEY",
				"customer_key INTEGER NOT NULL REFERENCES dim_customers(customer_key)",
				"campaign_id INTEGER DEFAULT 0",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildCreateTableSQL(tt.def, sqliteTypes, "INTEGER PRIMARY KEY AUTOINCREMENT")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got SQL:\n%s", got)
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("error = %v, want substring %q", err, tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("BuildCreateTableSQL() error = %v", err)
			}
			for _, frag := range tt.want {
				if !strings.Contains(got, frag) {
					t.Errorf("missing %q in:\n%s", frag, got)
				}
			}
		})
	}
}

func TestBuildCreateIndexSQL(t *testing.T) {
	t.Parallel()

	def := TableDef{
		Name: "fact_sales",
		Indexes: []IndexDef{
			{Name: "idx_fact_sales_customer_key", Columns: []string{"customer_key"}},
			{Name: "idx_fact_sales_date_product", Columns: []string{"date_key", "product_key"}},
		},
	}
	got, err := BuildCreateIndexSQL(def)
	if err != nil {
		t.Fatalf("BuildCreateIndexSQL() error = %v", err)
	}
	want := []string{
		"CREATE INDEX IF NOT EXISTS idx_fact_sales_customer_key ON fact_sales (customer_key);",
		"CREATE INDEX IF NOT EXISTS idx_fact_sales_date_product ON fact_sales (date_key, product_key);",
	}
	if len(got) != len(want) {
		t.Fatalf("stmts = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("stmt[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := BuildCreateIndexSQL(TableDef{Name: "t", Indexes: []IndexDef{{Name: " "}}}); err == nil {
		t.Error("expected error for unnamed index")
	}
}
