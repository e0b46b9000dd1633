package quality

// The three dataset contracts. The bounds and sentinels here encode the retail
// chain's business rules: prices top out at $10,000, single transactions at
// $50,000, customers joined no earlier than 2015, and sales started in 2020.

// CustomersContract covers the customer master extract (PascalCase headers).
var CustomersContract = Contract{
	Dataset:   "customers",
	Key:       "customer_id",
	NameField: "customer_name",
	Fields: []Field{
		{
			Name: "customer_id", Kind: Text, Critical: true,
			Business: Range{Min: 0, ExclusiveMin: true, NoMax: true, Has: true},
		},
		{
			Name: "customer_name", Kind: Text,
			Fill:      Fill{Kind: FillConst, Sentinel: "Unknown"},
			TitleCase: true, CollapseSpace: true,
		},
		{
			Name: "email", Kind: Text,
			Fill: Fill{Kind: FillConst, Sentinel: "unknown@email.com"},
		},
		{
			Name: "region", Kind: Text,
			Enum:      []string{"West", "East", "Central", "North", "South"},
			TitleCase: true,
		},
		{
			Name: "join_date", Kind: Date,
			DateMin: "2015-01-01", DateMaxNow: true,
		},
		{
			Name: "customer_age", Kind: Numeric,
			Fill:    Fill{Kind: FillConst, Sentinel: "0"},
			Integer: true,
		},
		{
			Name: "total_spend", Kind: Numeric,
			Business: Range{Min: 0, Max: 50000, Has: true},
			Round2:   true,
		},
		{
			Name: "customer_status", Kind: Text,
			Enum: []string{"Regular", "Inactive", "VIP", "New"},
		},
	},
}

// ProductsContract covers the product catalog extract (lowercase headers).
var ProductsContract = Contract{
	Dataset:   "products",
	Key:       "product_id",
	NameField: "product_name",
	Fields: []Field{
		{
			Name: "product_id", Kind: Text, Critical: true,
			Business: Range{Min: 0, ExclusiveMin: true, NoMax: true, Has: true},
			IDRange:  Range{Min: 1000, Max: 99999, Has: true},
		},
		{
			Name: "product_name", Kind: Text,
			Fill:   Fill{Kind: FillDerived, Sentinel: "Product", GroupBy: "category"},
			MinLen: 2, MaxLen: 100, RequireLetter: true,
			TitleCase: true, CollapseSpace: true, UnderscoreToHyphen: true,
		},
		{
			Name: "category", Kind: Text,
			Fill: Fill{Kind: FillMode, Sentinel: "Uncategorized"},
			Enum: []string{
				"Electronics", "Clothing", "Home", "Office",
				"Books", "Sports", "Beauty",
			},
			TitleCase: true,
		},
		{
			Name: "unit_price", Kind: Numeric,
			Fill:       Fill{Kind: FillMedian, GroupBy: "category"},
			Business:   Range{Min: 0.01, Max: 10000, Has: true},
			IQR:        true,
			ValueRange: Range{Min: 1.0, Max: 10000, Has: true},
			Round2:     true,
		},
		{
			Name: "stock_level", Kind: Numeric,
			Fill:     Fill{Kind: FillMedian, Sentinel: "0", GroupBy: "category"},
			Business: Range{Min: 0, Max: 10000, Has: true},
			IQR:      true, IQRUpperOnly: true,
			Integer: true,
		},
		{
			Name: "supplier_name", Kind: Text,
			Fill:   Fill{Kind: FillConst, Sentinel: "Unknown Supplier"},
			MinLen: 2, MaxLen: 50,
			TitleCase: true, CollapseSpace: true,
		},
	},
}

// SalesContract covers the transaction extract (lowercase headers). All three
// ID references are critical: a sale without a resolvable customer, product,
// and transaction identity cannot enter the fact table.
var SalesContract = Contract{
	Dataset:       "sales",
	Key:           "transaction_id",
	DupFlagFields: []string{"customer_id", "sale_date", "product_id"},
	Fields: []Field{
		{
			Name: "transaction_id", Kind: Text, Critical: true,
			Business: Range{Min: 0, ExclusiveMin: true, NoMax: true, Has: true},
		},
		{
			Name: "customer_id", Kind: Text, Critical: true,
			IDRange: Range{Min: 1000, Max: 9999, Has: true},
		},
		{
			Name: "product_id", Kind: Text, Critical: true,
			IDRange: Range{Min: 2000, Max: 2999, Has: true},
		},
		{
			Name: "sale_date", Kind: Date,
			Fill:    Fill{Kind: FillMode, Sentinel: "2025-01-01"},
			DateMin: "2020-01-01", DateMaxNow: true,
		},
		{
			Name: "sales_amount", Kind: Numeric,
			Fill:     Fill{Kind: FillMedian},
			Business: Range{Min: 0.01, Max: 50000, Has: true},
			IQR:      true,
			Round2:   true,
		},
		{
			Name: "quantity", Kind: Numeric,
			Fill:     Fill{Kind: FillMedian},
			Business: Range{Min: 0, ExclusiveMin: true, Max: 1000, Has: true},
			IQR:      true, IQRUpperOnly: true,
			Integer: true,
		},
		{
			Name: "store_id", Kind: Text,
			Fill:    Fill{Kind: FillMode},
			IDRange: Range{Min: 401, Max: 499, Has: true},
			Integer: true,
		},
		{
			Name: "campaign_id", Kind: Text,
			Fill:    Fill{Kind: FillConst, Sentinel: "0"},
			Integer: true,
		},
		{
			Name: "payment_method", Kind: Text,
			TitleCase: true, CollapseSpace: true,
		},
		{
			Name: "sales_rep", Kind: Text,
			Fill:   Fill{Kind: FillConst, Sentinel: "Unknown Rep"},
			MinLen: 2, MaxLen: 50,
			TitleCase: true, CollapseSpace: true,
		},
	},
	Cross: []CrossRule{
		{
			Name:      "unit_price",
			Amount:    "sales_amount",
			Quantity:  "quantity",
			Price:     "unit_price",
			UnitPrice: Range{Min: 0.01, Max: 10000, Has: true},
			Tolerance: 0.01,
		},
	},
}

// CustomersHeaderMap maps the customer extract's PascalCase headers.
var CustomersHeaderMap = map[string]string{
	"CustomerID":     "customer_id",
	"CustomerName":   "customer_name",
	"Email":          "email",
	"Region":         "region",
	"CustomerSince":  "join_date",
	"CustomerAge":    "customer_age",
	"TotalSpend":     "total_spend",
	"CustomerStatus": "customer_status",
}

// ProductsHeaderMap maps the product extract's lowercase headers.
var ProductsHeaderMap = map[string]string{
	"productid":       "product_id",
	"productname":     "product_name",
	"productcategory": "category",
	"unitprice":       "unit_price",
	"stockquantity":   "stock_level",
	"suppliername":    "supplier_name",
}

// SalesHeaderMap maps the transaction extract's lowercase headers.
var SalesHeaderMap = map[string]string{
	"transactionid":       "transaction_id",
	"customerid":          "customer_id",
	"productid":           "product_id",
	"transactiondate":     "sale_date",
	"totalamount":         "sales_amount",
	"quantitysold":        "quantity",
	"storeid":             "store_id",
	"campaignid":          "campaign_id",
	"paymentmethod":       "payment_method",
	"salesrepresentative": "sales_rep",
}

// ContractFor returns the contract and header map for a dataset name.
func ContractFor(dataset string) (Contract, map[string]string, bool) {
	switch dataset {
	case "customers":
		return CustomersContract, CustomersHeaderMap, true
	case "products":
		return ProductsContract, ProductsHeaderMap, true
	case "sales":
		return SalesContract, SalesHeaderMap, true
	}
	return Contract{}, nil, false
}
