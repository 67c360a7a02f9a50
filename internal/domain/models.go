package domain

// SalesRow is the atomic fact of the ledger. Date is a YYYY-MM-DD calendar
// day with no time component; it is empty when the source value could not be
// parsed. Quantity and Revenue are never negative after normalization.
type SalesRow struct {
	Date              string  `json:"date"`
	Customer          string  `json:"customer"`
	Product           string  `json:"product"`
	VendorProductCode string  `json:"vendor_product_code"`
	OurItemCode       string  `json:"our_item_code,omitempty"`
	Quantity          float64 `json:"quantity"`
	Revenue           float64 `json:"revenue,omitempty"`
	InvoiceID         string  `json:"invoice_id"`
	Source            string  `json:"source"`
	UploadedAt        string  `json:"uploaded_at"`
}

// MonthKey returns the YYYY-MM prefix of the row's date, or "" when the date
// is empty or malformed.
func (r SalesRow) MonthKey() string {
	if len(r.Date) < 7 {
		return ""
	}
	return r.Date[:7]
}

type CustomerGrid struct {
	Year     int         `json:"year"`
	Customer string      `json:"customer"`
	Months   [12]float64 `json:"months"`
}

type ProductGrid struct {
	Year              int         `json:"year"`
	Customer          string      `json:"customer"`
	Product           string      `json:"product"`
	VendorProductCode string      `json:"vendor_product_code"`
	Months            [12]float64 `json:"months"`
}

// MonthlyAggregate is derived from a ledger snapshot and recomputed in full
// on every reconciliation; it is never stored.
type MonthlyAggregate struct {
	LatestYear       int            `json:"latest_year"`
	MonthlyTotals    [12]float64    `json:"monthly_totals"`
	CustomersByMonth [12][]string   `json:"customers_by_month"`
	CustomerGrids    []CustomerGrid `json:"customer_grids"`
	ProductGrids     []ProductGrid  `json:"product_grids"`
	NewCustomers     [12][]string   `json:"new_customers"`
	LostCustomers    [12][]string   `json:"lost_customers"`
}

type ProductTotal struct {
	Product           string      `json:"product"`
	VendorProductCode string      `json:"vendor_product_code"`
	Months            [12]float64 `json:"months"`
}

type SubAccount struct {
	Name     string         `json:"name"`
	Products []ProductTotal `json:"products"`
}

// HierarchyNode groups a main account's sub-accounts and direct products,
// derived purely from the customer naming convention.
type HierarchyNode struct {
	MainAccount    string         `json:"main_account"`
	SubAccounts    []SubAccount   `json:"sub_accounts,omitempty"`
	DirectProducts []ProductTotal `json:"direct_products,omitempty"`
	TotalQuantity  [12]float64    `json:"total_quantity"`
}

// MonthRange is an inclusive range of YYYY-MM month keys.
type MonthRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DeltaRow struct {
	Key             string  `json:"key"`
	RevenueA        float64 `json:"revenue_a"`
	RevenueB        float64 `json:"revenue_b"`
	RevenueDelta    float64 `json:"revenue_delta"`
	RevenuePercent  float64 `json:"revenue_percent"`
	QuantityA       float64 `json:"quantity_a"`
	QuantityB       float64 `json:"quantity_b"`
	QuantityDelta   float64 `json:"quantity_delta"`
	QuantityPercent float64 `json:"quantity_percent"`
}

type DeltaReport struct {
	GroupBy string     `json:"group_by"`
	RangeA  MonthRange `json:"range_a"`
	RangeB  MonthRange `json:"range_b"`
	Rows    []DeltaRow `json:"rows"`
	Total   DeltaRow   `json:"total"`
}

type AttritionStatus string

const (
	AttritionStopped     AttritionStatus = "stopped"
	AttritionDeclining   AttritionStatus = "declining"
	AttritionLowActivity AttritionStatus = "low-activity"
)

type AttritionAlert struct {
	Customer        string          `json:"customer"`
	PreviousRevenue float64         `json:"previous_revenue"`
	CurrentRevenue  float64         `json:"current_revenue"`
	PercentChange   float64         `json:"percent_change"`
	Status          AttritionStatus `json:"status"`
}

type ChangeStatus string

const (
	ChangeNew          ChangeStatus = "new"
	ChangeDiscontinued ChangeStatus = "discontinued"
	ChangeNoChange     ChangeStatus = "no-change"
	ChangeIncreased    ChangeStatus = "increased"
	ChangeDecreased    ChangeStatus = "decreased"
)

type QuantityChange struct {
	Customer         string       `json:"customer"`
	Product          string       `json:"product"`
	PreviousQuantity float64      `json:"previous_quantity"`
	CurrentQuantity  float64      `json:"current_quantity"`
	Status           ChangeStatus `json:"status"`
}

type VendorUploadResult struct {
	Vendor         string   `json:"vendor"`
	RowsAdded      int      `json:"rows_added"`
	MonthsReplaced []string `json:"months_replaced"`
	Truncated      bool     `json:"truncated,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// UploadSummary reports what happened to one upload batch: per-vendor
// outcomes plus the rows no classifier claimed.
type UploadSummary struct {
	TotalRows    int                  `json:"total_rows"`
	Unclassified int                  `json:"unclassified"`
	Vendors      []VendorUploadResult `json:"vendors"`
}
