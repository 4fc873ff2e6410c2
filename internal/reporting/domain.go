package reporting

import (
	"time"

	"github.com/bodega-pos/bodega/internal/shared"
)

// Summary is the dashboard figure set for one period. Everything is recomputed
// from raw rows on every call; no balance is stored anywhere, so a figure can
// never drift from the ledger that backs it.
type Summary struct {
	Period shared.Period `json:"period"`
	From   time.Time     `json:"from"`
	To     time.Time     `json:"to"`

	InventoryValuation float64 `json:"inventory_valuation"`
	InjectedCapital    float64 `json:"injected_capital"`
	FixedAssetValue    float64 `json:"fixed_asset_value"`

	SalesTotal        float64 `json:"sales_total"`
	SalesCount        int64   `json:"sales_count"`
	GrossMargin       float64 `json:"gross_margin"`
	OperatingExpenses float64 `json:"operating_expenses"`
	NetProfit         float64 `json:"net_profit"`

	CashSalesTotal    float64 `json:"cash_sales_total"`
	ExpectedCash      float64 `json:"expected_cash"`
	OutstandingCredit float64 `json:"outstanding_credit"`

	RecentSales    []SaleDigest    `json:"recent_sales"`
	RecentExpenses []ExpenseDigest `json:"recent_expenses"`
}

// SaleDigest is a sale row trimmed for the dashboard activity list.
type SaleDigest struct {
	SaleID        int64     `json:"sale_id"`
	Total         float64   `json:"total"`
	PaymentMethod string    `json:"payment_method"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

// ExpenseDigest is a ledger outflow trimmed for the dashboard activity list.
type ExpenseDigest struct {
	MovementID int64     `json:"movement_id"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// MarginTotals carries the period sale aggregates used for margin math.
type MarginTotals struct {
	SalesTotal float64
	CostTotal  float64
	SalesCount int64
}
