package checkout

import (
	"fmt"
	"time"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// PaymentMethod identifies how a sale was settled at the counter.
type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	PaymentCredit   PaymentMethod = "CREDIT"
)

func validPayment(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentCredit:
		return true
	}
	return false
}

// SaleStatus tracks whether the sale has been paid. Credit sales stay pending
// until the debt is settled.
type SaleStatus string

const (
	SalePaid    SaleStatus = "paid"
	SalePending SaleStatus = "pending"
)

// Sale is a committed checkout. Line prices and costs are snapshots taken at
// sale time, so later catalog edits never rewrite history.
type Sale struct {
	ID             int64         `json:"id"`
	Status         SaleStatus    `json:"status"`
	PaymentMethod  PaymentMethod `json:"payment_method"`
	Total          float64       `json:"total"`
	CustomerID     *int64        `json:"customer_id,omitempty"`
	CustomerName   string        `json:"customer_name,omitempty"`
	CollateralNote string        `json:"collateral_note,omitempty"`
	OperatorID     int64         `json:"operator_id"`
	CreatedAt      time.Time     `json:"created_at"`
	Lines          []SaleLine    `json:"lines,omitempty"`
}

// SaleLine is one product position on a committed sale.
type SaleLine struct {
	ID         int64   `json:"id"`
	SaleID     int64   `json:"sale_id"`
	ProductID  int64   `json:"product_id"`
	Name       string  `json:"name"`
	Qty        float64 `json:"qty"`
	UnitPrice  float64 `json:"unit_price"`
	UnitCost   float64 `json:"unit_cost"`
	LineTotal  float64 `json:"line_total"`
	TrackStock bool    `json:"-"`
}

// CommitInput carries everything needed to turn a cart into a committed sale.
type CommitInput struct {
	Cart           *Cart
	PaymentMethod  PaymentMethod
	CustomerID     int64
	CustomerName   string
	CustomerPhone  string
	CollateralNote string
	IdempotencyKey string
}

// Checkout errors. Each wraps an HTTP error kind so handlers map them without
// per-error switch statements.
var (
	ErrEmptyCart          = fmt.Errorf("%w: cart is empty", httpx.ErrValidation)
	ErrInvalidPayment     = fmt.Errorf("%w: unknown payment method", httpx.ErrValidation)
	ErrInvalidQuantity    = fmt.Errorf("%w: quantity must be positive", httpx.ErrValidation)
	ErrCustomerRequired   = fmt.Errorf("%w: credit sale requires a customer", httpx.ErrValidation)
	ErrLineNotFound       = fmt.Errorf("%w: product not in cart", httpx.ErrNotFound)
	ErrSaleNotFound       = fmt.Errorf("%w: sale not found", httpx.ErrNotFound)
	ErrInsufficientStock  = fmt.Errorf("%w: insufficient stock", httpx.ErrConflict)
	ErrProductUnavailable = fmt.Errorf("%w: product is not sellable", httpx.ErrConflict)
)
