package creditbook

import (
	"fmt"
	"time"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// Customer is a neighbourhood regular allowed to buy on credit.
type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Debt is one unpaid credit sale.
type Debt struct {
	SaleID         int64     `json:"sale_id"`
	Total          float64   `json:"total"`
	CollateralNote string    `json:"collateral_note,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// DebtorSummary groups a customer with every open debt and the running total.
type DebtorSummary struct {
	Customer Customer `json:"customer"`
	Debts    []Debt   `json:"debts"`
	Total    float64  `json:"total"`
}

// Settlement is the result of paying off a debt: the flipped sale and the
// ledger entry written in the same transaction.
type Settlement struct {
	SaleID    int64     `json:"sale_id"`
	Amount    float64   `json:"amount"`
	Customer  string    `json:"customer"`
	SettledAt time.Time `json:"settled_at"`
}

// Creditbook errors.
var (
	ErrNameRequired     = fmt.Errorf("%w: customer name required", httpx.ErrValidation)
	ErrCustomerNotFound = fmt.Errorf("%w: customer not found", httpx.ErrNotFound)
	ErrDebtNotFound     = fmt.Errorf("%w: debt not found", httpx.ErrNotFound)
	ErrAlreadySettled   = fmt.Errorf("%w: debt already settled", httpx.ErrConflict)
)
