package ledger

import (
	"fmt"
	"time"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// Direction marks whether money entered or left the till.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

func validDirection(d Direction) bool {
	return d == DirectionIn || d == DirectionOut
}

// Well-known movement categories. The column is free text, so new categories
// can appear without a migration; these are the ones the rest of the system
// writes or aggregates on.
const (
	CategoryCapitalInjection = "CAPITAL_INJECTION"
	CategoryOperatingExpense = "OPERATING_EXPENSE"
	CategoryFixedAsset       = "FIXED_ASSET"
	CategoryDebtSettlement   = "DEBT_SETTLEMENT"
)

// Movement is one append-only cash ledger entry. Movements are never updated
// or deleted; corrections are posted as compensating entries.
type Movement struct {
	ID         int64     `json:"id"`
	Direction  Direction `json:"direction"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Note       string    `json:"note,omitempty"`
	OperatorID int64     `json:"operator_id"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}

// MovementInput carries a new entry before validation.
type MovementInput struct {
	Direction  Direction
	Category   string
	Amount     float64
	Note       string
	OccurredAt time.Time
}

// Filter narrows a movement query. From and To are inclusive and expanded to
// whole days by the service.
type Filter struct {
	From      *time.Time
	To        *time.Time
	Direction Direction
	Category  string
	Limit     int
}

// Ledger errors.
var (
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be positive", httpx.ErrValidation)
	ErrInvalidDirection = fmt.Errorf("%w: direction must be in or out", httpx.ErrValidation)
	ErrCategoryRequired = fmt.Errorf("%w: category required", httpx.ErrValidation)
)
