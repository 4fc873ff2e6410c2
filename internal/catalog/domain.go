// Package catalog manages the product catalog: pricing, stock levels, units
// of measure and expiry tracking for a single store.
package catalog

import (
	"fmt"
	"time"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// Unit enumerates supported units of measure. UnitEach is discrete; the
// weight and volume units allow fractional quantities.
type Unit string

const (
	UnitEach       Unit = "each"
	UnitKilogram   Unit = "kg"
	UnitGram       Unit = "g"
	UnitLiter      Unit = "l"
	UnitMilliliter Unit = "ml"
)

// Continuous reports whether the unit is sold by weight or volume.
func (u Unit) Continuous() bool {
	switch u {
	case UnitKilogram, UnitGram, UnitLiter, UnitMilliliter:
		return true
	}
	return false
}

// Step returns the quantity increment used when the same product is added to
// a cart again. Half steps speed up common half-kilo sales.
func (u Unit) Step() float64 {
	if u.Continuous() {
		return 0.5
	}
	return 1
}

func validUnit(u Unit) bool {
	switch u {
	case UnitEach, UnitKilogram, UnitGram, UnitLiter, UnitMilliliter:
		return true
	}
	return false
}

// Product represents a catalog entry. Soft-deleted products keep their row so
// historical sale lines stay resolvable.
type Product struct {
	ID           int64      `json:"id"`
	Barcode      string     `json:"barcode,omitempty"`
	Name         string     `json:"name"`
	Category     string     `json:"category,omitempty"`
	Unit         Unit       `json:"unit"`
	PurchaseCost float64    `json:"purchase_cost"`
	SalePrice    float64    `json:"sale_price"`
	TracksStock  bool       `json:"tracks_stock"`
	StockQty     float64    `json:"stock_qty"`
	MinStock     float64    `json:"min_stock"`
	ExpiresOn    *time.Time `json:"expires_on,omitempty"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LowOnStock reports whether a tracked product sits at or below its alert
// threshold.
func (p Product) LowOnStock() bool {
	return p.TracksStock && p.StockQty <= p.MinStock
}

// ProductInput carries raw create-or-update fields before normalization.
type ProductInput struct {
	ID           int64      `json:"id"`
	Barcode      string     `json:"barcode"`
	Name         string     `json:"name"`
	Category     string     `json:"category"`
	Unit         Unit       `json:"unit"`
	PurchaseCost float64    `json:"purchase_cost"`
	SalePrice    float64    `json:"sale_price"`
	TracksStock  *bool      `json:"tracks_stock"`
	StockQty     float64    `json:"stock_qty"`
	MinStock     *float64   `json:"min_stock"`
	ExpiresOn    *time.Time `json:"expires_on"`
}

// ExpiryStatus classifies a product against its expiry date.
type ExpiryStatus string

const (
	ExpiryOK      ExpiryStatus = "ok"
	ExpirySoon    ExpiryStatus = "expiring_soon"
	ExpiryExpired ExpiryStatus = "expired"
)

// expirySoonDays is the warning window before a product expires.
const expirySoonDays = 15

// ClassifyExpiry derives the expiry status at a reference instant. Products
// without an expiry date are always ok.
func ClassifyExpiry(expiresOn *time.Time, now time.Time) ExpiryStatus {
	if expiresOn == nil {
		return ExpiryOK
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	expiry := time.Date(expiresOn.Year(), expiresOn.Month(), expiresOn.Day(), 0, 0, 0, 0, now.Location())
	if expiry.Before(today) {
		return ExpiryExpired
	}
	if days := int(expiry.Sub(today).Hours() / 24); days <= expirySoonDays {
		return ExpirySoon
	}
	return ExpiryOK
}

// Validation and conflict errors surfaced to the UI.
var (
	ErrNameRequired    = fmt.Errorf("catalog: product name required: %w", httpx.ErrValidation)
	ErrPriceRequired   = fmt.Errorf("catalog: sale price must be positive: %w", httpx.ErrValidation)
	ErrInvalidUnit     = fmt.Errorf("catalog: unknown unit of measure: %w", httpx.ErrValidation)
	ErrInvalidRestock  = fmt.Errorf("catalog: restock quantity must be positive: %w", httpx.ErrValidation)
	ErrBarcodeTaken    = fmt.Errorf("catalog: barcode already in use: %w", httpx.ErrConflict)
	ErrProductNotFound = fmt.Errorf("catalog: product not found: %w", httpx.ErrNotFound)
	ErrProductInactive = fmt.Errorf("catalog: product is inactive: %w", httpx.ErrConflict)
)
