package checkout

import (
	"fmt"
	"math"

	"github.com/bodega-pos/bodega/internal/catalog"
	"github.com/bodega-pos/bodega/internal/platform/httpx"
)

// Cart is the in-progress checkout kept in the cashier's session. Unit prices
// are captured when a product is added, so a price edit mid-checkout does not
// change lines already rung.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// CartLine is one product in the cart with its price snapshot.
type CartLine struct {
	ProductID   int64        `json:"product_id"`
	Name        string       `json:"name"`
	Unit        catalog.Unit `json:"unit"`
	UnitPrice   float64      `json:"unit_price"`
	Qty         float64      `json:"qty"`
	TracksStock bool         `json:"tracks_stock"`
	StockQty    float64      `json:"stock_qty"`
}

// LineTotal returns qty times the snapshotted unit price.
func (l CartLine) LineTotal() float64 {
	return l.Qty * l.UnitPrice
}

// Add puts one step of the product in the cart, or bumps an existing line by
// its unit step. Tracked products cannot exceed the stock seen at add time.
func (c *Cart) Add(p catalog.Product) error {
	step := p.Unit.Step()
	for i := range c.Lines {
		if c.Lines[i].ProductID == p.ID {
			return c.setQty(i, c.Lines[i].Qty+step)
		}
	}
	if p.TracksStock && p.StockQty < step {
		return fmt.Errorf("%w: %s has %.3f left", ErrInsufficientStock, p.Name, p.StockQty)
	}
	c.Lines = append(c.Lines, CartLine{
		ProductID:   p.ID,
		Name:        p.Name,
		Unit:        p.Unit,
		UnitPrice:   p.SalePrice,
		Qty:         step,
		TracksStock: p.TracksStock,
		StockQty:    p.StockQty,
	})
	return nil
}

// Adjust moves a line's quantity by one unit step in the given direction.
// Stepping a line down to zero removes it.
func (c *Cart) Adjust(productID int64, delta int) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	step := c.Lines[i].Unit.Step()
	next := c.Lines[i].Qty + float64(delta)*step
	if next <= 1e-9 {
		c.Remove(productID)
		return nil
	}
	return c.setQty(i, next)
}

// SetQuantity overwrites a line's quantity with a typed value. Zero removes
// the line.
func (c *Cart) SetQuantity(productID int64, qty float64) error {
	i := c.indexOf(productID)
	if i < 0 {
		return ErrLineNotFound
	}
	if qty < 0 {
		return ErrInvalidQuantity
	}
	if qty <= 1e-9 {
		c.Remove(productID)
		return nil
	}
	if !c.Lines[i].Unit.Continuous() && qty != math.Trunc(qty) {
		return fmt.Errorf("%w: %s sells in whole units", httpx.ErrValidation, c.Lines[i].Name)
	}
	return c.setQty(i, qty)
}

// Remove drops a line from the cart. Removing an absent line is a no-op.
func (c *Cart) Remove(productID int64) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return
		}
	}
}

// Total sums every line total.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.Lines {
		total += l.LineTotal()
	}
	return total
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.Lines) == 0
}

// Clear drops every line.
func (c *Cart) Clear() {
	c.Lines = nil
}

func (c *Cart) indexOf(productID int64) int {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) setQty(i int, qty float64) error {
	l := c.Lines[i]
	if l.TracksStock && qty > l.StockQty+1e-9 {
		return fmt.Errorf("%w: %s has %.3f left", ErrInsufficientStock, l.Name, l.StockQty)
	}
	c.Lines[i].Qty = qty
	return nil
}
