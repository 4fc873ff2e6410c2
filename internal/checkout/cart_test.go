package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega/internal/catalog"
)

func soda() catalog.Product {
	return catalog.Product{ID: 1, Name: "Refresco", Unit: catalog.UnitEach, SalePrice: 5, TracksStock: true, StockQty: 10, IsActive: true}
}

func cheese() catalog.Product {
	return catalog.Product{ID: 2, Name: "Queso", Unit: catalog.UnitKilogram, SalePrice: 12, TracksStock: true, StockQty: 3, IsActive: true}
}

func TestCartAddStepsByUnit(t *testing.T) {
	cart := &Cart{}

	require.NoError(t, cart.Add(soda()))
	require.NoError(t, cart.Add(soda()))
	require.NoError(t, cart.Add(cheese()))

	require.Len(t, cart.Lines, 2)
	require.Equal(t, 2.0, cart.Lines[0].Qty)
	require.Equal(t, 0.5, cart.Lines[1].Qty)
	require.InDelta(t, 16.0, cart.Total(), 0.0001)
}

func TestCartPriceSnapshotSurvivesCatalogEdit(t *testing.T) {
	cart := &Cart{}
	p := soda()
	require.NoError(t, cart.Add(p))

	p.SalePrice = 99
	require.NoError(t, cart.Add(p))

	// Both units keep the price captured when the line was created.
	require.Len(t, cart.Lines, 1)
	require.Equal(t, 5.0, cart.Lines[0].UnitPrice)
	require.InDelta(t, 10.0, cart.Total(), 0.0001)
}

func TestCartAdjustRemovesLineAtZero(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.Add(soda()))

	require.NoError(t, cart.Adjust(1, 1))
	require.Equal(t, 2.0, cart.Lines[0].Qty)

	require.NoError(t, cart.Adjust(1, -1))
	require.NoError(t, cart.Adjust(1, -1))
	require.True(t, cart.Empty())

	require.ErrorIs(t, cart.Adjust(1, 1), ErrLineNotFound)
}

func TestCartSetQuantity(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.Add(cheese()))

	require.NoError(t, cart.SetQuantity(2, 1.5))
	require.Equal(t, 1.5, cart.Lines[0].Qty)

	require.NoError(t, cart.SetQuantity(2, 0))
	require.True(t, cart.Empty())
}

func TestCartSetQuantityRejectsFractionalDiscrete(t *testing.T) {
	cart := &Cart{}
	require.NoError(t, cart.Add(soda()))

	require.Error(t, cart.SetQuantity(1, 1.5))
	require.ErrorIs(t, cart.SetQuantity(1, -1), ErrInvalidQuantity)
}

func TestCartRefusesMoreThanStock(t *testing.T) {
	cart := &Cart{}
	p := soda()
	p.StockQty = 2
	require.NoError(t, cart.Add(p))
	require.NoError(t, cart.Add(p))
	require.ErrorIs(t, cart.Add(p), ErrInsufficientStock)

	require.ErrorIs(t, cart.SetQuantity(1, 3), ErrInsufficientStock)
}

func TestCartUntrackedProductIgnoresStock(t *testing.T) {
	cart := &Cart{}
	p := soda()
	p.TracksStock = false
	p.StockQty = 0

	require.NoError(t, cart.Add(p))
	require.NoError(t, cart.SetQuantity(1, 40))
	require.Equal(t, 40.0, cart.Lines[0].Qty)
}
