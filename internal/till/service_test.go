package till

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega/internal/shared"
)

type fixedExpected float64

func (f fixedExpected) ExpectedCash(ctx context.Context, period shared.Period) (float64, error) {
	return float64(f), nil
}

func adminCtx() context.Context {
	op := shared.NewOperator(1, "Ana", shared.RoleAdmin)
	return shared.ContextWithOperator(context.Background(), op)
}

func TestReconcileExactCountIsOK(t *testing.T) {
	svc := NewService(fixedExpected(175), nil)

	rec, err := svc.Reconcile(adminCtx(), shared.PeriodToday, 175)
	require.NoError(t, err)
	require.Equal(t, StatusOK, rec.Status)
	require.InDelta(t, 0.0, rec.Difference, 0.0001)
}

func TestReconcileShortAndOver(t *testing.T) {
	svc := NewService(fixedExpected(175), nil)

	rec, err := svc.Reconcile(adminCtx(), shared.PeriodToday, 165)
	require.NoError(t, err)
	require.Equal(t, StatusShort, rec.Status)
	require.InDelta(t, -10.0, rec.Difference, 0.0001)

	rec, err = svc.Reconcile(adminCtx(), shared.PeriodToday, 185)
	require.NoError(t, err)
	require.Equal(t, StatusOver, rec.Status)
	require.InDelta(t, 10.0, rec.Difference, 0.0001)
}

func TestReconcileToleranceBand(t *testing.T) {
	svc := NewService(fixedExpected(100), nil)

	// Just inside the band.
	rec, err := svc.Reconcile(adminCtx(), shared.PeriodToday, 100.49)
	require.NoError(t, err)
	require.Equal(t, StatusOK, rec.Status)

	rec, err = svc.Reconcile(adminCtx(), shared.PeriodToday, 99.51)
	require.NoError(t, err)
	require.Equal(t, StatusOK, rec.Status)

	// Exactly at the tolerance is already a discrepancy.
	rec, err = svc.Reconcile(adminCtx(), shared.PeriodToday, 100.5)
	require.NoError(t, err)
	require.Equal(t, StatusOver, rec.Status)

	rec, err = svc.Reconcile(adminCtx(), shared.PeriodToday, 99.5)
	require.NoError(t, err)
	require.Equal(t, StatusShort, rec.Status)
}

func TestReconcileRejectsNegativeCount(t *testing.T) {
	svc := NewService(fixedExpected(100), nil)

	_, err := svc.Reconcile(adminCtx(), shared.PeriodToday, -1)
	require.ErrorIs(t, err, ErrNegativeCount)
}

func TestReconcileRequiresFinancialsCapability(t *testing.T) {
	svc := NewService(fixedExpected(100), nil)

	cashier := shared.ContextWithOperator(context.Background(), shared.NewOperator(2, "Beto", shared.RoleCashier))
	_, err := svc.Reconcile(cashier, shared.PeriodToday, 100)
	require.Error(t, err)

	_, err = svc.Reconcile(context.Background(), shared.PeriodToday, 100)
	require.Error(t, err)
}
