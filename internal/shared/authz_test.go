package shared_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega/internal/platform/httpx"
	"github.com/bodega-pos/bodega/internal/shared"
)

func TestRoleCapabilities(t *testing.T) {
	admin := shared.NewOperator(1, "Ana", shared.RoleAdmin)
	for _, cap := range []string{
		shared.CapManageCatalog,
		shared.CapViewFinancials,
		shared.CapRingSales,
		shared.CapRecordLedger,
		shared.CapSettleCredit,
	} {
		require.True(t, admin.Can(cap), "admin should hold %s", cap)
	}

	cashier := shared.NewOperator(2, "Beto", shared.RoleCashier)
	require.True(t, cashier.Can(shared.CapRingSales))
	require.True(t, cashier.Can(shared.CapRecordLedger))
	require.True(t, cashier.Can(shared.CapSettleCredit))
	require.False(t, cashier.Can(shared.CapManageCatalog))
	require.False(t, cashier.Can(shared.CapViewFinancials))

	unknown := shared.NewOperator(3, "Ghost", "intern")
	require.False(t, unknown.Can(shared.CapRingSales))
}

func TestRequireCapability(t *testing.T) {
	_, err := shared.RequireCapability(context.Background(), shared.CapRingSales)
	require.ErrorIs(t, err, httpx.ErrUnauthorized)

	cashierCtx := shared.ContextWithOperator(context.Background(), shared.NewOperator(2, "Beto", shared.RoleCashier))
	_, err = shared.RequireCapability(cashierCtx, shared.CapViewFinancials)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	op, err := shared.RequireCapability(cashierCtx, shared.CapRingSales)
	require.NoError(t, err)
	require.Equal(t, int64(2), op.ID)
}
