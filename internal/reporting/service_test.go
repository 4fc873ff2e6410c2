package reporting

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega/internal/shared"
)

type memoryRepo struct {
	valuation float64
	// keyed by direction:category, empty category means any
	ledgerSums map[string]float64
	outExcl    float64
	cashSales  float64
	margins    MarginTotals
	credit     float64
	sales      []SaleDigest
	expenses   []ExpenseDigest
}

func (r *memoryRepo) InventoryValuation(ctx context.Context) (float64, error) {
	return r.valuation, nil
}

func (r *memoryRepo) LedgerSum(ctx context.Context, direction, category string, from, to *time.Time) (float64, error) {
	return r.ledgerSums[direction+":"+category], nil
}

func (r *memoryRepo) LedgerOutExcluding(ctx context.Context, excludeCategory string, from, to time.Time) (float64, error) {
	return r.outExcl, nil
}

func (r *memoryRepo) CashSalesTotal(ctx context.Context, from, to time.Time) (float64, error) {
	return r.cashSales, nil
}

func (r *memoryRepo) MarginTotals(ctx context.Context, from, to time.Time) (MarginTotals, error) {
	return r.margins, nil
}

func (r *memoryRepo) OutstandingCredit(ctx context.Context) (float64, error) {
	return r.credit, nil
}

func (r *memoryRepo) RecentSales(ctx context.Context, limit int) ([]SaleDigest, error) {
	return r.sales, nil
}

func (r *memoryRepo) RecentExpenses(ctx context.Context, limit int) ([]ExpenseDigest, error) {
	return r.expenses, nil
}

func adminCtx() context.Context {
	op := shared.NewOperator(1, "Ana", shared.RoleAdmin)
	return shared.ContextWithOperator(context.Background(), op)
}

func TestComputeSummaryFigures(t *testing.T) {
	repo := &memoryRepo{
		valuation: 320.5,
		ledgerSums: map[string]float64{
			"in:CAPITAL_INJECTION": 100,
			"out:FIXED_ASSET":      30,
			"out:":                 75,
		},
		outExcl:   45,
		cashSales: 250,
		margins:   MarginTotals{SalesTotal: 400, CostTotal: 260, SalesCount: 12},
		credit:    55,
	}
	svc := NewService(repo)

	s, err := svc.ComputeSummary(adminCtx(), shared.PeriodToday)
	require.NoError(t, err)

	require.InDelta(t, 320.5, s.InventoryValuation, 0.0001)
	require.InDelta(t, 100.0, s.InjectedCapital, 0.0001)
	require.InDelta(t, 30.0, s.FixedAssetValue, 0.0001)
	require.InDelta(t, 140.0, s.GrossMargin, 0.0001)
	require.InDelta(t, 45.0, s.OperatingExpenses, 0.0001)
	require.InDelta(t, 95.0, s.NetProfit, 0.0001)
	require.InDelta(t, 175.0, s.ExpectedCash, 0.0001)
	require.InDelta(t, 55.0, s.OutstandingCredit, 0.0001)
	require.Equal(t, int64(12), s.SalesCount)
	require.NotNil(t, s.RecentSales)
	require.NotNil(t, s.RecentExpenses)
}

func TestNetProfitInvariant(t *testing.T) {
	repo := &memoryRepo{
		ledgerSums: map[string]float64{},
		outExcl:    17.5,
		margins:    MarginTotals{SalesTotal: 90, CostTotal: 60},
	}
	svc := NewService(repo)

	for _, period := range []shared.Period{shared.PeriodToday, shared.PeriodWeek, shared.PeriodMonth} {
		s, err := svc.ComputeSummary(adminCtx(), period)
		require.NoError(t, err)
		require.InDelta(t, s.GrossMargin-s.OperatingExpenses, s.NetProfit, 0.0001)
	}
}

func TestExpectedCashExcludesNonCashSales(t *testing.T) {
	// Only cash sales feed the drawer; the repo already filters by method,
	// so the aggregator must not add anything else on top.
	repo := &memoryRepo{
		ledgerSums: map[string]float64{"out:": 10},
		cashSales:  40,
	}
	svc := NewService(repo)

	s, err := svc.ComputeSummary(adminCtx(), shared.PeriodWeek)
	require.NoError(t, err)
	require.InDelta(t, 30.0, s.ExpectedCash, 0.0001)
}

func TestComputeSummaryRequiresFinancialsCapability(t *testing.T) {
	svc := NewService(&memoryRepo{ledgerSums: map[string]float64{}})

	cashier := shared.ContextWithOperator(context.Background(), shared.NewOperator(2, "Beto", shared.RoleCashier))
	_, err := svc.ComputeSummary(cashier, shared.PeriodToday)
	require.Error(t, err)
}

func TestCapitalScenario(t *testing.T) {
	repo := &memoryRepo{
		ledgerSums: map[string]float64{
			"in:CAPITAL_INJECTION": 100,
			"out:FIXED_ASSET":      30,
		},
	}
	svc := NewService(repo)

	s, err := svc.ComputeSummary(adminCtx(), shared.PeriodMonth)
	require.NoError(t, err)
	require.InDelta(t, 100.0, s.InjectedCapital, 0.0001)
	require.InDelta(t, 30.0, s.FixedAssetValue, 0.0001)
}
