package reporting

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/bodega-pos/bodega/internal/shared"
)

// RepositoryPort abstracts the read queries the aggregator folds together.
type RepositoryPort interface {
	InventoryValuation(ctx context.Context) (float64, error)
	LedgerSum(ctx context.Context, direction, category string, from, to *time.Time) (float64, error)
	LedgerOutExcluding(ctx context.Context, excludeCategory string, from, to time.Time) (float64, error)
	CashSalesTotal(ctx context.Context, from, to time.Time) (float64, error)
	MarginTotals(ctx context.Context, from, to time.Time) (MarginTotals, error)
	OutstandingCredit(ctx context.Context) (float64, error)
	RecentSales(ctx context.Context, limit int) ([]SaleDigest, error)
	RecentExpenses(ctx context.Context, limit int) ([]ExpenseDigest, error)
}

// Service computes dashboard summaries. Concurrent requests for the same
// period collapse into one recompute; the result is never cached beyond the
// in-flight call, keeping every view ledger-fresh.
type Service struct {
	repo  RepositoryPort
	group singleflight.Group
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

const recentListLimit = 5

// ComputeSummary folds catalog, sales and ledger rows into the period figures.
func (s *Service) ComputeSummary(ctx context.Context, period shared.Period) (Summary, error) {
	if _, err := shared.RequireCapability(ctx, shared.CapViewFinancials); err != nil {
		return Summary{}, err
	}

	ch := s.group.DoChan(string(period), func() (any, error) {
		return s.compute(ctx, period)
	})
	select {
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Summary{}, res.Err
		}
		return res.Val.(Summary), nil
	}
}

func (s *Service) compute(ctx context.Context, period shared.Period) (Summary, error) {
	now := time.Now()
	from, to, err := period.Window(now)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Period: period, From: from, To: to}

	if summary.InventoryValuation, err = s.repo.InventoryValuation(ctx); err != nil {
		return Summary{}, err
	}
	// Capital and fixed assets are lifetime figures, not period ones.
	if summary.InjectedCapital, err = s.repo.LedgerSum(ctx, "in", "CAPITAL_INJECTION", nil, nil); err != nil {
		return Summary{}, err
	}
	if summary.FixedAssetValue, err = s.repo.LedgerSum(ctx, "out", "FIXED_ASSET", nil, nil); err != nil {
		return Summary{}, err
	}

	margins, err := s.repo.MarginTotals(ctx, from, to)
	if err != nil {
		return Summary{}, err
	}
	summary.SalesTotal = margins.SalesTotal
	summary.SalesCount = margins.SalesCount
	summary.GrossMargin = margins.SalesTotal - margins.CostTotal

	if summary.OperatingExpenses, err = s.repo.LedgerOutExcluding(ctx, "FIXED_ASSET", from, to); err != nil {
		return Summary{}, err
	}
	summary.NetProfit = summary.GrossMargin - summary.OperatingExpenses

	if summary.CashSalesTotal, err = s.repo.CashSalesTotal(ctx, from, to); err != nil {
		return Summary{}, err
	}
	ledgerOut, err := s.repo.LedgerSum(ctx, "out", "", &from, &to)
	if err != nil {
		return Summary{}, err
	}
	// Card, transfer and credit payments never touch the physical drawer.
	summary.ExpectedCash = summary.CashSalesTotal - ledgerOut

	if summary.OutstandingCredit, err = s.repo.OutstandingCredit(ctx); err != nil {
		return Summary{}, err
	}
	if summary.RecentSales, err = s.repo.RecentSales(ctx, recentListLimit); err != nil {
		return Summary{}, err
	}
	if summary.RecentExpenses, err = s.repo.RecentExpenses(ctx, recentListLimit); err != nil {
		return Summary{}, err
	}
	if summary.RecentSales == nil {
		summary.RecentSales = []SaleDigest{}
	}
	if summary.RecentExpenses == nil {
		summary.RecentExpenses = []ExpenseDigest{}
	}
	return summary, nil
}

// ExpectedCash exposes the drawer expectation on its own for the till module.
// The figure is intentionally not part of any response shown before counting.
func (s *Service) ExpectedCash(ctx context.Context, period shared.Period) (float64, error) {
	from, to, err := period.Window(time.Now())
	if err != nil {
		return 0, err
	}
	cashSales, err := s.repo.CashSalesTotal(ctx, from, to)
	if err != nil {
		return 0, err
	}
	ledgerOut, err := s.repo.LedgerSum(ctx, "out", "", &from, &to)
	if err != nil {
		return 0, err
	}
	return cashSales - ledgerOut, nil
}
