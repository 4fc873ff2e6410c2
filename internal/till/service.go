package till

import (
	"context"
	"log/slog"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bodega-pos/bodega/internal/shared"
)

// ExpectedCashPort supplies the ledger-derived drawer expectation.
type ExpectedCashPort interface {
	ExpectedCash(ctx context.Context, period shared.Period) (float64, error)
}

// Service runs blind till counts. The expected figure is fetched only after
// the operator has already entered their count, so the count stays blind.
type Service struct {
	reports ExpectedCashPort
	printer *message.Printer
	logger  *slog.Logger
}

// NewService builds Service.
func NewService(reports ExpectedCashPort, logger *slog.Logger) *Service {
	return &Service{
		reports: reports,
		printer: message.NewPrinter(language.Spanish),
		logger:  logger,
	}
}

// Reconcile compares a physically counted amount against the expected cash
// for the period. Pure computation: nothing is written anywhere, and a
// repeated call with the same inputs gives the same answer.
func (s *Service) Reconcile(ctx context.Context, period shared.Period, counted float64) (Reconciliation, error) {
	if _, err := shared.RequireCapability(ctx, shared.CapViewFinancials); err != nil {
		return Reconciliation{}, err
	}
	if counted < 0 {
		return Reconciliation{}, ErrNegativeCount
	}

	expected, err := s.reports.ExpectedCash(ctx, period)
	if err != nil {
		return Reconciliation{}, err
	}

	difference := counted - expected
	rec := Reconciliation{
		Period:            period,
		Expected:          expected,
		Counted:           counted,
		Difference:        difference,
		Status:            Classify(difference),
		ExpectedDisplay:   s.printer.Sprintf("%.2f", expected),
		CountedDisplay:    s.printer.Sprintf("%.2f", counted),
		DifferenceDisplay: s.printer.Sprintf("%+.2f", difference),
	}

	if s.logger != nil && rec.Status != StatusOK {
		s.logger.Warn("till count discrepancy",
			slog.String("period", string(period)),
			slog.Float64("difference", difference),
			slog.String("status", string(rec.Status)))
	}
	return rec, nil
}
