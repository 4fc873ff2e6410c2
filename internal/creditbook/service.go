package creditbook

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bodega-pos/bodega/internal/ledger"
	"github.com/bodega-pos/bodega/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	ListDebtors(ctx context.Context) ([]DebtorSummary, error)
	GetCustomer(ctx context.Context, id int64) (Customer, error)
	InsertCustomer(ctx context.Context, c Customer) (Customer, error)
	OutstandingTotal(ctx context.Context) (float64, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service manages the fiado book: customers, their open debts, and
// settlements.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// CreateCustomer registers a credit customer.
func (s *Service) CreateCustomer(ctx context.Context, name, phone string) (Customer, error) {
	op, err := shared.RequireCapability(ctx, shared.CapSettleCredit)
	if err != nil {
		return Customer{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Customer{}, ErrNameRequired
	}
	c, err := s.repo.InsertCustomer(ctx, Customer{Name: name, Phone: strings.TrimSpace(phone)})
	if err != nil {
		return Customer{}, err
	}
	s.recordAudit(ctx, op.ID, "creditbook:create_customer", fmt.Sprintf("%d", c.ID), map[string]any{"name": c.Name})
	return c, nil
}

// ListDebtors returns every customer with at least one pending credit sale,
// each with their open debts and owed total.
func (s *Service) ListDebtors(ctx context.Context) ([]DebtorSummary, error) {
	if _, err := shared.RequireCapability(ctx, shared.CapSettleCredit); err != nil {
		return nil, err
	}
	return s.repo.ListDebtors(ctx)
}

// OutstandingTotal returns the sum owed across every open debt.
func (s *Service) OutstandingTotal(ctx context.Context) (float64, error) {
	if _, err := shared.RequireCapability(ctx, shared.CapSettleCredit); err != nil {
		return 0, err
	}
	return s.repo.OutstandingTotal(ctx)
}

// SettleDebt flips a pending credit sale to paid and writes the matching cash
// inflow in the same transaction. A second settle attempt conflicts instead of
// double-counting the payment.
func (s *Service) SettleDebt(ctx context.Context, saleID int64) (Settlement, error) {
	op, err := shared.RequireCapability(ctx, shared.CapSettleCredit)
	if err != nil {
		return Settlement{}, err
	}

	now := time.Now().UTC()
	var settlement Settlement
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		debt, err := tx.DebtForSettle(ctx, saleID)
		if err != nil {
			return err
		}
		if err := tx.MarkSalePaid(ctx, saleID, now); err != nil {
			return err
		}
		if err := tx.InsertSettlementMovement(ctx, ledger.Movement{
			Direction:  ledger.DirectionIn,
			Category:   ledger.CategoryDebtSettlement,
			Amount:     debt.Total,
			Note:       fmt.Sprintf("Pago deuda #%d (%s)", saleID, debt.CustomerName),
			OperatorID: op.ID,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		settlement = Settlement{
			SaleID:    saleID,
			Amount:    debt.Total,
			Customer:  debt.CustomerName,
			SettledAt: now,
		}
		return nil
	})
	if err != nil {
		return Settlement{}, err
	}

	s.recordAudit(ctx, op.ID, "creditbook:settle", fmt.Sprintf("%d", saleID), map[string]any{
		"amount":   settlement.Amount,
		"customer": settlement.Customer,
	})
	return settlement, nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "debt",
		EntityID: entityID,
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
