package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/bodega-pos/bodega/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetSale(ctx context.Context, id int64) (Sale, error)
	ListRecent(ctx context.Context, limit int) ([]Sale, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service commits carts into sales.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	logger      *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, idempotency: idem, logger: logger}
}

// Commit turns a cart into a persisted sale. Every write happens in one
// transaction: the sale header, its lines with price and cost snapshots, and
// the stock decrements. Any failure leaves stock and sales untouched.
func (s *Service) Commit(ctx context.Context, input CommitInput) (Sale, error) {
	op, err := shared.RequireCapability(ctx, shared.CapRingSales)
	if err != nil {
		return Sale{}, err
	}
	if input.Cart == nil || input.Cart.Empty() {
		return Sale{}, ErrEmptyCart
	}
	if !validPayment(input.PaymentMethod) {
		return Sale{}, ErrInvalidPayment
	}
	isCredit := input.PaymentMethod == PaymentCredit
	customerName := strings.TrimSpace(input.CustomerName)
	if isCredit && input.CustomerID == 0 && customerName == "" {
		return Sale{}, ErrCustomerRequired
	}

	insertedKey := false
	if s.idempotency != nil && input.IdempotencyKey != "" {
		if err := s.idempotency.CheckAndInsert(ctx, input.IdempotencyKey, "checkout"); err != nil {
			return Sale{}, err
		}
		insertedKey = true
	}

	now := time.Now().UTC()
	var sale Sale
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		lines := make([]SaleLine, 0, len(input.Cart.Lines))
		var total float64
		for _, cl := range input.Cart.Lines {
			if cl.Qty <= 0 {
				return ErrInvalidQuantity
			}
			p, err := tx.ProductForSale(ctx, cl.ProductID)
			if err != nil {
				return err
			}
			if !p.IsActive {
				return fmt.Errorf("%w: %s", ErrProductUnavailable, cl.Name)
			}
			if p.TracksStock {
				newQty := round3(p.StockQty - cl.Qty)
				if newQty < -0.0001 {
					return fmt.Errorf("%w: %s has %.3f left", ErrInsufficientStock, cl.Name, p.StockQty)
				}
				if err := tx.SetStock(ctx, cl.ProductID, math.Max(newQty, 0)); err != nil {
					return err
				}
			}
			lines = append(lines, SaleLine{
				ProductID: cl.ProductID,
				Name:      cl.Name,
				Qty:       cl.Qty,
				UnitPrice: cl.UnitPrice,
				UnitCost:  p.PurchaseCost,
				LineTotal: cl.LineTotal(),
			})
			total += cl.LineTotal()
		}

		var customerID *int64
		if isCredit {
			id := input.CustomerID
			if id == 0 {
				created, err := tx.InsertCustomer(ctx, customerName, strings.TrimSpace(input.CustomerPhone))
				if err != nil {
					return err
				}
				id = created
			} else if err := tx.EnsureCustomer(ctx, id); err != nil {
				return err
			}
			customerID = &id
		}

		status := SalePaid
		if isCredit {
			status = SalePending
		}
		sale = Sale{
			Status:         status,
			PaymentMethod:  input.PaymentMethod,
			Total:          total,
			CustomerID:     customerID,
			CollateralNote: strings.TrimSpace(input.CollateralNote),
			OperatorID:     op.ID,
			CreatedAt:      now,
		}
		saleID, err := tx.InsertSale(ctx, sale)
		if err != nil {
			return err
		}
		sale.ID = saleID
		if err := tx.InsertSaleLines(ctx, saleID, lines); err != nil {
			return err
		}
		for i := range lines {
			lines[i].SaleID = saleID
		}
		sale.Lines = lines
		return nil
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, input.IdempotencyKey)
		}
		return Sale{}, err
	}

	s.recordAudit(ctx, op.ID, "checkout:commit", sale)
	return sale, nil
}

// Get returns a sale with its lines, typically to reprint a bag label.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if _, err := shared.RequireCapability(ctx, shared.CapRingSales); err != nil {
		return Sale{}, err
	}
	return s.repo.GetSale(ctx, id)
}

// ListRecent returns the latest committed sales, newest first.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]Sale, error) {
	if _, err := shared.RequireCapability(ctx, shared.CapRingSales); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListRecent(ctx, limit)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, sale Sale) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sale",
		EntityID: fmt.Sprintf("%d", sale.ID),
		Meta: map[string]any{
			"total":          sale.Total,
			"payment_method": sale.PaymentMethod,
			"status":         sale.Status,
			"line_count":     len(sale.Lines),
		},
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}

// round3 rounds a stock quantity to three decimals, matching the column
// precision, so repeated fractional decrements do not drift.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
