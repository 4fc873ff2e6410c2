package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/bodega-pos/bodega/internal/shared"
)

// RepositoryPort abstracts catalog persistence for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	GetByBarcode(ctx context.Context, barcode string) (Product, error)
	SetActive(ctx context.Context, id int64, active bool) error
	AddStock(ctx context.Context, id int64, qty float64) (Product, error)
	ListActive(ctx context.Context, filter string) ([]Product, error)
	ListLowStock(ctx context.Context) ([]Product, error)
	ListExpiring(ctx context.Context) ([]Product, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service coordinates catalog operations.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Save creates or updates a product. Numeric fields are normalized before
// persisting: invalid costs and stock default to 0, a missing minimum stock
// defaults to 5, and a blank barcode is stored as absent so it never collides
// with another blank one.
func (s *Service) Save(ctx context.Context, input ProductInput) (Product, error) {
	op, err := shared.RequireCapability(ctx, shared.CapManageCatalog)
	if err != nil {
		return Product{}, err
	}

	p, err := normalize(input)
	if err != nil {
		return Product{}, err
	}

	var saved Product
	if input.ID == 0 {
		saved, err = s.repo.Insert(ctx, p)
	} else {
		if _, err := s.repo.Get(ctx, input.ID); err != nil {
			return Product{}, err
		}
		saved, err = s.repo.Update(ctx, p)
	}
	if err != nil {
		return Product{}, err
	}

	s.recordAudit(ctx, op.ID, "catalog:save", saved.ID, map[string]any{
		"name":       saved.Name,
		"sale_price": saved.SalePrice,
		"stock_qty":  saved.StockQty,
	})
	return saved, nil
}

// SoftDelete deactivates a product without erasing its row.
func (s *Service) SoftDelete(ctx context.Context, id int64) error {
	op, err := shared.RequireCapability(ctx, shared.CapManageCatalog)
	if err != nil {
		return err
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.SetActive(ctx, id, false); err != nil {
		return err
	}
	s.recordAudit(ctx, op.ID, "catalog:soft_delete", id, nil)
	return nil
}

// Restock adds quantity to a product's stock. Rejects non-positive amounts
// with no partial write.
func (s *Service) Restock(ctx context.Context, id int64, qty float64) (Product, error) {
	op, err := shared.RequireCapability(ctx, shared.CapManageCatalog)
	if err != nil {
		return Product{}, err
	}
	if qty <= 0 || math.IsNaN(qty) || math.IsInf(qty, 0) {
		return Product{}, ErrInvalidRestock
	}
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, ErrProductInactive
	}
	updated, err := s.repo.AddStock(ctx, id, qty)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, op.ID, "catalog:restock", id, map[string]any{
		"added_qty": qty,
		"new_stock": updated.StockQty,
	})
	return updated, nil
}

// ListActive returns active products whose name, category or barcode matches
// the filter text. An empty filter returns every active product.
func (s *Service) ListActive(ctx context.Context, filter string) ([]Product, error) {
	return s.repo.ListActive(ctx, strings.TrimSpace(filter))
}

// Get loads one product, active or not. Historical sale lines reference
// soft-deleted rows.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// GetByBarcode resolves a scanned barcode to an active product.
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, ErrProductNotFound
	}
	p, err := s.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		return Product{}, err
	}
	if !p.IsActive {
		return Product{}, ErrProductNotFound
	}
	return p, nil
}

// ListLowStock returns active tracked products at or below their minimum.
func (s *Service) ListLowStock(ctx context.Context) ([]Product, error) {
	return s.repo.ListLowStock(ctx)
}

// ExpiryReport classifies every product carrying an expiry date against now.
func (s *Service) ExpiryReport(ctx context.Context) (map[ExpiryStatus][]Product, error) {
	products, err := s.repo.ListExpiring(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	report := make(map[ExpiryStatus][]Product)
	for _, p := range products {
		status := ClassifyExpiry(p.ExpiresOn, now)
		if status == ExpiryOK {
			continue
		}
		report[status] = append(report[status], p)
	}
	return report, nil
}

func normalize(input ProductInput) (Product, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return Product{}, ErrNameRequired
	}
	if input.SalePrice <= 0 || math.IsNaN(input.SalePrice) {
		return Product{}, ErrPriceRequired
	}
	unit := input.Unit
	if unit == "" {
		unit = UnitEach
	}
	if !validUnit(unit) {
		return Product{}, fmt.Errorf("%w: %q", ErrInvalidUnit, string(input.Unit))
	}

	p := Product{
		ID:           input.ID,
		Barcode:      strings.TrimSpace(input.Barcode),
		Name:         name,
		Category:     strings.TrimSpace(input.Category),
		Unit:         unit,
		PurchaseCost: nonNegative(input.PurchaseCost),
		SalePrice:    input.SalePrice,
		TracksStock:  true,
		StockQty:     nonNegative(input.StockQty),
		MinStock:     5,
		ExpiresOn:    input.ExpiresOn,
		IsActive:     true,
	}
	if input.TracksStock != nil {
		p.TracksStock = *input.TracksStock
	}
	if input.MinStock != nil && *input.MinStock >= 0 && !math.IsNaN(*input.MinStock) {
		p.MinStock = *input.MinStock
	}
	return p, nil
}

func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "product",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.String("action", action), slog.Any("error", err))
	}
}
