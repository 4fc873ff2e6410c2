package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bodega-pos/bodega/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	Insert(ctx context.Context, m Movement) (Movement, error)
	List(ctx context.Context, filter Filter) ([]Movement, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service records and queries cash movements.
type Service struct {
	repo   RepositoryPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service.
func NewService(repo RepositoryPort, audit AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Record appends a movement. The ledger has no update or delete path; a wrong
// entry is corrected by posting the opposite direction.
func (s *Service) Record(ctx context.Context, input MovementInput) (Movement, error) {
	op, err := shared.RequireCapability(ctx, shared.CapRecordLedger)
	if err != nil {
		return Movement{}, err
	}
	if input.Amount <= 0 {
		return Movement{}, ErrInvalidAmount
	}
	if !validDirection(input.Direction) {
		return Movement{}, ErrInvalidDirection
	}
	category := strings.ToUpper(strings.TrimSpace(input.Category))
	if category == "" {
		return Movement{}, ErrCategoryRequired
	}
	occurredAt := input.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	m := Movement{
		Direction:  input.Direction,
		Category:   category,
		Amount:     input.Amount,
		Note:       strings.TrimSpace(input.Note),
		OperatorID: op.ID,
		OccurredAt: occurredAt,
	}
	saved, err := s.repo.Insert(ctx, m)
	if err != nil {
		return Movement{}, err
	}

	s.recordAudit(ctx, op.ID, saved)
	return saved, nil
}

// Query lists movements matching the filter. A period shortcut expands to its
// day-inclusive window before hitting the repository.
func (s *Service) Query(ctx context.Context, filter Filter) ([]Movement, error) {
	if _, err := shared.RequireCapability(ctx, shared.CapRecordLedger); err != nil {
		return nil, err
	}
	if filter.From != nil {
		from := startOfDay(*filter.From)
		filter.From = &from
	}
	if filter.To != nil {
		to := endOfDay(*filter.To)
		filter.To = &to
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 200
	}
	return s.repo.List(ctx, filter)
}

// QueryPeriod lists movements inside a named reporting period.
func (s *Service) QueryPeriod(ctx context.Context, period shared.Period, direction Direction, category string) ([]Movement, error) {
	from, to, err := period.Window(time.Now())
	if err != nil {
		return nil, err
	}
	return s.Query(ctx, Filter{From: &from, To: &to, Direction: direction, Category: category})
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, m Movement) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   "ledger:record",
		Entity:   "ledger_movement",
		EntityID: fmt.Sprintf("%d", m.ID),
		Meta: map[string]any{
			"direction": m.Direction,
			"category":  m.Category,
			"amount":    m.Amount,
		},
	}); err != nil && s.logger != nil {
		s.logger.Warn("audit record failed", slog.String("action", "ledger:record"), slog.Any("error", err))
	}
}
