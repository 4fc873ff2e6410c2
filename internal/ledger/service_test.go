package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bodega-pos/bodega/internal/shared"
)

type memoryRepo struct {
	movements []Movement
	nextID    int64
}

func (r *memoryRepo) Insert(ctx context.Context, m Movement) (Movement, error) {
	r.nextID++
	m.ID = r.nextID
	m.CreatedAt = time.Now()
	r.movements = append(r.movements, m)
	return m, nil
}

func (r *memoryRepo) List(ctx context.Context, filter Filter) ([]Movement, error) {
	result := []Movement{}
	for _, m := range r.movements {
		if filter.From != nil && m.OccurredAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && m.OccurredAt.After(*filter.To) {
			continue
		}
		if filter.Direction != "" && m.Direction != filter.Direction {
			continue
		}
		if filter.Category != "" && m.Category != filter.Category {
			continue
		}
		result = append(result, m)
	}
	return result, nil
}

func cashierCtx() context.Context {
	op := shared.NewOperator(2, "Beto", shared.RoleCashier)
	return shared.ContextWithOperator(context.Background(), op)
}

func TestRecordNormalizesCategory(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)

	m, err := svc.Record(cashierCtx(), MovementInput{
		Direction: DirectionOut,
		Category:  "  operating_expense ",
		Amount:    120,
		Note:      " hielo y bolsas ",
	})
	require.NoError(t, err)
	require.Equal(t, CategoryOperatingExpense, m.Category)
	require.Equal(t, "hielo y bolsas", m.Note)
	require.Equal(t, int64(2), m.OperatorID)
	require.False(t, m.OccurredAt.IsZero())
}

func TestRecordValidation(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil)
	ctx := cashierCtx()

	_, err := svc.Record(ctx, MovementInput{Direction: DirectionIn, Category: "X", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Record(ctx, MovementInput{Direction: DirectionIn, Category: "X", Amount: -5})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Record(ctx, MovementInput{Direction: "sideways", Category: "X", Amount: 5})
	require.ErrorIs(t, err, ErrInvalidDirection)

	_, err = svc.Record(ctx, MovementInput{Direction: DirectionIn, Category: "  ", Amount: 5})
	require.ErrorIs(t, err, ErrCategoryRequired)
}

func TestRecordRequiresCapability(t *testing.T) {
	svc := NewService(&memoryRepo{}, nil, nil)

	_, err := svc.Record(context.Background(), MovementInput{Direction: DirectionIn, Category: "X", Amount: 5})
	require.Error(t, err)
}

func TestQueryExpandsDayBounds(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)
	ctx := cashierCtx()

	day := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	late := day.Add(22 * time.Hour)
	_, err := svc.Record(ctx, MovementInput{Direction: DirectionOut, Category: "OPERATING_EXPENSE", Amount: 30, OccurredAt: late})
	require.NoError(t, err)

	// Filtering by the bare date must still catch a movement late that day.
	noon := day.Add(12 * time.Hour)
	got, err := svc.Query(ctx, Filter{From: &day, To: &noon})
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestQueryFiltersDirectionAndCategory(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo, nil, nil)
	ctx := cashierCtx()

	_, err := svc.Record(ctx, MovementInput{Direction: DirectionIn, Category: "CAPITAL_INJECTION", Amount: 1000})
	require.NoError(t, err)
	_, err = svc.Record(ctx, MovementInput{Direction: DirectionOut, Category: "OPERATING_EXPENSE", Amount: 50})
	require.NoError(t, err)

	out, err := svc.Query(ctx, Filter{Direction: DirectionOut})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, CategoryOperatingExpense, out[0].Category)

	capital, err := svc.Query(ctx, Filter{Category: CategoryCapitalInjection})
	require.NoError(t, err)
	require.Len(t, capital, 1)
	require.InDelta(t, 1000.0, capital[0].Amount, 0.0001)
}
