package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists ledger movements in PostgreSQL. The table takes inserts
// only; nothing in the repository can touch an existing row.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert appends a movement and returns it with its id and created_at.
func (r *Repository) Insert(ctx context.Context, m Movement) (Movement, error) {
	if r == nil {
		return Movement{}, errors.New("ledger repository not initialised")
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO ledger_movements (direction, category, amount, note, operator_id, occurred_at, created_at)
VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7)
RETURNING id, created_at`,
		m.Direction, m.Category, m.Amount, m.Note, m.OperatorID, m.OccurredAt, time.Now().UTC()).
		Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return Movement{}, err
	}
	return m, nil
}

// List returns movements matching the filter, newest first.
func (r *Repository) List(ctx context.Context, filter Filter) ([]Movement, error) {
	if r == nil {
		return nil, errors.New("ledger repository not initialised")
	}
	rows, err := r.pool.Query(ctx, `SELECT id, direction, category, amount, COALESCE(note, ''), operator_id, occurred_at, created_at
FROM ledger_movements
WHERE occurred_at BETWEEN COALESCE($1, '-infinity') AND COALESCE($2, 'infinity')
  AND ($3 = '' OR direction = $3)
  AND ($4 = '' OR category = $4)
ORDER BY occurred_at DESC, id DESC
LIMIT $5`,
		nullTime(filter.From), nullTime(filter.To), string(filter.Direction), filter.Category, filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	movements := []Movement{}
	for rows.Next() {
		var m Movement
		if err := rows.Scan(&m.ID, &m.Direction, &m.Category, &m.Amount, &m.Note, &m.OperatorID, &m.OccurredAt, &m.CreatedAt); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
