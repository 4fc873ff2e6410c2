package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bodega-pos/bodega/internal/shared"
)

// Repository persists operators in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// FindByUsername loads an operator by login name.
func (r *Repository) FindByUsername(ctx context.Context, username string) (*Operator, error) {
	var op Operator
	err := r.pool.QueryRow(ctx, `SELECT id, username, name, role, password_hash, is_active, created_at
FROM operators WHERE username = $1`, username).
		Scan(&op.ID, &op.Username, &op.Name, &op.Role, &op.PasswordHash, &op.IsActive, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}

// FindByID loads an operator by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*Operator, error) {
	var op Operator
	err := r.pool.QueryRow(ctx, `SELECT id, username, name, role, password_hash, is_active, created_at
FROM operators WHERE id = $1`, id).
		Scan(&op.ID, &op.Username, &op.Name, &op.Role, &op.PasswordHash, &op.IsActive, &op.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &op, nil
}
