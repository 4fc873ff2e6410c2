package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/bodega-pos/bodega/internal/shared"
)

// RepositoryPort abstracts operator lookups for the service.
type RepositoryPort interface {
	FindByUsername(ctx context.Context, username string) (*Operator, error)
	FindByID(ctx context.Context, id int64) (*Operator, error)
}

// Service wraps authentication business rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a new Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Authenticate validates username/password credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Operator, error) {
	op, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !op.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(op.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return op, nil
}

// Resolve loads an active operator by id, used to rebuild the request
// principal from a session.
func (s *Service) Resolve(ctx context.Context, id int64) (*Operator, error) {
	op, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !op.IsActive {
		return nil, shared.ErrNotFound
	}
	return op, nil
}
