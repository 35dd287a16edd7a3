package user

import (
	"context"
	"errors"

	"bookreview/internal/apperror"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register stores a new account. A second account with the same email is
// rejected with a conflict, both here and by the unique index in the store.
func (s *Service) Register(ctx context.Context, email, passwordHash string) (User, error) {
	_, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return User{}, apperror.Conflict("email already registered")
	case !errors.Is(err, apperror.ErrNotFound):
		return User{}, err
	}

	newUser := &User{
		Email:        email,
		PasswordHash: passwordHash,
	}
	if err := s.repo.Create(ctx, newUser); err != nil {
		return User{}, err
	}
	return *newUser, nil
}

func (s *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.GetByEmail(ctx, email)
}
