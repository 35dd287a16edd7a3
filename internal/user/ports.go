package user

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=user

// Repository persists user accounts. Lookups return apperror.ErrNotFound when
// no row matches and Create returns apperror.ErrConflict on a duplicate email.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (User, error)
}
