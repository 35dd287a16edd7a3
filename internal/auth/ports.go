package auth

import (
	"context"

	"bookreview/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports_test.go -package=auth

// UserStore is the part of the credential store signup and login need.
type UserStore interface {
	Register(ctx context.Context, email, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
}

type TokenIssuer interface {
	Issue(userID string) (string, error)
}
