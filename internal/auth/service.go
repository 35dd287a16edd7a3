package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"bookreview/internal/apperror"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/user"
)

// LoginResult is returned on a successful login.
type LoginResult struct {
	UserID string `json:"userId"`
	Token  string `json:"token"`
}

type Service struct {
	users  UserStore
	tokens TokenIssuer

	// dummyHash is compared against when the email is unknown so that both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

const dummyPassword = "not-a-real-password"

// NewService panics if the dummy hash cannot be computed, which only happens
// when bcrypt itself is broken.
func NewService(users UserStore, tokens TokenIssuer) *Service {
	dummy, err := crypto.HashPassword(dummyPassword)
	if err != nil {
		panic(fmt.Sprintf("auth: hash dummy password: %v", err))
	}
	return &Service{users: users, tokens: tokens, dummyHash: dummy}
}

// Signup hashes the password and stores a new account.
func (s *Service) Signup(ctx context.Context, email, password string) (user.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return user.User{}, apperror.Validation("email and password are required")
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return user.User{}, apperror.Validation("password cannot be hashed").WithCause(err)
	}

	return s.users.Register(ctx, email, hash)
}

// Login checks the credentials and issues a token. Unknown email and wrong
// password produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			crypto.VerifyPassword(s.dummyHash, password)
			return LoginResult{}, apperror.ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !crypto.VerifyPassword(u.PasswordHash, password) {
		return LoginResult{}, apperror.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{UserID: u.ID, Token: token}, nil
}
