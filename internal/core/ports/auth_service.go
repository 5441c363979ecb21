package ports

import (
	"context"

	"github.com/stashly/stash-api/internal/core/domain"
)

type AuthService interface {
	Register(ctx context.Context, email, password string) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Me(ctx context.Context, userID string) (*domain.User, error)
}

// TokenService issues and validates self-contained signed tokens.
type TokenService interface {
	IssueAccess(userID string) (string, error)
	IssueRefresh(userID string) (string, error)
	// Validate returns the user id bound to token if it is well formed,
	// correctly signed, unexpired and of the expected type.
	Validate(token string, want domain.TokenType) (string, error)
}

// PasswordHasher produces salted one-way password digests.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}
