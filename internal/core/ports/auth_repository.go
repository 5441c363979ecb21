package ports

import (
	"context"

	"github.com/stashly/stash-api/internal/core/domain"
)

// AuthRepository defines the interface for user credential persistence.
type AuthRepository interface {
	// Create inserts the user in a single write. A taken email yields
	// domain.ErrDuplicateEmail and leaves no partial record behind.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
