package ports

import (
	"context"

	"github.com/stashly/stash-api/internal/core/domain"
)

// CreateItemInput carries all data needed to create an item. OwnerID comes
// from the validated token, never from the request body.
type CreateItemInput struct {
	OwnerID        string
	Title          string
	ItemType       string
	Content        string
	Tags           []string
	IdempotencyKey string
}

// CreateItemResult is returned by the service after creating an item.
type CreateItemResult struct {
	Item *domain.Item
	// AlreadyExisted is true when the Idempotency-Key matched an earlier create.
	AlreadyExisted bool
}

// ListItemsInput carries the raw list query parameters.
type ListItemsInput struct {
	OwnerID  string
	Search   string
	ItemType string
	Sort     string
}

// UpdateItemInput carries the allow-listed fields of a partial update.
type UpdateItemInput struct {
	OwnerID  string
	ItemID   string
	Title    *string
	ItemType *string
	Content  *string
	Tags     *[]string
}

// ItemService defines use-case operations for items.
type ItemService interface {
	CreateItem(ctx context.Context, input CreateItemInput) (*CreateItemResult, error)
	GetItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error)
	ListItems(ctx context.Context, input ListItemsInput) ([]*domain.Item, error)
	UpdateItem(ctx context.Context, input UpdateItemInput) (*domain.Item, error)
	DeleteItem(ctx context.Context, ownerID, itemID string) error
}
