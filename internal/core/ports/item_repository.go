package ports

import (
	"context"

	"github.com/stashly/stash-api/internal/core/domain"
)

// ListItemsFilter carries the query parameters for listing items.
// OwnerID is always set by the service layer.
type ListItemsFilter struct {
	OwnerID  string
	Search   string          // optional: case-insensitive substring of title
	ItemType domain.ItemType // optional: exact match
	Sort     domain.SortOrder
}

// ItemChanges holds the allow-listed mutable fields. Nil means "leave as is".
type ItemChanges struct {
	Title    *string
	ItemType *domain.ItemType
	Content  *string
	Tags     *[]string
}

// Empty reports whether no field is set.
func (c ItemChanges) Empty() bool {
	return c.Title == nil && c.ItemType == nil && c.Content == nil && c.Tags == nil
}

// ItemRepository defines persistence operations for items. Every lookup and
// mutation is filtered by owner in the same query as the id, so items owned by
// someone else are reported as domain.ErrItemNotFound.
type ItemRepository interface {
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	FindByID(ctx context.Context, ownerID, itemID string) (*domain.Item, error)
	List(ctx context.Context, filter ListItemsFilter) ([]*domain.Item, error)
	Update(ctx context.Context, ownerID, itemID string, changes ItemChanges) (*domain.Item, error)
	Delete(ctx context.Context, ownerID, itemID string) error
}

// IdempotencyStore remembers which item a client-supplied Idempotency-Key produced.
type IdempotencyStore interface {
	Lookup(ctx context.Context, ownerID, key string) (itemID string, found bool, err error)
	Remember(ctx context.Context, ownerID, key, itemID string) error
}
