package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/stashly/stash-api/internal/api/metrics"
	"github.com/stashly/stash-api/internal/core/domain"
	"github.com/stashly/stash-api/internal/core/ports"
)

// typeAll is the list filter value meaning "every type".
const typeAll = "all"

type ItemService struct {
	repo  ports.ItemRepository
	idem  ports.IdempotencyStore
	log   zerolog.Logger
	clock func() time.Time
}

// NewItemService wires the item use cases. idem may be nil, in which case
// Idempotency-Key headers are ignored.
func NewItemService(repo ports.ItemRepository, idem ports.IdempotencyStore, logger zerolog.Logger) *ItemService {
	return &ItemService{repo: repo, idem: idem, log: logger, clock: time.Now}
}

// CreateItem validates and stores a new item for input.OwnerID. If an
// idempotency key is provided and already seen for this owner, the previously
// created item is returned without side effects.
func (s *ItemService) CreateItem(ctx context.Context, input ports.CreateItemInput) (*ports.CreateItemResult, error) {
	itemType := domain.ItemType(input.ItemType)
	if err := validateNewItem(input.Title, itemType, input.Content, input.Tags); err != nil {
		return nil, err
	}

	if replay := s.lookupReplay(ctx, input.OwnerID, input.IdempotencyKey); replay != nil {
		metrics.IdempotentReplaysTotal.Inc()
		return &ports.CreateItemResult{Item: replay, AlreadyExisted: true}, nil
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	item := &domain.Item{
		OwnerID:   input.OwnerID,
		Title:     input.Title,
		ItemType:  itemType,
		Content:   input.Content,
		Tags:      tags,
		CreatedAt: s.clock().UTC(),
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", input.OwnerID).Msg("failed to create item")
		return nil, err
	}

	if input.IdempotencyKey != "" && s.idem != nil {
		if err := s.idem.Remember(ctx, input.OwnerID, input.IdempotencyKey, created.ID); err != nil {
			s.log.Warn().Err(err).Str("item_id", created.ID).Msg("failed to store idempotency key")
		}
	}

	metrics.ItemMutationsTotal.WithLabelValues("create", string(created.ItemType)).Inc()
	s.log.Info().Str("item_id", created.ID).Str("owner_id", input.OwnerID).Str("item_type", string(created.ItemType)).Msg("item created")

	return &ports.CreateItemResult{Item: created}, nil
}

// lookupReplay returns the item an earlier create with the same key produced,
// or nil. Store failures are logged and treated as a miss.
func (s *ItemService) lookupReplay(ctx context.Context, ownerID, key string) *domain.Item {
	if key == "" || s.idem == nil {
		return nil
	}

	itemID, found, err := s.idem.Lookup(ctx, ownerID, key)
	if err != nil {
		s.log.Warn().Err(err).Str("owner_id", ownerID).Msg("idempotency lookup failed, creating anyway")
		return nil
	}
	if !found {
		return nil
	}

	existing, err := s.repo.FindByID(ctx, ownerID, itemID)
	if err != nil {
		// The item was deleted since; a fresh create is the sensible answer.
		s.log.Debug().Err(err).Str("item_id", itemID).Msg("idempotent item no longer available")
		return nil
	}

	s.log.Info().Str("item_id", existing.ID).Str("owner_id", ownerID).Msg("idempotent replay")
	return existing
}

func (s *ItemService) GetItem(ctx context.Context, ownerID, itemID string) (*domain.Item, error) {
	return s.repo.FindByID(ctx, ownerID, itemID)
}

// ListItems returns only items owned by input.OwnerID, filtered and sorted.
func (s *ItemService) ListItems(ctx context.Context, input ports.ListItemsInput) ([]*domain.Item, error) {
	filter := ports.ListItemsFilter{
		OwnerID: input.OwnerID,
		Search:  strings.TrimSpace(input.Search),
		Sort:    domain.ParseSortOrder(input.Sort),
	}
	if t := strings.TrimSpace(input.ItemType); t != "" && !strings.EqualFold(t, typeAll) {
		filter.ItemType = domain.ItemType(t)
	}

	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// UpdateItem applies the allow-listed fields present in input. id, owner and
// created_at are not part of the input and cannot change.
func (s *ItemService) UpdateItem(ctx context.Context, input ports.UpdateItemInput) (*domain.Item, error) {
	changes := ports.ItemChanges{
		Title:   input.Title,
		Content: input.Content,
		Tags:    input.Tags,
	}
	if input.ItemType != nil {
		t := domain.ItemType(*input.ItemType)
		changes.ItemType = &t
	}

	if changes.Empty() {
		return nil, fmt.Errorf("%w: no valid fields to update", domain.ErrValidation)
	}
	if err := validateChanges(changes); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, input.OwnerID, input.ItemID, changes)
	if err != nil {
		if !errors.Is(err, domain.ErrItemNotFound) {
			s.log.Error().Err(err).Str("item_id", input.ItemID).Msg("failed to update item")
		}
		return nil, err
	}

	metrics.ItemMutationsTotal.WithLabelValues("update", string(updated.ItemType)).Inc()
	s.log.Info().Str("item_id", updated.ID).Str("owner_id", input.OwnerID).Msg("item updated")
	return updated, nil
}

func (s *ItemService) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	if err := s.repo.Delete(ctx, ownerID, itemID); err != nil {
		if !errors.Is(err, domain.ErrItemNotFound) {
			s.log.Error().Err(err).Str("item_id", itemID).Msg("failed to delete item")
		}
		return err
	}

	metrics.ItemMutationsTotal.WithLabelValues("delete", "").Inc()
	s.log.Info().Str("item_id", itemID).Str("owner_id", ownerID).Msg("item deleted")
	return nil
}

func validateNewItem(title string, itemType domain.ItemType, content string, tags []string) error {
	if err := domain.ValidateTitle(title); err != nil {
		return err
	}
	if err := domain.ValidateItemType(itemType); err != nil {
		return err
	}
	if err := domain.ValidateContent(content); err != nil {
		return err
	}
	return domain.ValidateTags(tags)
}

func validateChanges(c ports.ItemChanges) error {
	if c.Title != nil {
		if err := domain.ValidateTitle(*c.Title); err != nil {
			return err
		}
	}
	if c.ItemType != nil {
		if err := domain.ValidateItemType(*c.ItemType); err != nil {
			return err
		}
	}
	if c.Content != nil {
		if err := domain.ValidateContent(*c.Content); err != nil {
			return err
		}
	}
	if c.Tags != nil {
		if err := domain.ValidateTags(*c.Tags); err != nil {
			return err
		}
	}
	return nil
}
