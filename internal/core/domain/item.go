package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// ItemType is the kind of content an item stores.
type ItemType string

const (
	ItemBookmark ItemType = "bookmark"
	ItemSnippet  ItemType = "snippet"
	ItemNote     ItemType = "note"
)

const (
	MaxTitleLength = 200
	MaxTagLength   = 50
	MaxTags        = 50
)

var ErrItemNotFound = errors.New("item not found")

// Valid reports whether t is one of the supported item types.
func (t ItemType) Valid() bool {
	switch t {
	case ItemBookmark, ItemSnippet, ItemNote:
		return true
	}
	return false
}

// SortOrder selects the ordering of list results.
type SortOrder string

const (
	SortTitleAsc  SortOrder = "title_asc"
	SortTitleDesc SortOrder = "title_desc"
	SortDateAsc   SortOrder = "date_asc"
	SortDateDesc  SortOrder = "date_desc"
)

// ParseSortOrder maps a query value to a SortOrder. Empty and unknown values
// fall back to SortDateDesc.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortTitleAsc:
		return SortTitleAsc
	case SortTitleDesc:
		return SortTitleDesc
	case SortDateAsc:
		return SortDateAsc
	default:
		return SortDateDesc
	}
}

// Item is a bookmark, snippet or note belonging to exactly one user.
// OwnerID is set once at creation and never changes.
type Item struct {
	ID        string
	OwnerID   string
	Title     string
	ItemType  ItemType
	Content   string
	Tags      []string
	CreatedAt time.Time
}

// ValidateTitle checks the title bounds shared by create and update.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, MaxTitleLength)
	}
	return nil
}

// ValidateItemType checks that t names a supported item type.
func ValidateItemType(t ItemType) error {
	if t == "" {
		return fmt.Errorf("%w: item_type is required", ErrValidation)
	}
	if !t.Valid() {
		return fmt.Errorf("%w: item_type must be one of: bookmark snippet note", ErrValidation)
	}
	return nil
}

// ValidateContent checks that content is present.
func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}

// ValidateTags checks tag count and per-tag length.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return fmt.Errorf("%w: at most %d tags allowed", ErrValidation, MaxTags)
	}
	for i, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("%w: tags[%d] must not be empty", ErrValidation, i)
		}
		if utf8.RuneCountInString(tag) > MaxTagLength {
			return fmt.Errorf("%w: tags[%d] must be at most %d characters", ErrValidation, i, MaxTagLength)
		}
	}
	return nil
}
