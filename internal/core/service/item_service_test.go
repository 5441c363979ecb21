package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/stashly/stash-api/internal/core/domain"
	"github.com/stashly/stash-api/internal/core/ports"
)

// ---------------------------------------------------------------------------
// In-memory stub repository
// ---------------------------------------------------------------------------

type stubItemRepo struct {
	items     map[string]*domain.Item
	nextID    int
	createErr error
}

func newStubItemRepo() *stubItemRepo {
	return &stubItemRepo{items: make(map[string]*domain.Item)}
}

func cloneItem(it *domain.Item) *domain.Item {
	clone := *it
	clone.Tags = append([]string{}, it.Tags...)
	return &clone
}

func (r *stubItemRepo) Create(_ context.Context, it *domain.Item) (*domain.Item, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.nextID++
	stored := cloneItem(it)
	stored.ID = fmt.Sprintf("item-%d", r.nextID)
	r.items[stored.ID] = stored
	return cloneItem(stored), nil
}

// owned mirrors the compound {_id, owner} filter of the real Mongo query.
func (r *stubItemRepo) owned(ownerID, itemID string) (*domain.Item, bool) {
	it, ok := r.items[itemID]
	if !ok || it.OwnerID != ownerID {
		return nil, false
	}
	return it, true
}

func (r *stubItemRepo) FindByID(_ context.Context, ownerID, itemID string) (*domain.Item, error) {
	it, ok := r.owned(ownerID, itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	return cloneItem(it), nil
}

func (r *stubItemRepo) List(_ context.Context, f ports.ListItemsFilter) ([]*domain.Item, error) {
	var out []*domain.Item
	for _, it := range r.items {
		if it.OwnerID != f.OwnerID {
			continue
		}
		if f.ItemType != "" && it.ItemType != f.ItemType {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Title), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, cloneItem(it))
	}
	sort.Slice(out, func(i, j int) bool {
		switch f.Sort {
		case domain.SortTitleAsc:
			return out[i].Title < out[j].Title
		case domain.SortTitleDesc:
			return out[i].Title > out[j].Title
		case domain.SortDateAsc:
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		default:
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
	})
	return out, nil
}

func (r *stubItemRepo) Update(_ context.Context, ownerID, itemID string, c ports.ItemChanges) (*domain.Item, error) {
	it, ok := r.owned(ownerID, itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	if c.Title != nil {
		it.Title = *c.Title
	}
	if c.ItemType != nil {
		it.ItemType = *c.ItemType
	}
	if c.Content != nil {
		it.Content = *c.Content
	}
	if c.Tags != nil {
		it.Tags = append([]string{}, (*c.Tags)...)
	}
	return cloneItem(it), nil
}

func (r *stubItemRepo) Delete(_ context.Context, ownerID, itemID string) error {
	if _, ok := r.owned(ownerID, itemID); !ok {
		return domain.ErrItemNotFound
	}
	delete(r.items, itemID)
	return nil
}

type stubIdempotencyStore struct {
	keys      map[string]string
	lookupErr error
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{keys: make(map[string]string)}
}

func (s *stubIdempotencyStore) Lookup(_ context.Context, ownerID, key string) (string, bool, error) {
	if s.lookupErr != nil {
		return "", false, s.lookupErr
	}
	id, ok := s.keys[ownerID+":"+key]
	return id, ok, nil
}

func (s *stubIdempotencyStore) Remember(_ context.Context, ownerID, key, itemID string) error {
	s.keys[ownerID+":"+key] = itemID
	return nil
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var discardLogger = zerolog.Nop()

func newTestItemService(repo *stubItemRepo, idem ports.IdempotencyStore) *ItemService {
	svc := NewItemService(repo, idem, discardLogger)
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	svc.clock = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	return svc
}

func noteInput(owner, title string) ports.CreateItemInput {
	return ports.CreateItemInput{
		OwnerID:  owner,
		Title:    title,
		ItemType: "note",
		Content:  "content of " + title,
	}
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// CreateItem
// ---------------------------------------------------------------------------

func TestItemService_Create_Success(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)

	res, err := svc.CreateItem(context.Background(), ports.CreateItemInput{
		OwnerID:  "user-a",
		Title:    "Go blog",
		ItemType: "bookmark",
		Content:  "https://go.dev/blog",
		Tags:     []string{"go", "reading"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.AlreadyExisted {
		t.Error("expected AlreadyExisted=false for new item")
	}
	it := res.Item
	if it.ID == "" || it.OwnerID != "user-a" {
		t.Fatalf("unexpected identity: %+v", it)
	}
	if it.ItemType != domain.ItemBookmark || len(it.Tags) != 2 {
		t.Fatalf("unexpected item: %+v", it)
	}
	if it.CreatedAt.IsZero() {
		t.Error("CreatedAt must not be zero")
	}
}

func TestItemService_Create_DefaultsTagsToEmpty(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)

	res, err := svc.CreateItem(context.Background(), noteInput("user-a", "T"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Item.Tags == nil || len(res.Item.Tags) != 0 {
		t.Fatalf("expected empty non-nil tags, got %#v", res.Item.Tags)
	}
}

func TestItemService_Create_Validation(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)

	cases := map[string]ports.CreateItemInput{
		"missing title":   {OwnerID: "u", ItemType: "note", Content: "c"},
		"missing type":    {OwnerID: "u", Title: "t", Content: "c"},
		"unknown type":    {OwnerID: "u", Title: "t", ItemType: "video", Content: "c"},
		"missing content": {OwnerID: "u", Title: "t", ItemType: "note"},
		"long title":      {OwnerID: "u", Title: strings.Repeat("x", 201), ItemType: "note", Content: "c"},
		"long tag":        {OwnerID: "u", Title: "t", ItemType: "note", Content: "c", Tags: []string{strings.Repeat("x", 51)}},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.CreateItem(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
	if len(repo.items) != 0 {
		t.Fatalf("invalid input must not reach the store")
	}
}

func TestItemService_Create_RepoError(t *testing.T) {
	repo := newStubItemRepo()
	repo.createErr = errors.New("db down")
	svc := newTestItemService(repo, nil)

	if _, err := svc.CreateItem(context.Background(), noteInput("u", "T")); err == nil {
		t.Fatal("expected error")
	}
}

func TestItemService_Create_IdempotentReplay(t *testing.T) {
	repo := newStubItemRepo()
	idem := newStubIdempotencyStore()
	svc := newTestItemService(repo, idem)

	in := noteInput("user-a", "T")
	in.IdempotencyKey = "key-1"

	first, err := svc.CreateItem(context.Background(), in)
	if err != nil {
		t.Fatalf("first create: %v", err)
	}
	second, err := svc.CreateItem(context.Background(), in)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if !second.AlreadyExisted || second.Item.ID != first.Item.ID {
		t.Fatalf("expected replay of %s, got %+v", first.Item.ID, second)
	}
	if len(repo.items) != 1 {
		t.Fatalf("expected one stored item, got %d", len(repo.items))
	}

	// Same key, different owner: independent.
	other := noteInput("user-b", "T")
	other.IdempotencyKey = "key-1"
	res, err := svc.CreateItem(context.Background(), other)
	if err != nil || res.AlreadyExisted {
		t.Fatalf("keys must be scoped per owner: res=%+v err=%v", res, err)
	}
}

func TestItemService_Create_IdempotencyStoreDown(t *testing.T) {
	repo := newStubItemRepo()
	idem := newStubIdempotencyStore()
	idem.lookupErr = errors.New("redis unavailable")
	svc := newTestItemService(repo, idem)

	in := noteInput("user-a", "T")
	in.IdempotencyKey = "key-1"
	if _, err := svc.CreateItem(context.Background(), in); err != nil {
		t.Fatalf("store failure must not fail the create: %v", err)
	}
}

// ---------------------------------------------------------------------------
// ListItems
// ---------------------------------------------------------------------------

func TestItemService_List_OwnerIsolation(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)

	_, _ = svc.CreateItem(context.Background(), noteInput("user-a", "A item"))
	_, _ = svc.CreateItem(context.Background(), noteInput("user-b", "B item"))

	items, err := svc.ListItems(context.Background(), ports.ListItemsInput{OwnerID: "user-a"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0].Title != "A item" {
		t.Fatalf("expected only user-a's item, got %+v", items)
	}
}

func TestItemService_List_Sorting(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)

	for _, title := range []string{"banana", "apple", "cherry"} {
		_, _ = svc.CreateItem(context.Background(), noteInput("u", title))
	}

	titles := func(items []*domain.Item) string {
		var parts []string
		for _, it := range items {
			parts = append(parts, it.Title)
		}
		return strings.Join(parts, ",")
	}

	cases := map[string]string{
		"":           "cherry,apple,banana", // newest first
		"date_desc":  "cherry,apple,banana",
		"date_asc":   "banana,apple,cherry",
		"title_asc":  "apple,banana,cherry",
		"title_desc": "cherry,banana,apple",
		"nonsense":   "cherry,apple,banana",
	}
	for sortBy, want := range cases {
		items, err := svc.ListItems(context.Background(), ports.ListItemsInput{OwnerID: "u", Sort: sortBy})
		if err != nil {
			t.Fatalf("sort %q: %v", sortBy, err)
		}
		if got := titles(items); got != want {
			t.Errorf("sort %q: got %s, want %s", sortBy, got, want)
		}
	}
}

func TestItemService_List_Filters(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)

	_, _ = svc.CreateItem(context.Background(), ports.CreateItemInput{OwnerID: "u", Title: "Go Tips", ItemType: "snippet", Content: "c"})
	_, _ = svc.CreateItem(context.Background(), ports.CreateItemInput{OwnerID: "u", Title: "golang blog", ItemType: "bookmark", Content: "c"})
	_, _ = svc.CreateItem(context.Background(), ports.CreateItemInput{OwnerID: "u", Title: "Groceries", ItemType: "note", Content: "c"})

	items, _ := svc.ListItems(context.Background(), ports.ListItemsInput{OwnerID: "u", Search: "GO"})
	if len(items) != 2 {
		t.Fatalf("search: expected 2 items, got %d", len(items))
	}

	items, _ = svc.ListItems(context.Background(), ports.ListItemsInput{OwnerID: "u", ItemType: "note"})
	if len(items) != 1 || items[0].Title != "Groceries" {
		t.Fatalf("type filter: unexpected %+v", items)
	}

	items, _ = svc.ListItems(context.Background(), ports.ListItemsInput{OwnerID: "u", ItemType: "all"})
	if len(items) != 3 {
		t.Fatalf("type=all: expected 3 items, got %d", len(items))
	}

	items, _ = svc.ListItems(context.Background(), ports.ListItemsInput{OwnerID: "u", Search: "go", ItemType: "bookmark"})
	if len(items) != 1 || items[0].Title != "golang blog" {
		t.Fatalf("combined filters: unexpected %+v", items)
	}
}

// ---------------------------------------------------------------------------
// UpdateItem / DeleteItem
// ---------------------------------------------------------------------------

func TestItemService_Update_PartialPreservesUntouched(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)

	res, _ := svc.CreateItem(context.Background(), ports.CreateItemInput{
		OwnerID: "u", Title: "Old", ItemType: "note", Content: "body", Tags: []string{"a"},
	})
	orig := res.Item

	updated, err := svc.UpdateItem(context.Background(), ports.UpdateItemInput{
		OwnerID: "u",
		ItemID:  orig.ID,
		Title:   strPtr("New"),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Title != "New" {
		t.Errorf("title not updated: %q", updated.Title)
	}
	if updated.ID != orig.ID || updated.OwnerID != orig.OwnerID {
		t.Errorf("identity changed: %+v -> %+v", orig, updated)
	}
	if updated.Content != orig.Content || updated.ItemType != orig.ItemType || len(updated.Tags) != 1 {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if !updated.CreatedAt.Equal(orig.CreatedAt) {
		t.Errorf("created_at changed")
	}
}

func TestItemService_Update_Validation(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)
	res, _ := svc.CreateItem(context.Background(), noteInput("u", "T"))

	if _, err := svc.UpdateItem(context.Background(), ports.UpdateItemInput{OwnerID: "u", ItemID: res.Item.ID}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("empty update: expected ErrValidation, got %v", err)
	}
	if _, err := svc.UpdateItem(context.Background(), ports.UpdateItemInput{OwnerID: "u", ItemID: res.Item.ID, ItemType: strPtr("video")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("bad type: expected ErrValidation, got %v", err)
	}
	if _, err := svc.UpdateItem(context.Background(), ports.UpdateItemInput{OwnerID: "u", ItemID: res.Item.ID, Title: strPtr("")}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("blank title: expected ErrValidation, got %v", err)
	}
}

func TestItemService_CrossOwnerAccessIsNotFound(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)
	res, _ := svc.CreateItem(context.Background(), noteInput("user-a", "Secret"))
	id := res.Item.ID

	if _, err := svc.GetItem(context.Background(), "user-b", id); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("get: expected ErrItemNotFound, got %v", err)
	}
	if _, err := svc.UpdateItem(context.Background(), ports.UpdateItemInput{OwnerID: "user-b", ItemID: id, Title: strPtr("pwned")}); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("update: expected ErrItemNotFound, got %v", err)
	}
	if err := svc.DeleteItem(context.Background(), "user-b", id); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("delete: expected ErrItemNotFound, got %v", err)
	}
	stored := repo.items[id]
	if stored == nil || stored.Title != "Secret" {
		t.Fatalf("victim's item changed: %+v", stored)
	}
}

func TestItemService_Delete(t *testing.T) {
	repo := newStubItemRepo()
	svc := newTestItemService(repo, nil)
	res, _ := svc.CreateItem(context.Background(), noteInput("u", "T"))

	if err := svc.DeleteItem(context.Background(), "u", res.Item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteItem(context.Background(), "u", res.Item.ID); !errors.Is(err, domain.ErrItemNotFound) {
		t.Fatalf("second delete: expected ErrItemNotFound, got %v", err)
	}
}
