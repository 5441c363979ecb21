package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stashly/stash-api/internal/core/domain"
	"github.com/stashly/stash-api/internal/core/ports"
)

const collectionItems = "items"

// ItemRepository implements ports.ItemRepository. Every single-item query
// filters on {_id, owner} together, so the ownership check and the read or
// write happen in one atomic server-side operation.
type ItemRepository struct {
	col *mongo.Collection
}

func NewItemRepository(db *mongo.Database) *ItemRepository {
	return &ItemRepository{col: db.Collection(collectionItems)}
}

type mongoItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Owner     primitive.ObjectID `bson:"owner"`
	Title     string             `bson:"title"`
	ItemType  string             `bson:"item_type"`
	Content   string             `bson:"content"`
	Tags      []string           `bson:"tags"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (m mongoItem) toDomain() *domain.Item {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return &domain.Item{
		ID:        m.ID.Hex(),
		OwnerID:   m.Owner.Hex(),
		Title:     m.Title,
		ItemType:  domain.ItemType(m.ItemType),
		Content:   m.Content,
		Tags:      tags,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

// Create inserts a new item document and returns it with its generated id.
func (r *ItemRepository) Create(ctx context.Context, it *domain.Item) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	owner, err := primitive.ObjectIDFromHex(it.OwnerID)
	if err != nil {
		return nil, fmt.Errorf("insert item: invalid owner id %q", it.OwnerID)
	}

	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := mongoItem{
		ID:        primitive.NewObjectID(),
		Owner:     owner,
		Title:     it.Title,
		ItemType:  string(it.ItemType),
		Content:   it.Content,
		Tags:      tags,
		CreatedAt: it.CreatedAt.UTC(),
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	return doc.toDomain(), nil
}

// FindByID retrieves one item owned by ownerID.
func (r *ItemRepository) FindByID(ctx context.Context, ownerID, itemID string) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, ok := ownedFilter(ownerID, itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}

	var m mongoItem
	if err := r.col.FindOne(ctx, filter).Decode(&m); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	return m.toDomain(), nil
}

// List returns the owner's items matching filter in the requested order.
func (r *ItemRepository) List(ctx context.Context, f ports.ListItemsFilter) ([]*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query, ok := listFilter(f)
	if !ok {
		return []*domain.Item{}, nil
	}

	cur, err := r.col.Find(ctx, query, options.Find().SetSort(sortSpec(f.Sort)))
	if err != nil {
		return nil, fmt.Errorf("find items: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoItem
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}

	out := make([]*domain.Item, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

// Update applies changes with a single FindOneAndUpdate on {_id, owner} and
// returns the document as it is after the update.
func (r *ItemRepository) Update(ctx context.Context, ownerID, itemID string, changes ports.ItemChanges) (*domain.Item, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, ok := ownedFilter(ownerID, itemID)
	if !ok {
		return nil, domain.ErrItemNotFound
	}
	set := updateSet(changes)
	if len(set) == 0 {
		return r.FindByID(ctx, ownerID, itemID)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var m mongoItem
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrItemNotFound
		}
		return nil, fmt.Errorf("update item: %w", err)
	}
	return m.toDomain(), nil
}

// Delete removes one item owned by ownerID.
func (r *ItemRepository) Delete(ctx context.Context, ownerID, itemID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter, ok := ownedFilter(ownerID, itemID)
	if !ok {
		return domain.ErrItemNotFound
	}

	res, err := r.col.DeleteOne(ctx, filter)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// EnsureIndexes creates the indexes backing owner-scoped listing and sorting.
func (r *ItemRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "owner", Value: 1}, {Key: "item_type", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// ownedFilter builds the compound {_id, owner} filter. Malformed ids cannot
// match any document, so ok is false and callers answer NotFound.
func ownedFilter(ownerID, itemID string) (bson.M, bool) {
	oid, err := primitive.ObjectIDFromHex(itemID)
	if err != nil {
		return nil, false
	}
	owner, err := primitive.ObjectIDFromHex(ownerID)
	if err != nil {
		return nil, false
	}
	return bson.M{"_id": oid, "owner": owner}, true
}

func listFilter(f ports.ListItemsFilter) (bson.M, bool) {
	owner, err := primitive.ObjectIDFromHex(f.OwnerID)
	if err != nil {
		return nil, false
	}

	q := bson.M{"owner": owner}
	if f.Search != "" {
		q["title"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.ItemType != "" {
		q["item_type"] = string(f.ItemType)
	}
	return q, true
}

// sortSpec maps a SortOrder to a Mongo sort document. _id breaks ties in the
// same direction so equal titles or timestamps still order deterministically.
func sortSpec(order domain.SortOrder) bson.D {
	switch order {
	case domain.SortTitleAsc:
		return bson.D{{Key: "title", Value: 1}, {Key: "_id", Value: 1}}
	case domain.SortTitleDesc:
		return bson.D{{Key: "title", Value: -1}, {Key: "_id", Value: -1}}
	case domain.SortDateAsc:
		return bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}
	}
}

// updateSet converts the allow-listed changes to a $set document. Only these
// four fields can ever be written by an update.
func updateSet(c ports.ItemChanges) bson.M {
	set := bson.M{}
	if c.Title != nil {
		set["title"] = *c.Title
	}
	if c.ItemType != nil {
		set["item_type"] = string(*c.ItemType)
	}
	if c.Content != nil {
		set["content"] = *c.Content
	}
	if c.Tags != nil {
		tags := *c.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	return set
}
