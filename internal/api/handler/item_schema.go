package handler

import "time"

// Idempotency headers for POST /items.
const (
	HeaderIdempotencyKey     = "Idempotency-Key"
	HeaderIdempotentReplayed = "Idempotent-Replayed"
	maxIdempotencyKeyLength  = 128
)

type createItemRequest struct {
	Title    string   `json:"title" validate:"required,max=200"`
	ItemType string   `json:"item_type" validate:"required,oneof=bookmark snippet note"`
	Content  string   `json:"content" validate:"required"`
	Tags     []string `json:"tags" validate:"omitempty,max=50,dive,required,max=50"`
}

// updateItemRequest carries the allow-listed fields only. Any other key in
// the body, including id, owner and created_at, fails strict decoding.
type updateItemRequest struct {
	Title    *string   `json:"title"`
	ItemType *string   `json:"item_type"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
}

type itemResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	ItemType  string    `json:"item_type"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}
