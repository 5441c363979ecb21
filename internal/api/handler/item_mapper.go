package handler

import "github.com/stashly/stash-api/internal/core/domain"

func toItemResponse(it *domain.Item) itemResponse {
	tags := it.Tags
	if tags == nil {
		tags = []string{}
	}
	return itemResponse{
		ID:        it.ID,
		Title:     it.Title,
		ItemType:  string(it.ItemType),
		Content:   it.Content,
		Tags:      tags,
		CreatedAt: it.CreatedAt,
	}
}

func toItemResponses(items []*domain.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out
}
