package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/stashly/stash-api/internal/core/domain"
	"github.com/stashly/stash-api/internal/core/ports"
)

type ItemHandler struct {
	itemService ports.ItemService
}

func NewItemHandler(itemService ports.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// CreateItem stores a new item owned by the caller.
//
// @Summary      Create an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string             false  "Client key to make retries safe"
// @Param        body             body      createItemRequest  true   "Item payload"
// @Success      201              {object}  itemResponse
// @Failure      400              {object}  map[string]string
// @Failure      401              {object}  map[string]string
// @Router       /items [post]
func (h *ItemHandler) CreateItem(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createItemRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	key := strings.TrimSpace(c.Request().Header.Get(HeaderIdempotencyKey))
	if len(key) > maxIdempotencyKeyLength {
		return fmt.Errorf("%w: %s must be at most %d characters", domain.ErrValidation, HeaderIdempotencyKey, maxIdempotencyKeyLength)
	}

	result, err := h.itemService.CreateItem(c.Request().Context(), ports.CreateItemInput{
		OwnerID:        ownerID,
		Title:          req.Title,
		ItemType:       req.ItemType,
		Content:        req.Content,
		Tags:           req.Tags,
		IdempotencyKey: key,
	})
	if err != nil {
		return err
	}

	if result.AlreadyExisted {
		c.Response().Header().Set(HeaderIdempotentReplayed, "true")
	}
	return c.JSON(http.StatusCreated, toItemResponse(result.Item))
}

// ListItems returns the caller's items.
//
// @Summary      List items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Case-insensitive title substring"
// @Param        type    query     string  false  "bookmark, snippet, note or all"
// @Param        sort    query     string  false  "date_desc (default), date_asc, title_asc, title_desc"
// @Success      200     {array}   itemResponse
// @Failure      401     {object}  map[string]string
// @Router       /items [get]
func (h *ItemHandler) ListItems(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	items, err := h.itemService.ListItems(c.Request().Context(), ports.ListItemsInput{
		OwnerID:  ownerID,
		Search:   c.QueryParam("search"),
		ItemType: c.QueryParam("type"),
		Sort:     c.QueryParam("sort"),
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toItemResponses(items))
}

// GetItem returns one item owned by the caller.
//
// @Summary      Get an item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  itemResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /items/{id} [get]
func (h *ItemHandler) GetItem(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	item, err := h.itemService.GetItem(c.Request().Context(), ownerID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toItemResponse(item))
}

// UpdateItem applies a partial update to one of the caller's items.
//
// @Summary      Update an item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Item ID"
// @Param        body  body      updateItemRequest  true  "Fields to change"
// @Success      200   {object}  itemResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /items/{id} [put]
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateItemRequest
	if err := bindStrict(c, &req); err != nil {
		return err
	}

	item, err := h.itemService.UpdateItem(c.Request().Context(), ports.UpdateItemInput{
		OwnerID:  ownerID,
		ItemID:   c.Param("id"),
		Title:    req.Title,
		ItemType: req.ItemType,
		Content:  req.Content,
		Tags:     req.Tags,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toItemResponse(item))
}

// DeleteItem removes one of the caller's items.
//
// @Summary      Delete an item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item ID"
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /items/{id} [delete]
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.itemService.DeleteItem(c.Request().Context(), ownerID, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Msg: "Item deleted successfully"})
}
