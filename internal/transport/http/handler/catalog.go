package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ErlanBelekov/course-signup/internal/domain"
	"github.com/gin-gonic/gin"
)

type catalogUsecaser interface {
	GetItem(ctx context.Context, name string) (*domain.Item, error)
	ListItems(ctx context.Context) ([]*domain.Item, error)
	CreateItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	PutItem(ctx context.Context, item *domain.Item) (*domain.Item, error)
	DeleteItem(ctx context.Context, name string) error

	GetStore(ctx context.Context, name string) (*domain.Store, error)
	ListStores(ctx context.Context) ([]*domain.Store, error)
	CreateStore(ctx context.Context, name string) (*domain.Store, error)
	DeleteStore(ctx context.Context, name string) error
}

type CatalogHandler struct {
	catalog catalogUsecaser
	logger  *slog.Logger
}

func NewCatalogHandler(catalog catalogUsecaser, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, logger: logger.With("component", "catalog_handler")}
}

type itemRequest struct {
	Price   float64 `json:"price"    binding:"gte=0"`
	StoreID int64   `json:"store_id" binding:"required"`
}

type itemResponse struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Price   float64 `json:"price"`
	StoreID int64   `json:"store_id"`
}

type storeResponse struct {
	ID    int64          `json:"id"`
	Name  string         `json:"name"`
	Items []itemResponse `json:"items"`
}

func toItemResponse(it *domain.Item) itemResponse {
	return itemResponse{ID: it.ID, Name: it.Name, Price: it.Price, StoreID: it.StoreID}
}

func toStoreResponse(s *domain.Store) storeResponse {
	items := make([]itemResponse, len(s.Items))
	for i, it := range s.Items {
		items[i] = toItemResponse(it)
	}
	return storeResponse{ID: s.ID, Name: s.Name, Items: items}
}

// GET /item/:name
func (h *CatalogHandler) GetItem(c *gin.Context) {
	item, err := h.catalog.GetItem(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, "get item", err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item))
}

// POST /item/:name
func (h *CatalogHandler) CreateItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.catalog.CreateItem(c.Request.Context(), &domain.Item{
		Name: c.Param("name"), Price: req.Price, StoreID: req.StoreID,
	})
	if err != nil {
		h.writeError(c, "create item", err)
		return
	}
	c.JSON(http.StatusCreated, toItemResponse(item))
}

// PUT /item/:name
func (h *CatalogHandler) PutItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	item, err := h.catalog.PutItem(c.Request.Context(), &domain.Item{
		Name: c.Param("name"), Price: req.Price, StoreID: req.StoreID,
	})
	if err != nil {
		h.writeError(c, "put item", err)
		return
	}
	c.JSON(http.StatusOK, toItemResponse(item))
}

// DELETE /item/:name
func (h *CatalogHandler) DeleteItem(c *gin.Context) {
	if err := h.catalog.DeleteItem(c.Request.Context(), c.Param("name")); err != nil {
		h.writeError(c, "delete item", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Item deleted"})
}

// GET /items
// Authenticated callers get full items; anonymous callers only the names.
func (h *CatalogHandler) ListItems(c *gin.Context) {
	items, err := h.catalog.ListItems(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "list items", err)
		return
	}

	if _, ok := c.Get("userID"); !ok {
		names := make([]string, len(items))
		for i, it := range items {
			names[i] = it.Name
		}
		c.JSON(http.StatusOK, gin.H{"items": names, "message": "More data available if you log in."})
		return
	}

	resp := make([]itemResponse, len(items))
	for i, it := range items {
		resp[i] = toItemResponse(it)
	}
	c.JSON(http.StatusOK, gin.H{"items": resp})
}

// GET /store/:name
func (h *CatalogHandler) GetStore(c *gin.Context) {
	store, err := h.catalog.GetStore(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, "get store", err)
		return
	}
	c.JSON(http.StatusOK, toStoreResponse(store))
}

// POST /store/:name
func (h *CatalogHandler) CreateStore(c *gin.Context) {
	store, err := h.catalog.CreateStore(c.Request.Context(), c.Param("name"))
	if err != nil {
		h.writeError(c, "create store", err)
		return
	}
	c.JSON(http.StatusCreated, toStoreResponse(store))
}

// DELETE /store/:name
func (h *CatalogHandler) DeleteStore(c *gin.Context) {
	if err := h.catalog.DeleteStore(c.Request.Context(), c.Param("name")); err != nil {
		h.writeError(c, "delete store", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Store deleted"})
}

// GET /stores
func (h *CatalogHandler) ListStores(c *gin.Context) {
	stores, err := h.catalog.ListStores(c.Request.Context())
	if err != nil {
		internalError(c, h.logger, "list stores", err)
		return
	}
	resp := make([]storeResponse, len(stores))
	for i, s := range stores {
		resp[i] = toStoreResponse(s)
	}
	c.JSON(http.StatusOK, gin.H{"stores": resp})
}

func (h *CatalogHandler) writeError(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errItemNotFound})
	case errors.Is(err, domain.ErrItemExists):
		c.JSON(http.StatusConflict, gin.H{"error": errItemExists})
	case errors.Is(err, domain.ErrStoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": errStoreNotFound})
	case errors.Is(err, domain.ErrStoreExists):
		c.JSON(http.StatusConflict, gin.H{"error": errStoreExists})
	default:
		internalError(c, h.logger, op, err, "name", c.Param("name"))
	}
}
