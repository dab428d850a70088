package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// MenuHandler serves the catalog.  Writes drop the cached menu pages
// stored under CachePrefix; Redis may be nil.
type MenuHandler struct {
	Catalog     *service.MenuCatalog
	Redis       *redis.Client
	CachePrefix string
	Log         *slog.Logger
}

func NewMenuHandler(catalog *service.MenuCatalog, rdb *redis.Client, cachePrefix string, log *slog.Logger) *MenuHandler {
	return &MenuHandler{Catalog: catalog, Redis: rdb, CachePrefix: cachePrefix, Log: log}
}

// ListItems handles GET /v1/menu.
func (h *MenuHandler) ListItems(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	items, err := h.Catalog.ListItems(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetItem handles GET /v1/menu/:id.
func (h *MenuHandler) GetItem(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid menu item id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	item, err := h.Catalog.GetItem(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, item)
}

// AddItem handles POST /v1/menu (admin).
func (h *MenuHandler) AddItem(c echo.Context) error {
	var body struct {
		Name        string  `json:"name"`
		Category    string  `json:"category"`
		Price       string  `json:"price"` // "4.50"
		Description *string `json:"description"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	price, err := money.Parse(body.Price)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price", "field": "price"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	item, err := h.Catalog.AddItem(ctx, model.MenuItem{
		Name:        body.Name,
		Category:    body.Category,
		Price:       price,
		Description: body.Description,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusCreated, item)
}

// UpdatePrice handles PATCH /v1/menu/:id/price (admin).
func (h *MenuHandler) UpdatePrice(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid menu item id")
	}
	var body struct {
		Price string `json:"price"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	price, err := money.Parse(body.Price)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid price", "field": "price"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	item, err := h.Catalog.UpdatePrice(ctx, id, price)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	h.invalidate(ctx)
	return c.JSON(http.StatusOK, item)
}

func (h *MenuHandler) invalidate(ctx context.Context) {
	n, err := middleware.InvalidateCache(ctx, h.Redis, h.CachePrefix)
	if err != nil {
		h.Log.Warn("menu_cache_invalidate_failed", logger.Err(err))
		return
	}
	if n > 0 {
		h.Log.Debug("menu_cache_invalidated", slog.Int("keys", n))
	}
}
