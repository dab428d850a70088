package router // package router defines how HTTP routes are registered for the API

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/handler"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/model"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Auth      *handler.AuthHandler
	Menu      *handler.MenuHandler
	Orders    *handler.OrderHandler
	Reports   *handler.ReportHandler
	Employees *handler.EmployeeHandler
}

var (
	anyRole   = []string{string(model.RoleAdmin), string(model.RoleStaff)}
	adminOnly = []string{string(model.RoleAdmin)}
)

// MenuCacheConfig is the cache namespace of the menu pages.  MenuHandler
// invalidates the same prefix on writes.
func MenuCacheConfig(cfg config.CacheConfig) config.CacheConfig {
	return cfg.WithPrefix("menu")
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the /v1 API.  Login is public; everything else
// needs a valid access token, and reports, menu changes, refunds and the
// staff list additionally need the admin role.  rdb may be nil, which
// turns the cache and the rate limiter into pass-throughs.
func RegisterAPI(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client, log *slog.Logger) {
	limit := middleware.NewTokenBucket(cfg.RateLimit, rdb, log)
	menuCache := middleware.NewRedisCache(MenuCacheConfig(cfg.Cache), rdb, log)

	e.POST("/v1/auth/login", h.Auth.Login, limit)

	// limiter runs after JWTAuth so that it can key on the employee
	v1 := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret), limit)
	staff := v1.Group("", middleware.RequireRole(anyRole...))
	admin := v1.Group("", middleware.RequireRole(adminOnly...))

	staff.GET("/me", h.Auth.Me)

	// ---- Menu ----
	staff.GET("/menu", h.Menu.ListItems, menuCache)
	staff.GET("/menu/:id", h.Menu.GetItem, menuCache)
	admin.POST("/menu", h.Menu.AddItem)
	admin.PATCH("/menu/:id/price", h.Menu.UpdatePrice)

	// ---- Orders ----
	staff.POST("/orders", h.Orders.CreateOrder)
	staff.GET("/orders/:id", h.Orders.GetOrder)
	staff.GET("/orders/:id/lines", h.Orders.GetOrderLines)
	staff.POST("/orders/:id/lines", h.Orders.AddLine)
	staff.POST("/orders/:id/confirm", h.Orders.ConfirmOrder)
	staff.DELETE("/orders/:id", h.Orders.DeleteOrder)

	// ---- Payments ----
	staff.POST("/orders/:id/payments", h.Orders.RecordPayment)
	staff.GET("/orders/:id/transactions", h.Orders.ListTransactions)
	admin.POST("/orders/:id/refunds", h.Orders.RecordRefund)

	// ---- Tables ----
	staff.GET("/tables", h.Orders.ListTables)
	staff.GET("/tables/:number/order", h.Orders.GetTableOrder)
	staff.POST("/tables/:number/items", h.Orders.AddToTable)

	// ---- Reports ----
	admin.GET("/reports/daily", h.Reports.Daily)

	// ---- Employees ----
	admin.GET("/employees", h.Employees.List)
	admin.POST("/employees", h.Employees.Add)
	admin.DELETE("/employees/:id", h.Employees.Remove)
}
