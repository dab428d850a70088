package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// OrderHandler exposes the order lifecycle, the tables and payments.
type OrderHandler struct {
	Orders *service.OrderStore
	Ledger *service.TransactionLedger
	Log    *slog.Logger
}

func NewOrderHandler(orders *service.OrderStore, ledger *service.TransactionLedger, log *slog.Logger) *OrderHandler {
	return &OrderHandler{Orders: orders, Ledger: ledger, Log: log}
}

type lineReq struct {
	MenuItemID uint64 `json:"menu_item_id"`
	Quantity   int    `json:"quantity"`
}

type orderView struct {
	Order model.Order       `json:"order"`
	Lines []model.OrderLine `json:"lines"`
	Total money.Cents       `json:"total_cents"`
}

func tableNumber(c echo.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("number"))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// CreateOrder handles POST /v1/orders.  The authenticated employee opens
// the order.
func (h *OrderHandler) CreateOrder(c echo.Context) error {
	employeeID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Table int `json:"table"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.Table <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "table is required", "field": "table"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	o, err := h.Orders.CreateOrder(ctx, body.Table, employeeID)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, o)
}

// GetOrder handles GET /v1/orders/:id and includes lines and total.
func (h *OrderHandler) GetOrder(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	o, err := h.Orders.GetOrder(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	lines, err := h.Orders.GetOrderLines(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, orderView{Order: o, Lines: lines, Total: model.LinesTotal(lines)})
}

// GetOrderLines handles GET /v1/orders/:id/lines.
func (h *OrderHandler) GetOrderLines(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	lines, err := h.Orders.GetOrderLines(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": lines, "total_cents": model.LinesTotal(lines)})
}

// AddLine handles POST /v1/orders/:id/lines.
func (h *OrderHandler) AddLine(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body lineReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	line, err := h.Orders.AddLine(ctx, id, body.MenuItemID, body.Quantity)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, line)
}

// ConfirmOrder handles POST /v1/orders/:id/confirm and returns the
// kitchen ticket.
func (h *OrderHandler) ConfirmOrder(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	ticket, err := h.Orders.ConfirmOrder(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, ticket)
}

// DeleteOrder handles DELETE /v1/orders/:id.
func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Orders.DeleteOrder(ctx, id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type tableView struct {
	Number int          `json:"number"`
	Order  *model.Order `json:"order"`
}

// ListTables handles GET /v1/tables: every table with its active order.
func (h *OrderHandler) ListTables(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	tables, err := h.Orders.ListTables(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	out := make([]tableView, 0, len(tables))
	for _, t := range tables {
		o, found, err := h.Orders.GetActiveOrder(ctx, t.Number)
		if err != nil {
			return writeError(c, h.Log, err)
		}
		v := tableView{Number: t.Number}
		if found {
			v.Order = &o
		}
		out = append(out, v)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetTableOrder handles GET /v1/tables/:number/order.  A free table
// answers 200 with a null order.
func (h *OrderHandler) GetTableOrder(c echo.Context) error {
	n, ok := tableNumber(c)
	if !ok {
		return badRequest(c, "invalid table number")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	o, found, err := h.Orders.GetActiveOrder(ctx, n)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	v := tableView{Number: n}
	if found {
		v.Order = &o
	}
	return c.JSON(http.StatusOK, v)
}

// AddToTable handles POST /v1/tables/:number/items, opening an order on an
// empty table.
func (h *OrderHandler) AddToTable(c echo.Context) error {
	employeeID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	n, ok := tableNumber(c)
	if !ok {
		return badRequest(c, "invalid table number")
	}
	var body lineReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	o, line, err := h.Orders.AddToTable(ctx, n, employeeID, body.MenuItemID, body.Quantity)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"order": o, "line": line})
}
