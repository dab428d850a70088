package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/money"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

type paymentReq struct {
	Method       string       `json:"method"`
	AmountCents  money.Cents  `json:"amount_cents"`
	TipCents     money.Cents  `json:"tip_cents"`
	CashReceived *money.Cents `json:"cash_received_cents"`
	SplitWays    int          `json:"split_ways"`
}

// RecordPayment handles POST /v1/orders/:id/payments.  The processing
// employee is the caller.
func (h *OrderHandler) RecordPayment(c echo.Context) error {
	employeeID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body paymentReq
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	res, err := h.Ledger.RecordPayment(ctx, id, service.PaymentRequest{
		Method:       model.PaymentMethod(body.Method),
		Amount:       body.AmountCents,
		Tip:          body.TipCents,
		EmployeeID:   employeeID,
		CashReceived: body.CashReceived,
		SplitWays:    body.SplitWays,
	})
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// RecordRefund handles POST /v1/orders/:id/refunds (admin).
func (h *OrderHandler) RecordRefund(c echo.Context) error {
	employeeID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	var body struct {
		AmountCents money.Cents `json:"amount_cents"`
		Reason      string      `json:"reason"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	t, err := h.Ledger.RecordRefund(ctx, id, body.AmountCents, employeeID, body.Reason)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, t)
}

// ListTransactions handles GET /v1/orders/:id/transactions.
func (h *OrderHandler) ListTransactions(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	list, err := h.Ledger.ListTransactions(ctx, id)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}
