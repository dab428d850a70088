package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/model"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// EmployeeHandler is the admin view of the staff list.
type EmployeeHandler struct {
	Staff *service.Staff
	Log   *slog.Logger
}

func NewEmployeeHandler(staff *service.Staff, log *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{Staff: staff, Log: log}
}

// List handles GET /v1/employees.
func (h *EmployeeHandler) List(c echo.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	list, err := h.Staff.ListEmployees(ctx)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// Add handles POST /v1/employees.
func (h *EmployeeHandler) Add(c echo.Context) error {
	var body struct {
		Name string `json:"name"`
		Role string `json:"role"`
		PIN  string `json:"pin"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	e, err := h.Staff.AddEmployee(ctx, body.Name, model.Role(strings.ToLower(strings.TrimSpace(body.Role))), body.PIN)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, e)
}

// Remove handles DELETE /v1/employees/:id.
func (h *EmployeeHandler) Remove(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid employee id")
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Staff.RemoveEmployee(ctx, id); err != nil {
		return writeError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
