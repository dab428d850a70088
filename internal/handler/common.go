package handler // handler defines the HTTP boundary of the POS

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/middleware"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
)

// requestTimeout bounds every unit of work started by a handler.
const requestTimeout = 5 * time.Second

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

var errNoIdentity = errors.New("no employee in context")

// getUserID returns the employee id JWTAuth stored in the context.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.EmployeeID(c)
	if !ok {
		return 0, errNoIdentity
	}
	return id, nil
}

// pathID parses a positive integer path parameter.
func pathID(c echo.Context, name string) (uint64, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return n, true
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
}

// writeError maps service and repository errors onto HTTP responses.
// Unexpected errors are logged and answered with a generic 500.
func writeError(c echo.Context, log *slog.Logger, err error) error {
	if ve, ok := service.AsValidation(err); ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Message, "field": ve.Field})
	}
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrConflict), errors.Is(err, repository.ErrInvalidState):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidAmount):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "request timed out"})
	}
	rid, _ := c.Get("request_id").(string)
	log.Error("request_failed",
		slog.String("request_id", rid),
		slog.String("route", c.Path()),
		logger.Err(err))
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}
