package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/service"
)

// ReportHandler serves the daily summary.
type ReportHandler struct {
	Reports *service.ReportingEngine
	Log     *slog.Logger
	now     func() time.Time
}

func NewReportHandler(reports *service.ReportingEngine, log *slog.Logger) *ReportHandler {
	return &ReportHandler{Reports: reports, Log: log, now: time.Now}
}

// Daily handles GET /v1/reports/daily?date=YYYY-MM-DD (admin).  The date is
// a calendar date in the engine's zone; it defaults to today.
func (h *ReportHandler) Daily(c echo.Context) error {
	loc := h.Reports.Location()
	day := h.now().In(loc)
	if raw := strings.TrimSpace(c.QueryParam("date")); raw != "" {
		d, err := time.ParseInLocation("2006-01-02", raw, loc)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "date must be YYYY-MM-DD", "field": "date"})
		}
		day = d
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	s, err := h.Reports.GetDailySummary(ctx, day)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, s)
}
