package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/repository"
	"github.com/iliyamo/restaurant-pos/internal/service"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Staff *service.Staff
	Log   *slog.Logger
}

func NewAuthHandler(cfg config.Config, staff *service.Staff, log *slog.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Staff: staff, Log: log}
}

// ----- DTOs -----

type loginReq struct {
	Name string `json:"name"`
	PIN  string `json:"pin"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type employeePart struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type authResp struct {
	Employee employeePart `json:"employee"`
	Access   tokenPart    `json:"access"`
}

// Login: verify name and PIN and return an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PIN == "" {
		return badRequest(c, "name/pin required")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	e, err := h.Staff.Authenticate(ctx, req.Name, req.PIN)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return writeError(c, h.Log, err)
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, e.ID, string(e.Role), h.Cfg.AccessTTLMin)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, authResp{
		Employee: employeePart{ID: e.ID, Name: e.Name, Role: string(e.Role)},
		Access:   tokenPart{Token: access.Token, Expires: access.Exp},
	})
}

// Me: the employee behind the token.
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	e, err := h.Staff.GetEmployee(ctx, id)
	if err != nil {
		// token outlived its employee
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, employeePart{ID: e.ID, Name: e.Name, Role: string(e.Role)})
}
