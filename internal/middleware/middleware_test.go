package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/restaurant-pos/internal/config"
	"github.com/iliyamo/restaurant-pos/internal/logger"
	"github.com/iliyamo/restaurant-pos/internal/utils"
)

const testSecret = "test-secret"

func serve(e *echo.Echo, method, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoami(c echo.Context) error {
	id, ok := EmployeeID(c)
	return c.JSON(http.StatusOK, echo.Map{"id": id, "ok": ok, "role": Role(c)})
}

func TestJWTAuth(t *testing.T) {
	e := echo.New()
	e.GET("/me", whoami, JWTAuth(testSecret))

	if rec := serve(e, http.MethodGet, "/me", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/me", "garbage"); rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: %d", rec.Code)
	}
	other, _ := utils.NewAccessToken("other-secret", 7, "staff", 5)
	if rec := serve(e, http.MethodGet, "/me", other.Token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("foreign token: %d", rec.Code)
	}

	tok, err := utils.NewAccessToken(testSecret, 7, "staff", 5)
	if err != nil {
		t.Fatal(err)
	}
	rec := serve(e, http.MethodGet, "/me", tok.Token)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: %d %s", rec.Code, rec.Body)
	}
	var body struct {
		ID   uint64 `json:"id"`
		OK   bool   `json:"ok"`
		Role string `json:"role"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.ID != 7 || !body.OK || body.Role != "staff" {
		t.Fatalf("identity = %+v", body)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	e.GET("/admin", whoami, JWTAuth(testSecret), RequireRole("admin"))
	e.GET("/floor", whoami, JWTAuth(testSecret), RequireRole("admin", "staff"))

	staff, _ := utils.NewAccessToken(testSecret, 2, "staff", 5)
	admin, _ := utils.NewAccessToken(testSecret, 1, "admin", 5)

	if rec := serve(e, http.MethodGet, "/admin", staff.Token); rec.Code != http.StatusForbidden {
		t.Fatalf("staff on admin route: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/admin", admin.Token); rec.Code != http.StatusOK {
		t.Fatalf("admin on admin route: %d", rec.Code)
	}
	if rec := serve(e, http.MethodGet, "/floor", staff.Token); rec.Code != http.StatusOK {
		t.Fatalf("staff on floor route: %d", rec.Code)
	}
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "test", "debug")
	e := echo.New()
	e.Use(RequestLogger(log))
	e.GET("/ok", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	e.GET("/boom", func(c echo.Context) error { return echo.NewHTTPError(http.StatusTeapot, "nope") })

	rec := serve(e, http.MethodGet, "/ok", "")
	if rid := rec.Header().Get(HeaderRequestID); rid == "" {
		t.Fatal("no request id on response")
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusTeapot || rec.Header().Get(HeaderRequestID) != "abc-123" {
		t.Fatalf("code=%d rid=%q", rec.Code, rec.Header().Get(HeaderRequestID))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("log lines = %d:\n%s", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[1]), &entry); err != nil {
		t.Fatal(err)
	}
	if entry["msg"] != "request_completed" || entry["request_id"] != "abc-123" || entry["status"] != float64(http.StatusTeapot) {
		t.Fatalf("entry = %v", entry)
	}
	if entry["level"] != slog.LevelWarn.String() {
		t.Fatalf("level = %v", entry["level"])
	}
}

func TestCacheKeyIncludesParamsAndQuery(t *testing.T) {
	cfg := config.CacheConfig{Prefix: "pos:cache:menu", KeyStrategy: "route_query"}
	e := echo.New()
	key := func(target, id string) string {
		c := e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), httptest.NewRecorder())
		c.SetPath("/v1/menu/:id")
		c.SetParamNames("id")
		c.SetParamValues(id)
		return cacheKeyFrom(cfg, c)
	}
	a, b := key("/v1/menu/1", "1"), key("/v1/menu/2", "2")
	if a == b {
		t.Fatal("different items share a cache key")
	}
	if a != key("/v1/menu/1", "1") {
		t.Fatal("cache key not stable")
	}
	if !strings.HasPrefix(a, "pos:cache:menu:") {
		t.Fatalf("key %q lost its prefix", a)
	}
	if key("/v1/menu/1?x=1", "1") == a {
		t.Fatal("query ignored by route_query strategy")
	}
}

func TestPayloadEncoding(t *testing.T) {
	hdr := http.Header{"Content-Type": {"application/json"}}
	bs, err := encodePayload(http.StatusOK, hdr, []byte(`{"a":1}`))
	if err != nil {
		t.Fatal(err)
	}
	status, got, body, ok := decodePayload(bs)
	if !ok || status != http.StatusOK || got.Get("Content-Type") != "application/json" || string(body) != `{"a":1}` {
		t.Fatalf("decoded %d %v %q %v", status, got, body, ok)
	}
	if _, _, _, ok := decodePayload([]byte{0, 0}); ok {
		t.Fatal("short payload accepted")
	}
	if _, _, _, ok := decodePayload([]byte{0, 0, 0, 200, 0, 0, 1, 0}); ok {
		t.Fatal("truncated header accepted")
	}
}

func TestRedisMiddlewaresPassThroughWithoutClient(t *testing.T) {
	e := echo.New()
	calls := 0
	h := func(c echo.Context) error {
		calls++
		return c.String(http.StatusOK, "menu")
	}
	e.GET("/menu", h,
		NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil, logger.Discard()),
		NewRedisCache(config.CacheConfig{Enabled: true, Methods: map[string]bool{"GET": true}}, nil, logger.Discard()))
	for i := 0; i < 3; i++ {
		rec := serve(e, http.MethodGet, "/menu", "")
		if rec.Code != http.StatusOK || rec.Header().Get("X-Cache") != "" {
			t.Fatalf("code=%d x-cache=%q", rec.Code, rec.Header().Get("X-Cache"))
		}
	}
	if calls != 3 {
		t.Fatalf("handler called %d times", calls)
	}
	if n, err := InvalidateCache(context.Background(), nil, "pos:cache:menu"); n != 0 || err != nil {
		t.Fatalf("InvalidateCache(nil) = %d, %v", n, err)
	}
}

func TestBuildRateKey(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/orders", nil)
	req.RemoteAddr = "10.0.0.9:5555"
	c := e.NewContext(req, httptest.NewRecorder())
	c.SetPath("/v1/orders")

	cfg := config.RateLimitConfig{Prefix: "pos:rl", KeyStrategy: "ip_user"}
	if got := buildRateKey(cfg, c); got != "pos:rl:ip:10.0.0.9:user:anon" {
		t.Fatalf("anonymous key = %q", got)
	}
	c.Set(ContextEmployeeID, uint64(12))
	if got := buildRateKey(cfg, c); got != "pos:rl:ip:10.0.0.9:user:12" {
		t.Fatalf("employee key = %q", got)
	}
	cfg.KeyStrategy = "user_route"
	if got := buildRateKey(cfg, c); got != "pos:rl:user:12:route:POST /v1/orders" {
		t.Fatalf("user_route key = %q", got)
	}
}

func TestParseBucketResult(t *testing.T) {
	allowed, remaining, retry, ok := parseBucketResult([]interface{}{int64(1), int64(41), int64(0)})
	if !ok || !allowed || remaining != 41 || retry != 0 {
		t.Fatalf("got %v %d %d %v", allowed, remaining, retry, ok)
	}
	allowed, _, retry, ok = parseBucketResult([]interface{}{int64(0), int64(0), "750"})
	if !ok || allowed || retry != 750 {
		t.Fatalf("blocked result: %v %d %v", allowed, retry, ok)
	}
	if _, _, _, ok := parseBucketResult("nope"); ok {
		t.Fatal("garbage accepted")
	}
}
