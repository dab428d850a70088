package middleware

// identity.go holds the helpers that read what JWTAuth stored in the Echo
// context.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// EmployeeID returns the authenticated employee, if any.
func EmployeeID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ContextEmployeeID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated employee's role or "".
func Role(c echo.Context) string {
	r, _ := c.Get(ContextRole).(string)
	return r
}

// currentUserID is the key segment used by the rate limiter; requests
// without a token share "anon".
func currentUserID(c echo.Context) string {
	if id, ok := EmployeeID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
