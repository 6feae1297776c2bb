package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user for rate limit keys. Routes
// that run before JWTAuth, or anonymous public reads, yield "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get(UserIDKey).(type) {
	case uint64:
		if v > 0 {
			return strconv.FormatUint(v, 10)
		}
	case string:
		if v != "" {
			return v
		}
	}
	return "anon"
}
