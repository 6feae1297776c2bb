package middleware // package middleware holds the Echo middleware shared by the /api routes

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-enrollment-api/internal/utils"
)

// UserIDKey is the context key under which JWTAuth stores the caller's id
// as a uint64.
const UserIDKey = "user_id"

// JWTAuth returns an Echo middleware that validates a Bearer access token.
// On success the numeric subject is stored under UserIDKey so handlers can
// read it with c.Get. Any failure responds 401 without calling next.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(UserIDKey, id)
			return next(c)
		}
	}
}
