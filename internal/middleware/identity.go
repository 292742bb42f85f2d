package middleware

import (
	"github.com/labstack/echo/v4"
)

// userID returns the authenticated user identifier stored in context by
// JWTAuth, or "guest" when the request carries no valid token. The rate
// limiter and response cache use it as part of their keys.
func userID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok && v != "" {
		return v
	}
	return "guest"
}
