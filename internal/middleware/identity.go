package middleware

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID extracts a stable identifier for rate-limit and cache
// keys. JWTAuth stores the raw "sub" claim, which arrives as a JSON
// number; unauthenticated requests key as "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	case uint64:
		return fmt.Sprintf("%d", v)
	}
	return "anon"
}
