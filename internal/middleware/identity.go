package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking-wizard/internal/identity"
)

// customerPhone is the phone of the signed-in caller, or "" for anonymous
// requests.
func customerPhone(c echo.Context) string {
	if id := identity.FromContext(c.Request().Context()); id.Phone != "" {
		return id.Phone
	}
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}
