package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/cinema-booking-wizard/internal/identity"
)

// Identity returns an Echo middleware that reads an optional Bearer token,
// verifies it with secret and stores the resulting identity in the request
// context.  Browsing the wizard never requires a token, so a request
// without one passes through anonymously; Confirm rejects it later.  A
// token that is present but invalid is answered with 401 so clients notice
// an expired session before reaching the payment step.
func Identity(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				return next(c)
			}
			// Anything other than "Bearer <token>" is a malformed header.
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			id, err := identity.Parse(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized", "message": "invalid token"})
			}

			// Downstream handlers read the identity from the request
			// context; user_id feeds the rate limiter key.
			req := c.Request()
			c.SetRequest(req.WithContext(identity.NewContext(req.Context(), id)))
			c.Set("user_id", id.Phone)
			return next(c)
		}
	}
}
