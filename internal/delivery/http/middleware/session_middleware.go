package middleware

import (
	"strings"

	deliverycontext "chrono/internal/delivery/context"

	"github.com/labstack/echo/v4"
)

// SessionMiddleware lifts a presented Bearer token off the request and binds
// it to the request context. It never judges the token: unknown, expired or
// missing tokens flow through untouched and resolution fails closed inside
// the use case layer, so handlers cannot accidentally run half-authorized.
type SessionMiddleware struct{}

// NewSessionMiddleware is the constructor for SessionMiddleware.
func NewSessionMiddleware() *SessionMiddleware {
	return &SessionMiddleware{}
}

// BindToken extracts the Bearer token, if any, and binds it to the context of
// this one request.
func (m *SessionMiddleware) BindToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader {
			return next(c)
		}

		ctx := deliverycontext.WithSessionToken(c.Request().Context(), token)
		c.SetRequest(c.Request().WithContext(ctx))

		return next(c)
	}
}
