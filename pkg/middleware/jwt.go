package middleware

import (
	"context"
	"strings"

	"PlacementHub/internal/apperr"
	"PlacementHub/internal/auth"

	"github.com/labstack/echo/v4"
)

// Authenticator resolves a bearer session token to its account.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Account, error)
}

// RequireSession rejects requests without a valid session token and stores
// the caller's account under auth.ContextAccountKey.
func RequireSession(authenticator Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return apperr.Unauthorized("Not authorized, no token")
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
			if token == "" {
				return apperr.Unauthorized("Not authorized, no token")
			}

			account, err := authenticator.Authenticate(c.Request().Context(), token)
			if err != nil {
				return err
			}
			c.Set(auth.ContextAccountKey, account)
			return next(c)
		}
	}
}
