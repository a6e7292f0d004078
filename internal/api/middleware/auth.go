package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

// Context keys set by Auth.
const (
	IdentityKey = "identity" // domain.Identity
	TokenKey    = "token"    // *ports.VerifiedToken
	RoleKey     = "role"     // string
)

// TokenCookie is the cookie carrying the access token.
const TokenCookie = "token"

// Auth authenticates the request and injects the caller identity into the
// context. The token cookie takes precedence over the Authorization header.
func Auth(verifier ports.TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := extractToken(c)
			if raw == "" {
				return domain.ErrMissingToken
			}

			verified, err := verifier.Verify(c.Request().Context(), raw)
			if err != nil {
				return domain.ErrInvalidToken
			}

			c.Set(IdentityKey, verified.Identity)
			c.Set(TokenKey, verified)
			c.Set(RoleKey, string(verified.Identity.Role))

			return next(c)
		}
	}
}

func extractToken(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
