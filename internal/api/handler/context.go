package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/api/middleware"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
	"github.com/gabrielmilitaosantos/acquisitions/internal/core/ports"
)

// ctxIdentity extracts the identity injected by the Auth middleware. A
// missing identity means the route was mounted without Auth.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	identity, ok := c.Get(middleware.IdentityKey).(domain.Identity)
	if !ok || identity.ID <= 0 {
		return domain.Identity{}, domain.ErrMissingToken
	}
	return identity, nil
}

func ctxToken(c echo.Context) (*ports.VerifiedToken, error) {
	token, ok := c.Get(middleware.TokenKey).(*ports.VerifiedToken)
	if !ok || token == nil {
		return nil, domain.ErrMissingToken
	}
	return token, nil
}
