package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/gabrielmilitaosantos/acquisitions/internal/core/domain"
)

// RBAC enforces role-based access control. It must run after Auth.
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get(RoleKey).(string)
			if role == "" {
				return domain.ErrMissingToken
			}
			if _, ok := allowed[role]; !ok {
				return &domain.ForbiddenError{Reason: domain.ReasonNotAdmin, Message: "Insufficient permissions"}
			}
			return next(c)
		}
	}
}
