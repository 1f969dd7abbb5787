package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/ecocollect/identity-service/internal/core/domain"
)

// RBAC enforces role-based access control. It runs after Authenticate, so
// the role in context is already validated; an authenticated bearer with
// the wrong role gets 403, never 401.
func RBAC(allowedRoles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
