package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/model"
)

// RequireRole returns a middleware that lets the request through only when
// allow accepts the authenticated role. It must run after Authenticate.
func RequireRole(message string, allow func(model.Role) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, ok := IdentityFrom(c)
			if !ok || !allow(id.Role) {
				return apperr.Unauthorized(message)
			}
			return next(c)
		}
	}
}

// RequireAdmin admits only ADMIN. There is no role hierarchy.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(apperr.MsgAdminsOnly, model.Role.IsAdmin)
}
