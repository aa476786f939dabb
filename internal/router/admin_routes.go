package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/handler"
	"github.com/iliyamo/todo-api/internal/middleware"
)

// RegisterAdmin registers ADMIN-scoped user management under
// /api/v1/admin. Authentication always runs before the role gate.
func RegisterAdmin(e *echo.Echo, h *handler.AdminUserHandler, authn echo.MiddlewareFunc) {
	g := e.Group(APIPrefix+"/admin", authn, middleware.RequireAdmin())

	g.GET("/users", h.List)
	g.GET("/users/:id", h.Get)
	g.PATCH("/users/:id", h.Update)
	g.DELETE("/users/:id", h.Delete)
}
