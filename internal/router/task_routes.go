package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/handler"
)

// RegisterTasks registers the caller's task endpoints. Any authenticated
// role may use them; cache runs after authn so entries are keyed per user.
func RegisterTasks(e *echo.Echo, h *handler.TaskHandler, authn, cache echo.MiddlewareFunc) {
	g := e.Group(APIPrefix+"/tasks", authn, cache)

	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}
