package router // package router builds the echo instance and registers the API routes

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/handler"
	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/validation"
)

// APIPrefix is the base path of every versioned endpoint.
const APIPrefix = "/api/v1"

// NewEcho returns an echo instance with the error envelope, the validator
// and the global middleware chain installed. Request ids are UUIDs; the
// request logger sits inside RequestID so every line carries the id, and
// Recover sits inside the logger so panics are logged as 500s.
func NewEcho(log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = apperr.HTTPErrorHandler(log)
	e.Validator = validation.New()

	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	e.Use(echomw.Recover())
	return e
}

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only the health check.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the identity lifecycle endpoints. Signup and login
// are public; logout and me run behind authn.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, authn echo.MiddlewareFunc) {
	g := e.Group(APIPrefix + "/auth")
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout, authn)
	g.GET("/me", a.Me, authn)
}
