package handler

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/middleware"
	"github.com/iliyamo/todo-api/internal/model"
)

// dbTimeout bounds the store work of a single request.
const dbTimeout = 5 * time.Second

// bindAndValidate decodes the JSON body into req, lets trim normalise it
// and then runs the registered validator.
func bindAndValidate(c echo.Context, req any, trim func()) error {
	if err := c.Bind(req); err != nil {
		return apperr.BadRequest("invalid body")
	}
	if trim != nil {
		trim()
	}
	return c.Validate(req)
}

// trimPtr trims the string behind p, if any.
func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c echo.Context, name, what string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperr.BadRequest("invalid " + what + " id")
	}
	return id, nil
}

// identity returns the identity set by the authentication middleware.
// Routes using it are always mounted behind Authenticate, so a missing
// identity is treated as unauthenticated.
func identity(c echo.Context) (model.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return model.Identity{}, apperr.Unauthorized("")
	}
	return id, nil
}
