package middleware

// identity.go holds the helpers that store and read the authenticated
// identity on the echo context. Handlers and downstream middleware use
// IdentityFrom instead of poking at context keys directly.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/model"
)

const identityKey = "identity"

// SetIdentity attaches the authenticated identity to the request.
func SetIdentity(c echo.Context, id model.Identity) {
	c.Set(identityKey, id)
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok
}

// userID returns the authenticated user id as a string, or "guest" when
// the request carries no identity.
func userID(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok && id.UserID != 0 {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "guest"
}
