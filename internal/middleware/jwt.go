package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/utils"
)

// SessionCookie is the name of the cookie carrying the session token.
const SessionCookie = "jwt"

// SessionFinder looks up the active session row for a subject and token.
type SessionFinder interface {
	FindActiveBySubjectAndToken(ctx context.Context, userID uint64, key string) (*model.ActiveSession, error)
}

// Authenticate returns the middleware guarding protected routes. A request
// passes only if its jwt cookie carries a token that verifies against the
// issuer AND still has an active session row for the same user. Every
// failure short of a store error answers with the same generic 401, so a
// client cannot tell an expired token from a forged or revoked one.
func Authenticate(issuer *utils.TokenIssuer, sessions SessionFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				return apperr.Unauthorized("")
			}
			raw := cookie.Value

			claims, err := issuer.Parse(raw)
			if err != nil {
				return apperr.Unauthorized("")
			}
			uid, err := claims.UserID()
			if err != nil {
				return apperr.Unauthorized("")
			}

			// The request context carries client cancellation into the lookup.
			s, err := sessions.FindActiveBySubjectAndToken(c.Request().Context(), uid, raw)
			if err != nil {
				if errors.Is(err, repository.ErrTokenNotFound) {
					return apperr.Unauthorized("")
				}
				return apperr.Internal(err)
			}

			role := s.UserRole
			if role == "" {
				role = claims.Role
			}
			SetIdentity(c, model.Identity{
				UserID:    s.UserID,
				Role:      role,
				SessionID: s.ID,
				Token:     raw,
			})
			return next(c)
		}
	}
}
