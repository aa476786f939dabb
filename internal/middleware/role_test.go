package middleware

import (
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/model"
)

func withIdentity(id model.Identity) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			SetIdentity(c, id)
			return next(c)
		}
	}
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		role model.Role
		want int
	}{
		{model.RoleAdmin, http.StatusOK},
		{model.RoleUser, http.StatusUnauthorized},
		{"ROOT", http.StatusUnauthorized},
		{"admin", http.StatusUnauthorized},
		{"", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			e, _ := newServer(withIdentity(model.Identity{UserID: 1, Role: tt.role}), RequireAdmin())
			rec := do(e, http.MethodGet, "/protected", "")
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
			if tt.want == http.StatusUnauthorized {
				env := decodeEnvelope(t, rec)
				if env.Message != apperr.MsgAdminsOnly || env.ErrorCode != http.StatusUnauthorized {
					t.Errorf("unexpected envelope %+v", env)
				}
			}
		})
	}
}

func TestRequireAdmin_WithoutIdentity(t *testing.T) {
	e, _ := newServer(RequireAdmin())
	if rec := do(e, http.MethodGet, "/protected", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
