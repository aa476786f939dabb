package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/service"
)

// AdminUserHandler serves the /admin/users endpoints. Routes are mounted
// behind Authenticate and RequireAdmin.
type AdminUserHandler struct {
	svc *service.UserService
}

// NewAdminUserHandler binds the admin endpoints to the user service.
func NewAdminUserHandler(svc *service.UserService) *AdminUserHandler {
	return &AdminUserHandler{svc: svc}
}

type updateUserReq struct {
	Name     *string `json:"name" validate:"omitempty,min=6"`
	Email    *string `json:"email" validate:"omitempty,email,min=6"`
	Password *string `json:"password" validate:"omitempty,min=6"`
	Role     *string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

type userEnvelope struct {
	Message string      `json:"message,omitempty"`
	User    *model.User `json:"user"`
}

// List handles GET /api/v1/admin/users and returns every non-deleted user.
func (h *AdminUserHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.svc.List(ctx)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users})
}

// Get handles GET /api/v1/admin/users/:id.
func (h *AdminUserHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.svc.Get(ctx, id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{User: u})
}

// Update applies a partial update. Omitted fields stay as they are.
func (h *AdminUserHandler) Update(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	targetID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	var req updateUserReq
	if err := bindAndValidate(c, &req, func() {
		trimPtr(req.Name)
		trimPtr(req.Email)
		trimPtr(req.Password)
		trimPtr(req.Role)
	}); err != nil {
		return err
	}

	in := service.UpdateInput{Name: req.Name, Email: req.Email, Password: req.Password}
	if req.Role != nil {
		role := model.Role(*req.Role)
		in.Role = &role
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.svc.Update(ctx, actor, targetID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{Message: service.MsgUserUpdated, User: u})
}

// Delete handles DELETE /api/v1/admin/users/:id and soft-deletes another user.
func (h *AdminUserHandler) Delete(c echo.Context) error {
	actor, err := identity(c)
	if err != nil {
		return err
	}
	targetID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.svc.Delete(ctx, actor, targetID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, userEnvelope{Message: service.MsgUserDeleted, User: u})
}
