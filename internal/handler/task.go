package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/repository"
)

const msgTaskNotFound = "task not found"

// TaskStore is the task repository as seen by the handler. Every call is
// scoped by the owner id.
type TaskStore interface {
	Create(ctx context.Context, t *model.Task) (*model.Task, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Task, error)
	GetByIDAndUser(ctx context.Context, id, userID uint64) (*model.Task, error)
	Update(ctx context.Context, t *model.Task) (*model.Task, error)
	DeleteByIDAndUser(ctx context.Context, id, userID uint64) error
}

// TaskHandler serves the caller's own tasks.
type TaskHandler struct {
	Tasks TaskStore
}

// NewTaskHandler returns a TaskHandler backed by the given store.
func NewTaskHandler(tasks TaskStore) *TaskHandler { return &TaskHandler{Tasks: tasks} }

type createTaskReq struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Completed   bool   `json:"completed"`
}

type updateTaskReq struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Completed   *bool   `json:"completed"`
}

// taskErr maps repository errors; a task owned by someone else is reported
// exactly like a missing one.
func taskErr(err error) error {
	if errors.Is(err, repository.ErrTaskNotFound) {
		return apperr.NotFound(msgTaskNotFound)
	}
	return apperr.Internal(err)
}

// List handles GET /api/v1/tasks and returns the caller's tasks, newest first.
func (h *TaskHandler) List(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	tasks, err := h.Tasks.ListByUser(ctx, id.UserID)
	if err != nil {
		return taskErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tasks": tasks})
}

// Create handles POST /api/v1/tasks and stores a task owned by the caller.
func (h *TaskHandler) Create(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	var req createTaskReq
	if err := bindAndValidate(c, &req, func() { req.Title = strings.TrimSpace(req.Title) }); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tasks.Create(ctx, &model.Task{
		UserID:      id.UserID,
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		return taskErr(err)
	}
	return c.JSON(http.StatusCreated, t)
}

// Get handles GET /api/v1/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := parseID(c, "id", "task")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tasks.GetByIDAndUser(ctx, taskID, id.UserID)
	if err != nil {
		return taskErr(err)
	}
	return c.JSON(http.StatusOK, t)
}

// Update handles PATCH /api/v1/tasks/:id. Omitted fields keep their values.
func (h *TaskHandler) Update(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := parseID(c, "id", "task")
	if err != nil {
		return err
	}
	var req updateTaskReq
	if err := bindAndValidate(c, &req, func() { trimPtr(req.Title) }); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	t, err := h.Tasks.GetByIDAndUser(ctx, taskID, id.UserID)
	if err != nil {
		return taskErr(err)
	}
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Completed != nil {
		t.Completed = *req.Completed
	}
	updated, err := h.Tasks.Update(ctx, t)
	if err != nil {
		return taskErr(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/v1/tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	id, err := identity(c)
	if err != nil {
		return err
	}
	taskID, err := parseID(c, "id", "task")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Tasks.DeleteByIDAndUser(ctx, taskID, id.UserID); err != nil {
		return taskErr(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Task deleted successfully"})
}
