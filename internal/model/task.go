package model

import "time"

// Task is a todo item owned by exactly one user. Every read and write is
// scoped by UserID so one tenant never sees another tenant's tasks.
type Task struct {
	ID          uint64    `json:"id"`          // tasks.id
	UserID      uint64    `json:"userId"`      // tasks.user_id
	Title       string    `json:"title"`       // tasks.title
	Description string    `json:"description"` // tasks.description
	Completed   bool      `json:"completed"`   // tasks.completed
	CreatedAt   time.Time `json:"createdAt"`   // tasks.created_at
	UpdatedAt   time.Time `json:"updatedAt"`   // tasks.updated_at
}
