// Package queue defines message payloads exchanged over the message broker
// and the publisher and consumer that move them.
package queue

// UserDeletedQueue is the durable queue carrying UserDeletedEvent messages.
const UserDeletedQueue = "user.deleted"

// UserDeletedEvent is published after an administrator soft-deletes a user.
// It carries enough for a consumer to act on the user's sessions without
// querying the users table.
type UserDeletedEvent struct {
	UserID    uint64 `json:"user_id"`
	Email     string `json:"email"`
	DeletedBy uint64 `json:"deleted_by"`
	DeletedAt string `json:"deleted_at"`
}
