package model

import "time"

// User represents an application user record as stored in the `users`
// table. The password column only ever holds a bcrypt hash; the json tag
// keeps it out of every response body.
//
// Fields:
//
//	ID        – primary key identifier of the user.
//	Name      – display name.
//	Email     – unique email address (case-sensitive, per column collation).
//	Password  – bcrypt hash of the secret.
//	Role      – USER or ADMIN (open string enum).
//	Deleted   – soft-delete flag; deleted users cannot log in.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type User struct {
	ID        uint64    `json:"id"`        // users.id
	Name      string    `json:"name"`      // users.name
	Email     string    `json:"email"`     // users.email
	Password  string    `json:"-"`         // users.password (hash)
	Role      Role      `json:"role"`      // users.role
	Deleted   bool      `json:"delete"`    // users.deleted
	CreatedAt time.Time `json:"createdAt"` // users.created_at
	UpdatedAt time.Time `json:"updatedAt"` // users.updated_at
}

// Token models an entry in the `tokens` table: one row per successful
// login. Key holds the exact signed token string handed to the client in
// the jwt cookie, so lookups compare the full string, not a hash.
//
// Fields:
//
//	ID        – primary key identifier.
//	Key       – the signed session token.
//	UserID    – owner of the session.
//	Active    – only active rows authenticate requests.
//	ExpiresAt – copy of the token's exp claim, used by PurgeExpired.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type Token struct {
	ID        uint64    // tokens.id
	Key       string    // tokens.key
	UserID    uint64    // tokens.user_id
	Active    bool      // tokens.active
	ExpiresAt time.Time // tokens.expires_at
	CreatedAt time.Time // tokens.created_at
	UpdatedAt time.Time // tokens.updated_at
}

// ActiveSession is a token row joined with its owner's current role.
// UserRole is empty when the user row carries no role.
type ActiveSession struct {
	Token
	UserRole Role
}
