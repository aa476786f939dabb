package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/todo-api/internal/model"
)

// TokenRepo persists session tokens. Every predicate is an exact match on
// user id, row id and the full token string.
type TokenRepo struct{ DB *sql.DB }

// NewTokenRepo returns a TokenRepo bound to the given database.
func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Create inserts a new active session row. A failed insert must abort the
// login: the authentication middleware only accepts tokens that have a row.
func (r *TokenRepo) Create(ctx context.Context, userID uint64, key string, expiresAt time.Time) (*model.Token, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO tokens (`key`, user_id, active, expires_at) VALUES (?,?,1,?)",
		key, userID, expiresAt.UTC())
	if err != nil {
		return nil, fmt.Errorf("insert token: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert token id: %w", err)
	}
	return &model.Token{
		ID:        uint64(id),
		Key:       key,
		UserID:    userID,
		Active:    true,
		ExpiresAt: expiresAt.UTC(),
	}, nil
}

// FindActiveBySubjectAndToken returns the active session matching both the
// user id and the exact token, joined with the owner's current role.
func (r *TokenRepo) FindActiveBySubjectAndToken(ctx context.Context, userID uint64, key string) (*model.ActiveSession, error) {
	var (
		s    model.ActiveSession
		role sql.NullString
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT t.id, t.`key`, t.user_id, t.active, t.expires_at, t.created_at, t.updated_at, u.role "+
			"FROM tokens t JOIN users u ON u.id = t.user_id "+
			"WHERE t.user_id=? AND t.`key`=? AND t.active=1 LIMIT 1",
		userID, key).Scan(&s.ID, &s.Key, &s.UserID, &s.Active, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("find session: %w", err)
	}
	s.UserRole = model.Role(role.String)
	return &s, nil
}

// Delete removes the active session matching both id and token and returns
// the removed row. A request can only delete the session it presented.
func (r *TokenRepo) Delete(ctx context.Context, id uint64, key string) (*model.Token, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin delete token: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var t model.Token
	err = tx.QueryRowContext(ctx,
		"SELECT id, `key`, user_id, active, expires_at, created_at, updated_at FROM tokens "+
			"WHERE id=? AND `key`=? AND active=1 FOR UPDATE",
		id, key).Scan(&t.ID, &t.Key, &t.UserID, &t.Active, &t.ExpiresAt, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("select token: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tokens WHERE id=?", t.ID); err != nil {
		return nil, fmt.Errorf("delete token: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit delete token: %w", err)
	}
	return &t, nil
}

// DeleteAllForUser removes every session of a user and returns how many
// rows went away.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID uint64) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tokens WHERE user_id=?", userID)
	if err != nil {
		return 0, fmt.Errorf("delete tokens for user %d: %w", userID, err)
	}
	return res.RowsAffected()
}

// PurgeExpired removes sessions whose token expired before the given
// instant. Nothing calls it automatically.
func (r *TokenRepo) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM tokens WHERE expires_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("purge tokens: %w", err)
	}
	return res.RowsAffected()
}
