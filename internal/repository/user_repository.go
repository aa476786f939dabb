package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/todo-api/internal/model"
)

const userColumns = "id, name, email, password, role, deleted, created_at, updated_at"

// UserRepo persists users. Every lookup used for authentication or
// administration filters out soft-deleted rows.
type UserRepo struct{ DB *sql.DB }

// NewUserRepo returns a UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(s rowScanner) (*model.User, error) {
	var (
		u    model.User
		role sql.NullString
	)
	if err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &role, &u.Deleted, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role.String)
	return &u, nil
}

// Create inserts the user and fills in its ID. The password must already
// be hashed.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password, role) VALUES (?,?,?,?)",
		u.Name, u.Email, u.Password, string(u.Role))
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert user id: %w", err)
	}
	u.ID = uint64(id)
	return nil
}

// GetActiveByEmail fetches a non-deleted user by exact email.
func (r *UserRepo) GetActiveByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? AND deleted=0 LIMIT 1", email)
	return r.one(row, "email")
}

// GetActiveByID fetches a non-deleted user by id.
func (r *UserRepo) GetActiveByID(ctx context.Context, id uint64) (*model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? AND deleted=0 LIMIT 1", id)
	return r.one(row, "id")
}

func (r *UserRepo) one(row *sql.Row, by string) (*model.User, error) {
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by %s: %w", by, err)
	}
	return u, nil
}

// List returns all non-deleted users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE deleted=0 ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Update writes name, email, password and role of a non-deleted user.
func (r *UserRepo) Update(ctx context.Context, u *model.User) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, email=?, password=?, role=? WHERE id=? AND deleted=0",
		u.Name, u.Email, u.Password, string(u.Role), u.ID)
	if err != nil {
		if isDuplicate(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("update user %d: %w", u.ID, err)
	}
	return nil
}

// SoftDelete flips the deleted flag. The row is kept; there is no hard
// delete. Sessions owned by the user are left untouched.
func (r *UserRepo) SoftDelete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET deleted=1 WHERE id=? AND deleted=0", id)
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	if n == 0 {
		return ErrUserNotFound
	}
	return nil
}
