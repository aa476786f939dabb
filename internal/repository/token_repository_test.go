package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/iliyamo/todo-api/internal/model"
)

var tokenCols = []string{"id", "key", "user_id", "active", "expires_at", "created_at", "updated_at"}

func TestTokenRepo_Create(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	exp := time.Date(2030, 1, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO tokens (`key`, user_id, active, expires_at) VALUES (?,?,1,?)")).
		WithArgs("tok", uint64(2), exp).
		WillReturnResult(sqlmock.NewResult(11, 1))

	tok, err := repo.Create(context.Background(), 2, "tok", exp)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tok.ID != 11 || tok.UserID != 2 || !tok.Active || !tok.ExpiresAt.Equal(exp) {
		t.Errorf("unexpected token %+v", tok)
	}
}

func TestTokenRepo_Create_Error(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec("INSERT INTO tokens").WillReturnError(errors.New("disk full"))

	if _, err := repo.Create(context.Background(), 2, "tok", time.Now()); err == nil {
		t.Error("expected insert failure to be returned")
	}
}

func TestTokenRepo_FindActiveBySubjectAndToken(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE t.user_id=? AND t.`key`=? AND t.active=1")).
		WithArgs(uint64(2), "tok").
		WillReturnRows(sqlmock.NewRows(append(tokenCols, "role")).
			AddRow(11, "tok", 2, true, now, now, now, "ADMIN"))

	s, err := repo.FindActiveBySubjectAndToken(context.Background(), 2, "tok")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if s.ID != 11 || s.UserRole != model.RoleAdmin {
		t.Errorf("unexpected session %+v", s)
	}
}

func TestTokenRepo_FindActiveBySubjectAndToken_NullRole(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	now := time.Now()

	mock.ExpectQuery("FROM tokens t JOIN users u").
		WithArgs(uint64(2), "tok").
		WillReturnRows(sqlmock.NewRows(append(tokenCols, "role")).
			AddRow(11, "tok", 2, true, now, now, now, nil))

	s, err := repo.FindActiveBySubjectAndToken(context.Background(), 2, "tok")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if s.UserRole != "" {
		t.Errorf("expected empty role, got %q", s.UserRole)
	}
}

func TestTokenRepo_FindActiveBySubjectAndToken_NotFound(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectQuery("FROM tokens t JOIN users u").
		WithArgs(uint64(3), "tok").
		WillReturnRows(sqlmock.NewRows(append(tokenCols, "role")))

	if _, err := repo.FindActiveBySubjectAndToken(context.Background(), 3, "tok"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestTokenRepo_Delete(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id=? AND `key`=? AND active=1 FOR UPDATE")).
		WithArgs(uint64(11), "tok").
		WillReturnRows(sqlmock.NewRows(tokenCols).AddRow(11, "tok", 2, true, now, now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE id=?")).
		WithArgs(uint64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tok, err := repo.Delete(context.Background(), 11, "tok")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if tok.ID != 11 || tok.UserID != 2 {
		t.Errorf("unexpected token %+v", tok)
	}
}

func TestTokenRepo_Delete_WrongKeyRollsBack(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").
		WithArgs(uint64(11), "other").
		WillReturnRows(sqlmock.NewRows(tokenCols))
	mock.ExpectRollback()

	if _, err := repo.Delete(context.Background(), 11, "other"); !errors.Is(err, ErrTokenNotFound) {
		t.Errorf("expected ErrTokenNotFound, got %v", err)
	}
}

func TestTokenRepo_DeleteAllForUser(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE user_id=?")).
		WithArgs(uint64(2)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteAllForUser(context.Background(), 2)
	if err != nil || n != 3 {
		t.Errorf("expected 3 rows, got %d (%v)", n, err)
	}
}

func TestTokenRepo_PurgeExpired(t *testing.T) {
	db, mock := newMock(t)
	repo := NewTokenRepo(db)
	before := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM tokens WHERE expires_at < ?")).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 5))

	n, err := repo.PurgeExpired(context.Background(), before)
	if err != nil || n != 5 {
		t.Errorf("expected 5 rows, got %d (%v)", n, err)
	}
}
