// Package service holds the identity lifecycle (signup, login, logout) and
// the user administration rules. Handlers call services; services call
// repositories through the narrow interfaces declared here.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/utils"
)

// Client-visible messages of the identity lifecycle.
const (
	MsgUserExists        = "user already exists"
	MsgUserNotFound      = "user not found"
	MsgIncorrectPassword = "incorrect password"
	MsgTokenNotFound     = "token not found"
	MsgLoginSuccessful   = "Login successful"
	MsgLogoutSuccessful  = "Logout successful"
)

// UserStore is the subset of the user repository used for authentication.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetActiveByEmail(ctx context.Context, email string) (*model.User, error)
	GetActiveByID(ctx context.Context, id uint64) (*model.User, error)
}

// SessionStore is the subset of the session repository used by login and
// logout.
type SessionStore interface {
	Create(ctx context.Context, userID uint64, key string, expiresAt time.Time) (*model.Token, error)
	Delete(ctx context.Context, id uint64, key string) (*model.Token, error)
}

// AuthService implements signup, login, logout and the current-user read.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	hasher   utils.PasswordHasher
	issuer   *utils.TokenIssuer
	log      zerolog.Logger
}

func NewAuthService(users UserStore, sessions SessionStore, hasher utils.PasswordHasher, issuer *utils.TokenIssuer, log zerolog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		issuer:   issuer,
		log:      log.With().Str("component", "auth").Logger(),
	}
}

// SignupInput carries already validated and trimmed signup fields.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// Signup creates a USER account. Any role supplied by the client is
// ignored; the first admin comes from cmd/create-admin.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*model.User, error) {
	_, err := s.users.GetActiveByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return nil, apperr.BadRequest(MsgUserExists)
	case !errors.Is(err, repository.ErrUserNotFound):
		return nil, apperr.Internal(err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
	}
	u := &model.User{Name: in.Name, Email: in.Email, Password: hash, Role: model.RoleUser}
	if err := s.users.Create(ctx, u); err != nil {
		// A concurrent signup, or a soft-deleted row still holding the email.
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.BadRequest(MsgUserExists)
		}
		return nil, apperr.Internal(err)
	}
	s.log.Info().Uint64("user_id", u.ID).Msg("user signed up")
	return u, nil
}

// LoginResult is what the handler needs to answer a successful login.
type LoginResult struct {
	User    *model.User
	Session utils.SessionToken
}

// Login verifies the credentials, signs a token and records it. The token
// is only handed back when the session row was written.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	u, err := s.users.GetActiveByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, apperr.Internal(err)
	}
	if !s.hasher.Verify(u.Password, password) {
		return nil, apperr.BadRequest(MsgIncorrectPassword)
	}

	tok, err := s.issuer.Issue(u)
	if err != nil {
		return nil, apperr.Internal(fmt.Errorf("sign token: %w", err))
	}
	row, err := s.sessions.Create(ctx, u.ID, tok.Token, tok.Exp)
	if err != nil {
		s.log.Error().Err(err).Uint64("user_id", u.ID).Msg("persist session failed")
		return nil, apperr.Internal(err)
	}
	s.log.Info().Uint64("user_id", u.ID).Uint64("session_id", row.ID).Msg("session created")
	return &LoginResult{User: u, Session: tok}, nil
}

// Logout hard-deletes exactly the session the request authenticated with.
func (s *AuthService) Logout(ctx context.Context, id model.Identity) (*model.Token, error) {
	row, err := s.sessions.Delete(ctx, id.SessionID, id.Token)
	if err != nil {
		if errors.Is(err, repository.ErrTokenNotFound) {
			return nil, apperr.NotFound(MsgTokenNotFound)
		}
		return nil, apperr.Internal(err)
	}
	s.log.Info().Uint64("user_id", row.UserID).Uint64("session_id", row.ID).Msg("session deleted")
	return row, nil
}

// Me returns the user behind the authenticated session.
func (s *AuthService) Me(ctx context.Context, id model.Identity) (*model.User, error) {
	u, err := s.users.GetActiveByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}
