package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/todo-api/internal/apperr"
	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
	"github.com/iliyamo/todo-api/internal/utils"
)

const (
	MsgCannotDemoteSelf = "cannot demote yourself"
	MsgCannotDeleteSelf = "cannot delete yourself"
	MsgUserUpdated      = "User updated successfully"
	MsgUserDeleted      = "User deleted successfully"
	MsgUnknownRole      = "role must be one of: USER ADMIN"
)

// UserAdminStore is the subset of the user repository used by admins.
type UserAdminStore interface {
	List(ctx context.Context) ([]model.User, error)
	GetActiveByID(ctx context.Context, id uint64) (*model.User, error)
	Update(ctx context.Context, u *model.User) error
	SoftDelete(ctx context.Context, id uint64) error
}

// EventPublisher announces user deletions.
type EventPublisher interface {
	PublishUserDeleted(ctx context.Context, ev queue.UserDeletedEvent) error
}

// UserService implements user administration.
type UserService struct {
	users     UserAdminStore
	hasher    utils.PasswordHasher
	publisher EventPublisher
	log       zerolog.Logger
	now       func() time.Time
}

// NewUserService wires the admin service. publisher may be nil when no
// broker is configured.
func NewUserService(users UserAdminStore, hasher utils.PasswordHasher, publisher EventPublisher, log zerolog.Logger) *UserService {
	return &UserService{
		users:     users,
		hasher:    hasher,
		publisher: publisher,
		log:       log.With().Str("component", "users").Logger(),
		now:       time.Now,
	}
}

// UpdateInput holds optional changes; nil fields are left untouched.
type UpdateInput struct {
	Name     *string
	Email    *string
	Password *string
	Role     *model.Role
}

// List returns all non-deleted users ordered by id.
func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return users, nil
}

// Get returns one non-deleted user or NotFound.
func (s *UserService) Get(ctx context.Context, id uint64) (*model.User, error) {
	return s.load(ctx, id)
}

// Update applies in to the target user. An admin can never change their
// own role away from ADMIN; that check runs before anything is read or
// written.
func (s *UserService) Update(ctx context.Context, actor model.Identity, targetID uint64, in UpdateInput) (*model.User, error) {
	if targetID == actor.UserID && in.Role != nil && !in.Role.IsAdmin() {
		return nil, apperr.BadRequest(MsgCannotDemoteSelf)
	}
	if in.Role != nil && !in.Role.Known() {
		return nil, apperr.BadRequest(MsgUnknownRole)
	}

	u, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		u.Name = *in.Name
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Role != nil {
		u.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := s.hasher.Hash(*in.Password)
		if err != nil {
			return nil, apperr.Internal(fmt.Errorf("hash password: %w", err))
		}
		u.Password = hash
	}

	if err := s.users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, apperr.BadRequest(MsgUserExists)
		}
		return nil, apperr.Internal(err)
	}
	s.log.Info().Uint64("actor_id", actor.UserID).Uint64("user_id", u.ID).Msg("user updated")
	return u, nil
}

// Delete soft-deletes the target user. Self-deletion is rejected and the
// row is left as it was. Sessions of the deleted user are not touched here;
// the user.deleted consumer decides what happens to them.
func (s *UserService) Delete(ctx context.Context, actor model.Identity, targetID uint64) (*model.User, error) {
	if targetID == actor.UserID {
		return nil, apperr.BadRequest(MsgCannotDeleteSelf)
	}

	u, err := s.load(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if err := s.users.SoftDelete(ctx, targetID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, apperr.Internal(err)
	}
	u.Deleted = true
	s.log.Info().Uint64("actor_id", actor.UserID).Uint64("user_id", u.ID).Msg("user soft-deleted")

	if s.publisher != nil {
		ev := queue.UserDeletedEvent{
			UserID:    u.ID,
			Email:     u.Email,
			DeletedBy: actor.UserID,
			DeletedAt: s.now().UTC().Format(time.RFC3339),
		}
		if err := s.publisher.PublishUserDeleted(ctx, ev); err != nil {
			s.log.Warn().Err(err).Uint64("user_id", u.ID).Msg("user.deleted event not published")
		}
	}
	return u, nil
}

func (s *UserService) load(ctx context.Context, id uint64) (*model.User, error) {
	u, err := s.users.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperr.NotFound(MsgUserNotFound)
		}
		return nil, apperr.Internal(err)
	}
	return u, nil
}
