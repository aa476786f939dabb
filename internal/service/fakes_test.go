package service

import (
	"context"
	"time"

	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
)

// memUsers is an in-memory user store. Func fields override the default
// behaviour for failure injection.
type memUsers struct {
	rows     map[uint64]*model.User
	nextID   uint64
	writes   int
	createFn func(ctx context.Context, u *model.User) error
	updateFn func(ctx context.Context, u *model.User) error
}

func newMemUsers(users ...model.User) *memUsers {
	m := &memUsers{rows: map[uint64]*model.User{}}
	for i := range users {
		u := users[i]
		m.rows[u.ID] = &u
		if u.ID > m.nextID {
			m.nextID = u.ID
		}
	}
	return m
}

func (m *memUsers) Create(ctx context.Context, u *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, u)
	}
	for _, r := range m.rows {
		if r.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.rows[u.ID] = &cp
	m.writes++
	return nil
}

func (m *memUsers) GetActiveByEmail(_ context.Context, email string) (*model.User, error) {
	for _, r := range m.rows {
		if r.Email == email && !r.Deleted {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetActiveByID(_ context.Context, id uint64) (*model.User, error) {
	r, ok := m.rows[id]
	if !ok || r.Deleted {
		return nil, repository.ErrUserNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memUsers) List(_ context.Context) ([]model.User, error) {
	out := []model.User{}
	for _, r := range m.rows {
		if !r.Deleted {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memUsers) Update(ctx context.Context, u *model.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, u)
	}
	cp := *u
	m.rows[u.ID] = &cp
	m.writes++
	return nil
}

func (m *memUsers) SoftDelete(_ context.Context, id uint64) error {
	r, ok := m.rows[id]
	if !ok || r.Deleted {
		return repository.ErrUserNotFound
	}
	r.Deleted = true
	m.writes++
	return nil
}

// memSessions is an in-memory session store.
type memSessions struct {
	rows     []*model.Token
	createFn func(ctx context.Context, userID uint64, key string, exp time.Time) (*model.Token, error)
}

func (m *memSessions) Create(ctx context.Context, userID uint64, key string, exp time.Time) (*model.Token, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, key, exp)
	}
	t := &model.Token{ID: uint64(len(m.rows) + 1), Key: key, UserID: userID, Active: true, ExpiresAt: exp}
	m.rows = append(m.rows, t)
	return t, nil
}

func (m *memSessions) Delete(_ context.Context, id uint64, key string) (*model.Token, error) {
	for i, t := range m.rows {
		if t.ID == id && t.Key == key && t.Active {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return t, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

type fakePublisher struct {
	publishFn func(ctx context.Context, ev queue.UserDeletedEvent) error
	events    []queue.UserDeletedEvent
}

func (f *fakePublisher) PublishUserDeleted(ctx context.Context, ev queue.UserDeletedEvent) error {
	f.events = append(f.events, ev)
	if f.publishFn != nil {
		return f.publishFn(ctx, ev)
	}
	return nil
}
