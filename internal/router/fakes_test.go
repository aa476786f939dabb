package router

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/todo-api/internal/model"
	"github.com/iliyamo/todo-api/internal/queue"
	"github.com/iliyamo/todo-api/internal/repository"
)

// memUsers mirrors repository.UserRepo over a map. The email uniqueness
// check spans deleted rows, like the unique index does.
type memUsers struct {
	mu     sync.Mutex
	rows   map[uint64]*model.User
	nextID uint64
}

func newMemUsers() *memUsers { return &memUsers{rows: map[uint64]*model.User{}} }

func (m *memUsers) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) GetActiveByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Email == email && !r.Deleted {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (m *memUsers) GetActiveByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.Deleted {
		return nil, repository.ErrUserNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memUsers) List(_ context.Context) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.User{}
	for _, r := range m.rows {
		if !r.Deleted {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memUsers) Update(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID != u.ID && r.Email == u.Email {
			return repository.ErrEmailExists
		}
	}
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) SoftDelete(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.Deleted {
		return repository.ErrUserNotFound
	}
	r.Deleted = true
	return nil
}

func (m *memUsers) get(id uint64) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.rows[id]
}

// memTokens mirrors repository.TokenRepo; lookups join the user row for
// its role like the SQL join does (deleted users included).
type memTokens struct {
	mu     sync.Mutex
	users  *memUsers
	rows   []model.Token
	nextID uint64
}

func (m *memTokens) Create(_ context.Context, userID uint64, key string, exp time.Time) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t := model.Token{ID: m.nextID, Key: key, UserID: userID, Active: true, ExpiresAt: exp}
	m.rows = append(m.rows, t)
	return &t, nil
}

func (m *memTokens) FindActiveBySubjectAndToken(_ context.Context, userID uint64, key string) (*model.ActiveSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.UserID == userID && t.Key == key && t.Active {
			s := &model.ActiveSession{Token: t}
			if u, ok := m.users.rows[userID]; ok {
				s.UserRole = u.Role
			}
			return s, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (m *memTokens) Delete(_ context.Context, id uint64, key string) (*model.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, t := range m.rows {
		if t.ID == id && t.Key == key && t.Active {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return &t, nil
		}
	}
	return nil, repository.ErrTokenNotFound
}

func (m *memTokens) byKey(key string) (model.Token, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.rows {
		if t.Key == key {
			return t, true
		}
	}
	return model.Token{}, false
}

func (m *memTokens) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

// memTasks mirrors repository.TaskRepo.
type memTasks struct {
	mu     sync.Mutex
	rows   map[uint64]*model.Task
	nextID uint64
}

func newMemTasks() *memTasks { return &memTasks{rows: map[uint64]*model.Task{}} }

func (m *memTasks) Create(_ context.Context, t *model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	cp := *t
	cp.ID = m.nextID
	m.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memTasks) ListByUser(_ context.Context, userID uint64) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Task{}
	for _, t := range m.rows {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memTasks) GetByIDAndUser(_ context.Context, id, userID uint64) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) Update(_ context.Context, t *model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.rows[t.ID]
	if !ok || cur.UserID != t.UserID {
		return nil, repository.ErrTaskNotFound
	}
	cp := *t
	m.rows[t.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memTasks) DeleteByIDAndUser(_ context.Context, id, userID uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.rows[id]
	if !ok || t.UserID != userID {
		return repository.ErrTaskNotFound
	}
	delete(m.rows, id)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.UserDeletedEvent
}

func (f *fakePublisher) PublishUserDeleted(_ context.Context, ev queue.UserDeletedEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

type okPinger struct{}

func (okPinger) PingContext(context.Context) error { return nil }
