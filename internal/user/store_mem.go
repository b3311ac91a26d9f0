package user

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore is an in-memory Store with the same CAS semantics as the SQL store.
// Used in tests and as a scratch backend for demos.
type MemStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemStore() *MemStore {
	return &MemStore{users: map[string]User{}}
}

func (m *MemStore) Create(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ex := range m.users {
		if ex.Email == u.Email {
			return ErrDuplicateEmail
		}
	}
	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now
	u.Version = 0
	m.users[u.ID] = u.Clone()
	return nil
}

// Get returns a deep copy; callers mutate their copy freely and persist it
// via Update, same as with the SQL store.
func (m *MemStore) Get(ctx context.Context, id string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u.Clone(), nil
}

func (m *MemStore) GetByEmail(ctx context.Context, email string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			return u.Clone(), nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemStore) GetByResetToken(ctx context.Context, token string) (User, error) {
	if token == "" {
		return User{}, ErrNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.ResetToken == token {
			return u.Clone(), nil
		}
	}
	return User{}, ErrNotFound
}

func (m *MemStore) Update(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.users[u.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != u.Version {
		return ErrConflict
	}
	u.Version++
	u.UpdatedAt = time.Now()
	m.users[u.ID] = u.Clone()
	return nil
}

func (m *MemStore) List(ctx context.Context) ([]User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u.Clone())
	}
	// map iteration order is random; pin to insertion order like the SQL store
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
