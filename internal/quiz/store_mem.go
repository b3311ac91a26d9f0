package quiz

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemStore mirrors SQLStore semantics in memory, for tests.
type MemStore struct {
	mu      sync.RWMutex
	quizzes map[string]Quiz
}

func NewMemStore() *MemStore {
	return &MemStore{quizzes: map[string]Quiz{}}
}

func (m *MemStore) Put(ctx context.Context, q *Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	q.CreatedAt = time.Now()
	q.Version = 0
	m.quizzes[q.ID] = q.Clone()
	return nil
}

// Get returns a deep copy so callers can sanitize or filter attempts without
// corrupting the stored quiz.
func (m *MemStore) Get(ctx context.Context, id string) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, ErrNotFound
	}
	return q.Clone(), nil
}

func (m *MemStore) Update(ctx context.Context, q *Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.quizzes[q.ID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != q.Version {
		return ErrConflict
	}
	q.Version++
	m.quizzes[q.ID] = q.Clone()
	return nil
}

func (m *MemStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[id]; !ok {
		return ErrNotFound
	}
	delete(m.quizzes, id)
	return nil
}

func (m *MemStore) List(ctx context.Context, opts ListOpts) ([]Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Quiz
	for _, q := range m.quizzes {
		if opts.PublicOnly && !q.IsPublic {
			continue
		}
		if opts.Subject != "" && opts.Subject != "all" && q.Subject != opts.Subject {
			continue
		}
		if opts.Difficulty != "" && opts.Difficulty != "all" && q.Difficulty != opts.Difficulty {
			continue
		}
		q = q.Clone()
		q.Attempts = nil
		out = append(out, q)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *MemStore) Subjects(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, q := range m.quizzes {
		if !seen[q.Subject] {
			seen[q.Subject] = true
			out = append(out, q.Subject)
		}
	}
	sort.Strings(out)
	return out, nil
}
