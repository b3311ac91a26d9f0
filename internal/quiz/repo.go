package quiz

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("quiz not found")
	// ErrConflict means the quiz row changed between read and write.
	ErrConflict = errors.New("quiz modified concurrently")
)

type ListOpts struct {
	Subject    string // empty or "all" means no filter
	Difficulty string // empty or "all" means no filter
	PublicOnly bool
	Limit      int
}

type Store interface {
	Put(ctx context.Context, q *Quiz) error

	// Get returns the full quiz, answer keys and attempts included; callers
	// serving students use Quiz.Sanitize before encoding.
	Get(ctx context.Context, id string) (Quiz, error)

	// Update writes the full row iff q.Version still matches, then bumps it.
	Update(ctx context.Context, q *Quiz) error

	Delete(ctx context.Context, id string) error

	// List returns quizzes newest-first. Attempts are omitted.
	List(ctx context.Context, opts ListOpts) ([]Quiz, error)

	// Subjects returns the distinct subject values, for filter dropdowns.
	Subjects(ctx context.Context) ([]string, error)
}
