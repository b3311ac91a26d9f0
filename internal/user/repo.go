package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrConflict means the row changed between read and write (version
	// mismatch). Callers retry the whole read-modify-write.
	ErrConflict = errors.New("user modified concurrently")
)

type Store interface {
	Create(ctx context.Context, u *User) error
	Get(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByResetToken(ctx context.Context, token string) (User, error)

	// Update writes the full row iff u.Version still matches the stored row,
	// then bumps u.Version. Returns ErrConflict on a lost race.
	Update(ctx context.Context, u *User) error

	// List returns a snapshot of all users (leaderboard, dashboards).
	List(ctx context.Context) ([]User, error)
}
