package progress

import (
	"context"
	"errors"
	"fmt"
	"log"

	syncx "github.com/studyhub/studyhub/internal/sync"
	"github.com/studyhub/studyhub/internal/user"
)

type Action string

const (
	ActionComplete   Action = "complete"
	ActionUncomplete Action = "uncomplete"
)

var ErrInvalidInput = errors.New("invalid input")

// Subjects created lazily on first topic event default to this target until
// the client sends an explicit total.
const defaultTotalTopics = 10

// casRetries bounds how many times a read-modify-write is replayed after a
// version conflict before giving up with user.ErrConflict.
const casRetries = 3

type Tracker struct {
	users  user.Store
	events syncx.Recorder
}

func NewTracker(users user.Store, events syncx.Recorder) *Tracker {
	return &Tracker{users: users, events: events}
}

// TopicUpdate is one complete/uncomplete event, optionally bundled with a new
// target topic count applied in the same write.
type TopicUpdate struct {
	Subject     string
	Topic       string
	Action      Action
	TotalTopics *int
}

// RecordTopicEvent applies one complete/uncomplete event and returns the
// updated entry for the touched subject. Completing an already-complete topic
// and uncompleting an absent one are no-ops, not errors. Percentages are
// recomputed for every subject the user tracks, not just the touched one.
func (t *Tracker) RecordTopicEvent(ctx context.Context, userID, subject, topic string, action Action) (user.SubjectProgress, error) {
	return t.ApplyTopicUpdate(ctx, userID, TopicUpdate{Subject: subject, Topic: topic, Action: action})
}

// ApplyTopicUpdate validates and applies the whole update as a single user
// write, so a rejected event never leaves a half-applied total behind.
func (t *Tracker) ApplyTopicUpdate(ctx context.Context, userID string, up TopicUpdate) (user.SubjectProgress, error) {
	if up.Subject == "" || up.Topic == "" {
		return user.SubjectProgress{}, fmt.Errorf("%w: subject and topic required", ErrInvalidInput)
	}
	if up.Action != ActionComplete && up.Action != ActionUncomplete {
		return user.SubjectProgress{}, fmt.Errorf("%w: unknown action %q", ErrInvalidInput, up.Action)
	}
	if up.TotalTopics != nil && *up.TotalTopics < 0 {
		return user.SubjectProgress{}, fmt.Errorf("%w: total topics must be >= 0", ErrInvalidInput)
	}

	var updated user.SubjectProgress
	err := t.withUser(ctx, userID, func(u *user.User) error {
		sp := u.FindProgress(up.Subject)
		if sp == nil {
			u.Progress = append(u.Progress, user.SubjectProgress{
				Subject:         up.Subject,
				TopicsCompleted: []string{},
				TotalTopics:     defaultTotalTopics,
			})
			sp = &u.Progress[len(u.Progress)-1]
		}
		if up.TotalTopics != nil {
			sp.TotalTopics = *up.TotalTopics
		}
		switch up.Action {
		case ActionComplete:
			if !contains(sp.TopicsCompleted, up.Topic) {
				sp.TopicsCompleted = append(sp.TopicsCompleted, up.Topic)
			}
		case ActionUncomplete:
			sp.TopicsCompleted = remove(sp.TopicsCompleted, up.Topic)
		}
		u.RecalcProgress()
		updated = *sp
		return nil
	})
	if err != nil {
		return user.SubjectProgress{}, err
	}

	if err := syncx.Record(ctx, t.events, syncx.TypeProgressUpdated, userID, updated); err != nil {
		log.Printf("event log append failed: %v", err)
	}
	return updated, nil
}

// SetTotalTopics updates the target topic count for a subject (creating the
// entry if needed) and recomputes all percentages. A negative total is invalid.
func (t *Tracker) SetTotalTopics(ctx context.Context, userID, subject string, total int) (user.SubjectProgress, error) {
	if subject == "" {
		return user.SubjectProgress{}, fmt.Errorf("%w: subject required", ErrInvalidInput)
	}
	if total < 0 {
		return user.SubjectProgress{}, fmt.Errorf("%w: total topics must be >= 0", ErrInvalidInput)
	}

	var updated user.SubjectProgress
	err := t.withUser(ctx, userID, func(u *user.User) error {
		sp := u.FindProgress(subject)
		if sp == nil {
			u.Progress = append(u.Progress, user.SubjectProgress{
				Subject:         subject,
				TopicsCompleted: []string{},
			})
			sp = &u.Progress[len(u.Progress)-1]
		}
		sp.TotalTopics = total
		u.RecalcProgress()
		updated = *sp
		return nil
	})
	return updated, err
}

// Overview reloads the user with freshly recomputed (and persisted)
// percentages, mirroring the progress dashboard read path.
func (t *Tracker) Overview(ctx context.Context, userID string) (user.User, error) {
	var out user.User
	err := t.withUser(ctx, userID, func(u *user.User) error {
		u.RecalcProgress()
		out = *u
		return nil
	})
	return out, err
}

// withUser runs a read-modify-write against one user row, retrying on
// version conflicts. This closes the lost-update race between concurrent
// progress writes for the same user.
func (t *Tracker) withUser(ctx context.Context, userID string, mutate func(*user.User) error) error {
	var lastErr error
	for i := 0; i < casRetries; i++ {
		u, err := t.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if err := mutate(&u); err != nil {
			return err
		}
		err = t.users.Update(ctx, &u)
		if err == nil {
			return nil
		}
		if !errors.Is(err, user.ErrConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

func remove(ss []string, s string) []string {
	out := ss[:0]
	for _, v := range ss {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}
