package studyplan

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"

	syncx "github.com/studyhub/studyhub/internal/sync"
	"github.com/studyhub/studyhub/internal/user"
)

var ErrInvalidInput = errors.New("invalid input")

const casRetries = 3

type Generator struct {
	users  user.Store
	events syncx.Recorder
	now    func() time.Time
}

func NewGenerator(users user.Store, events syncx.Recorder) *Generator {
	return &Generator{users: users, events: events, now: time.Now}
}

// Generate builds a day-by-day plan spanning [now, examDate) and replaces the
// user's previous plan wholesale, completion flags included. The exam date must
// be strictly in the future; a past or zero date is rejected rather than
// silently producing an empty plan. Subjects keep caller order and are not
// deduplicated: a duplicate subject yields duplicate per-day tasks.
func (g *Generator) Generate(ctx context.Context, userID string, examDate time.Time, subjects []string, dailyHours float64) (user.StudyPlan, error) {
	now := g.now()
	if examDate.IsZero() || !examDate.After(now) {
		return user.StudyPlan{}, fmt.Errorf("%w: exam date must be in the future", ErrInvalidInput)
	}
	if len(subjects) == 0 {
		return user.StudyPlan{}, fmt.Errorf("%w: at least one subject required", ErrInvalidInput)
	}
	if dailyHours <= 0 {
		return user.StudyPlan{}, fmt.Errorf("%w: daily hours must be positive", ErrInvalidInput)
	}

	days := int(math.Ceil(examDate.Sub(now).Hours() / 24))
	plan := user.StudyPlan{
		GeneratedAt: now,
		ExamDate:    examDate,
		Subjects:    subjects,
		DailyHours:  dailyHours,
		Days:        make([]user.PlanDay, 0, days*len(subjects)),
	}
	for i := 0; i < days; i++ {
		date := now.AddDate(0, 0, i)
		for _, subject := range subjects {
			plan.Days = append(plan.Days, user.PlanDay{
				ID:      uuid.NewString(),
				Date:    date,
				Subject: subject,
				Tasks:   []string{fmt.Sprintf("Study %s - Topic %d", subject, i+1)},
			})
		}
	}

	err := g.withUser(ctx, userID, func(u *user.User) error {
		u.StudyPlan = &plan
		return nil
	})
	if err != nil {
		return user.StudyPlan{}, err
	}

	if err := syncx.Record(ctx, g.events, syncx.TypePlanGenerated, userID, map[string]any{
		"exam_date": examDate, "subjects": subjects, "days": len(plan.Days),
	}); err != nil {
		log.Printf("event log append failed: %v", err)
	}
	return plan, nil
}

// CompleteTask marks one plan day complete. Addressing is by the day's stable
// ID when given; otherwise the first day matching (calendar date, subject,
// task text) is used, and no match is a silent no-op reporting success. The
// fallback keeps the old text-matching contract for clients that predate IDs.
func (g *Generator) CompleteTask(ctx context.Context, userID, dayID string, date time.Time, subject, task string) error {
	if dayID == "" && (subject == "" || task == "") {
		return fmt.Errorf("%w: day id or (date, subject, task) required", ErrInvalidInput)
	}
	return g.withUser(ctx, userID, func(u *user.User) error {
		if u.StudyPlan == nil {
			return nil
		}
		for i := range u.StudyPlan.Days {
			d := &u.StudyPlan.Days[i]
			if dayID != "" {
				if d.ID == dayID {
					d.Completed = true
					return nil
				}
				continue
			}
			if sameDay(d.Date, date) && d.Subject == subject && contains(d.Tasks, task) {
				d.Completed = true
				return nil
			}
		}
		return nil
	})
}

// Plan returns the user's current plan; a user without one gets a nil plan,
// not an error.
func (g *Generator) Plan(ctx context.Context, userID string) (*user.StudyPlan, error) {
	u, err := g.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.StudyPlan, nil
}

func (g *Generator) withUser(ctx context.Context, userID string, mutate func(*user.User) error) error {
	var lastErr error
	for i := 0; i < casRetries; i++ {
		u, err := g.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		if err := mutate(&u); err != nil {
			return err
		}
		err = g.users.Update(ctx, &u)
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

// sameDay truncates to calendar day in UTC, matching how plan dates are
// rendered to clients.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
