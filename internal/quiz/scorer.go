package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	syncx "github.com/studyhub/studyhub/internal/sync"
	"github.com/studyhub/studyhub/internal/user"
)

var ErrInvalidInput = errors.New("invalid input")

const casRetries = 3

type Result struct {
	Score      int `json:"score"`
	MaxScore   int `json:"max_score"`
	Percentage int `json:"percentage"`
}

// Scorer grades submissions and upserts the attempt into both the quiz row
// and the submitting user's quiz scores.
type Scorer struct {
	quizzes Store
	users   user.Store
	events  syncx.Recorder
	now     func() time.Time
}

func NewScorer(quizzes Store, users user.Store, events syncx.Recorder) *Scorer {
	return &Scorer{quizzes: quizzes, users: users, events: events, now: time.Now}
}

// SubmitAttempt grades answers against the quiz's answer key. A point is
// awarded iff the selected index is in range for that question and the option
// is correct; a missing or out-of-range index scores zero for that question,
// never an error. Re-submission replaces the user's previous attempt on both
// sides, so attempt counts stay constant across repeats.
func (s *Scorer) SubmitAttempt(ctx context.Context, userID, quizID string, answers []int) (Result, error) {
	q, err := s.quizzes.Get(ctx, quizID)
	if err != nil {
		return Result{}, err
	}
	if len(q.Questions) == 0 {
		return Result{}, fmt.Errorf("%w: quiz has no questions", ErrInvalidInput)
	}

	res := grade(q.Questions, answers)
	completedAt := s.now()

	attempt := Attempt{
		UserID:      userID,
		Score:       res.Score,
		Answers:     answers,
		CompletedAt: completedAt,
	}
	if err := s.upsertAttempt(ctx, quizID, attempt); err != nil {
		return Result{}, err
	}

	score := user.QuizScore{
		QuizID:      quizID,
		Score:       res.Score,
		MaxScore:    res.MaxScore,
		Percentage:  res.Percentage,
		CompletedAt: completedAt,
	}
	if err := s.upsertScore(ctx, userID, score); err != nil {
		return Result{}, err
	}

	if err := syncx.Record(ctx, s.events, syncx.TypeAttemptSubmitted, quizID, attempt); err != nil {
		log.Printf("event log append failed: %v", err)
	}
	return res, nil
}

func grade(questions []Question, answers []int) Result {
	score := 0
	for i, q := range questions {
		if i >= len(answers) {
			continue
		}
		idx := answers[i]
		if idx >= 0 && idx < len(q.Options) && q.Options[idx].IsCorrect {
			score++
		}
	}
	return Result{
		Score:      score,
		MaxScore:   len(questions),
		Percentage: int(math.Round(float64(score) / float64(len(questions)) * 100)),
	}
}

// upsertAttempt is filter-then-append keyed by user, retried on CAS conflicts.
func (s *Scorer) upsertAttempt(ctx context.Context, quizID string, attempt Attempt) error {
	var lastErr error
	for i := 0; i < casRetries; i++ {
		q, err := s.quizzes.Get(ctx, quizID)
		if err != nil {
			return err
		}
		kept := q.Attempts[:0]
		for _, a := range q.Attempts {
			if a.UserID != attempt.UserID {
				kept = append(kept, a)
			}
		}
		q.Attempts = append(kept, attempt)
		err = s.quizzes.Update(ctx, &q)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrConflict) {
			return err
		}
		lastErr = err
	}
	return lastErr
}

// upsertScore mirrors upsertAttempt on the user row. Fails with
// user.ErrNotFound if the user vanished between auth and write.
func (s *Scorer) upsertScore(ctx context.Context, userID string, score user.QuizScore) error {
	var lastErr error
	for i := 0; i < casRetries; i++ {
		u, err := s.users.Get(ctx, userID)
		if err != nil {
			return err
		}
		kept := u.QuizScores[:0]
		for _, qs := range u.QuizScores {
			if qs.QuizID != score.QuizID {
				kept = append(kept, qs)
			}
		}
		u.QuizScores = append(kept, score)
		err = s.users.Update(ctx, &u)
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
