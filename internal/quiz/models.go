package quiz

import (
	"slices"
	"time"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Option struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

type Question struct {
	Text        string   `json:"text"`
	Options     []Option `json:"options"`
	Explanation string   `json:"explanation,omitempty"`
}

// Attempt is one user's latest submission. A quiz holds at most one attempt
// per user; re-submission replaces the old one.
type Attempt struct {
	UserID      string    `json:"user_id"`
	Score       int       `json:"score"`
	Answers     []int     `json:"answers"` // selected option index per question
	CompletedAt time.Time `json:"completed_at"`
}

type Quiz struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Subject      string     `json:"subject"`
	Description  string     `json:"description,omitempty"`
	TimeLimitMin int        `json:"time_limit_min"` // advisory, not enforced
	Difficulty   string     `json:"difficulty"`
	IsPublic     bool       `json:"is_public"`
	CreatedBy    string     `json:"created_by"`
	Questions    []Question `json:"questions"`
	Attempts     []Attempt  `json:"attempts,omitempty"`

	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Clone deep-copies the nested slices so mutating the result never touches
// the original.
func (q Quiz) Clone() Quiz {
	out := q
	out.Questions = slices.Clone(q.Questions)
	for i := range out.Questions {
		out.Questions[i].Options = slices.Clone(q.Questions[i].Options)
	}
	out.Attempts = slices.Clone(q.Attempts)
	for i := range out.Attempts {
		out.Attempts[i].Answers = slices.Clone(q.Attempts[i].Answers)
	}
	return out
}

// Sanitize strips grading data before serving a quiz to a student taking it.
func (q *Quiz) Sanitize() {
	for i := range q.Questions {
		for j := range q.Questions[i].Options {
			q.Questions[i].Options[j].IsCorrect = false
		}
		q.Questions[i].Explanation = ""
	}
	q.Attempts = nil
}

// AttemptFor returns the user's attempt, or nil.
func (q *Quiz) AttemptFor(userID string) *Attempt {
	for i := range q.Attempts {
		if q.Attempts[i].UserID == userID {
			return &q.Attempts[i]
		}
	}
	return nil
}
