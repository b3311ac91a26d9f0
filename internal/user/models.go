package user

import (
	"math"
	"slices"
	"time"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
	RoleAdmin   = "admin"
)

// SubjectProgress is one tracked subject. TopicsCompleted has set semantics:
// Subject is unique within a user's Progress list and topics appear at most once.
type SubjectProgress struct {
	Subject         string   `json:"subject"`
	TopicsCompleted []string `json:"topics_completed"`
	TotalTopics     int      `json:"total_topics"`
	Percentage      int      `json:"percentage"`
}

type QuizScore struct {
	QuizID      string    `json:"quiz_id"`
	Score       int       `json:"score"`
	MaxScore    int       `json:"max_score"`
	Percentage  int       `json:"percentage"`
	CompletedAt time.Time `json:"completed_at"`
}

// PlanDay is one calendar day's tasks for one subject. ID is assigned at
// generation time so completion can address a day without matching on text.
type PlanDay struct {
	ID        string    `json:"id"`
	Date      time.Time `json:"date"`
	Subject   string    `json:"subject"`
	Tasks     []string  `json:"tasks"`
	Completed bool      `json:"completed"`
}

type StudyPlan struct {
	GeneratedAt time.Time `json:"generated_at"`
	ExamDate    time.Time `json:"exam_date"`
	Subjects    []string  `json:"subjects"`
	DailyHours  float64   `json:"daily_hours"`
	Days        []PlanDay `json:"days"`
}

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	Grade        string    `json:"grade,omitempty"`
	Subjects     []string  `json:"subjects,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	ResetToken   string    `json:"-"`
	ResetExpires time.Time `json:"-"`

	Progress   []SubjectProgress `json:"progress"`
	QuizScores []QuizScore       `json:"quiz_scores"`
	StudyPlan  *StudyPlan        `json:"study_plan,omitempty"`

	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone deep-copies the nested slices so mutating the result never touches
// the original.
func (u User) Clone() User {
	out := u
	out.Subjects = slices.Clone(u.Subjects)
	out.Progress = slices.Clone(u.Progress)
	for i := range out.Progress {
		out.Progress[i].TopicsCompleted = slices.Clone(u.Progress[i].TopicsCompleted)
	}
	out.QuizScores = slices.Clone(u.QuizScores)
	if u.StudyPlan != nil {
		sp := *u.StudyPlan
		sp.Subjects = slices.Clone(u.StudyPlan.Subjects)
		sp.Days = slices.Clone(u.StudyPlan.Days)
		for i := range sp.Days {
			sp.Days[i].Tasks = slices.Clone(u.StudyPlan.Days[i].Tasks)
		}
		out.StudyPlan = &sp
	}
	return out
}

// FindProgress returns the entry for subject, or nil.
func (u *User) FindProgress(subject string) *SubjectProgress {
	for i := range u.Progress {
		if u.Progress[i].Subject == subject {
			return &u.Progress[i]
		}
	}
	return nil
}

// RecalcProgress recomputes Percentage for every tracked subject.
// A subject with TotalTopics == 0 is always 0, even when topics are marked
// complete; this is the one policy used everywhere.
func (u *User) RecalcProgress() {
	for i := range u.Progress {
		p := &u.Progress[i]
		if p.TotalTopics > 0 {
			p.Percentage = roundPct(len(p.TopicsCompleted), p.TotalTopics)
		} else {
			p.Percentage = 0
		}
	}
}

// OverallProgress is the arithmetic mean of the subject percentages, rounded;
// 0 when no subjects are tracked.
func (u *User) OverallProgress() int {
	if len(u.Progress) == 0 {
		return 0
	}
	total := 0
	for _, p := range u.Progress {
		total += p.Percentage
	}
	return int(math.Round(float64(total) / float64(len(u.Progress))))
}

func roundPct(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
