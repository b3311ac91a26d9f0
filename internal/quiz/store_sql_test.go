package quiz_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/studyhub/studyhub/internal/db"
	"github.com/studyhub/studyhub/internal/quiz"
)

func openQuizStore(t *testing.T) *quiz.SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return quiz.NewSQLStore(dbh)
}

func sampleQuiz(id, subject, difficulty string, public bool) *quiz.Quiz {
	return &quiz.Quiz{
		ID:         id,
		Title:      "Quiz " + id,
		Subject:    subject,
		Difficulty: difficulty,
		IsPublic:   public,
		CreatedBy:  "t1",
		Questions: []quiz.Question{
			{Text: "q1", Options: []quiz.Option{{Text: "a", IsCorrect: true}, {Text: "b"}}},
		},
	}
}

func TestQuizSQLStoreRoundTrip(t *testing.T) {
	store := openQuizStore(t)
	ctx := context.Background()

	in := sampleQuiz("qz1", "Math", quiz.DifficultyEasy, true)
	in.Questions[0].Explanation = "a because reasons"
	if err := store.Put(ctx, in); err != nil {
		t.Fatalf("put: %v", err)
	}

	out, err := store.Get(ctx, "qz1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out.Title != "Quiz qz1" || out.Subject != "Math" || !out.IsPublic {
		t.Fatalf("got %+v", out)
	}
	if len(out.Questions) != 1 || !out.Questions[0].Options[0].IsCorrect {
		t.Fatalf("questions doc = %+v", out.Questions)
	}
	if out.Questions[0].Explanation != "a because reasons" {
		t.Fatalf("explanation lost: %+v", out.Questions[0])
	}
}

func TestQuizSQLStoreListFilters(t *testing.T) {
	store := openQuizStore(t)
	ctx := context.Background()

	fixtures := []*quiz.Quiz{
		sampleQuiz("qz1", "Math", quiz.DifficultyEasy, true),
		sampleQuiz("qz2", "Math", quiz.DifficultyHard, true),
		sampleQuiz("qz3", "Physics", quiz.DifficultyEasy, true),
		sampleQuiz("qz4", "Math", quiz.DifficultyEasy, false), // private
	}
	for _, q := range fixtures {
		if err := store.Put(ctx, q); err != nil {
			t.Fatalf("put %s: %v", q.ID, err)
		}
	}

	public, err := store.List(ctx, quiz.ListOpts{PublicOnly: true})
	if err != nil {
		t.Fatalf("list public: %v", err)
	}
	if len(public) != 3 {
		t.Fatalf("public quizzes = %d, want 3", len(public))
	}
	for _, q := range public {
		if q.ID == "qz4" {
			t.Fatal("private quiz in public listing")
		}
		if q.Attempts != nil {
			t.Fatalf("list leaked attempts for %s", q.ID)
		}
	}

	mathEasy, err := store.List(ctx, quiz.ListOpts{Subject: "Math", Difficulty: quiz.DifficultyEasy, PublicOnly: true})
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(mathEasy) != 1 || mathEasy[0].ID != "qz1" {
		t.Fatalf("filtered = %+v, want only qz1", mathEasy)
	}

	subjects, err := store.Subjects(ctx)
	if err != nil {
		t.Fatalf("subjects: %v", err)
	}
	if len(subjects) != 2 {
		t.Fatalf("subjects = %v, want [Math Physics]", subjects)
	}
}

func TestQuizSQLStoreUpdateCAS(t *testing.T) {
	store := openQuizStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, sampleQuiz("qz1", "Math", quiz.DifficultyEasy, true)); err != nil {
		t.Fatalf("put: %v", err)
	}
	first, _ := store.Get(ctx, "qz1")
	second, _ := store.Get(ctx, "qz1")

	first.Attempts = []quiz.Attempt{{UserID: "u1", Score: 1, Answers: []int{0}, CompletedAt: time.Now()}}
	if err := store.Update(ctx, &first); err != nil {
		t.Fatalf("first update: %v", err)
	}
	second.Title = "renamed"
	if err := store.Update(ctx, &second); !errors.Is(err, quiz.ErrConflict) {
		t.Fatalf("stale update err = %v, want ErrConflict", err)
	}

	cur, _ := store.Get(ctx, "qz1")
	if len(cur.Attempts) != 1 || cur.Attempts[0].UserID != "u1" {
		t.Fatalf("attempts doc = %+v", cur.Attempts)
	}
}

func TestQuizSQLStoreDelete(t *testing.T) {
	store := openQuizStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, sampleQuiz("qz1", "Math", quiz.DifficultyEasy, true)); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Delete(ctx, "qz1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "qz1"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "qz1"); !errors.Is(err, quiz.ErrNotFound) {
		t.Fatalf("double delete err = %v, want ErrNotFound", err)
	}
}
