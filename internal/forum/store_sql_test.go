package forum_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/studyhub/studyhub/internal/db"
	"github.com/studyhub/studyhub/internal/forum"
)

func openForumStore(t *testing.T) *forum.SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return forum.NewSQLStore(dbh)
}

func askQuestion(t *testing.T, store forum.Store, id, askedBy string) {
	t.Helper()
	err := store.Ask(context.Background(), &forum.Question{
		ID:      id,
		Title:   "How do I factor quadratics?",
		Content: "Stuck on x^2+5x+6.",
		Subject: "Math",
		Tags:    []string{"algebra"},
		AskedBy: askedBy,
	})
	if err != nil {
		t.Fatalf("ask %s: %v", id, err)
	}
}

func TestForumGetBumpsViews(t *testing.T) {
	store := openForumStore(t)
	ctx := context.Background()
	askQuestion(t, store, "qn1", "u1")

	q, err := store.Get(ctx, "qn1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if q.Views != 1 {
		t.Fatalf("views = %d, want 1 after first read", q.Views)
	}
	q, _ = store.Get(ctx, "qn1")
	if q.Views != 2 {
		t.Fatalf("views = %d, want 2 after second read", q.Views)
	}

	if _, err := store.Get(ctx, "ghost"); !errors.Is(err, forum.ErrNotFound) {
		t.Fatalf("ghost get err = %v, want ErrNotFound", err)
	}
}

func TestForumAddAnswer(t *testing.T) {
	store := openForumStore(t)
	ctx := context.Background()
	askQuestion(t, store, "qn1", "u1")

	err := store.AddAnswer(ctx, "qn1", forum.Answer{ID: "a1", Content: "Factor to (x+2)(x+3).", AnsweredBy: "u2"})
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	q, _ := store.Get(ctx, "qn1")
	if len(q.Answers) != 1 || q.Answers[0].AnsweredBy != "u2" {
		t.Fatalf("answers = %+v", q.Answers)
	}
	if q.Answers[0].IsAccepted {
		t.Fatal("fresh answer already accepted")
	}

	err = store.AddAnswer(ctx, "ghost", forum.Answer{ID: "a2", Content: "x"})
	if !errors.Is(err, forum.ErrNotFound) {
		t.Fatalf("ghost answer err = %v, want ErrNotFound", err)
	}
}

func TestForumVote(t *testing.T) {
	store := openForumStore(t)
	ctx := context.Background()
	askQuestion(t, store, "qn1", "u1")

	total, err := store.Vote(ctx, "qn1", 1)
	if err != nil {
		t.Fatalf("upvote: %v", err)
	}
	if total != 1 {
		t.Fatalf("votes = %d, want 1", total)
	}
	total, err = store.Vote(ctx, "qn1", -1)
	if err != nil {
		t.Fatalf("downvote: %v", err)
	}
	if total != 0 {
		t.Fatalf("votes = %d, want 0", total)
	}
	if _, err := store.Vote(ctx, "ghost", 1); !errors.Is(err, forum.ErrNotFound) {
		t.Fatalf("ghost vote err = %v, want ErrNotFound", err)
	}
}

func TestForumAcceptAnswer(t *testing.T) {
	store := openForumStore(t)
	ctx := context.Background()
	askQuestion(t, store, "qn1", "asker")

	for _, id := range []string{"a1", "a2"} {
		if err := store.AddAnswer(ctx, "qn1", forum.Answer{ID: id, Content: "ans " + id, AnsweredBy: "u2"}); err != nil {
			t.Fatalf("answer %s: %v", id, err)
		}
	}

	// only the asker may accept
	err := store.AcceptAnswer(ctx, "qn1", "a1", "someone-else")
	if !errors.Is(err, forum.ErrForbidden) {
		t.Fatalf("non-asker accept err = %v, want ErrForbidden", err)
	}

	if err := store.AcceptAnswer(ctx, "qn1", "a1", "asker"); err != nil {
		t.Fatalf("accept: %v", err)
	}
	// accepting the other answer clears the first
	if err := store.AcceptAnswer(ctx, "qn1", "a2", "asker"); err != nil {
		t.Fatalf("re-accept: %v", err)
	}
	q, _ := store.Get(ctx, "qn1")
	for _, a := range q.Answers {
		if a.ID == "a1" && a.IsAccepted {
			t.Fatal("a1 still accepted after a2 accepted")
		}
		if a.ID == "a2" && !a.IsAccepted {
			t.Fatal("a2 not accepted")
		}
	}

	err = store.AcceptAnswer(ctx, "qn1", "nope", "asker")
	if !errors.Is(err, forum.ErrNotFound) {
		t.Fatalf("unknown answer accept err = %v, want ErrNotFound", err)
	}
}
