package quiz_test

import (
	"context"
	"testing"

	"github.com/studyhub/studyhub/internal/quiz"
)

func TestMemStoreGetReturnsCopy(t *testing.T) {
	store := quiz.NewMemStore()
	ctx := context.Background()
	q := &quiz.Quiz{
		ID:       "q1",
		Title:    "Fractions",
		Subject:  "Math",
		IsPublic: true,
		Questions: []quiz.Question{
			{
				Text:        "1/2 + 1/2 = ?",
				Options:     []quiz.Option{{Text: "1", IsCorrect: true}, {Text: "2"}},
				Explanation: "halves sum to a whole",
			},
		},
		Attempts: []quiz.Attempt{
			{UserID: "u1", Score: 1, Answers: []int{0}},
		},
	}
	if err := store.Put(ctx, q); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, err := store.Get(ctx, "q1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	got.Sanitize()
	got.Attempts = append(got.Attempts[:0], quiz.Attempt{UserID: "u2"})

	again, err := store.Get(ctx, "q1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if !again.Questions[0].Options[0].IsCorrect {
		t.Fatal("answer key lost after sanitizing a Get copy")
	}
	if again.Questions[0].Explanation == "" {
		t.Fatal("explanation lost after sanitizing a Get copy")
	}
	if len(again.Attempts) != 1 || again.Attempts[0].UserID != "u1" {
		t.Fatalf("attempts = %v, want original u1 entry", again.Attempts)
	}
}

func TestMemStoreListReturnsCopies(t *testing.T) {
	store := quiz.NewMemStore()
	ctx := context.Background()
	q := &quiz.Quiz{
		ID:       "q1",
		Title:    "Fractions",
		Subject:  "Math",
		IsPublic: true,
		Questions: []quiz.Question{
			{Text: "?", Options: []quiz.Option{{Text: "1", IsCorrect: true}, {Text: "2"}}},
		},
	}
	if err := store.Put(ctx, q); err != nil {
		t.Fatalf("put: %v", err)
	}

	list, err := store.List(ctx, quiz.ListOpts{PublicOnly: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	list[0].Sanitize()

	again, err := store.Get(ctx, "q1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !again.Questions[0].Options[0].IsCorrect {
		t.Fatal("answer key lost after sanitizing a List copy")
	}
}
