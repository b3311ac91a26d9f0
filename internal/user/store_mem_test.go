package user_test

import (
	"context"
	"testing"

	"github.com/studyhub/studyhub/internal/user"
)

func TestMemStoreGetReturnsCopy(t *testing.T) {
	store := user.NewMemStore()
	ctx := context.Background()
	u := user.User{
		ID:    "u1",
		Name:  "Ada",
		Email: "ada@example.com",
		Role:  user.RoleStudent,
		Progress: []user.SubjectProgress{
			{Subject: "Math", TopicsCompleted: []string{"algebra", "calculus"}, TotalTopics: 10},
		},
		QuizScores: []user.QuizScore{
			{QuizID: "q1", Score: 2, MaxScore: 3, Percentage: 67},
		},
	}
	if err := store.Create(ctx, &u); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// Filter in place, the way callers rewrite these lists before Update.
	got.Progress[0].TopicsCompleted = got.Progress[0].TopicsCompleted[:0]
	got.QuizScores = append(got.QuizScores[:0], user.QuizScore{QuizID: "q9"})
	got.Name = "Mutated"

	again, err := store.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get again: %v", err)
	}
	if again.Name != "Ada" {
		t.Fatalf("name = %q, stored record mutated through a Get copy", again.Name)
	}
	if len(again.Progress[0].TopicsCompleted) != 2 || again.Progress[0].TopicsCompleted[0] != "algebra" {
		t.Fatalf("topics = %v, want [algebra calculus]", again.Progress[0].TopicsCompleted)
	}
	if len(again.QuizScores) != 1 || again.QuizScores[0].QuizID != "q1" {
		t.Fatalf("quiz scores = %v, want original q1 entry", again.QuizScores)
	}
}
