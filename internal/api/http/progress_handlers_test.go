package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	api "github.com/studyhub/studyhub/internal/api/http"
	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/progress"
	"github.com/studyhub/studyhub/internal/user"
)

func newTracker(t *testing.T) (*progress.Tracker, *user.MemStore) {
	t.Helper()
	store := user.NewMemStore()
	err := store.Create(context.Background(), &user.User{
		ID: "u1", Name: "Ada", Email: "ada@example.com", Role: user.RoleStudent,
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return progress.NewTracker(store, nil), store
}

func TestUpdateProgressHandler(t *testing.T) {
	tracker, _ := newTracker(t)
	handler := api.UpdateProgressHandler(tracker)

	body, _ := json.Marshal(map[string]any{
		"subject": "Math", "topic": "algebra", "total_topics": 4,
	})
	req := httptest.NewRequest("POST", "/progress/update", bytes.NewReader(body))
	req = req.WithContext(authmw.WithSubject(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Success    bool                 `json:"success"`
		Progress   user.SubjectProgress `json:"progress"`
		Percentage int                  `json:"percentage"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success || resp.Percentage != 25 {
		t.Fatalf("resp = %+v, want success with 25%%", resp)
	}
}

func TestUpdateProgressHandlerRejectsBadInput(t *testing.T) {
	tracker, _ := newTracker(t)
	handler := api.UpdateProgressHandler(tracker)

	body, _ := json.Marshal(map[string]any{"subject": "", "topic": "algebra"})
	req := httptest.NewRequest("POST", "/progress/update", bytes.NewReader(body))
	req = req.WithContext(authmw.WithSubject(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Code != 400 {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Success || resp.Error == "" {
		t.Fatalf("error payload = %+v", resp)
	}
}

func TestProgressOverviewHandler(t *testing.T) {
	tracker, _ := newTracker(t)
	ctx := context.Background()
	if _, err := tracker.RecordTopicEvent(ctx, "u1", "Math", "algebra", progress.ActionComplete); err != nil {
		t.Fatalf("seed progress: %v", err)
	}

	req := httptest.NewRequest("GET", "/progress", nil)
	req = req.WithContext(authmw.WithSubject(req.Context(), "u1"))
	rec := httptest.NewRecorder()
	api.ProgressOverviewHandler(tracker)(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Progress        []user.SubjectProgress `json:"progress"`
		OverallProgress int                    `json:"overall_progress"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Progress) != 1 || resp.OverallProgress != 10 {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestLeaderboardHandler(t *testing.T) {
	store := user.NewMemStore()
	for _, u := range []user.User{
		{ID: "a", Name: "A", Email: "a@x.com", Role: user.RoleStudent,
			Progress: []user.SubjectProgress{{Subject: "Math", Percentage: 40}}},
		{ID: "b", Name: "B", Email: "b@x.com", Role: user.RoleStudent,
			Progress: []user.SubjectProgress{{Subject: "Math", Percentage: 90}}},
	} {
		u := u
		if err := store.Create(context.Background(), &u); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest("GET", "/leaderboard", nil)
	rec := httptest.NewRecorder()
	api.LeaderboardHandler(store)(rec, req)

	var entries []progress.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 2 || entries[0].UserID != "b" {
		t.Fatalf("entries = %+v, want b first", entries)
	}
}
