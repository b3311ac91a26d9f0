package http

import (
	"encoding/json"
	"net/http"

	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/progress"
	"github.com/studyhub/studyhub/internal/user"
)

// GET /progress — the user's tracked subjects, quiz scores and study plan,
// with percentages freshly recomputed.
func ProgressOverviewHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := tracker.Overview(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"progress":         u.Progress,
			"quiz_scores":      u.QuizScores,
			"study_plan":       u.StudyPlan,
			"overall_progress": u.OverallProgress(),
		})
	}
}

// POST /progress/update  { "subject": "...", "topic": "...", "action": "complete|uncomplete", "total_topics": 12 }
// total_topics, when present, resizes the subject's target in the same write.
func UpdateProgressHandler(tracker *progress.Tracker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject     string `json:"subject"`
			Topic       string `json:"topic"`
			Action      string `json:"action"`
			TotalTopics *int   `json:"total_topics,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if req.Action == "" {
			req.Action = string(progress.ActionComplete)
		}
		sp, err := tracker.ApplyTopicUpdate(r.Context(), authmw.SubjectFromContext(r.Context()), progress.TopicUpdate{
			Subject:     req.Subject,
			Topic:       req.Topic,
			Action:      progress.Action(req.Action),
			TotalTopics: req.TotalTopics,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "progress": sp, "percentage": sp.Percentage})
	}
}

// GET /progress/leaderboard
func LeaderboardHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := progress.Leaderboard(r.Context(), users)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, entries)
	}
}
