package http

import (
	"log"
	"net/http"

	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/forum"
	"github.com/studyhub/studyhub/internal/notes"
	"github.com/studyhub/studyhub/internal/progress"
	"github.com/studyhub/studyhub/internal/quiz"
)

const dashboardRecent = 5

// GET /dashboard
// One round trip for the landing page: fresh progress, recent notes,
// public quizzes and forum questions. A failed sidebar query degrades to
// an empty list rather than failing the whole page.
func DashboardHandler(tracker *progress.Tracker, noteStore notes.Store, quizStore quiz.Store, forumStore forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := tracker.Overview(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}

		recentNotes, err := noteStore.List(r.Context(), notes.ListOpts{Limit: dashboardRecent})
		if err != nil {
			log.Printf("dashboard notes: %v", err)
			recentNotes = []notes.Note{}
		}
		recentQuizzes, err := quizStore.List(r.Context(), quiz.ListOpts{PublicOnly: true, Limit: dashboardRecent})
		if err != nil {
			log.Printf("dashboard quizzes: %v", err)
			recentQuizzes = []quiz.Quiz{}
		}
		for i := range recentQuizzes {
			recentQuizzes[i].Sanitize()
		}
		recentQuestions, err := forumStore.List(r.Context(), dashboardRecent)
		if err != nil {
			log.Printf("dashboard questions: %v", err)
			recentQuestions = []forum.Question{}
		}

		writeJSON(w, map[string]any{
			"user":             u,
			"overall_progress": u.OverallProgress(),
			"recent_notes":     recentNotes,
			"recent_quizzes":   recentQuizzes,
			"recent_questions": recentQuestions,
		})
	}
}
