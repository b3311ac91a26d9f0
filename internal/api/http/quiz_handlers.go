package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/quiz"
	"github.com/studyhub/studyhub/internal/rbac"
	"github.com/studyhub/studyhub/internal/user"
)

// POST /quizzes
// Teachers author quizzes. Every question needs at least two options and
// exactly the authored correct flags; we only check one is marked.
func CreateQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title        string          `json:"title"`
			Subject      string          `json:"subject"`
			Description  string          `json:"description"`
			TimeLimitMin int             `json:"time_limit_min"`
			Difficulty   string          `json:"difficulty"`
			IsPublic     bool            `json:"is_public"`
			Questions    []quiz.Question `json:"questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if req.Title == "" || req.Subject == "" {
			badRequest(w, "title and subject required")
			return
		}
		if len(req.Questions) == 0 {
			badRequest(w, "at least one question required")
			return
		}
		for i, q := range req.Questions {
			if q.Text == "" || len(q.Options) < 2 {
				badRequest(w, "each question needs text and at least two options")
				return
			}
			marked := false
			for _, o := range q.Options {
				if o.IsCorrect {
					marked = true
					break
				}
			}
			if !marked {
				badRequest(w, "question "+strconv.Itoa(i+1)+" has no correct option")
				return
			}
		}
		if req.Difficulty == "" {
			req.Difficulty = quiz.DifficultyMedium
		}
		q := &quiz.Quiz{
			ID:           uuid.NewString(),
			Title:        req.Title,
			Subject:      req.Subject,
			Description:  req.Description,
			TimeLimitMin: req.TimeLimitMin,
			Difficulty:   req.Difficulty,
			IsPublic:     req.IsPublic,
			CreatedBy:    authmw.SubjectFromContext(r.Context()),
			Questions:    req.Questions,
			CreatedAt:    time.Now().UTC(),
		}
		if err := store.Put(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"success": true, "id": q.ID})
	}
}

// GET /quizzes?subject=&difficulty=&limit=
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := quiz.ListOpts{
			Subject:    r.URL.Query().Get("subject"),
			Difficulty: r.URL.Query().Get("difficulty"),
			PublicOnly: true,
			Limit:      parseIntDefault(r.URL.Query().Get("limit"), 50),
		}
		list, err := store.List(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		for i := range list {
			list[i].Sanitize()
		}
		writeJSON(w, map[string]any{"quizzes": list})
	}
}

// GET /quizzes/subjects
func QuizSubjectsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subjects, err := store.Subjects(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"subjects": subjects})
	}
}

// GET /quizzes/{quizID}
// Serves the quiz for taking: no correct flags, no explanations. If the
// caller already attempted it, the prior score rides along.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		if !q.IsPublic && q.CreatedBy != userID {
			writeError(w, quiz.ErrNotFound)
			return
		}
		prior := q.AttemptFor(userID)
		q.Sanitize()
		resp := map[string]any{"quiz": q}
		if prior != nil {
			resp["previous_attempt"] = prior
		}
		writeJSON(w, resp)
	}
}

// POST /quizzes/{quizID}/submit  { "answers": [0, 2, 1] }
func SubmitQuizHandler(scorer *quiz.Scorer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers []int `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		res, err := scorer.SubmitAttempt(r.Context(), authmw.SubjectFromContext(r.Context()), chi.URLParam(r, "quizID"), req.Answers)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{
			"success":    true,
			"score":      res.Score,
			"max_score":  res.MaxScore,
			"percentage": res.Percentage,
		})
	}
}

// GET /quizzes/{quizID}/result
// Full quiz with correct flags and explanations, plus the caller's attempt.
// Only available after submitting.
func QuizResultHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		attempt := q.AttemptFor(userID)
		if attempt == nil {
			writeError(w, quiz.ErrNotFound)
			return
		}
		q.Attempts = nil
		writeJSON(w, map[string]any{"quiz": q, "attempt": attempt})
	}
}

// DELETE /quizzes/{quizID}
// Teachers delete their own quizzes; admins delete any.
func DeleteQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Get(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			writeError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		if q.CreatedBy != authmw.SubjectFromContext(r.Context()) && role != user.RoleAdmin {
			forbidden(w)
			return
		}
		if err := store.Delete(r.Context(), q.ID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
