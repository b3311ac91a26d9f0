package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/forum"
)

// POST /forum/questions
func AskQuestionHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Title   string   `json:"title"`
			Content string   `json:"content"`
			Subject string   `json:"subject"`
			Tags    []string `json:"tags"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if req.Title == "" || req.Content == "" {
			badRequest(w, "title and content required")
			return
		}
		q := &forum.Question{
			ID:        uuid.NewString(),
			Title:     req.Title,
			Content:   req.Content,
			Subject:   req.Subject,
			Tags:      req.Tags,
			AskedBy:   authmw.SubjectFromContext(r.Context()),
			Answers:   []forum.Answer{},
			CreatedAt: time.Now().UTC(),
		}
		if err := store.Ask(r.Context(), q); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"success": true, "question": q})
	}
}

// GET /forum/questions?limit=
func ListQuestionsHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := store.List(r.Context(), parseIntDefault(r.URL.Query().Get("limit"), 50))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"questions": list})
	}
}

// GET /forum/questions/{questionID}
// Fetching a question counts as a view.
func GetQuestionHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.Get(r.Context(), chi.URLParam(r, "questionID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"question": q})
	}
}

// POST /forum/questions/{questionID}/answers
func AnswerQuestionHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if req.Content == "" {
			badRequest(w, "content required")
			return
		}
		a := forum.Answer{
			ID:         uuid.NewString(),
			Content:    req.Content,
			AnsweredBy: authmw.SubjectFromContext(r.Context()),
			CreatedAt:  time.Now().UTC(),
		}
		if err := store.AddAnswer(r.Context(), chi.URLParam(r, "questionID"), a); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"success": true, "answer": a})
	}
}

// POST /forum/questions/{questionID}/vote  { "direction": "up" | "down" }
func VoteQuestionHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Direction string `json:"direction"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		delta := 0
		switch req.Direction {
		case "up":
			delta = 1
		case "down":
			delta = -1
		default:
			badRequest(w, `direction must be "up" or "down"`)
			return
		}
		total, err := store.Vote(r.Context(), chi.URLParam(r, "questionID"), delta)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "votes": total})
	}
}

// POST /forum/questions/{questionID}/answers/{answerID}/accept
// Only the asker may accept; accepting one answer clears any other.
func AcceptAnswerHandler(store forum.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := store.AcceptAnswer(r.Context(),
			chi.URLParam(r, "questionID"),
			chi.URLParam(r, "answerID"),
			authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true})
	}
}
