package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/studyhub/studyhub/internal/forum"
	"github.com/studyhub/studyhub/internal/notes"
	"github.com/studyhub/studyhub/internal/progress"
	"github.com/studyhub/studyhub/internal/quiz"
	"github.com/studyhub/studyhub/internal/studyplan"
	"github.com/studyhub/studyhub/internal/user"
)

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto status codes and the
// {success:false, error} payload mutating routes promise. Nothing leaks a
// partial success.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, user.ErrNotFound),
		errors.Is(err, quiz.ErrNotFound),
		errors.Is(err, notes.ErrNotFound),
		errors.Is(err, forum.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, progress.ErrInvalidInput),
		errors.Is(err, studyplan.ErrInvalidInput),
		errors.Is(err, quiz.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, user.ErrConflict),
		errors.Is(err, quiz.ErrConflict),
		errors.Is(err, user.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, forum.ErrForbidden):
		status = http.StatusForbidden
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": err.Error()})
}

func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "forbidden"})
}

func badRequest(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}

// parseDate accepts a calendar date or a full timestamp.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
