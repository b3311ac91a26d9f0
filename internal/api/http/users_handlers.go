package http

import (
	"encoding/json"
	"errors"
	"net/http"

	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/user"
)

// GET /users
// Teacher roster with overall progress per student.
func ListUsersHandler(store user.Store) http.HandlerFunc {
	type entry struct {
		user.User
		OverallProgress int `json:"overall_progress"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := store.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		out := make([]entry, 0, len(users))
		for _, u := range users {
			out = append(out, entry{User: u, OverallProgress: u.OverallProgress()})
		}
		writeJSON(w, map[string]any{"users": out})
	}
}

// GET /profile
func GetProfileHandler(store user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := store.Get(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"user": u})
	}
}

// PUT /profile  { "name": ..., "grade": ..., "subjects": [...], "bio": ... }
// Only editable profile fields; email, role and progress documents are not
// touched here. Absent fields keep their stored value.
func UpdateProfileHandler(store user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     *string   `json:"name"`
			Grade    *string   `json:"grade"`
			Subjects *[]string `json:"subjects"`
			Bio      *string   `json:"bio"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		userID := authmw.SubjectFromContext(r.Context())
		for attempt := 0; ; attempt++ {
			u, err := store.Get(r.Context(), userID)
			if err != nil {
				writeError(w, err)
				return
			}
			if req.Name != nil {
				if *req.Name == "" {
					badRequest(w, "name cannot be empty")
					return
				}
				u.Name = *req.Name
			}
			if req.Grade != nil {
				u.Grade = *req.Grade
			}
			if req.Subjects != nil {
				u.Subjects = *req.Subjects
			}
			if req.Bio != nil {
				u.Bio = *req.Bio
			}
			err = store.Update(r.Context(), &u)
			if err == nil {
				writeJSON(w, map[string]any{"success": true, "user": u})
				return
			}
			if errors.Is(err, user.ErrConflict) && attempt < 2 {
				continue
			}
			writeError(w, err)
			return
		}
	}
}
