package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/studyhub/studyhub/internal/mail"
	"github.com/studyhub/studyhub/internal/user"
)

const (
	bcryptCost      = 12
	minPasswordLen  = 6
	resetTokenTTL   = time.Hour
	resetTokenBytes = 20
)

// POST /auth/register  { "name": "...", "email": "...", "password": "...", "role": "student|teacher" }
func RegisterHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
			Role     string `json:"role"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Name == "" || req.Email == "" || !strings.Contains(req.Email, "@") {
			http.Error(w, "name and a valid email required", http.StatusBadRequest)
			return
		}
		if len(req.Password) < minPasswordLen {
			http.Error(w, fmt.Sprintf("password must be at least %d characters", minPasswordLen), http.StatusBadRequest)
			return
		}
		if req.Role == "" {
			req.Role = user.RoleStudent
		}
		if req.Role != user.RoleStudent && req.Role != user.RoleTeacher {
			http.Error(w, "role must be student or teacher", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		u := user.User{
			ID:           uuid.NewString(),
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         req.Role,
		}
		if err := users.Create(r.Context(), &u); err != nil {
			if errors.Is(err, user.ErrDuplicateEmail) {
				http.Error(w, "email already registered", http.StatusConflict)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(u)
	}
}

// POST /auth/login  { "email": "...", "password": "..." }
func LoginHandler(a *AuthService, users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": tok, "user": u})
	}
}

// POST /auth/forgot-password  { "email": "..." }
// Always answers 202: whether the address exists is not disclosed.
func ForgotPasswordHandler(users user.Store, sender mail.Sender, publicURL string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email string `json:"email"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if u, err := users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email))); err == nil {
			if err := issueResetToken(r.Context(), users, u, sender, publicURL); err != nil {
				log.Printf("password reset for %s failed: %v", u.ID, err)
			}
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}
}

func issueResetToken(ctx context.Context, users user.Store, u user.User, sender mail.Sender, publicURL string) error {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return err
	}
	u.ResetToken = hex.EncodeToString(buf)
	u.ResetExpires = time.Now().Add(resetTokenTTL)
	if err := users.Update(ctx, &u); err != nil {
		return err
	}
	link := publicURL + "/reset-password?token=" + u.ResetToken
	return sender.Send(ctx, mail.Message{
		ToName:  u.Name,
		ToEmail: u.Email,
		Subject: "Password reset",
		Text: "You requested a password reset.\n\n" +
			"Open the link below within one hour to choose a new password:\n" + link + "\n\n" +
			"If you did not request this, ignore this message.",
	})
}

// POST /auth/reset-password  { "token": "...", "password": "..." }
func ResetPasswordHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Token    string `json:"token"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if len(req.Password) < minPasswordLen {
			http.Error(w, fmt.Sprintf("password must be at least %d characters", minPasswordLen), http.StatusBadRequest)
			return
		}
		u, err := users.GetByResetToken(r.Context(), req.Token)
		if err != nil || time.Now().After(u.ResetExpires) {
			http.Error(w, "invalid or expired token", http.StatusBadRequest)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		u.PasswordHash = string(hash)
		u.ResetToken = ""
		u.ResetExpires = time.Time{}
		if err := users.Update(r.Context(), &u); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true})
	}
}

// POST /users/change-password  { "old_password": "...", "new_password": "..." }
func ChangePasswordHandler(users user.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := SubjectFromContext(r.Context())
		if userID == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		var req struct {
			OldPassword string `json:"old_password"`
			NewPassword string `json:"new_password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if len(req.NewPassword) < minPasswordLen {
			http.Error(w, "new password too short", http.StatusBadRequest)
			return
		}
		u, err := users.Get(r.Context(), userID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				http.Error(w, "user not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.OldPassword)) != nil {
			http.Error(w, "incorrect old password", http.StatusForbidden)
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcryptCost)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		u.PasswordHash = string(hash)
		if err := users.Update(r.Context(), &u); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
