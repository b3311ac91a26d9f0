package http

import (
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/notes"
	"github.com/studyhub/studyhub/internal/rbac"
	"github.com/studyhub/studyhub/internal/storage"
	syncx "github.com/studyhub/studyhub/internal/sync"
	"github.com/studyhub/studyhub/internal/user"
)

const maxNoteUpload = 20 << 20 // 20 MiB

// POST /notes (multipart: file + title, subject, description, tags)
func UploadNoteHandler(store notes.Store, blobs storage.BlobStore, events syncx.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxNoteUpload); err != nil {
			badRequest(w, "bad multipart form")
			return
		}
		title := r.FormValue("title")
		subject := r.FormValue("subject")
		if title == "" || subject == "" {
			badRequest(w, "title and subject required")
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			badRequest(w, "file required")
			return
		}
		defer file.Close()

		id := uuid.NewString()
		key := "notes/" + id + strings.ToLower(filepath.Ext(header.Filename))
		key, err = blobs.Put(key, file)
		if err != nil {
			writeError(w, err)
			return
		}

		var tags []string
		for _, t := range strings.Split(r.FormValue("tags"), ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
		n := &notes.Note{
			ID:          id,
			Title:       title,
			Subject:     subject,
			Description: r.FormValue("description"),
			FileKey:     key,
			FileName:    header.Filename,
			FileType:    header.Header.Get("Content-Type"),
			UploadedBy:  authmw.SubjectFromContext(r.Context()),
			Tags:        tags,
			CreatedAt:   time.Now().UTC(),
		}
		if err := store.Put(r.Context(), n); err != nil {
			_ = blobs.Delete(key)
			writeError(w, err)
			return
		}
		if err := syncx.Record(r.Context(), events, syncx.TypeNoteUploaded, n.ID, map[string]string{"subject": subject}); err != nil {
			log.Printf("event log: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"success": true, "note": n})
	}
}

// GET /notes?subject=&search=&limit=
func ListNotesHandler(store notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := notes.ListOpts{
			Subject: r.URL.Query().Get("subject"),
			Search:  r.URL.Query().Get("search"),
			Limit:   parseIntDefault(r.URL.Query().Get("limit"), 50),
		}
		list, err := store.List(r.Context(), opts)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"notes": list})
	}
}

// GET /notes/{noteID}/download
// Streams the stored file and bumps the download counter. The count is
// best effort; a failed bump never blocks the download.
func DownloadNoteHandler(store notes.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Get(r.Context(), chi.URLParam(r, "noteID"))
		if err != nil {
			writeError(w, err)
			return
		}
		rc, err := blobs.Get(n.FileKey)
		if err != nil {
			writeError(w, notes.ErrNotFound)
			return
		}
		defer rc.Close()

		if err := store.IncrementDownloads(r.Context(), n.ID); err != nil {
			log.Printf("download count %s: %v", n.ID, err)
		}
		if n.FileType != "" {
			w.Header().Set("Content-Type", n.FileType)
		} else {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.Header().Set("Content-Disposition", `attachment; filename="`+n.FileName+`"`)
		_, _ = io.Copy(w, rc)
	}
}

// POST /notes/{noteID}/like
func LikeNoteHandler(store notes.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		count, err := store.ToggleLike(r.Context(), chi.URLParam(r, "noteID"), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "likes": count})
	}
}

// DELETE /notes/{noteID}
// Uploaders delete their own notes; teachers and admins delete any.
func DeleteNoteHandler(store notes.Store, blobs storage.BlobStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Get(r.Context(), chi.URLParam(r, "noteID"))
		if err != nil {
			writeError(w, err)
			return
		}
		role := rbac.RoleFromContext(r.Context())
		owner := n.UploadedBy == authmw.SubjectFromContext(r.Context())
		if !owner && role != user.RoleTeacher && role != user.RoleAdmin {
			forbidden(w)
			return
		}
		if err := store.Delete(r.Context(), n.ID); err != nil {
			writeError(w, err)
			return
		}
		if n.FileKey != "" {
			if err := blobs.Delete(n.FileKey); err != nil {
				log.Printf("blob delete %s: %v", n.FileKey, err)
			}
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
