package notes_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/studyhub/studyhub/internal/db"
	"github.com/studyhub/studyhub/internal/notes"
)

func openNoteStore(t *testing.T) *notes.SQLStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return notes.NewSQLStore(dbh)
}

func seedNote(t *testing.T, store notes.Store, id, title, subject string) {
	t.Helper()
	err := store.Put(context.Background(), &notes.Note{
		ID:         id,
		Title:      title,
		Subject:    subject,
		FileKey:    "notes/" + id + ".pdf",
		FileName:   id + ".pdf",
		FileType:   "application/pdf",
		UploadedBy: "u1",
		Tags:       []string{"exam"},
	})
	if err != nil {
		t.Fatalf("seed note %s: %v", id, err)
	}
}

func TestNoteStoreListAndSearch(t *testing.T) {
	store := openNoteStore(t)
	ctx := context.Background()

	seedNote(t, store, "n1", "Trigonometry basics", "Math")
	seedNote(t, store, "n2", "Optics cheat sheet", "Physics")
	seedNote(t, store, "n3", "Algebra drills", "Math")

	all, err := store.List(ctx, notes.ListOpts{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("notes = %d, want 3", len(all))
	}

	math, err := store.List(ctx, notes.ListOpts{Subject: "Math"})
	if err != nil {
		t.Fatalf("list math: %v", err)
	}
	if len(math) != 2 {
		t.Fatalf("math notes = %d, want 2", len(math))
	}

	// "all" sentinel disables the subject filter
	allSentinel, err := store.List(ctx, notes.ListOpts{Subject: "all"})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(allSentinel) != 3 {
		t.Fatalf("all-sentinel notes = %d, want 3", len(allSentinel))
	}

	// search is case-insensitive substring
	found, err := store.List(ctx, notes.ListOpts{Search: "OPTICS"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].ID != "n2" {
		t.Fatalf("search result = %+v, want n2", found)
	}
}

func TestNoteStoreIncrementDownloads(t *testing.T) {
	store := openNoteStore(t)
	ctx := context.Background()
	seedNote(t, store, "n1", "Trig", "Math")

	for i := 0; i < 3; i++ {
		if err := store.IncrementDownloads(ctx, "n1"); err != nil {
			t.Fatalf("increment #%d: %v", i, err)
		}
	}
	n, err := store.Get(ctx, "n1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if n.Downloads != 3 {
		t.Fatalf("downloads = %d, want 3", n.Downloads)
	}
	if err := store.IncrementDownloads(ctx, "ghost"); !errors.Is(err, notes.ErrNotFound) {
		t.Fatalf("ghost increment err = %v, want ErrNotFound", err)
	}
}

func TestNoteStoreToggleLike(t *testing.T) {
	store := openNoteStore(t)
	ctx := context.Background()
	seedNote(t, store, "n1", "Trig", "Math")

	count, err := store.ToggleLike(ctx, "n1", "u2")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if count != 1 {
		t.Fatalf("likes = %d, want 1", count)
	}
	count, err = store.ToggleLike(ctx, "n1", "u3")
	if err != nil {
		t.Fatalf("second like: %v", err)
	}
	if count != 2 {
		t.Fatalf("likes = %d, want 2", count)
	}
	// same user again unlikes
	count, err = store.ToggleLike(ctx, "n1", "u2")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if count != 1 {
		t.Fatalf("likes after toggle = %d, want 1", count)
	}
	n, _ := store.Get(ctx, "n1")
	if n.LikedBy("u2") || !n.LikedBy("u3") {
		t.Fatalf("likes = %v", n.Likes)
	}
}

func TestNoteStoreDelete(t *testing.T) {
	store := openNoteStore(t)
	ctx := context.Background()
	seedNote(t, store, "n1", "Trig", "Math")

	if err := store.Delete(ctx, "n1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "n1"); !errors.Is(err, notes.ErrNotFound) {
		t.Fatalf("get after delete err = %v, want ErrNotFound", err)
	}
}
