package rbac_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/studyhub/studyhub/internal/rbac"
)

func TestCheckerHas(t *testing.T) {
	c := rbac.NewChecker(nil)

	if !c.Has("student", "quiz:submit") {
		t.Fatal("student should submit quizzes")
	}
	if c.Has("student", "quiz:create") {
		t.Fatal("student must not create quizzes")
	}
	if !c.Has("teacher", "users:list") {
		t.Fatal("teacher should list users")
	}
	if !c.Has("admin", "anything:at_all") {
		t.Fatal("admin wildcard broken")
	}
	if c.Has("", "quiz:view") {
		t.Fatal("empty role granted a permission")
	}
	if c.Has("intruder", "quiz:view") {
		t.Fatal("unknown role granted a permission")
	}
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequireMiddleware(t *testing.T) {
	h := rbac.Require("quiz:create")(okHandler())

	req := httptest.NewRequest("POST", "/quizzes", nil)
	req = req.WithContext(rbac.WithRole(req.Context(), "teacher"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("teacher status = %d, want 200", rec.Code)
	}

	req = httptest.NewRequest("POST", "/quizzes", nil)
	req = req.WithContext(rbac.WithRole(req.Context(), "student"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student status = %d, want 403", rec.Code)
	}
}

func TestRequireAnyMiddleware(t *testing.T) {
	h := rbac.RequireAny("note:delete_own", "note:delete_any")(okHandler())

	for _, role := range []string{"student", "teacher", "admin"} {
		req := httptest.NewRequest("DELETE", "/notes/n1", nil)
		req = req.WithContext(rbac.WithRole(req.Context(), role))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want 200", role, rec.Code)
		}
	}

	req := httptest.NewRequest("DELETE", "/notes/n1", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("missing role status = %d, want 403", rec.Code)
	}
}
