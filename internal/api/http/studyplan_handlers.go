package http

import (
	"encoding/json"
	"net/http"
	"time"

	authmw "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/llm"
	"github.com/studyhub/studyhub/internal/studyplan"
)

// GET /studyplan
func GetStudyPlanHandler(gen *studyplan.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plan, err := gen.Plan(r.Context(), authmw.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"study_plan": plan})
	}
}

// POST /studyplan/generate  { "exam_date": "2026-06-01", "subjects": ["Math"], "daily_hours": 2 }
// Replaces any previous plan wholesale.
func GeneratePlanHandler(gen *studyplan.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamDate   string   `json:"exam_date"`
			Subjects   []string `json:"subjects"`
			DailyHours float64  `json:"daily_hours"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		examDate, ok := parseDate(req.ExamDate)
		if !ok {
			badRequest(w, "exam_date must be YYYY-MM-DD or RFC3339")
			return
		}
		plan, err := gen.Generate(r.Context(), authmw.SubjectFromContext(r.Context()), examDate, req.Subjects, req.DailyHours)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true, "study_plan": plan})
	}
}

// POST /studyplan/complete  { "day_id": "..." } or { "date": "...", "subject": "...", "task": "..." }
// Without a match this still reports success; the old text-matching contract.
func CompleteTaskHandler(gen *studyplan.Generator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			DayID   string `json:"day_id"`
			Date    string `json:"date"`
			Subject string `json:"subject"`
			Task    string `json:"task"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		var date time.Time
		if req.DayID == "" {
			var ok bool
			if date, ok = parseDate(req.Date); !ok {
				badRequest(w, "date must be YYYY-MM-DD or RFC3339")
				return
			}
		}
		err := gen.CompleteTask(r.Context(), authmw.SubjectFromContext(r.Context()), req.DayID, date, req.Subject, req.Task)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]any{"success": true})
	}
}

// POST /ai/study-plan  { "subject": "...", "exam_date": "...", "daily_hours": 2 }
// Narrative advice from the LLM; a down model is a 502, never partial output.
func AIStudyPlanHandler(client *llm.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject    string  `json:"subject"`
			ExamDate   string  `json:"exam_date"`
			DailyHours float64 `json:"daily_hours"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "bad json")
			return
		}
		if req.Subject == "" {
			badRequest(w, "subject required")
			return
		}
		examDate, ok := parseDate(req.ExamDate)
		if !ok {
			badRequest(w, "exam_date must be YYYY-MM-DD or RFC3339")
			return
		}
		advice, err := client.StudyAdvice(r.Context(), req.Subject, examDate, req.DailyHours)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadGateway)
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "study assistant unavailable"})
			return
		}
		writeJSON(w, map[string]any{"success": true, "subject": req.Subject, "study_plan": advice})
	}
}
