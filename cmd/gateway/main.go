package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/studyhub/studyhub/internal/api/http"
	auth "github.com/studyhub/studyhub/internal/auth/middleware"
	"github.com/studyhub/studyhub/internal/config"
	"github.com/studyhub/studyhub/internal/db"
	"github.com/studyhub/studyhub/internal/forum"
	"github.com/studyhub/studyhub/internal/llm"
	"github.com/studyhub/studyhub/internal/mail"
	"github.com/studyhub/studyhub/internal/notes"
	"github.com/studyhub/studyhub/internal/progress"
	"github.com/studyhub/studyhub/internal/quiz"
	rbac "github.com/studyhub/studyhub/internal/rbac"
	storage "github.com/studyhub/studyhub/internal/storage"
	"github.com/studyhub/studyhub/internal/studyplan"
	syncx "github.com/studyhub/studyhub/internal/sync"
	"github.com/studyhub/studyhub/internal/user"
)

func main() {
	if err := godotenv.Load(); err == nil {
		log.Println("loaded .env")
	}
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	userStore := user.NewSQLStore(dbh)
	quizStore := quiz.NewSQLStore(dbh)
	noteStore := notes.NewSQLStore(dbh)
	forumStore := forum.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)

	// --- Services ---
	tracker := progress.NewTracker(userStore, events)
	planner := studyplan.NewGenerator(userStore, events)
	scorer := quiz.NewScorer(quizStore, userStore, events)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	var sender mail.Sender = mail.ConsoleSender{}
	if cfg.SendgridAPIKey != "" {
		sender = mail.NewSendgridSender(cfg.SendgridAPIKey, cfg.MailFromName, cfg.MailFrom)
	}

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public auth surface
	r.Post("/auth/register", auth.RegisterHandler(userStore))
	r.Post("/auth/login", auth.LoginHandler(authSvc, userStore))
	r.Post("/auth/forgot-password", auth.ForgotPasswordHandler(userStore, sender, cfg.PublicURL))
	r.Post("/auth/reset-password", auth.ResetPasswordHandler(userStore))

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("user:change_password")).
			Post("/auth/change-password", auth.ChangePasswordHandler(userStore))

		// Profile
		pr.Get("/profile", api.GetProfileHandler(userStore))
		pr.With(rbac.Require("profile:update")).
			Put("/profile", api.UpdateProfileHandler(userStore))

		// Dashboard
		pr.With(rbac.Require("progress:view")).
			Get("/dashboard", api.DashboardHandler(tracker, noteStore, quizStore, forumStore))

		// Progress
		pr.With(rbac.Require("progress:view")).
			Get("/progress", api.ProgressOverviewHandler(tracker))
		pr.With(rbac.Require("progress:update")).
			Post("/progress/update", api.UpdateProgressHandler(tracker))
		pr.With(rbac.Require("progress:view")).
			Get("/leaderboard", api.LeaderboardHandler(userStore))

		// Study plan
		pr.With(rbac.Require("plan:view")).
			Get("/studyplan", api.GetStudyPlanHandler(planner))
		pr.With(rbac.Require("plan:generate")).
			Post("/studyplan/generate", api.GeneratePlanHandler(planner))
		pr.With(rbac.Require("plan:complete")).
			Post("/studyplan/complete", api.CompleteTaskHandler(planner))

		// Quizzes
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes", api.ListQuizzesHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/subjects", api.QuizSubjectsHandler(quizStore))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}", api.GetQuizHandler(quizStore))
		pr.With(rbac.Require("quiz:submit")).
			Post("/quizzes/{quizID}/submit", api.SubmitQuizHandler(scorer))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{quizID}/result", api.QuizResultHandler(quizStore))
		pr.With(rbac.RequireAny("quiz:delete_own", "quiz:delete_any")).
			Delete("/quizzes/{quizID}", api.DeleteQuizHandler(quizStore))

		// Notes
		pr.With(rbac.Require("note:upload")).
			Post("/notes", api.UploadNoteHandler(noteStore, bs, events))
		pr.With(rbac.Require("note:view")).
			Get("/notes", api.ListNotesHandler(noteStore))
		pr.With(rbac.Require("note:view")).
			Get("/notes/{noteID}/download", api.DownloadNoteHandler(noteStore, bs))
		pr.With(rbac.Require("note:like")).
			Post("/notes/{noteID}/like", api.LikeNoteHandler(noteStore))
		pr.With(rbac.RequireAny("note:delete_own", "note:delete_any")).
			Delete("/notes/{noteID}", api.DeleteNoteHandler(noteStore, bs))

		// Forum
		pr.With(rbac.Require("forum:ask")).
			Post("/forum/questions", api.AskQuestionHandler(forumStore))
		pr.With(rbac.Require("forum:view")).
			Get("/forum/questions", api.ListQuestionsHandler(forumStore))
		pr.With(rbac.Require("forum:view")).
			Get("/forum/questions/{questionID}", api.GetQuestionHandler(forumStore))
		pr.With(rbac.Require("forum:answer")).
			Post("/forum/questions/{questionID}/answers", api.AnswerQuestionHandler(forumStore))
		pr.With(rbac.Require("forum:vote")).
			Post("/forum/questions/{questionID}/vote", api.VoteQuestionHandler(forumStore))
		pr.With(rbac.Require("forum:ask")).
			Post("/forum/questions/{questionID}/answers/{answerID}/accept", api.AcceptAnswerHandler(forumStore))

		// Users (teacher/admin)
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(userStore))

		// AI study assistant; only live when an LLM endpoint is configured
		if cfg.LLMBaseURL != "" {
			assistant := llm.NewClient(cfg.LLMBaseURL, cfg.LLMModel)
			pr.With(rbac.Require("ai:study_plan")).
				Post("/ai/study-plan", api.AIStudyPlanHandler(assistant))
		}
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
