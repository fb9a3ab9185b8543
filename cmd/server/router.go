package main

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lexidrill/lexidrill-api/internal/api"
	apiMiddleware "github.com/lexidrill/lexidrill-api/internal/api/middleware"
	"github.com/lexidrill/lexidrill-api/internal/service/progress"
	"github.com/lexidrill/lexidrill-api/internal/service/quiz"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func setupRouter(
	appLogger *slog.Logger,
	sessionService quiz.SessionService,
	progressService progress.ProgressService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	quizHandler := api.NewQuizHandler(sessionService, appLogger)
	progressHandler := api.NewProgressHandler(progressService, appLogger)

	r.Route("/api", func(r chi.Router) {
		// Identity arrives from the upstream provider; everything under
		// /api requires it.
		r.Use(apiMiddleware.IdentityMiddleware)

		r.Post("/quiz/sessions", quizHandler.StartSession)
		r.Post("/quiz/sessions/{id}/answers", quizHandler.SubmitAnswer)
		r.Post("/quiz/sessions/{id}/pause", quizHandler.PauseSession)
		r.Post("/quiz/sessions/{id}/resume", quizHandler.ResumeSession)
		r.Get("/quiz/sessions/{id}/summary", quizHandler.GetSummary)

		r.Get("/progress/terms/{id}", progressHandler.GetTermMastery)
		r.Get("/progress/domains/{id}", progressHandler.GetDomainProgress)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			appLogger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
