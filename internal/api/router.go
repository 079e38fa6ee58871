package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(apiHandler *APIHandler, limiter *RateLimiter) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	r.Handle("/metrics", promhttp.Handler())

	// All API routes live under /api
	r.Route("/api", func(r chi.Router) {
		r.Use(apiHandler.MetricsMiddleware)

		// Public routes, rate limited by IP
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/signup", apiHandler.SignupHandler)
			r.Post("/login", apiHandler.LoginHandler)
		})
		r.Get("/health", apiHandler.HealthHandler)

		// User-authenticated routes, rate limited per user
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)
			r.Use(limiter.Middleware)

			// Extraction
			r.Post("/extract", apiHandler.ExtractHandler)

			// Concept routes
			r.Get("/concepts", apiHandler.ListConceptsHandler)
			r.Get("/concepts/{conceptID}", apiHandler.GetConceptHandler)
			r.Patch("/concepts/{conceptID}", apiHandler.UpdateConceptHandler)
			r.Delete("/concepts/{conceptID}", apiHandler.DeleteConceptHandler)
			r.Post("/concepts/{conceptID}/review", apiHandler.ReviewConceptHandler)
			r.Get("/concepts/{conceptID}/occurrences", apiHandler.ListOccurrencesHandler)

			// Conversation routes
			r.Get("/conversations", apiHandler.ListConversationsHandler)
			r.Get("/conversations/{conversationID}", apiHandler.GetConversationHandler)
			r.Put("/conversations/{conversationID}", apiHandler.UpdateConversationHandler)
			r.Delete("/conversations/{conversationID}", apiHandler.DeleteConversationHandler)

			// Category routes
			r.Get("/categories", apiHandler.ListCategoriesHandler)
			r.Post("/categories", apiHandler.CreateCategoryHandler)
			r.Post("/categories/rename", apiHandler.RenameCategoryHandler)
			r.Post("/categories/move", apiHandler.MoveCategoryHandler)
			r.Post("/categories/delete", apiHandler.DeleteCategoryHandler)
			r.Delete("/categories", apiHandler.DeleteCategoryHandler)
			r.Get("/categories/learning/stats", apiHandler.LearningStatsHandler)

			// Quizzes, learning journey and feedback
			r.Post("/quiz", apiHandler.GenerateQuizHandler)
			r.Post("/journey", apiHandler.JourneyHandler)
			r.Post("/feedback", apiHandler.CreateFeedbackHandler)
			r.Get("/feedback", apiHandler.ListFeedbackHandler)
			r.Get("/sessions", apiHandler.ListSessionsHandler)
		})
	})

	return r
}
