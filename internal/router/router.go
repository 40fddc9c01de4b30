package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"cardlab-backend/internal/handlers"
	"cardlab-backend/internal/middleware"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	generationHandler *handlers.GenerationHandler,
	flashcardHandler *handlers.FlashcardHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Flashcard Routes ────
		r.Route("/flashcards", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			r.Post("/generate", generationHandler.Generate)
			r.Route("/batches", func(r chi.Router) {
				r.Get("/", generationHandler.ListBatches)
				r.Get("/{batchID}", generationHandler.GetBatch)
				r.Post("/{batchID}/review", generationHandler.Review)
			})

			r.Get("/", flashcardHandler.List)
			r.Post("/", flashcardHandler.Create)
			r.Get("/{cardID}", flashcardHandler.Get)
			r.Put("/{cardID}", flashcardHandler.Update)
			r.Delete("/{cardID}", flashcardHandler.Delete)
		})
	})

	return r
}
