package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"maxwavex-backend/internal/handlers"
	"maxwavex-backend/internal/middleware"
	"maxwavex-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	resolver middleware.PrincipalResolver,
	authHandler *handlers.AuthHandler,
	moduleHandler *handlers.ModuleHandler,
	progressHandler *handlers.ProgressHandler,
	gameHandler *handlers.GameHandler,
	wsHub *websocket.Hub,
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

	authenticate := jwtAuth.Middleware(resolver)

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
			r.Post("/guest", authHandler.Guest)
			r.Post("/refresh", authHandler.Refresh)

			// Verify and logout require a token
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/verify", authHandler.Verify)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── Module Catalog Routes ────
		r.Route("/modules", func(r chi.Router) {
			r.Get("/", moduleHandler.List)                  // Public
			r.Get("/type/{contentType}", moduleHandler.ListByType) // Public

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/stats/summary", moduleHandler.StatsSummary)
			})

			r.Get("/{id}", moduleHandler.Get) // Public
		})

		// ──── Progress Routes (registered users only) ────
		r.Route("/progress", func(r chi.Router) {
			r.Use(authenticate)
			r.Use(middleware.RequireRegistered)
			r.Get("/", progressHandler.List)
			r.Get("/stats/summary", progressHandler.Summary)
			r.Get("/{moduleId}", progressHandler.Get)
			r.Put("/{moduleId}", progressHandler.Update)
			r.Post("/{moduleId}/complete", progressHandler.Complete)
		})

		// ──── Game Routes ────
		r.Route("/games", func(r chi.Router) {
			r.Get("/leaderboard/{gameType}", gameHandler.Leaderboard) // Public
			r.Get("/system-stats", gameHandler.SystemStats)          // Public

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/result", gameHandler.SubmitResult)
				r.Get("/stats", gameHandler.Stats)
				r.Get("/personal-best/{gameType}", gameHandler.PersonalBest)
			})
		})

		// ──── WebSocket ────
		r.Get("/ws/leaderboard", wsHub.HandleWebSocket)
	})

	return r
}
