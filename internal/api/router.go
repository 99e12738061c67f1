package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/saransh000/hackathonpractice/internal/api/middleware"
	"github.com/saransh000/hackathonpractice/internal/config"
	"github.com/saransh000/hackathonpractice/internal/handlers"
	"github.com/saransh000/hackathonpractice/internal/realtime"
	"github.com/saransh000/hackathonpractice/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, cfg *config.Config, db store.DataStore, redisStore *store.RedisStore, hub *realtime.Hub) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	h := handlers.NewHandler(db, redisStore, hub, cfg.JWTSecret, cfg.TokenTTL)
	auth := middleware.NewAuthMiddleware(db, cfg.JWTSecret)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/health", h.Health)
	r.Post("/api/auth/signup", h.Signup)
	r.Post("/api/auth/login", h.Login)

	// Realtime board synchronization
	wsRouter := realtime.NewRouter(hub, logger)
	r.Get("/ws", realtime.Handler(hub, wsRouter, logger))

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth)

		r.Get("/api/auth/me", h.Me)

		r.Route("/api/teams", func(r chi.Router) {
			r.Post("/", h.CreateTeam)
			r.Get("/", h.ListTeams)
			r.Post("/join", h.JoinTeam)
			r.Get("/{id}", h.GetTeam)
			r.Post("/{id}/leave", h.LeaveTeam)
			r.Get("/{id}/board", h.GetBoard)
			r.Put("/{id}/board/columns", h.UpdateBoardColumns)
			r.Get("/{id}/active", h.ActiveUsers)
		})

		r.Route("/api/tasks", func(r chi.Router) {
			r.Post("/", h.CreateTask)
			r.Get("/{id}", h.GetTask)
			r.Put("/{id}", h.UpdateTask)
			r.Put("/{id}/move", h.MoveTask)
			r.Delete("/{id}", h.DeleteTask)
		})

		r.Route("/api/messages", func(r chi.Router) {
			r.Post("/", h.SendDM)
			r.Get("/", h.GetDMs)
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin)
			r.Get("/api/admin/stats", h.Stats)
			r.Get("/api/admin/login-history", h.LoginHistory)
			r.Get("/api/admin/login-stats", h.LoginStats)
			r.Get("/api/admin/users", h.ListUsers)
			r.Put("/api/admin/users/{id}/role", h.UpdateUserRole)
			r.Delete("/api/admin/users/{id}", h.DeleteUser)
		})
	})

	return r
}
