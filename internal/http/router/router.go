// Package router builds the chi router: middleware plus the route table.
package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/http/handlers/health"
	"github.com/aanand-mishra/users-api/internal/http/handlers/user"
	"github.com/aanand-mishra/users-api/internal/storage"
)

// New returns the fully wired HTTP handler.
//
// Route table:
//
//	POST   /api/create-user    → create a new user
//	GET    /api/get-all-users  → list all users
//	GET    /api/user/{id}      → get one user by ID
//	PUT    /api/user/{id}      → update a user
//	DELETE /api/user/{id}      → delete a user
//	GET    /healthz            → liveness
func New(cfg *config.Config, st storage.Storage, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// ── Middleware ───────────────────────────────────────────
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	// ── Routes ──────────────────────────────────────────────
	r.Get("/healthz", health.New(st))

	r.Route("/api", func(r chi.Router) {
		r.Post("/create-user", user.New(st))
		r.Get("/get-all-users", user.GetList(st))

		r.Route("/user/{id}", func(r chi.Router) {
			r.Get("/", user.GetByID(st))
			r.Put("/", user.Update(st))
			r.Delete("/", user.Delete(st))
		})
	})

	return r
}

// requestLogger logs each request with method, path, status code,
// duration and the id assigned by middleware.RequestID.
func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			log.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", status),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
