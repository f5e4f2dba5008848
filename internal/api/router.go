package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds the dependency probes behind GET /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeNotFound(w, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrCodeMethodNotAllow, "method not allowed")
	})

	r.Get("/health", s.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)

		r.With(s.authMiddleware).Get("/me", s.handleMe)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Route("/gadgets", func(r chi.Router) {
			r.Get("/", s.handleListGadgets)
			r.Post("/", s.handleCreateGadget)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetGadget)
				r.Patch("/", s.handleUpdateGadget)
				r.Delete("/", s.handleRetireGadget)
				r.Post("/self-destruct", s.handleSelfDestruct)
				r.Post("/self-destruct/confirm", s.handleConfirmSelfDestruct)
			})
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// handleHealth reports ok, or 503 when the database probe fails.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":  "ok",
		"version": s.version,
	}

	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()
		if err := s.db.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check failed", "component", "database", "error", err)
			body["status"] = "degraded"
			body["database"] = "unavailable"
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		body["database"] = "ok"
	}

	writeJSON(w, http.StatusOK, body)
}
