/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. Recoverer:  Panic recovery (500 instead of crash)
  3. zap logger: Structured request logging
  4. CORS:       Cross-origin requests for frontend tooling
  5. Rate limit: Per-IP token bucket

ROUTE GROUPS:
  /api/workers/*      Worker registration, intervals, payroll
  /api/rulesets/*     Rule set versions and defaults
  /api/intervals/*    Interval lifecycle transitions
  /api/validations/*  Dry-run interval and shift checks

SECURITY NOTE:
  No authentication middleware. The service is expected to sit behind a
  gateway that terminates auth.

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(h.Logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(NewRateLimiter(50, 100).Middleware)

	r.Get("/healthz", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Worker routes
		r.Route("/workers", func(r chi.Router) {
			r.Get("/", h.ListWorkers)
			r.Post("/", h.CreateWorker)
			r.Get("/{id}", h.GetWorker)
			r.Get("/{id}/ruleset", h.GetEffectiveRuleSet)
			r.Post("/{id}/intervals", h.RecordInterval)
			r.Get("/{id}/payroll", h.GetPayroll)
		})

		// Rule set routes
		r.Route("/rulesets", func(r chi.Router) {
			r.Get("/", h.ListRuleSets)
			r.Post("/", h.CreateRuleSet)
			r.Post("/{category}/default", h.SetDefaultRuleSet)
		})

		// Interval lifecycle routes
		r.Route("/intervals", func(r chi.Router) {
			r.Get("/{id}", h.GetInterval)
			r.Post("/{id}/approve", h.ApproveInterval)
			r.Post("/{id}/reject", h.RejectInterval)
			r.Post("/{id}/pay", h.MarkIntervalPaid)
		})

		// Dry-run validation routes
		r.Route("/validations", func(r chi.Router) {
			r.Post("/interval", h.ValidateInterval)
			r.Post("/shift", h.ValidateShift)
		})
	})

	return r
}

// requestLogger logs one structured line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	}
}
