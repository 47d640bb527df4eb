/**
 * @description
 * HTTP router setup for the enrollment service using go-chi/chi.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/protonmedicare/enrollment-service/internal/app"
)

// NewRouter creates a new Chi router and registers the enrollment routes.
func NewRouter(h *Handler, jwtSecret, cronSecret string, limiter *app.EnrollmentRateLimiter) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Enrollment service is healthy"))
	})

	r.Get("/plans", h.handleListPlans)

	// Gateway redirects members here after checkout; no session is present.
	r.Get("/payments/verify", h.handleVerifyPayment)

	// Renewal trigger for external timers.
	r.Route("/internal/renewals", func(r chi.Router) {
		r.Use(CronAuthMiddleware(cronSecret))
		r.Post("/run", h.handleRunRenewals)
	})

	// Member endpoints.
	r.Group(func(r chi.Router) {
		r.Use(SessionAuthMiddleware(jwtSecret))

		r.Get("/enrollments/{id}", h.handleGetEnrollment)
		r.Post("/enrollments/{id}/cancel", h.handleCancelEnrollment)

		r.Group(func(r chi.Router) {
			r.Use(RateLimitMiddleware(limiter))
			r.Post("/enrollments", h.handleCreateEnrollment)
		})
	})

	return r
}
