// Package http assembles the server's routes and middleware chain.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signet/internal/admin"
	"signet/internal/platform/metrics"
	"signet/internal/platform/middleware"
)

// requestTimeout bounds every request; the overview's gather timeout sits
// inside this budget.
const requestTimeout = 15 * time.Second

// NewRouter wires the middleware chain and mounts the admin surface.
func NewRouter(adminHandler *admin.Handler, m *metrics.Metrics, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.ClientMetadata)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.LatencyMiddleware(m))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route(admin.BasePath, func(r chi.Router) {
		r.Use(middleware.SecureHeaders)
		adminHandler.Register(r, adminHandler.Guard())
	})

	// The login page lives under /administration; the root just points there.
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, admin.OverviewPath, http.StatusSeeOther)
	})

	return r
}
