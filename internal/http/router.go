// Package httpapi assembles the HTTP surface: middleware chain, domain
// routes, and the operational endpoints.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	applicationhandler "admitly/internal/application/handler"
	blobhandler "admitly/internal/blob/handler"
	documenthandler "admitly/internal/document/handler"
	"admitly/internal/platform/middleware"
	profilehandler "admitly/internal/profile/handler"
)

// Handlers collects the route registrars the router mounts.
type Handlers struct {
	Applications *applicationhandler.Handler
	Documents    *documenthandler.Handler
	Profiles     *profilehandler.Handler
	Downloads    *blobhandler.Handler
}

// NewRouter wires the middleware chain and all endpoints. Everything under
// the authenticated group requires a valid bearer token; the download
// endpoint authenticates by signed token instead.
func NewRouter(h Handlers, validator middleware.JWTValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Downloads.Register(r)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(validator, logger))
		h.Applications.Register(r)
		h.Documents.Register(r)
		h.Profiles.Register(r)
	})

	return r
}
