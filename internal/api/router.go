// Package api assembles the HTTP surface of the server.
package api

import (
	"net/http"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apiconnect "github.com/osa030/stairway/internal/api/connect"
	"github.com/osa030/stairway/internal/api/stairwayv1/stairwayv1connect"
)

// HealthResponse is the body of the health endpoint.
type HealthResponse struct {
	Status  string   `json:"status"`
	Tracks  int      `json:"tracks"`
	Sources []string `json:"sources"`
}

// NewRouter mounts the RPC service, metrics and health endpoints.
func NewRouter(service *apiconnect.RecommendationService, health func() HealthResponse) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)    // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer) // Recover from panics

	path, handler := stairwayv1connect.NewRecommendationServiceHandler(
		service,
		connect.WithInterceptors(apiconnect.NewRequestIDInterceptor()),
	)
	r.Handle(path+"*", handler)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(health())
	})

	return r
}
