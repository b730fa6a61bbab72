package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"calcburst/internal/calculator"
	"calcburst/internal/handlers"
	"calcburst/internal/observability"
)

// Dependencies are the components the router mounts.
type Dependencies struct {
	Calculator *calculator.Handler
	Gatherer   prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", observability.RequestIDHeader},
		ExposedHeaders: []string{observability.RequestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler(deps.Gatherer))

	calculator.RegisterRoutes(r, deps.Calculator)

	return r
}
