package bridge

import (
	"net/http"

	"calcburst/internal/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ExportResponse is the body returned by a successful manual export.
type ExportResponse struct {
	Message string   `json:"message"`
	Metrics Snapshot `json:"metrics"`
}

// NewRouter exposes a manual export trigger and the current gauge values.
func NewRouter(b *Bridge) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handlers.Health)
	r.Post("/export", ExportHandler(b))
	r.Handle("/metrics", promhttp.HandlerFor(b.Gatherer(), promhttp.HandlerOpts{}))

	return r
}

// ExportHandler runs one export per request and reports push failures as 500.
func ExportHandler(b *Bridge) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := b.Run(r.Context())
		if err != nil {
			handlers.WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}

		handlers.WriteJSON(w, http.StatusOK, ExportResponse{
			Message: "Metrics exported successfully",
			Metrics: snap,
		})
	}
}
