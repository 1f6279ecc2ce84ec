package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "astrochart/internal/errors"
)

// MetricsHandler serves the Prometheus exposition
type MetricsHandler struct {
	exporter http.Handler
}

// NewMetricsHandler wraps the Prometheus handler. A nil exporter means
// metrics are disabled and /metrics answers 503.
func NewMetricsHandler(exporter http.Handler) *MetricsHandler {
	return &MetricsHandler{exporter: exporter}
}

// RegisterRoutes adds /metrics to r
func (h *MetricsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/metrics", h.GetMetrics)
}

// GetMetrics handles GET /metrics
func (h *MetricsHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		_ = render.Render(w, r, apierrors.NewServiceUnavailable("Metrics are disabled"))
		return
	}
	h.exporter.ServeHTTP(w, r)
}
