package http

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "astrochart/internal/errors"
	"astrochart/internal/services"
)

// DefaultMaxBodyBytes bounds a chart request body when none is configured
const DefaultMaxBodyBytes int64 = 1 << 20

// ChartHandler serves POST /astro
type ChartHandler struct {
	service      ChartServiceInterface
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	maxBodyBytes int64
}

// NewChartHandler creates a new chart handler. A non-positive maxBodyBytes
// selects DefaultMaxBodyBytes.
func NewChartHandler(service ChartServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler, maxBodyBytes int64) *ChartHandler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &ChartHandler{
		service:      service,
		logger:       logger.With(slog.String("component", "chart_handler")),
		errorHandler: errorHandler,
		maxBodyBytes: maxBodyBytes,
	}
}

// RegisterRoutes adds the chart route to r
func (h *ChartHandler) RegisterRoutes(r chi.Router) {
	r.Post("/astro", h.CreateChart)
}

// CreateChart handles POST /astro
func (h *ChartHandler) CreateChart(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.errorHandler.HandleError(w, r, fmt.Errorf("%w: read body: %v", services.ErrMissingBody, err))
		return
	}

	in, err := h.service.ParseChartRequest(body)
	if err != nil {
		h.errorHandler.HandleRequestError(w, r, err, body)
		return
	}

	result, err := h.service.Calculate(r.Context(), in)
	if err != nil {
		h.errorHandler.HandleRequestError(w, r, err, body)
		return
	}

	h.logger.DebugContext(r.Context(), "chart calculated",
		slog.String("datetime", in.Time.Format(services.DatetimeLayout)))

	render.Status(r, http.StatusOK)
	render.JSON(w, r, result)
}
