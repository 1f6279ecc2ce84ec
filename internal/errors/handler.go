package errors

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"astrochart/internal/infrastructure"
	"astrochart/internal/services"
)

// maxLoggedFields caps the field list copied into a failure log line, in runes
const maxLoggedFields = 200

// ErrorHandler provides centralized error handling. Every failure produces
// exactly one log line: Warn for client errors, Error for server errors.
type ErrorHandler struct {
	logger       *slog.Logger
	metrics      *infrastructure.BusinessMetrics
	includeStack bool
}

// NewErrorHandler creates a new error handler. metrics may be nil.
func NewErrorHandler(logger *slog.Logger, metrics *infrastructure.BusinessMetrics, includeStack bool) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		metrics:      metrics,
		includeStack: includeStack,
	}
}

// HandleError maps err and writes {"error": message}
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	h.HandleRequestError(w, r, err, nil)
}

// HandleRequestError is HandleError with the request body size and its
// top-level field names attached to the log line. Field values are birth data
// and are never logged.
func (h *ErrorHandler) HandleRequestError(w http.ResponseWriter, r *http.Request, err error, body []byte) {
	if err == nil {
		return
	}

	apiErr := MapChartError(err)

	level := slog.LevelWarn
	if apiErr.StatusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}

	attrs := []slog.Attr{
		slog.String("kind", services.ErrorKind(err)),
		slog.String("error_code", apiErr.ErrorCode),
		slog.Int("status", apiErr.StatusCode),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("cause", err.Error()),
	}
	if apiErr.Field != "" {
		attrs = append(attrs, slog.String("field", apiErr.Field))
	}
	if apiErr.Body != "" {
		attrs = append(attrs, slog.String("body", apiErr.Body))
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.Int("request_bytes", len(body)))
		if fields, ok := bodyFields(body); ok {
			attrs = append(attrs, slog.String("request_fields", fields))
		}
	}

	h.logger.LogAttrs(r.Context(), level, "request failed", attrs...)

	_ = render.Render(w, r, apiErr)
}

// HandlePanic logs a recovered panic and writes the generic internal error.
// The panic value never reaches the client.
func (h *ErrorHandler) HandlePanic(w http.ResponseWriter, r *http.Request, recovered interface{}) {
	ctx := r.Context()

	attrs := []slog.Attr{
		slog.String("kind", "panic"),
		slog.String("error_code", CodeInternalServer),
		slog.Int("status", http.StatusInternalServerError),
		slog.String("request_id", middleware.GetReqID(ctx)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("cause", fmt.Sprintf("%v", recovered)),
	}
	if h.includeStack {
		attrs = append(attrs, slog.String("stack", string(debug.Stack())))
	}
	h.logger.LogAttrs(ctx, slog.LevelError, "panic recovered", attrs...)

	if h.metrics != nil {
		h.metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("error_type", "panic"),
			attribute.String("component", "http"),
		))
	}

	_ = render.Render(w, r, NewInternal(fmt.Errorf("panic: %v", recovered)))
}

// NotFound returns a standard 404 error
func (h *ErrorHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, NewNotFound(r.URL.Path))
}

// MethodNotAllowed returns a standard 405 error
func (h *ErrorHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = render.Render(w, r, NewMethodNotAllowed(r.Method))
}

// bodyFields returns the sorted top-level keys of a JSON object body,
// comma separated. ok is false when body is not an object.
func bodyFields(body []byte) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil || obj == nil {
		return "", false
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return truncateRunes(strings.Join(keys, ","), maxLoggedFields), true
}

// truncateRunes cuts s to at most n runes, never inside a UTF-8 sequence
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
