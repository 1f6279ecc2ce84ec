package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"astrochart/internal/ephemeris"
	"astrochart/internal/infrastructure"
	"astrochart/internal/services"
	"astrochart/internal/shared/testutil"
)

func newRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-123")
	return req.WithContext(ctx)
}

func TestNewErrorHandler(t *testing.T) {
	tests := []struct {
		name         string
		includeStack bool
	}{
		{name: "create handler with stack traces", includeStack: true},
		{name: "create handler without stack traces", includeStack: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := testutil.NewTestLogger(t)

			handler := NewErrorHandler(logger, nil, tt.includeStack)

			assert.NotNil(t, handler)
			assert.Equal(t, tt.includeStack, handler.includeStack)
			assert.NotNil(t, handler.logger)
		})
	}
}

func TestErrorHandler_HandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		body       string
		wantStatus int
		wantJSON   string
		wantLevel  slog.Level
		wantAttrs  map[string]any
	}{
		{
			name:       "missing field logs field",
			err:        &services.FieldError{Field: services.FieldDatetime},
			body:       `{"longitude": 139.6917, "latitude": 35.6895}`,
			wantStatus: http.StatusBadRequest,
			wantJSON:   `{"error":"Missing required field: 'datetime'"}`,
			wantLevel:  slog.LevelWarn,
			wantAttrs: map[string]any{
				"kind":           "missing_field",
				"field":          "datetime",
				"request_fields": "latitude,longitude",
				"request_id":     "req-123",
			},
		},
		{
			name:       "planet failure logs body name",
			err:        &services.PlanetError{Body: ephemeris.Mars, Err: errors.New("no data")},
			wantStatus: http.StatusInternalServerError,
			wantJSON:   `{"error":"Error calculating planet Mars: no data"}`,
			wantLevel:  slog.LevelError,
			wantAttrs: map[string]any{
				"kind":       "planet_calculation",
				"body":       "Mars",
				"error_code": CodePlanetCalculation,
				"cause":      "calculate planet Mars: no data",
			},
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("database exploded"),
			wantStatus: http.StatusInternalServerError,
			wantJSON:   `{"error":"An internal server error occurred. Please try again later."}`,
			wantLevel:  slog.LevelError,
			wantAttrs: map[string]any{
				"kind":  "internal",
				"cause": "database exploded",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := testutil.NewTestLogger(t)
			h := NewErrorHandler(logger, nil, false)
			w := httptest.NewRecorder()

			h.HandleRequestError(w, newRequest(http.MethodPost, "/astro"), tt.err, []byte(tt.body))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantJSON, w.Body.String())

			require.Equal(t, 1, logs.Count(), "exactly one log line per failure")
			for k, v := range logs.GetRecordsByLevel(tt.wantLevel)[0].Attrs {
				assert.NotContains(t, fmt.Sprint(v), "139.6917", "attr %s leaks a coordinate", k)
			}
			testutil.AssertLogContains(t, logs, tt.wantLevel, "request failed")
			for k, v := range tt.wantAttrs {
				testutil.AssertLogAttr(t, logs, k, v)
			}
			testutil.AssertLogAttr(t, logs, "component", "error_handler")
		})
	}
}

func TestErrorHandler_HandleErrorNil(t *testing.T) {
	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, nil, false)
	w := httptest.NewRecorder()

	h.HandleError(w, newRequest(http.MethodPost, "/astro"), nil)

	assert.Equal(t, 0, logs.Count())
	assert.Empty(t, w.Body.String())
}

func TestErrorHandler_HandlePanic(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })
	metrics, err := infrastructure.CreateBusinessMetrics(provider.Meter("test"))
	require.NoError(t, err)

	logger, logs := testutil.NewTestLogger(t)
	h := NewErrorHandler(logger, metrics, true)
	w := httptest.NewRecorder()

	h.HandlePanic(w, newRequest(http.MethodPost, "/astro"), "secret panic text")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"`+MessageInternal+`"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "secret panic text")

	records := logs.GetRecordsByLevel(slog.LevelError)
	require.Len(t, records, 1)
	assert.Equal(t, "secret panic text", records[0].Attrs["cause"])
	assert.Contains(t, records[0].Attrs["stack"], "goroutine")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "system_errors_total" {
				continue
			}
			for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), total)
}

func TestErrorHandler_NotFoundAndMethodNotAllowed(t *testing.T) {
	h := NewErrorHandler(slog.Default(), nil, false)

	w := httptest.NewRecorder()
	h.NotFound(w, newRequest(http.MethodGet, "/missing"))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Resource not found: /missing"}`, w.Body.String())

	w = httptest.NewRecorder()
	h.MethodNotAllowed(w, newRequest(http.MethodGet, "/astro"))
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.JSONEq(t, `{"error":"Method GET is not allowed for this endpoint"}`, w.Body.String())
}

func TestBodyFields(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		want   string
		wantOK bool
	}{
		{"object keys sorted", `{"datetime": "2000-01-01 12:00", "latitude": 1, "longitude": 2}`, "datetime,latitude,longitude", true},
		{"empty object", `{}`, "", true},
		{"array", `[1, 2]`, "", false},
		{"null", `null`, "", false},
		{"broken json", `{"datetime": "2000-01-01`, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := bodyFields([]byte(tt.body))
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 3))
	assert.Equal(t, "ab...", truncateRunes("abc", 2))

	long := truncateRunes(strings.Repeat("é", maxLoggedFields+10), maxLoggedFields)
	assert.True(t, utf8.ValidString(long))
	assert.Equal(t, maxLoggedFields+3, utf8.RuneCountInString(long))
	assert.True(t, strings.HasSuffix(long, "..."))
}
