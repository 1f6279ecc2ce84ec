package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"astrochart/internal/ephemeris"
	"astrochart/internal/infrastructure"
	api "astrochart/pkg/contracts/api/v1"
)

// DatetimeLayout is the only accepted request datetime format
const DatetimeLayout = "2006-01-02 15:04"

// Request fields in the order their presence is checked
const (
	FieldDatetime  = "datetime"
	FieldLongitude = "longitude"
	FieldLatitude  = "latitude"
)

var requiredFields = []string{FieldDatetime, FieldLongitude, FieldLatitude}

// ChartInput is a validated chart request. Time carries civil UT components.
type ChartInput struct {
	Time      time.Time
	Longitude float64
	Latitude  float64
}

// ChartService validates chart requests and drives the ephemeris engine
type ChartService struct {
	engine   ephemeris.Engine
	metrics  *infrastructure.BusinessMetrics
	validate *validator.Validate
	tracer   trace.Tracer
	logger   *slog.Logger
}

// NewChartService creates a chart service. metrics may be nil.
func NewChartService(engine ephemeris.Engine, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *ChartService {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	logger = logger.With(slog.String("component", "chart_service"))
	logger.Info("ChartService initialized",
		slog.String("ephemeris_path", engine.DataPath()))

	return &ChartService{
		engine:   engine,
		metrics:  metrics,
		validate: v,
		tracer:   otel.Tracer("astrochart/services"),
		logger:   logger,
	}
}

// ParseChartRequest validates a raw request body. Checks run in order: body,
// field presence, datetime format, coordinates.
func (s *ChartService) ParseChartRequest(raw []byte) (ChartInput, error) {
	in, err := s.parse(raw)
	if err != nil {
		infrastructure.RecordChartError(context.Background(), s.metrics, ErrorKind(err))
	}
	return in, err
}

func (s *ChartService) parse(raw []byte) (ChartInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ChartInput{}, ErrMissingBody
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return ChartInput{}, ErrMissingBody
	}

	for _, name := range requiredFields {
		if _, ok := fields[name]; !ok {
			return ChartInput{}, &FieldError{Field: name}
		}
	}

	req := api.ChartRequest{}
	if err := json.Unmarshal(fields[FieldDatetime], &req.Datetime); err != nil {
		return ChartInput{}, fmt.Errorf("%w: datetime is not a string", ErrInvalidDatetime)
	}
	if err := s.validate.StructPartial(req, "Datetime"); err != nil {
		return ChartInput{}, fmt.Errorf("%w: %q", ErrInvalidDatetime, req.Datetime)
	}
	t, err := time.Parse(DatetimeLayout, req.Datetime)
	if err != nil {
		return ChartInput{}, fmt.Errorf("%w: %v", ErrInvalidDatetime, err)
	}

	lon, lonErr := parseCoordinate(fields[FieldLongitude])
	lat, latErr := parseCoordinate(fields[FieldLatitude])
	if err := errors.Join(lonErr, latErr); err != nil {
		return ChartInput{}, fmt.Errorf("%w: %v", ErrInvalidCoordinates, err)
	}

	return ChartInput{Time: t, Longitude: lon, Latitude: lat}, nil
}

// parseCoordinate accepts a JSON number or a string holding a decimal one.
// Hexadecimal floats are refused.
func parseCoordinate(raw json.RawMessage) (float64, error) {
	var v interface{}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return 0, err
	}

	var text string
	switch val := v.(type) {
	case json.Number:
		text = val.String()
	case string:
		text = strings.TrimSpace(val)
	default:
		return 0, fmt.Errorf("unsupported value %s", string(raw))
	}

	if digits := strings.ToLower(strings.TrimLeft(text, "+-")); strings.HasPrefix(digits, "0x") {
		return 0, fmt.Errorf("hexadecimal value %q", text)
	}

	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", text, err)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %q", text)
	}
	return f, nil
}

// BodyPosition pairs a body with its unrounded engine position
type BodyPosition struct {
	Body ephemeris.Body
	ephemeris.Position
}

// ChartDetails is the full engine output for one chart, before rounding
type ChartDetails struct {
	JulianDay float64
	Positions []BodyPosition
	Houses    ephemeris.Houses
}

// Result rounds the details into the wire form returned by POST /astro
func (d *ChartDetails) Result() *api.ChartResult {
	result := &api.ChartResult{
		Bodies: make([]api.BodyLongitude, 0, len(d.Positions)),
		ASC:    RoundLongitude(d.Houses.Ascendant()),
		MC:     RoundLongitude(d.Houses.Midheaven()),
	}
	for _, p := range d.Positions {
		result.Bodies = append(result.Bodies, api.BodyLongitude{
			Name:      p.Body.String(),
			Longitude: RoundLongitude(p.Longitude),
		})
	}
	return result
}

// Calculate computes the ten body longitudes and the ASC and MC for in.
// The first engine failure aborts the chart.
func (s *ChartService) Calculate(ctx context.Context, in ChartInput) (*api.ChartResult, error) {
	details, err := s.Details(ctx, in)
	if err != nil {
		return nil, err
	}
	return details.Result(), nil
}

// Details runs the same computation as Calculate and keeps the unrounded
// positions, including daily motion.
func (s *ChartService) Details(ctx context.Context, in ChartInput) (*ChartDetails, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "chart.calculate",
		trace.WithAttributes(
			attribute.String("chart.datetime", in.Time.Format(DatetimeLayout)),
			attribute.Float64("chart.longitude", in.Longitude),
			attribute.Float64("chart.latitude", in.Latitude),
		))
	defer span.End()

	details, err := s.calculate(ctx, in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		infrastructure.RecordChartCalculation(ctx, s.metrics, time.Since(start), ErrorKind(err))
		return nil, err
	}

	infrastructure.RecordChartCalculation(ctx, s.metrics, time.Since(start), "")
	return details, nil
}

func (s *ChartService) calculate(ctx context.Context, in ChartInput) (*ChartDetails, error) {
	t := in.Time
	hour := float64(t.Hour()) + float64(t.Minute())/60.0

	details := &ChartDetails{
		JulianDay: s.engine.JulianDay(t.Year(), int(t.Month()), t.Day(), hour),
		Positions: make([]BodyPosition, 0, len(ephemeris.Bodies)),
	}
	for _, body := range ephemeris.Bodies {
		pos, err := s.engine.Position(ctx, details.JulianDay, body)
		if err != nil {
			return nil, &PlanetError{Body: body, Err: err}
		}
		details.Positions = append(details.Positions, BodyPosition{Body: body, Position: pos})
	}

	houses, err := s.engine.Houses(ctx, details.JulianDay, in.Latitude, in.Longitude)
	if err != nil {
		return nil, &HouseError{Err: err}
	}
	details.Houses = houses

	return details, nil
}

// RoundLongitude rounds to two decimals and keeps the value in [0,360).
// Rounding works on the exact binary value with ties to even, so 100.125
// becomes 100.12.
func RoundLongitude(deg float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(deg, 'f', 2, 64), 64)
	if err != nil {
		return deg
	}
	if r >= 360 {
		r -= 360
	}
	if r == 0 {
		return 0
	}
	return r
}

// ErrorKind returns a short label for err, used in logs and metrics
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingBody):
		return "missing_body"
	case errors.Is(err, ErrMissingField):
		return "missing_field"
	case errors.Is(err, ErrInvalidDatetime):
		return "invalid_datetime"
	case errors.Is(err, ErrInvalidCoordinates):
		return "invalid_coordinates"
	case errors.Is(err, ErrPlanetCalculation):
		return "planet_calculation"
	case errors.Is(err, ErrHouseCalculation):
		return "house_calculation"
	default:
		return "internal"
	}
}
