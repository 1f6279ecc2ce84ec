package ephemeris

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"sync"

	"github.com/soniakeys/meeus/v3/apparent"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/moonposition"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

const (
	// speedStep is the half width of the central difference used for daily motion
	speedStep = 0.5
	kmPerAU   = 149597870.7
)

// VSOP87 series index for each body that needs one
var vsopIndex = map[Body]int{
	Mercury: pp.Mercury,
	Venus:   pp.Venus,
	Mars:    pp.Mars,
	Jupiter: pp.Jupiter,
	Saturn:  pp.Saturn,
	Uranus:  pp.Uranus,
	Neptune: pp.Neptune,
}

// Pluto theory validity, Meeus chapter 37
var (
	plutoFirstJD = julian.CalendarGregorianToJD(1885, 1, 1)
	plutoLastJD  = julian.CalendarGregorianToJD(2100, 1, 1)
)

// MeeusEngine implements Engine with github.com/soniakeys/meeus/v3
type MeeusEngine struct {
	path   string
	strict bool
	logger *slog.Logger
	tracer trace.Tracer

	mu           sync.RWMutex
	series       map[int]*pp.V87Planet
	group        singleflight.Group
	fallbackOnce sync.Once
}

// NewMeeusEngine creates an engine reading VSOP87 files from path. The path
// is fixed for the life of the engine. Bodies whose series file is missing
// are computed from mean orbital elements unless WithStrictData is set.
func NewMeeusEngine(path string, logger *slog.Logger) *MeeusEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &MeeusEngine{
		path:   path,
		logger: logger.With(slog.String("component", "ephemeris")),
		tracer: otel.Tracer("astrochart/ephemeris"),
		series: make(map[int]*pp.V87Planet),
	}
}

// WithStrictData makes a missing series file fail the calculation with
// ErrDataFile. Call it before the engine is shared.
func (e *MeeusEngine) WithStrictData() *MeeusEngine {
	e.strict = true
	return e
}

// Strict reports whether the mean element fallback is disabled
func (e *MeeusEngine) Strict() bool {
	return e.strict
}

// DataPath returns the configured data directory
func (e *MeeusEngine) DataPath() string {
	return e.path
}

// JulianDay converts a Gregorian calendar date and fractional hour to a JD
func (e *MeeusEngine) JulianDay(year, month, day int, hour float64) float64 {
	return julian.CalendarGregorianToJD(year, month, float64(day)+hour/24)
}

// Preload reads every VSOP87 series the engine uses. Missing files are
// logged and reported but do not stop the other loads.
func (e *MeeusEngine) Preload(ctx context.Context) error {
	indexes := []int{pp.Earth}
	for _, b := range Bodies {
		if i, ok := vsopIndex[b]; ok {
			indexes = append(indexes, i)
		}
	}

	var failed []string
	for _, i := range indexes {
		if _, err := e.planet(i); err != nil {
			e.logger.WarnContext(ctx, "ephemeris series not loaded",
				slog.String("path", e.path),
				slog.Int("series", i),
				slog.String("error", err.Error()))
			failed = append(failed, strconv.Itoa(i))
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d series missing in %s", ErrDataFile, len(failed), len(indexes), e.path)
	}

	e.logger.InfoContext(ctx, "ephemeris series loaded",
		slog.String("path", e.path),
		slog.Int("count", len(indexes)))
	return nil
}

// planet returns the cached VSOP87 series, loading it on first use
func (e *MeeusEngine) planet(ibody int) (*pp.V87Planet, error) {
	e.mu.RLock()
	p := e.series[ibody]
	e.mu.RUnlock()
	if p != nil {
		return p, nil
	}

	v, err, _ := e.group.Do(strconv.Itoa(ibody), func() (interface{}, error) {
		p, err := pp.LoadPlanetPath(ibody, e.path)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDataFile, err)
		}
		e.mu.Lock()
		e.series[ibody] = p
		e.mu.Unlock()
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*pp.V87Planet), nil
}

// Position computes the apparent geocentric ecliptic position of body
func (e *MeeusEngine) Position(ctx context.Context, jdUT float64, body Body) (Position, error) {
	ctx, span := e.tracer.Start(ctx, "ephemeris.position",
		trace.WithAttributes(
			attribute.String("body", body.String()),
			attribute.Float64("jd_ut", jdUT),
		))
	defer span.End()

	pos, err := e.position(ctx, jdUT, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Position{}, err
	}
	return pos, nil
}

func (e *MeeusEngine) position(ctx context.Context, jdUT float64, body Body) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	if !body.Valid() {
		return Position{}, fmt.Errorf("%w: %d", ErrUnknownBody, int(body))
	}
	if math.IsNaN(jdUT) || math.IsInf(jdUT, 0) {
		return Position{}, fmt.Errorf("%w: julian day is not finite", ErrOutOfRange)
	}

	jde := ephemerisDay(jdUT)
	lon, lat, dist, err := e.geocentric(jde, body)
	if err != nil {
		return Position{}, err
	}
	before, _, _, err := e.geocentric(jde-speedStep, body)
	if err != nil {
		return Position{}, err
	}
	after, _, _, err := e.geocentric(jde+speedStep, body)
	if err != nil {
		return Position{}, err
	}

	return Position{
		Longitude: lon,
		Latitude:  lat,
		Distance:  dist,
		Speed:     signedDelta(before, after) / (2 * speedStep),
	}, nil
}

// geocentric returns apparent longitude, latitude in degrees and distance
// in AU at dynamical time jde.
func (e *MeeusEngine) geocentric(jde float64, body Body) (lon, lat, dist float64, err error) {
	dpsi, _ := nutation.Nutation(jde)

	switch body {
	case Moon:
		l, b, km := moonposition.Position(jde)
		return normalizeDegrees((l + dpsi).Deg()), b.Deg(), km / kmPerAU, nil

	case Sun:
		earth, series, err := e.earth()
		if err != nil {
			return 0, 0, 0, err
		}
		if series != nil {
			l, b, r := solar.ApparentVSOP87(series, jde)
			return normalizeDegrees(l.Deg()), b.Deg(), r, nil
		}
		l, b, r := earth(jde)
		l += math.Pi + dpsi + unit.AngleFromSec(-20.4898).Div(r)
		return normalizeDegrees(l.Deg()), -b.Deg(), r, nil

	case Pluto:
		if jde < plutoFirstJD || jde >= plutoLastJD {
			return 0, 0, 0, fmt.Errorf("%w: Pluto theory covers 1885-2099", ErrOutOfRange)
		}
		earth, err := e.earth2000()
		if err != nil {
			return 0, 0, 0, err
		}
		// Chapter 37 is already referred to FK5 J2000
		l, b, d := lightTimeCorrected(jde, earth, pluto.Heliocentric)
		from := &coord.Ecliptic{Lon: l, Lat: b}
		to := precess.EclipticPosition(from, &coord.Ecliptic{}, 2000, base.JDEToJulianYear(jde), 0, 0)
		dl, db := apparent.EclipticAberration(to.Lon, to.Lat, jde)
		return normalizeDegrees((to.Lon + dl + dpsi).Deg()), (to.Lat + db).Deg(), d, nil

	default:
		earth, _, err := e.earth()
		if err != nil {
			return 0, 0, 0, err
		}
		planet, err := e.orbit(vsopIndex[body])
		if err != nil {
			return 0, 0, 0, err
		}
		l, b, d := lightTimeCorrected(jde, earth, planet)
		dl, db := apparent.EclipticAberration(l, b, jde)
		l, b = pp.ToFK5(l+dl, b+db, jde)
		return normalizeDegrees((l + dpsi).Deg()), b.Deg(), d, nil
	}
}

// orbit returns the VSOP87 series for ibody, or its mean elements when the
// file is missing and the engine is not strict.
func (e *MeeusEngine) orbit(ibody int) (orbit, error) {
	p, err := e.planet(ibody)
	if err == nil {
		return p.Position, nil
	}
	if e.strict {
		return nil, err
	}
	e.warnFallback(err)
	return meanOrbit(elementIndex[ibody]), nil
}

// earth returns the Earth orbit of date along with the VSOP87 series it came
// from. The series is nil when the low precision solar theory stands in.
func (e *MeeusEngine) earth() (orbit, *pp.V87Planet, error) {
	p, err := e.planet(pp.Earth)
	if err == nil {
		return p.Position, p, nil
	}
	if e.strict {
		return nil, nil, err
	}
	e.warnFallback(err)
	return solarOrbit, nil, nil
}

// earth2000 returns the Earth orbit referred to the J2000 ecliptic
func (e *MeeusEngine) earth2000() (orbit, error) {
	earth, series, err := e.earth()
	if err != nil {
		return nil, err
	}
	if series != nil {
		return series.Position2000, nil
	}
	return func(jde float64) (unit.Angle, unit.Angle, float64) {
		l, b, r := earth(jde)
		from := &coord.Ecliptic{Lon: l, Lat: b}
		to := precess.EclipticPosition(from, &coord.Ecliptic{}, base.JDEToJulianYear(jde), 2000, 0, 0)
		return to.Lon, to.Lat, r
	}, nil
}

func (e *MeeusEngine) warnFallback(err error) {
	e.fallbackOnce.Do(func() {
		e.logger.Warn("VSOP87 series unavailable, using mean orbital elements",
			slog.String("path", e.path),
			slog.String("error", err.Error()))
	})
}

// lightTimeCorrected converts heliocentric coordinates of a body to
// geometric geocentric ones, evaluating the body at the retarded time.
// Earth and body must share a reference frame.
func lightTimeCorrected(jde float64, earth, body orbit) (lon, lat unit.Angle, dist float64) {
	l0, b0, r0 := earth(jde)
	sl0, cl0 := l0.Sincos()
	sb0, cb0 := b0.Sincos()
	x0 := r0 * cb0 * cl0
	y0 := r0 * cb0 * sl0
	z0 := r0 * sb0

	var x, y, z, tau float64
	for i := 0; i < 3; i++ {
		l, b, r := body(jde - tau)
		sl, cl := l.Sincos()
		sb, cb := b.Sincos()
		x = r*cb*cl - x0
		y = r*cb*sl - y0
		z = r*sb - z0
		dist = math.Sqrt(x*x + y*y + z*z)
		tau = base.LightTime(dist)
	}

	lon = unit.Angle(math.Atan2(y, x))
	lat = unit.Angle(math.Atan2(z, math.Hypot(x, y)))
	return lon, lat, dist
}

// Houses computes Porphyry cusps and the angle array for an observer at
// geographic latitude lat and east longitude lon.
func (e *MeeusEngine) Houses(ctx context.Context, jdUT, lat, lon float64) (Houses, error) {
	ctx, span := e.tracer.Start(ctx, "ephemeris.houses",
		trace.WithAttributes(
			attribute.Float64("jd_ut", jdUT),
			attribute.Float64("latitude", lat),
			attribute.Float64("longitude", lon),
		))
	defer span.End()

	if err := ctx.Err(); err != nil {
		return Houses{}, err
	}
	if math.IsNaN(jdUT) || math.IsInf(jdUT, 0) {
		err := fmt.Errorf("%w: julian day is not finite", ErrOutOfRange)
		span.RecordError(err)
		return Houses{}, err
	}

	jde := ephemerisDay(jdUT)
	_, deps := nutation.Nutation(jde)
	eps := (nutation.MeanObliquity(jde) + deps).Deg()
	gast := sidereal.Apparent(jdUT).Angle().Deg()

	h, err := computeHouses(gast, eps, lat, lon)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Houses{}, err
	}
	return h, nil
}

var _ Engine = (*MeeusEngine)(nil)
