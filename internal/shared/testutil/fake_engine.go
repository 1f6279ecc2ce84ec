package testutil

import (
	"context"
	"fmt"
	"sync"

	"astrochart/internal/ephemeris"
)

// FakeEngine is a deterministic ephemeris.Engine for tests. Longitudes come
// from the Longitudes table, or 30*index+0.123 when a body is not listed.
type FakeEngine struct {
	Path       string
	Longitudes map[ephemeris.Body]float64
	Angles     [3]float64

	// BodyErrors fails Position for the listed bodies
	BodyErrors map[ephemeris.Body]error
	// HousesErr fails Houses
	HousesErr error
	// PanicOn panics inside Position for the given body
	PanicOn *ephemeris.Body

	mu        sync.Mutex
	jdCalls   [][4]float64
	bodyCalls []ephemeris.Body
	houseArgs [][3]float64
}

// NewFakeEngine returns a FakeEngine with ASC 100.123 and MC 10.987
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		Path:   "/fake/ephe",
		Angles: [3]float64{100.123, 10.987, 12.5},
	}
}

// DataPath implements ephemeris.Engine
func (f *FakeEngine) DataPath() string { return f.Path }

// JulianDay implements ephemeris.Engine. It returns a value that encodes the
// arguments so tests can check them.
func (f *FakeEngine) JulianDay(year, month, day int, hour float64) float64 {
	f.mu.Lock()
	f.jdCalls = append(f.jdCalls, [4]float64{float64(year), float64(month), float64(day), hour})
	f.mu.Unlock()
	return 2451545.0
}

// Position implements ephemeris.Engine
func (f *FakeEngine) Position(ctx context.Context, jdUT float64, body ephemeris.Body) (ephemeris.Position, error) {
	f.mu.Lock()
	f.bodyCalls = append(f.bodyCalls, body)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ephemeris.Position{}, err
	}
	if f.PanicOn != nil && *f.PanicOn == body {
		panic(fmt.Sprintf("fake engine panic on %s", body))
	}
	if err, ok := f.BodyErrors[body]; ok {
		return ephemeris.Position{}, err
	}

	lon, ok := f.Longitudes[body]
	if !ok {
		lon = 30*float64(body) + 0.123
	}
	return ephemeris.Position{Longitude: lon, Speed: 1}, nil
}

// Houses implements ephemeris.Engine
func (f *FakeEngine) Houses(ctx context.Context, jdUT, lat, lon float64) (ephemeris.Houses, error) {
	f.mu.Lock()
	f.houseArgs = append(f.houseArgs, [3]float64{jdUT, lat, lon})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return ephemeris.Houses{}, err
	}
	if f.HousesErr != nil {
		return ephemeris.Houses{}, f.HousesErr
	}
	return ephemeris.Houses{Angles: f.Angles}, nil
}

// JulianDayCalls returns the recorded (year, month, day, hour) arguments
func (f *FakeEngine) JulianDayCalls() [][4]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][4]float64(nil), f.jdCalls...)
}

// PositionCalls returns the bodies requested so far, in call order
func (f *FakeEngine) PositionCalls() []ephemeris.Body {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ephemeris.Body(nil), f.bodyCalls...)
}

// HousesCalls returns the recorded (jd, lat, lon) arguments
func (f *FakeEngine) HousesCalls() [][3]float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][3]float64(nil), f.houseArgs...)
}

var _ ephemeris.Engine = (*FakeEngine)(nil)
