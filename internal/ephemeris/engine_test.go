package ephemeris

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jdForDynamical returns the UT Julian day whose dynamical time is jde
func jdForDynamical(jde float64) float64 {
	return jde - deltaT(jde)/secondsInDay
}

func TestBody_String(t *testing.T) {
	tests := []struct {
		body Body
		want string
	}{
		{Sun, "Sun"},
		{Moon, "Moon"},
		{Mars, "Mars"},
		{Pluto, "Pluto"},
		{Body(42), "Body(42)"},
		{Body(-1), "Body(-1)"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.body.String())
		})
	}
}

func TestBodies_Order(t *testing.T) {
	require.Len(t, Bodies, 10)
	for i, b := range Bodies {
		assert.Equal(t, Body(i), b)
		assert.True(t, b.Valid())
	}
}

func TestMeeusEngine_JulianDay(t *testing.T) {
	e := NewMeeusEngine(t.TempDir(), nil)

	assert.InDelta(t, 2451545.0, e.JulianDay(2000, 1, 1, 12), 1e-9)
	assert.InDelta(t, 2451544.5, e.JulianDay(2000, 1, 1, 0), 1e-9)
	assert.InDelta(t, 2436116.31, e.JulianDay(1957, 10, 4, 19.44), 1e-6)
}

func TestMeeusEngine_DataPath(t *testing.T) {
	dir := t.TempDir()
	e := NewMeeusEngine(dir, nil)
	assert.Equal(t, dir, e.DataPath())
}

func TestMeeusEngine_MoonWithoutDataFiles(t *testing.T) {
	e := NewMeeusEngine(t.TempDir(), nil)

	// 1992 April 12, 0h TD
	pos, err := e.Position(context.Background(), jdForDynamical(2448724.5), Moon)
	require.NoError(t, err)

	assert.InDelta(t, 133.167265, pos.Longitude, 0.001)
	assert.InDelta(t, -3.229126, pos.Latitude, 0.001)
	assert.InDelta(t, 368409.7/149597870.7, pos.Distance, 1e-6)
	assert.Greater(t, pos.Speed, 11.0)
	assert.Less(t, pos.Speed, 16.0)
	assert.False(t, pos.Retrograde())
}

func TestMeeusEngine_PositionErrors(t *testing.T) {
	e := NewMeeusEngine(t.TempDir(), nil).WithStrictData()
	ctx := context.Background()
	jd := e.JulianDay(2000, 1, 1, 12)

	tests := []struct {
		name    string
		jd      float64
		body    Body
		wantErr error
	}{
		{"sun needs earth series", jd, Sun, ErrDataFile},
		{"mars needs series", jd, Mars, ErrDataFile},
		{"unknown body", jd, Body(10), ErrUnknownBody},
		{"negative body", jd, Body(-1), ErrUnknownBody},
		{"pluto before theory", e.JulianDay(1800, 1, 1, 0), Pluto, ErrOutOfRange},
		{"pluto after theory", e.JulianDay(2150, 1, 1, 0), Pluto, ErrOutOfRange},
		{"nan julian day", math.NaN(), Moon, ErrOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Position(ctx, tt.jd, tt.body)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMeeusEngine_FailedLoadIsRetried(t *testing.T) {
	dir := t.TempDir()
	e := NewMeeusEngine(dir, nil).WithStrictData()
	jd := e.JulianDay(2000, 1, 1, 12)

	_, err := e.Position(context.Background(), jd, Sun)
	require.ErrorIs(t, err, ErrDataFile)

	e.mu.RLock()
	assert.Empty(t, e.series)
	e.mu.RUnlock()
}

func TestMeeusEngine_CancelledContext(t *testing.T) {
	e := NewMeeusEngine(t.TempDir(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	jd := e.JulianDay(2000, 1, 1, 12)

	_, err := e.Position(ctx, jd, Moon)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = e.Houses(ctx, jd, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMeeusEngine_Preload_MissingFiles(t *testing.T) {
	e := NewMeeusEngine(t.TempDir(), nil)
	err := e.Preload(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataFile)
}

func TestMeeusEngine_Houses(t *testing.T) {
	e := NewMeeusEngine(t.TempDir(), nil)
	ctx := context.Background()
	jd := e.JulianDay(2000, 1, 1, 12)

	h, err := e.Houses(ctx, jd, 0, 0)
	require.NoError(t, err)

	// Apparent sidereal time at Greenwich for J2000.0
	assert.InDelta(t, 280.4568, h.Angles[AngleARMC], 0.01)
	for _, c := range h.Cusps {
		assert.GreaterOrEqual(t, c, 0.0)
		assert.Less(t, c, 360.0)
	}
	assert.Equal(t, h.Cusps[0], h.Ascendant())
	assert.Equal(t, h.Cusps[9], h.Midheaven())

	// East longitude shifts ARMC by the same amount
	east, err := e.Houses(ctx, jd, 0, 30)
	require.NoError(t, err)
	assert.InDelta(t, 30, signedDelta(h.Angles[AngleARMC], east.Angles[AngleARMC]), 1e-9)

	_, err = e.Houses(ctx, jd, 91, 0)
	assert.ErrorIs(t, err, ErrInvalidCoords)

	_, err = e.Houses(ctx, jd, math.NaN(), 0)
	assert.ErrorIs(t, err, ErrInvalidCoords)
}
