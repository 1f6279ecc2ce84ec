package ephemeris

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/soniakeys/meeus/v3/apparent"
	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/elliptic"
	"github.com/soniakeys/meeus/v3/nutation"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/pluto"
	"github.com/soniakeys/meeus/v3/precess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seriesTerm is one VSOP87 term A*cos(B + C*tau)
type seriesTerm struct {
	power   int
	a, b, c float64
}

// writeSeries writes a VSOP87B file in the fixed column layout the meeus
// loader reads. Terms are grouped by coordinate (1=L, 2=B, 3=R).
func writeSeries(t *testing.T, dir, ext, name string, terms map[int][]seriesTerm) {
	t.Helper()

	blank := func() []byte { return []byte(strings.Repeat(" ", 132)) }

	var out []byte
	for coordinate := 1; coordinate <= 3; coordinate++ {
		for _, term := range terms[coordinate] {
			h := blank()
			h[17] = '2'
			copy(h[22:29], fmt.Sprintf("%-7s", name))
			h[41] = byte('0' + coordinate)
			h[59] = byte('0' + term.power)
			copy(h[60:67], fmt.Sprintf("%7d", 1))
			out = append(append(out, h...), '\n')

			l := blank()
			copy(l[79:97], fmt.Sprintf("%18.11f", term.a))
			copy(l[98:111], fmt.Sprintf("%013.10f", term.b))
			copy(l[111:131], fmt.Sprintf("%20.11f", term.c))
			out = append(append(out, l...), '\n')
		}
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "VSOP87B."+ext), out, 0o644))
}

// circular returns series for an orbit in the ecliptic with mean longitude
// l0 + n*tau radians and radius r AU
func circular(l0, n, r float64) map[int][]seriesTerm {
	return map[int][]seriesTerm{
		1: {{power: 0, a: l0}, {power: 1, a: n}},
		2: {{power: 0, a: 0}},
		3: {{power: 0, a: r}},
	}
}

func seriesDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeSeries(t, dir, "ear", "EARTH", circular(1.75347, 6283.0758, 1.0))
	writeSeries(t, dir, "mar", "MARS", circular(6.20348, 3340.6124, 1.52))
	writeSeries(t, dir, "ven", "VENUS", circular(3.17614, 10213.2855, 0.7233))
	return dir
}

func TestMeeusEngine_SeriesMatchesElliptic(t *testing.T) {
	dir := seriesDir(t)
	e := NewMeeusEngine(dir, nil).WithStrictData()
	ctx := context.Background()

	earth, err := pp.LoadPlanetPath(pp.Earth, dir)
	require.NoError(t, err)

	tests := []struct {
		body   Body
		series int
	}{
		{Mars, pp.Mars},
		{Venus, pp.Venus},
	}

	for _, tt := range tests {
		t.Run(tt.body.String(), func(t *testing.T) {
			p, err := pp.LoadPlanetPath(tt.series, dir)
			require.NoError(t, err)

			for _, jd := range []float64{2451545.0, 2448976.5, 2460000.25} {
				pos, err := e.Position(ctx, jd, tt.body)
				require.NoError(t, err)

				// elliptic.Position applies aberration, FK5 and nutation
				jde := ephemerisDay(jd)
				ra, dec := elliptic.Position(p, earth, jde)
				_, deps := nutation.Nutation(jde)
				se, ce := (nutation.MeanObliquity(jde) + deps).Sincos()
				lon, lat := coord.EqToEcl(ra, dec, se, ce)

				assert.InDelta(t, 0, signedDelta(normalizeDegrees(lon.Deg()), pos.Longitude)*3600, 0.5,
					"longitude at jd %.2f", jd)
				assert.InDelta(t, lat.Deg(), pos.Latitude, 0.5/3600, "latitude at jd %.2f", jd)
			}
		})
	}
}

func TestMeeusEngine_SeriesSun(t *testing.T) {
	dir := seriesDir(t)
	e := NewMeeusEngine(dir, nil).WithStrictData()

	earth, err := pp.LoadPlanetPath(pp.Earth, dir)
	require.NoError(t, err)

	jd := e.JulianDay(2000, 1, 1, 12)
	pos, err := e.Position(context.Background(), jd, Sun)
	require.NoError(t, err)

	// geometric longitude is L+180 less 0.09033" for FK5, then nutation
	// and -20.4898"/R aberration
	jde := ephemerisDay(jd)
	l, _, r := earth.Position(jde)
	dpsi, _ := nutation.Nutation(jde)
	want := normalizeDegrees(l.Deg() + 180 + (dpsi.Sec()-0.09033-20.4898/r)/3600)

	assert.InDelta(t, want, pos.Longitude, 0.1/3600)
	assert.InDelta(t, 1.0, pos.Distance, 1e-9)
	assert.InDelta(t, 6283.0758/365250*180/math.Pi, pos.Speed, 0.001)
}

func TestMeeusEngine_SeriesPluto(t *testing.T) {
	dir := seriesDir(t)
	e := NewMeeusEngine(dir, nil).WithStrictData()

	earth, err := pp.LoadPlanetPath(pp.Earth, dir)
	require.NoError(t, err)

	jd := e.JulianDay(1992, 10, 13, 0)
	pos, err := e.Position(context.Background(), jd, Pluto)
	require.NoError(t, err)

	// astrometric J2000 place, carried to the apparent place of date
	jde := ephemerisDay(jd)
	ra, dec := pluto.Astrometric(jde, earth)
	lon, lat := coord.EqToEcl(ra, dec, base.SOblJ2000, base.COblJ2000)
	from := &coord.Ecliptic{Lon: lon, Lat: lat}
	to := precess.EclipticPosition(from, &coord.Ecliptic{}, 2000, base.JDEToJulianYear(jde), 0, 0)
	dl, db := apparent.EclipticAberration(to.Lon, to.Lat, jde)
	dpsi, _ := nutation.Nutation(jde)

	assert.InDelta(t, 0, signedDelta(normalizeDegrees((to.Lon+dl+dpsi).Deg()), pos.Longitude)*3600, 1)
	assert.InDelta(t, (to.Lat + db).Deg(), pos.Latitude, 1.0/3600)
}

func TestMeeusEngine_StrictMissingSeries(t *testing.T) {
	e := NewMeeusEngine(seriesDir(t), nil).WithStrictData()
	ctx := context.Background()
	jd := e.JulianDay(2000, 1, 1, 12)

	_, err := e.Position(ctx, jd, Mars)
	require.NoError(t, err)

	_, err = e.Position(ctx, jd, Jupiter)
	assert.ErrorIs(t, err, ErrDataFile)

	err = e.Preload(ctx)
	assert.ErrorIs(t, err, ErrDataFile)

	e.mu.RLock()
	assert.Len(t, e.series, 3)
	e.mu.RUnlock()
}
