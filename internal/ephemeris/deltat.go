package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/deltat"
)

const secondsInDay = 86400.0

// deltaT returns TT-UT in seconds, picking the deltat fit that covers the
// year of jd. Table 10.A is used where it has data.
func deltaT(jd float64) float64 {
	y := base.JDEToJulianYear(jd)

	switch {
	case y < 948:
		return deltat.PolyBefore948(y).Sec()
	case y < 1620:
		return deltat.Poly948to1600(y).Sec()
	case y < 2010:
		return deltat.Interp10A(jd).Sec()
	default:
		return deltat.PolyAfter2000(y).Sec()
	}
}

// ephemerisDay converts a UT Julian day to dynamical time
func ephemerisDay(jdUT float64) float64 {
	return jdUT + deltaT(jdUT)/secondsInDay
}

// normalizeDegrees maps a to [0,360)
func normalizeDegrees(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// signedDelta returns b-a folded into [-180,180)
func signedDelta(a, b float64) float64 {
	d := math.Mod(b-a+540, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func deg2rad(d float64) float64 { return d * math.Pi / 180 }

func rad2deg(r float64) float64 { return r * 180 / math.Pi }
