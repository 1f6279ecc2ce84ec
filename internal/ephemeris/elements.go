package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/kepler"
	pe "github.com/soniakeys/meeus/v3/planetelements"
	pp "github.com/soniakeys/meeus/v3/planetposition"
	"github.com/soniakeys/meeus/v3/solar"
	"github.com/soniakeys/unit"
)

// orbit returns heliocentric ecliptic longitude, latitude and radius in AU,
// referred to the mean equinox and ecliptic of date.
type orbit func(jde float64) (l, b unit.Angle, r float64)

// Table 31.A index for each VSOP87 series index. Earth has no node or
// inclination there and goes through solarOrbit instead.
var elementIndex = map[int]int{
	pp.Mercury: pe.Mercury,
	pp.Venus:   pe.Venus,
	pp.Mars:    pe.Mars,
	pp.Jupiter: pe.Jupiter,
	pp.Saturn:  pe.Saturn,
	pp.Uranus:  pe.Uranus,
	pp.Neptune: pe.Neptune,
}

// meanOrbit builds an orbit from the mean elements of Meeus chapter 31.
// Periodic perturbations are ignored, so the outer planets drift by up to
// about a degree from the full theory.
func meanOrbit(planet int) orbit {
	return func(jde float64) (unit.Angle, unit.Angle, float64) {
		var el pe.Elements
		pe.Mean(planet, jde, &el)

		E := kepler.Kepler3(el.Ecc, el.Lon-el.Peri)
		nu := kepler.True(E, el.Ecc)
		r := kepler.Radius(E, el.Ecc, el.Axis)

		// argument of latitude
		su, cu := (el.Peri - el.Node + nu).Sincos()
		si, ci := el.Inc.Sincos()
		l := el.Node + unit.Angle(math.Atan2(ci*su, cu))
		b := unit.Angle(math.Asin(si * su))
		return l.Mod1(), b, r
	}
}

// solarOrbit turns the low precision solar theory of Meeus chapter 25 into
// a heliocentric Earth orbit.
func solarOrbit(jde float64) (unit.Angle, unit.Angle, float64) {
	T := base.J2000Century(jde)
	s, _ := solar.True(T)
	return (s + math.Pi).Mod1(), 0, solar.Radius(T)
}
