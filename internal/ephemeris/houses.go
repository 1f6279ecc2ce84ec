package ephemeris

import (
	"fmt"
	"math"
)

// maxLatitude keeps tan(latitude) finite at the poles
const maxLatitude = 89.999999

// midheaven returns the ecliptic longitude culminating at right ascension
// armc for obliquity eps. All angles in degrees.
func midheaven(armc, eps float64) float64 {
	a := deg2rad(armc)
	return normalizeDegrees(rad2deg(math.Atan2(math.Sin(a), math.Cos(a)*math.Cos(deg2rad(eps)))))
}

// ascendant returns the ecliptic longitude rising on the eastern horizon
func ascendant(armc, eps, lat float64) float64 {
	a := deg2rad(armc)
	e := deg2rad(eps)
	phi := deg2rad(lat)
	y := math.Cos(a)
	x := -(math.Sin(a)*math.Cos(e) + math.Tan(phi)*math.Sin(e))
	return normalizeDegrees(rad2deg(math.Atan2(y, x)))
}

// porphyryCusps trisects the quadrants between the four angles
func porphyryCusps(asc, mc float64) [12]float64 {
	var c [12]float64
	ic := normalizeDegrees(mc + 180)

	q1 := normalizeDegrees(asc - mc)
	q2 := normalizeDegrees(ic - asc)

	c[0] = asc
	c[1] = normalizeDegrees(asc + q2/3)
	c[2] = normalizeDegrees(asc + 2*q2/3)
	c[3] = ic
	c[9] = mc
	c[10] = normalizeDegrees(mc + q1/3)
	c[11] = normalizeDegrees(mc + 2*q1/3)

	for i := 4; i < 9; i++ {
		c[i] = normalizeDegrees(c[(i+6)%12] + 180)
	}
	return c
}

// computeHouses builds the Houses value from sidereal time, obliquity and
// observer position.
func computeHouses(gastDeg, eps, lat, lon float64) (Houses, error) {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsInf(lon, 0) {
		return Houses{}, fmt.Errorf("%w: non-finite value", ErrInvalidCoords)
	}
	if lat < -90 || lat > 90 {
		return Houses{}, fmt.Errorf("%w: latitude %.6f outside [-90, 90]", ErrInvalidCoords, lat)
	}
	if lon < -360 || lon > 360 {
		return Houses{}, fmt.Errorf("%w: longitude %.6f outside [-360, 360]", ErrInvalidCoords, lon)
	}
	lat = math.Max(-maxLatitude, math.Min(maxLatitude, lat))

	armc := normalizeDegrees(gastDeg + lon)
	mc := midheaven(armc, eps)
	asc := ascendant(armc, eps, lat)

	return Houses{
		Cusps:  porphyryCusps(asc, mc),
		Angles: [3]float64{asc, mc, armc},
	}, nil
}
