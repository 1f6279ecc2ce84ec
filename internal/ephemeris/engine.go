package ephemeris

import (
	"context"
	"errors"
	"fmt"
)

// Body identifies a celestial body by its engine index
type Body int

// Body indexes. The numbering is part of the engine contract.
const (
	Sun Body = iota
	Moon
	Mercury
	Venus
	Mars
	Jupiter
	Saturn
	Uranus
	Neptune
	Pluto
)

var bodyNames = [...]string{
	Sun:     "Sun",
	Moon:    "Moon",
	Mercury: "Mercury",
	Venus:   "Venus",
	Mars:    "Mars",
	Jupiter: "Jupiter",
	Saturn:  "Saturn",
	Uranus:  "Uranus",
	Neptune: "Neptune",
	Pluto:   "Pluto",
}

// Bodies lists every body in chart order
var Bodies = []Body{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}

// String returns the display name of the body
func (b Body) String() string {
	if b.Valid() {
		return bodyNames[b]
	}
	return fmt.Sprintf("Body(%d)", int(b))
}

// Valid reports whether b is one of the ten known bodies
func (b Body) Valid() bool {
	return b >= Sun && b <= Pluto
}

// Angle array indexes in Houses.Angles
const (
	AngleAscendant = iota
	AngleMidheaven
	AngleARMC
)

// Position is the engine output for one body
type Position struct {
	Longitude float64 // apparent ecliptic longitude of date, degrees [0,360)
	Latitude  float64 // ecliptic latitude, degrees
	Distance  float64 // geocentric distance, AU
	Speed     float64 // daily motion in longitude, degrees per day
}

// Retrograde reports whether the body moves backwards along the ecliptic
func (p Position) Retrograde() bool {
	return p.Speed < 0
}

// Houses holds the twelve house cusps and the angle array
type Houses struct {
	Cusps  [12]float64
	Angles [3]float64
}

// Ascendant returns Angles[AngleAscendant]
func (h Houses) Ascendant() float64 { return h.Angles[AngleAscendant] }

// Midheaven returns Angles[AngleMidheaven]
func (h Houses) Midheaven() float64 { return h.Angles[AngleMidheaven] }

// Engine is the ephemeris computation contract used by the chart service
type Engine interface {
	// DataPath returns the directory the engine reads its series files from
	DataPath() string
	// JulianDay converts a Gregorian date and fractional UT hour to a Julian day
	JulianDay(year, month, day int, hour float64) float64
	// Position computes the apparent geocentric position of body at jdUT
	Position(ctx context.Context, jdUT float64, body Body) (Position, error)
	// Houses computes house cusps and angles for an observer
	Houses(ctx context.Context, jdUT, lat, lon float64) (Houses, error)
}

// SeriesFilePattern matches the VSOP87 series files in the data directory
const SeriesFilePattern = "VSOP87B.*"

// Engine errors
var (
	ErrUnknownBody   = errors.New("unknown body")
	ErrDataFile      = errors.New("ephemeris data file unavailable")
	ErrOutOfRange    = errors.New("date outside supported range")
	ErrInvalidCoords = errors.New("invalid geographic coordinates")
)
