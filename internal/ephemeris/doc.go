// Package ephemeris wraps the astronomical computations the chart service
// depends on behind a small Engine interface.
//
// # Engine Contract
//
// An Engine exposes four things:
//
//	1. DataPath - the directory holding the orbital series files, fixed at construction
//	2. JulianDay - Gregorian calendar date and fractional UT hour to a Julian day
//	3. Position - apparent geocentric ecliptic longitude of one of the ten bodies
//	4. Houses - house cusps plus the angle array [ASC, MC, ARMC]
//
// Bodies use a fixed index convention, Sun=0 through Pluto=9, and are always
// iterated in that order (see Bodies).
//
// # Meeus Engine
//
// MeeusEngine is backed by github.com/soniakeys/meeus/v3. Sun and the major
// planets come from the VSOP87B series files found in the data path (file
// names VSOP87B.mer, VSOP87B.ven, VSOP87B.ear, ...). Each file is loaded on
// first use and kept for the life of the process. The Moon and Pluto need no
// data files, although Pluto still needs the Earth orbit to become geocentric.
//
// When a series file is missing the engine falls back to the mean orbital
// elements of Meeus chapter 31 (and the low precision solar theory for the
// Earth), logging a single warning. Sun, Mercury, Venus and Mars stay within
// a few hundredths of a degree; the outer planets can be off by up to a
// degree. WithStrictData turns the fallback off so a missing file fails the
// body with ErrDataFile.
//
// # Usage
//
//	engine := ephemeris.NewMeeusEngine(cfg.Ephemeris.Path, logger)
//	jd := engine.JulianDay(2000, 1, 1, 12.0)
//	sun, err := engine.Position(ctx, jd, ephemeris.Sun)
//	houses, err := engine.Houses(ctx, jd, 35.68, 139.69)
//	asc, mc := houses.Ascendant(), houses.Midheaven()
//
// Time arguments are Julian days in Universal Time. Conversion to dynamical
// time happens inside the engine.
package ephemeris
