// Package validation checks the file system paths the chart service depends
// on: the ephemeris data directory at startup and output files written by
// the command line tool.
package validation
