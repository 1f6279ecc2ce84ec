package services

import (
	"errors"
	"fmt"

	"astrochart/internal/ephemeris"
)

// Chart request errors
var (
	// Validation errors
	ErrMissingBody        = errors.New("no JSON data received")
	ErrMissingField       = errors.New("missing required field")
	ErrInvalidDatetime    = errors.New("invalid datetime format")
	ErrInvalidCoordinates = errors.New("invalid longitude or latitude")

	// Calculation errors
	ErrPlanetCalculation = errors.New("planet calculation failed")
	ErrHouseCalculation  = errors.New("house calculation failed")
)

// FieldError names the required request field that was absent
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("missing required field: %q", e.Field)
}

// Unwrap lets errors.Is match ErrMissingField
func (e *FieldError) Unwrap() error {
	return ErrMissingField
}

// PlanetError reports an engine failure for one body
type PlanetError struct {
	Body ephemeris.Body
	Err  error
}

func (e *PlanetError) Error() string {
	return fmt.Sprintf("calculate planet %s: %v", e.Body, e.Err)
}

func (e *PlanetError) Unwrap() []error {
	return []error{ErrPlanetCalculation, e.Err}
}

// HouseError reports an engine failure while computing houses and angles
type HouseError struct {
	Err error
}

func (e *HouseError) Error() string {
	return fmt.Sprintf("calculate houses/ascmc: %v", e.Err)
}

func (e *HouseError) Unwrap() []error {
	return []error{ErrHouseCalculation, e.Err}
}
