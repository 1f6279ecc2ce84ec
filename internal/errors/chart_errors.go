package errors

import (
	"errors"

	"astrochart/internal/services"
)

// MapChartError converts a chart service error into an APIError. Errors the
// service does not declare become the generic internal error.
func MapChartError(err error) *APIError {
	if err == nil {
		return nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var fieldErr *services.FieldError
	var planetErr *services.PlanetError
	var houseErr *services.HouseError

	switch {
	case errors.Is(err, services.ErrMissingBody):
		return NewMissingBody(err)
	case errors.As(err, &fieldErr):
		e := NewMissingField(fieldErr.Field)
		e.Cause = err
		return e
	case errors.Is(err, services.ErrInvalidDatetime):
		return NewInvalidDatetime(err)
	case errors.Is(err, services.ErrInvalidCoordinates):
		return NewInvalidCoordinates(err)
	case errors.As(err, &planetErr):
		return NewPlanetCalculation(planetErr.Body.String(), planetErr.Err)
	case errors.As(err, &houseErr):
		return NewHouseCalculation(houseErr.Err)
	default:
		return NewInternal(err)
	}
}
