package errors

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// Error codes. They appear in logs only; clients see Message.
const (
	CodeMissingBody        = "MISSING_BODY"
	CodeMissingField       = "MISSING_FIELD"
	CodeInvalidDatetime    = "INVALID_DATETIME"
	CodeInvalidCoordinates = "INVALID_COORDINATES"
	CodePlanetCalculation  = "PLANET_CALCULATION_FAILED"
	CodeHouseCalculation   = "HOUSE_CALCULATION_FAILED"
	CodeInternalServer     = "INTERNAL_SERVER_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Client-facing messages
const (
	MessageMissingBody        = "No JSON data received. Please provide birth information."
	MessageInvalidDatetime    = "Invalid datetime format. Please use YYYY-MM-DD HH:MM."
	MessageInvalidCoordinates = "Invalid longitude or latitude. Please provide numeric values."
	MessageInternal           = "An internal server error occurred. Please try again later."
)

// APIError represents a structured API error response. Only Message is
// written to the client, as {"error": Message}.
type APIError struct {
	StatusCode int    `json:"-"`
	ErrorCode  string `json:"-"`
	Message    string `json:"error"`

	// Field names the offending request field, if any
	Field string `json:"-"`
	// Body names the body whose calculation failed, if any
	Body string `json:"-"`
	// Cause is logged, never rendered
	Cause error `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause
func (e *APIError) Unwrap() error {
	return e.Cause
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// New creates a new APIError with the given parameters
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// WithCause returns a copy of e carrying cause
func (e *APIError) WithCause(cause error) *APIError {
	c := *e
	c.Cause = cause
	return &c
}

// 400 Bad Request

// NewMissingBody reports an absent or unparsable request body
func NewMissingBody(cause error) *APIError {
	return New(http.StatusBadRequest, CodeMissingBody, MessageMissingBody).WithCause(cause)
}

// NewMissingField reports the first required field that was absent
func NewMissingField(field string) *APIError {
	e := New(http.StatusBadRequest, CodeMissingField, fmt.Sprintf("Missing required field: '%s'", field))
	e.Field = field
	return e
}

// NewInvalidDatetime reports a datetime outside the YYYY-MM-DD HH:MM pattern
func NewInvalidDatetime(cause error) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidDatetime, MessageInvalidDatetime).WithCause(cause)
	e.Field = "datetime"
	return e
}

// NewInvalidCoordinates reports a non-numeric longitude or latitude
func NewInvalidCoordinates(cause error) *APIError {
	e := New(http.StatusBadRequest, CodeInvalidCoordinates, MessageInvalidCoordinates).WithCause(cause)
	e.Field = "longitude,latitude"
	return e
}

// 500 Internal Server Error

// NewPlanetCalculation reports an engine failure for one body. The engine
// message is part of the client payload.
func NewPlanetCalculation(body string, cause error) *APIError {
	e := New(http.StatusInternalServerError, CodePlanetCalculation,
		fmt.Sprintf("Error calculating planet %s: %s", body, causeText(cause))).WithCause(cause)
	e.Body = body
	return e
}

// NewHouseCalculation reports an engine failure for houses and angles
func NewHouseCalculation(cause error) *APIError {
	return New(http.StatusInternalServerError, CodeHouseCalculation,
		fmt.Sprintf("Error calculating houses/ascmc: %s", causeText(cause))).WithCause(cause)
}

// NewInternal hides cause behind the generic internal message
func NewInternal(cause error) *APIError {
	return New(http.StatusInternalServerError, CodeInternalServer, MessageInternal).WithCause(cause)
}

// Routing and availability

// NewNotFound reports an unknown route
func NewNotFound(path string) *APIError {
	return New(http.StatusNotFound, CodeNotFound, fmt.Sprintf("Resource not found: %s", path))
}

// NewMethodNotAllowed reports a known route called with the wrong method
func NewMethodNotAllowed(method string) *APIError {
	return New(http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		fmt.Sprintf("Method %s is not allowed for this endpoint", method))
}

// NewServiceUnavailable reports a service that cannot take traffic yet
func NewServiceUnavailable(message string) *APIError {
	return New(http.StatusServiceUnavailable, CodeServiceUnavailable, message)
}

func causeText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
