// Package services implements the business logic of the chart service. It
// sits between the HTTP handlers and the ephemeris engine so that request
// validation and chart assembly can be tested without a server.
//
// # Chart Service
//
// ChartService turns a raw POST /astro body into a chart:
//
//	in, err := svc.ParseChartRequest(body)   // body, fields, datetime, coordinates
//	result, err := svc.Calculate(ctx, in)    // ten bodies, then ASC and MC
//
// Validation stops at the first failing stage. Failures are returned as
// sentinel or typed errors:
//
//	ErrMissingBody          body absent or not a JSON object
//	*FieldError             required field absent (errors.Is ErrMissingField)
//	ErrInvalidDatetime      datetime not in YYYY-MM-DD HH:MM
//	ErrInvalidCoordinates   longitude or latitude not numeric
//	*PlanetError            engine failed for one body
//	*HouseError             engine failed computing houses and angles
//
// The HTTP layer maps these to status codes and messages in internal/errors.
//
// # Health Service
//
// HealthService answers liveness, readiness and version probes. The service
// is ready once the ephemeris data directory exists.
//
// # Observability
//
// Calculate opens a chart.calculate span and records the chart_* metrics in
// infrastructure.BusinessMetrics. The metrics argument may be nil.
package services
