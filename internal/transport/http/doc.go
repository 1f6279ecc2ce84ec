// Package http implements the HTTP handlers of the chart service. Handlers
// stay thin: they read the request, call a service and render the result.
// Error mapping and logging belong to internal/errors.
//
// # Routes
//
//	POST /astro          chart for one birth moment and place
//	GET  /health         overall status
//	GET  /health/live    liveness probe
//	GET  /health/ready   readiness probe, 503 until ephemeris data is present
//	GET  /version        build and runtime information
//	GET  /metrics        Prometheus exposition
//
// # Chart Request Flow
//
//	body (capped) -> ChartService.ParseChartRequest -> ChartService.Calculate -> JSON
//	        \______________ any error ______________/
//	                         ErrorHandler.HandleRequestError -> {"error": "..."}
//
// Successful responses are a flat JSON object with the ten bodies in fixed
// order followed by ASC and MC.
package http
