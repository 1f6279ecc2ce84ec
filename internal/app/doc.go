// Package app wires the chart service together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, YAML, .env, ASTRO_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Create the ephemeris engine with its fixed data path
//	4. Create the chart, health and error handling services
//	5. Build the chi router and the HTTP server
//
// # Usage
//
//	a, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return a.Run(context.Background())
//
// # Graceful Shutdown
//
// Run stops on SIGINT or SIGTERM. In-flight requests get ShutdownTimeout to
// finish, then telemetry providers are flushed.
//
// Missing ephemeris data does not stop startup. The readiness probe reports
// not_ready and chart requests for the affected bodies fail with 500.
//
// All initialization errors are returned to the caller; the package never
// calls os.Exit.
package app
