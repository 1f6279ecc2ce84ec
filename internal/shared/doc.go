// Package shared holds code used across the chart service that belongs to no
// single layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//	- BufferedSlogHandler, a slog.Handler that records log lines for assertions
//	- FakeEngine, a deterministic ephemeris.Engine with per-body error injection
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    engine := testutil.NewFakeEngine()
//	    svc := services.NewChartService(engine, nil, logger)
//	    ...
//	    testutil.AssertNoErrors(t, logs)
//	}
//
// Nothing in this package may be imported by production code.
package shared
