// Package config provides configuration management for the chart service.
// It loads configuration from several sources, validates it, and resolves
// file system paths against the executable location.
//
// # Configuration Sources
//
// Configuration is built in layers, each overriding the previous one:
//
//	1. Default() values (lowest priority)
//	2. YAML file: $ASTRO_CONFIG_FILE, else config.yaml or configs/config.yaml
//	3. .env file: $ASTRO_ENV_FILE, else ./.env (never overrides real env vars)
//	4. ASTRO_* environment variables (highest priority)
//
// # Environment Variables
//
// Variables follow the pattern ASTRO_<SECTION>_<FIELD>:
//
//	ASTRO_SERVER_PORT=5000
//	ASTRO_SERVER_REQUEST_TIMEOUT=10s
//	ASTRO_LOGGING_LEVEL=debug
//	ASTRO_EPHEMERIS_PATH=/usr/share/ephe
//	ASTRO_EPHEMERIS_STRICT=true
//	ASTRO_TELEMETRY_TRACE_EXPORTER=stdout
//
// # Path Management
//
// GetPaths resolves everything relative to the executable directory. An
// unset ephemeris path becomes <executable dir>/ephe.
//
// # Validation
//
// Every field carries a go-playground/validator tag; Load fails with the
// list of offending fields when any check fails.
package config
