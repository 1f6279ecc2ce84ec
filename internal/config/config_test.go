package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv points the config and env file lookups at an empty temp dir
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.env")
	require.NoError(t, os.WriteFile(empty, nil, 0644))
	t.Setenv(ConfigFileEnv, "")
	t.Setenv(EnvFileEnv, empty)
	for _, key := range []string{
		"ASTRO_SERVER_PORT", "ASTRO_SERVER_REQUEST_TIMEOUT", "ASTRO_LOGGING_LEVEL",
		"ASTRO_EPHEMERIS_PATH", "ASTRO_EPHEMERIS_STRICT", "ASTRO_TELEMETRY_TRACE_EXPORTER",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func(t *testing.T, dir string)
		wantErr     bool
		validateCfg func(t *testing.T, cfg *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 5000, cfg.Server.Port)
				assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 10*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, int64(1<<20), cfg.Server.MaxBodyBytes)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "stdout", cfg.Logging.Output)
				assert.Equal(t, "astrochart", cfg.Telemetry.ServiceName)
				assert.False(t, cfg.Ephemeris.Strict)

				paths, err := GetPaths()
				require.NoError(t, err)
				assert.Equal(t, paths.EphemerisDir, cfg.Ephemeris.Path)
			},
		},
		{
			name: "environment overrides defaults",
			setup: func(t *testing.T, dir string) {
				t.Setenv("ASTRO_SERVER_PORT", "9090")
				t.Setenv("ASTRO_SERVER_REQUEST_TIMEOUT", "3s")
				t.Setenv("ASTRO_LOGGING_LEVEL", "debug")
				t.Setenv("ASTRO_EPHEMERIS_PATH", "/usr/share/ephe")
				t.Setenv("ASTRO_EPHEMERIS_STRICT", "true")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.True(t, cfg.Ephemeris.Strict)
				assert.Equal(t, 3*time.Second, cfg.Server.RequestTimeout)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, filepath.Clean("/usr/share/ephe"), cfg.Ephemeris.Path)
			},
		},
		{
			name: "yaml file overrides defaults, environment overrides yaml",
			setup: func(t *testing.T, dir string) {
				file := filepath.Join(dir, "config.yaml")
				content := "server:\n  port: 7000\n  read_timeout: 5s\nlogging:\n  level: warn\n"
				require.NoError(t, os.WriteFile(file, []byte(content), 0644))
				t.Setenv(ConfigFileEnv, file)
				t.Setenv("ASTRO_LOGGING_LEVEL", "error")
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7000, cfg.Server.Port)
				assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "error", cfg.Logging.Level)
			},
		},
		{
			name: "env file fills unset variables",
			setup: func(t *testing.T, dir string) {
				file := filepath.Join(dir, "test.env")
				content := "ASTRO_SERVER_PORT=6000\nASTRO_TELEMETRY_TRACE_EXPORTER=stdout\n"
				require.NoError(t, os.WriteFile(file, []byte(content), 0644))
				t.Setenv(EnvFileEnv, file)
				t.Cleanup(func() {
					os.Unsetenv("ASTRO_SERVER_PORT")
					os.Unsetenv("ASTRO_TELEMETRY_TRACE_EXPORTER")
				})
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 6000, cfg.Server.Port)
				assert.Equal(t, "stdout", cfg.Telemetry.TraceExporter)
			},
		},
		{
			name: "explicit env file that does not exist",
			setup: func(t *testing.T, dir string) {
				t.Setenv(EnvFileEnv, filepath.Join(dir, "nope.env"))
			},
			wantErr: true,
		},
		{
			name: "invalid port",
			setup: func(t *testing.T, dir string) {
				t.Setenv("ASTRO_SERVER_PORT", "70000")
			},
			wantErr: true,
		},
		{
			name: "invalid log level",
			setup: func(t *testing.T, dir string) {
				t.Setenv("ASTRO_LOGGING_LEVEL", "loud")
			},
			wantErr: true,
		},
		{
			name: "malformed yaml",
			setup: func(t *testing.T, dir string) {
				file := filepath.Join(dir, "bad.yaml")
				require.NoError(t, os.WriteFile(file, []byte("server: [port"), 0644))
				t.Setenv(ConfigFileEnv, file)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolateEnv(t)
			if tt.setup != nil {
				tt.setup(t, dir)
			}

			cfg, err := Load()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
			if tt.validateCfg != nil {
				tt.validateCfg(t, cfg)
			}
		})
	}
}

func TestLoad_EphemerisPathIgnoresSystemPath(t *testing.T) {
	isolateEnv(t)
	t.Setenv("PATH", "/not/an/ephemeris")

	cfg, err := Load()
	require.NoError(t, err)
	assert.NotEqual(t, "/not/an/ephemeris", cfg.Ephemeris.Path)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default with path", func(c *Config) {}, false},
		{"missing ephemeris path", func(c *Config) { c.Ephemeris.Path = "" }, true},
		{"zero read timeout", func(c *Config) { c.Server.ReadTimeout = 0 }, true},
		{"negative body limit", func(c *Config) { c.Server.MaxBodyBytes = -1 }, true},
		{"unknown log output", func(c *Config) { c.Logging.Output = "syslog" }, true},
		{"file output without path", func(c *Config) {
			c.Logging.Output = "file"
			c.Logging.FilePath = ""
		}, true},
		{"cors without origins", func(c *Config) {
			c.Security.EnableCORS = true
			c.Security.AllowedOrigins = nil
		}, true},
		{"unknown trace exporter", func(c *Config) { c.Telemetry.TraceExporter = "otlp" }, true},
		{"sample ratio above one", func(c *Config) { c.Telemetry.SampleRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Ephemeris.Path = "/usr/share/ephe"
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestServerConfig_Address(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 5000}
	assert.Equal(t, "127.0.0.1:5000", s.Address())

	s.Host = ""
	assert.Equal(t, ":5000", s.Address())
}
