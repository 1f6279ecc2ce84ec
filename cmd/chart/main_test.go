package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"astrochart/internal/ephemeris"
	apierrors "astrochart/internal/errors"
	"astrochart/internal/exporter"
	"astrochart/internal/shared/testutil"
)

func useFakeEngine(t *testing.T) *testutil.FakeEngine {
	t.Helper()

	fake := testutil.NewFakeEngine()
	original := newEngine
	newEngine = func(path string, logger *slog.Logger) ephemeris.Engine {
		fake.Path = path
		return fake
	}
	t.Cleanup(func() { newEngine = original })
	return fake
}

func runChart(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestRun_Table(t *testing.T) {
	fake := useFakeEngine(t)
	fake.Longitudes = map[ephemeris.Body]float64{ephemeris.Sun: 280.3719}

	code, out, errOut := runChart(t,
		"-datetime", "2000-01-01 12:00", "-lon", "139.69", "-lat", "35.68", "-ephe", "/tmp/ephe")

	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "Sun")
	assert.Contains(t, out, "280.37")
	assert.Contains(t, out, "10°22' Capricorn")
	assert.Contains(t, out, "ASC")
	assert.Equal(t, "/tmp/ephe", fake.Path)
	assert.Equal(t, [][3]float64{{2451545.0, 35.68, 139.69}}, fake.HousesCalls())
}

func TestRun_JSONMatchesHTTPShape(t *testing.T) {
	useFakeEngine(t)

	code, out, _ := runChart(t,
		"-datetime", "2000-01-01 12:00", "-lon", "0", "-lat", "0", "-ephe", "/tmp/ephe", "-format", "json")

	require.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(out, "{\n  \"Sun\": 0.12,"), out)
	assert.Contains(t, out, "\"MC\": 10.99")
}

func TestRun_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{
			name:    "missing datetime",
			args:    []string{"-lon", "0", "-lat", "0"},
			wantMsg: "Missing required field: 'datetime'",
		},
		{
			name:    "missing latitude",
			args:    []string{"-datetime", "2000-01-01 12:00", "-lon", "0"},
			wantMsg: "Missing required field: 'latitude'",
		},
		{
			name:    "bad datetime",
			args:    []string{"-datetime", "2000-01-01", "-lon", "0", "-lat", "0"},
			wantMsg: apierrors.MessageInvalidDatetime,
		},
		{
			name:    "bad coordinates",
			args:    []string{"-datetime", "2000-01-01 12:00", "-lon", "east", "-lat", "0"},
			wantMsg: apierrors.MessageInvalidCoordinates,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useFakeEngine(t)

			code, out, errOut := runChart(t, append(tt.args, "-ephe", "/tmp/ephe")...)

			assert.Equal(t, 1, code)
			assert.Empty(t, out)
			assert.Equal(t, tt.wantMsg, strings.TrimSpace(errOut))
		})
	}
}

func TestRun_EngineFailure(t *testing.T) {
	fake := useFakeEngine(t)
	fake.BodyErrors = map[ephemeris.Body]error{ephemeris.Mars: errors.New("file not found")}

	code, _, errOut := runChart(t,
		"-datetime", "2000-01-01 12:00", "-lon", "0", "-lat", "0", "-ephe", "/tmp/ephe")

	assert.Equal(t, 1, code)
	assert.Equal(t, "Error calculating planet Mars: file not found", strings.TrimSpace(errOut))
}

func TestRun_StrictWithoutSeries(t *testing.T) {
	dir := t.TempDir()
	args := []string{"-datetime", "2000-01-01 12:00", "-lon", "0", "-lat", "0", "-ephe", dir, "-format", "json"}

	code, out, errOut := runChart(t, args...)
	require.Equal(t, 0, code, errOut)
	assert.Contains(t, out, "\"Sun\": 280.37")

	code, out, errOut = runChart(t, append(args, "-strict")...)
	assert.Equal(t, 1, code)
	assert.Empty(t, out)
	assert.True(t, strings.HasPrefix(errOut, "Error calculating planet Sun: "), errOut)
}

func TestRun_FlagErrors(t *testing.T) {
	useFakeEngine(t)

	code, _, errOut := runChart(t, "-format", "pdf")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "unsupported format")

	code, _, errOut = runChart(t, "-format", "xlsx")
	assert.Equal(t, 2, code)
	assert.Contains(t, errOut, "-out is required")

	code, _, _ = runChart(t, "-nope")
	assert.Equal(t, 2, code)

	code, _, errOut = runChart(t, "-version")
	assert.Equal(t, 0, code)
	assert.Contains(t, errOut, "astrochart v")
}

func TestRun_WritesFiles(t *testing.T) {
	useFakeEngine(t)
	dir := t.TempDir()

	t.Run("xlsx", func(t *testing.T) {
		path := filepath.Join(dir, "out", "chart.xlsx")
		code, out, errOut := runChart(t,
			"-datetime", "2000-01-01 12:00", "-lon", "0", "-lat", "0", "-ephe", "/tmp/ephe",
			"-format", "xlsx", "-out", path)

		require.Equal(t, 0, code, errOut)
		assert.Empty(t, out)

		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()

		value, err := f.GetCellValue(exporter.SheetName, "A7")
		require.NoError(t, err)
		assert.Equal(t, "Sun", value)
	})

	t.Run("extension must match format", func(t *testing.T) {
		code, _, errOut := runChart(t,
			"-datetime", "2000-01-01 12:00", "-lon", "0", "-lat", "0", "-ephe", "/tmp/ephe",
			"-format", "xlsx", "-out", filepath.Join(dir, "chart.csv"))

		assert.Equal(t, 1, code)
		assert.Contains(t, errOut, "does not have extension .xlsx")
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "chart.csv")
		code, _, errOut := runChart(t,
			"-datetime", "2000-01-01 12:00", "-lon", "0", "-lat", "0", "-ephe", "/tmp/ephe",
			"-format", "csv", "-out", path)

		require.Equal(t, 0, code, errOut)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), "Body,Longitude,Position,Speed,Retrograde")
		assert.Contains(t, string(data), "Pluto,270.12,")
	})
}
