package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"astrochart/internal/config"
	"astrochart/internal/ephemeris"
	apierrors "astrochart/internal/errors"
	"astrochart/internal/exporter"
	"astrochart/internal/infrastructure"
	"astrochart/internal/services"
	"astrochart/internal/validation"
	"astrochart/pkg/contracts"
)

// newEngine is replaced in tests
var newEngine = func(path string, logger *slog.Logger) ephemeris.Engine {
	return ephemeris.NewMeeusEngine(path, logger)
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the parsed command line
type options struct {
	datetime  string
	longitude string
	latitude  string
	ephePath  string
	strict    bool
	format    exporter.Format
	out       string
	logLevel  string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("chart", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.datetime, "datetime", "", `UT date and time, "YYYY-MM-DD HH:MM"`)
	fs.StringVar(&opts.longitude, "lon", "", "geographic longitude in degrees, east positive")
	fs.StringVar(&opts.latitude, "lat", "", "geographic latitude in degrees, north positive")
	fs.StringVar(&opts.ephePath, "ephe", "", "ephemeris directory (defaults to the configured path)")
	fs.BoolVar(&opts.strict, "strict", false, "fail instead of using mean orbital elements when a series file is missing")
	format := fs.String("format", string(exporter.FormatTable), "output format: table | json | csv | xlsx")
	fs.StringVar(&opts.out, "out", "", "output file (defaults to stdout; required for xlsx)")
	fs.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	version := fs.Bool("version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *version {
		fmt.Fprintln(stderr, contracts.GetVersionString())
		return nil, flag.ErrHelp
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	f, err := exporter.ParseFormat(*format)
	if err != nil {
		return nil, err
	}
	opts.format = f
	if f.Binary() && opts.out == "" {
		return nil, fmt.Errorf("-out is required for %s output", f)
	}

	return opts, nil
}

// requestBody builds the same JSON document a client would POST, leaving
// out flags that were not given so validation reports them as missing
func (o *options) requestBody() ([]byte, error) {
	body := map[string]string{}
	if o.datetime != "" {
		body[services.FieldDatetime] = o.datetime
	}
	if o.longitude != "" {
		body[services.FieldLongitude] = o.longitude
	}
	if o.latitude != "" {
		body[services.FieldLatitude] = o.latitude
	}
	return json.Marshal(body)
}

// resolveEphemerisPath prefers the flag, then ASTRO_* configuration, then
// the directory next to the executable
func resolveEphemerisPath(flagValue string, logger *slog.Logger) string {
	if flagValue != "" {
		return flagValue
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Warn("Failed to load config, using default ephemeris path", slog.String("error", err.Error()))
		return config.DefaultEphemerisPath()
	}
	return cfg.Ephemeris.Path
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	logger, err := infrastructure.NewLogger(config.LoggingConfig{
		Level:  opts.logLevel,
		Format: "text",
		Output: "stdout",
	}, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	engine := newEngine(resolveEphemerisPath(opts.ephePath, logger), logger)
	if m, ok := engine.(*ephemeris.MeeusEngine); ok && opts.strict {
		m.WithStrictData()
	}
	service := services.NewChartService(engine, nil, logger)

	chart, err := compute(ctx, service, opts)
	if err != nil {
		apiErr := apierrors.MapChartError(err)
		logger.Debug("chart failed",
			slog.String("error_code", apiErr.ErrorCode),
			slog.String("cause", err.Error()))
		fmt.Fprintln(stderr, apiErr.Message)
		return 1
	}

	if err := writeChart(stdout, opts, chart, validation.NewFileValidator(logger)); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	return 0
}

func compute(ctx context.Context, service *services.ChartService, opts *options) (exporter.Chart, error) {
	raw, err := opts.requestBody()
	if err != nil {
		return exporter.Chart{}, err
	}

	in, err := service.ParseChartRequest(raw)
	if err != nil {
		return exporter.Chart{}, err
	}

	details, err := service.Details(ctx, in)
	if err != nil {
		return exporter.Chart{}, err
	}

	return exporter.Chart{Input: in, Details: details}, nil
}

func writeChart(stdout io.Writer, opts *options, chart exporter.Chart, validator *validation.FileValidator) error {
	if opts.out == "" {
		return exporter.Write(stdout, opts.format, chart)
	}

	if opts.format == exporter.FormatXLSX || opts.format == exporter.FormatCSV {
		if err := validator.ValidateExtension(opts.out, "."+string(opts.format)); err != nil {
			return err
		}
	}
	if err := validator.ValidateOutputDirectory(filepath.Dir(opts.out)); err != nil {
		return err
	}

	f, err := os.Create(opts.out)
	if err != nil {
		return fmt.Errorf("cannot create output file: %w", err)
	}
	if err := exporter.Write(f, opts.format, chart); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
