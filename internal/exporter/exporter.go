package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"astrochart/internal/services"
	api "astrochart/pkg/contracts/api/v1"
)

// Format names an output format
type Format string

// Supported output formats
const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatCSV   Format = "csv"
	FormatXLSX  Format = "xlsx"
)

// Formats lists every supported format
var Formats = []Format{FormatTable, FormatJSON, FormatCSV, FormatXLSX}

// ParseFormat validates a format name, case-insensitively
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (want table, json, csv or xlsx)", s)
}

// Binary reports whether the format should not be written to a terminal
func (f Format) Binary() bool {
	return f == FormatXLSX
}

// Chart is a computed chart together with the input that produced it
type Chart struct {
	Input   services.ChartInput
	Details *services.ChartDetails
}

// Row is one body or angle of a chart. Angles carry no speed.
type Row struct {
	Name      string
	Longitude float64
	Speed     float64
	HasSpeed  bool
}

// Retrograde reports whether the row is a body moving backwards
func (r Row) Retrograde() bool {
	return r.HasSpeed && r.Speed < 0
}

// Rows returns the ten bodies in chart order followed by ASC and MC.
// Longitudes are rounded the same way as the HTTP response.
func (c Chart) Rows() []Row {
	if c.Details == nil {
		return nil
	}

	rows := make([]Row, 0, len(c.Details.Positions)+2)
	for _, p := range c.Details.Positions {
		rows = append(rows, Row{
			Name:      p.Body.String(),
			Longitude: services.RoundLongitude(p.Longitude),
			Speed:     p.Speed,
			HasSpeed:  true,
		})
	}
	return append(rows,
		Row{Name: api.KeyAscendant, Longitude: services.RoundLongitude(c.Details.Houses.Ascendant())},
		Row{Name: api.KeyMidheaven, Longitude: services.RoundLongitude(c.Details.Houses.Midheaven())},
	)
}

// Write renders c to w in format f
func Write(w io.Writer, f Format, c Chart) error {
	if c.Details == nil {
		return fmt.Errorf("chart has no details")
	}

	switch f {
	case FormatTable:
		return WriteTable(w, c)
	case FormatJSON:
		return writeJSON(w, c)
	case FormatCSV:
		return WriteCSV(w, c, CSVOptions{BOMPrefix: true})
	case FormatXLSX:
		return WriteXLSX(w, c)
	default:
		return fmt.Errorf("unsupported format %q", f)
	}
}

func writeJSON(w io.Writer, c Chart) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c.Details.Result())
}
