package exporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	"astrochart/internal/services"
)

// WriteTable writes a header block with the chart input and an aligned
// table of positions
func WriteTable(w io.Writer, c Chart) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Date (UT)\t%s\n", c.Input.Time.Format(services.DatetimeLayout))
	fmt.Fprintf(tw, "Longitude\t%s\n", formatCoordinate(c.Input.Longitude))
	fmt.Fprintf(tw, "Latitude\t%s\n", formatCoordinate(c.Input.Latitude))
	fmt.Fprintf(tw, "Julian day\t%.6f\n", c.Details.JulianDay)
	if err := tw.Flush(); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Body\tLongitude\tPosition\tSpeed\t")
	for _, r := range c.Rows() {
		speed := ""
		if r.HasSpeed {
			speed = formatSpeed(r.Speed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.Name, formatFloat(r.Longitude), FormatZodiac(r.Longitude), speed, retrogradeMarker(r))
	}
	return tw.Flush()
}
