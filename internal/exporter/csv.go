package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
)

// CSVHeaders are the column names of the CSV export
var CSVHeaders = []string{"Body", "Longitude", "Position", "Speed", "Retrograde"}

// CSVOptions configures CSV writing behavior
type CSVOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// WriteCSV writes one record per row after the header line
func WriteCSV(w io.Writer, c Chart, options CSVOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(CSVHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range c.Rows() {
		record := []string{r.Name, formatFloat(r.Longitude), FormatZodiac(r.Longitude), "", ""}
		if r.HasSpeed {
			record[3] = formatSpeed(r.Speed)
			record[4] = formatBool(r.Retrograde())
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
