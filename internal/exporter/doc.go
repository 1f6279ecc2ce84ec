// Package exporter writes a computed chart in the formats offered by the
// chart command line tool.
//
// Formats:
//
//   - table: aligned text with zodiac positions, daily motion and an R
//     marker for retrograde bodies
//   - json: the same object POST /astro returns
//   - csv: one row per body and angle, UTF-8 BOM for Excel
//   - xlsx: a workbook with a Chart sheet, written with excelize
//
// Example usage:
//
//	chart := exporter.Chart{Input: in, Details: details}
//	err := exporter.Write(os.Stdout, exporter.FormatTable, chart)
package exporter
