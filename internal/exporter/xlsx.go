package exporter

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"astrochart/internal/services"
)

// SheetName is the worksheet holding the chart
const SheetName = "Chart"

// xlsxTableRow is the first row of the position table; rows above it hold
// the chart input.
const xlsxTableRow = 6

// WriteXLSX writes c as a single-sheet workbook
func WriteXLSX(w io.Writer, c Chart) error {
	f, err := BuildWorkbook(c)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// BuildWorkbook lays out the chart on the Chart sheet
func BuildWorkbook(c Chart) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	meta := [][]interface{}{
		{"Date (UT)", c.Input.Time.Format(services.DatetimeLayout)},
		{"Longitude", c.Input.Longitude},
		{"Latitude", c.Input.Latitude},
		{"Julian day", c.Details.JulianDay},
	}
	for i, values := range meta {
		if err := setRow(f, i+1, values); err != nil {
			f.Close()
			return nil, err
		}
	}

	header := make([]interface{}, len(CSVHeaders))
	for i, h := range CSVHeaders {
		header[i] = h
	}
	if err := setRow(f, xlsxTableRow, header); err != nil {
		f.Close()
		return nil, err
	}
	first, _ := excelize.CoordinatesToCellName(1, xlsxTableRow)
	last, _ := excelize.CoordinatesToCellName(len(CSVHeaders), xlsxTableRow)
	if err := f.SetCellStyle(SheetName, first, last, bold); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to style header: %w", err)
	}

	for i, r := range c.Rows() {
		values := []interface{}{r.Name, r.Longitude, FormatZodiac(r.Longitude), nil, nil}
		if r.HasSpeed {
			values[3] = r.Speed
			values[4] = r.Retrograde()
		}
		if err := setRow(f, xlsxTableRow+1+i, values); err != nil {
			f.Close()
			return nil, err
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 12); err != nil {
		f.Close()
		return nil, err
	}
	if err := f.SetColWidth(SheetName, "C", "C", 18); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

func setRow(f *excelize.File, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}
