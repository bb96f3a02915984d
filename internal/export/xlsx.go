// Package export converts the accumulated record set into an XLSX workbook.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/jonathan/incident-generator/internal/incident"
)

// DefaultPath is the export destination when none is configured.
const DefaultPath = "incidents_export.xlsx"

const sheetName = "Sheet1"

// WriteXLSX writes one header row plus one row per record, in generation
// order, columns fixed per incident.ColumnNames. The three duration metrics
// are recomputed from timestamps for every record first, so the exported
// numbers are internally consistent regardless of what the model supplied.
// The workbook is built fully in memory and saved last: a failure leaves no
// partial file, and the intermediate cache is never touched here, so export
// alone can be retried.
func WriteXLSX(records []incident.Incident, path string) error {
	if path == "" {
		path = DefaultPath
	}

	f := excelize.NewFile()
	defer f.Close()

	header := make([]interface{}, len(incident.ColumnNames))
	for i, name := range incident.ColumnNames {
		header[i] = name
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header row: %w", err)
	}

	for i := range records {
		rec := records[i].Clone()
		if err := rec.RecomputeDurations(); err != nil {
			return fmt.Errorf("deriving durations for %s: %w", rec.Number, err)
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("computing cell for row %d: %w", i+2, err)
		}
		row := rec.Row()
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row for %s: %w", rec.Number, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}
