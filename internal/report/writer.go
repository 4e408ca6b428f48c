package report

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/stadslucht/pm25-extract/internal/airdata"
	"github.com/stadslucht/pm25-extract/internal/stats"
)

// Writer produces the full report surface of one run: a CSV extract per
// (area, window), a workbook sheet per pair, and the consolidated summary
// sheet.
type Writer struct {
	dir  string
	name string
	wb   *Workbook
}

// NewWriter writes artifacts into dir. name labels the workbook file, the
// convention being the data collection or project name.
func NewWriter(dir, name string) *Writer {
	return &Writer{dir: dir, name: name, wb: NewWorkbook()}
}

// WriteExtract emits the cleaned record set of one (area, window) pair as
// both a CSV file and a workbook sheet.
func (w *Writer) WriteExtract(area string, win airdata.Window, records []airdata.MeasurementRecord) error {
	if err := WriteCSV(w.dir, area, win, records); err != nil {
		return fmt.Errorf("csv extract for %s %s: %w", area, win.Label(), err)
	}
	log.Printf("report: wrote %d records for %s in range %s", len(records), area, win.Label())
	if err := w.wb.AddDataSheet(area, win, records); err != nil {
		return fmt.Errorf("workbook sheet for %s %s: %w", area, win.Label(), err)
	}
	return nil
}

// WriteSummary renders the collected stats tables and saves the workbook.
func (w *Writer) WriteSummary(tables []stats.Table) error {
	if err := w.wb.AddSummary(tables); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}
	path := filepath.Join(w.dir, fmt.Sprintf("%s_data_multiple_date_ranges_within_geojson_areas.xlsx", w.name))
	if err := w.wb.Save(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	log.Printf("report: workbook saved to %s", path)
	return nil
}
