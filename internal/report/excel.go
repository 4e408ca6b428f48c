package report

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/stadslucht/pm25-extract/internal/airdata"
	"github.com/stadslucht/pm25-extract/internal/stats"
)

// summarySheet is the dedicated sheet enumerating every StatsTable.
const summarySheet = "PM25_Stats"

// sheetNameInvalid lists the characters spreadsheet sheet names reject,
// plus spaces.
var sheetNameInvalid = []string{`\`, `/`, `*`, `[`, `]`, `:`, `?`, `'`, ` `}

// SanitizeSheetName strips invalid characters and truncates to the 31-rune
// sheet name cap.
func SanitizeSheetName(name string) string {
	for _, c := range sheetNameInvalid {
		name = strings.ReplaceAll(name, c, "")
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// Workbook accumulates one data sheet per (area, window) and a final summary
// sheet, then saves as a single xlsx file.
type Workbook struct {
	f *excelize.File
}

// NewWorkbook returns an empty workbook.
func NewWorkbook() *Workbook {
	return &Workbook{f: excelize.NewFile()}
}

// AddDataSheet writes the cleaned records of one (area, window) pair to
// their own sheet, pm2_5 in physical units.
func (wb *Workbook) AddDataSheet(area string, w airdata.Window, records []airdata.MeasurementRecord) error {
	sheet := SanitizeSheetName(fmt.Sprintf("%s_%s_%s", area, w.Start, w.End))
	if _, err := wb.f.NewSheet(sheet); err != nil {
		return err
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := wb.f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			r.EntityID,
			r.RecordingTimestamp.Format("2006-01-02T15:04:05"),
			r.AccMax,
			r.ErrorCode,
			r.HorizontalAccuracy,
			r.Humidity,
			r.Latitude,
			r.Longitude,
			r.PM25 / 100,
			r.Pressure,
			r.Temperature,
			r.VerticalAccuracy,
			r.VOC,
			r.Voltage,
			r.VersionMajor,
		}
		if err := wb.f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// AddSummary renders every labeled stats table as a section on the summary
// sheet: a bold section label, a header row, one row per day plus the
// Overall row, and a blank spacer row between sections. Days with no data
// show the literal "missing" in both stat columns.
func (wb *Workbook) AddSummary(tables []stats.Table) error {
	if _, err := wb.f.NewSheet(summarySheet); err != nil {
		return err
	}
	bold, err := wb.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	for _, t := range tables {
		labelCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := wb.f.SetCellValue(summarySheet, labelCell, t.Label); err != nil {
			return err
		}
		if err := wb.f.SetCellStyle(summarySheet, labelCell, labelCell, bold); err != nil {
			return err
		}
		row++

		headerCell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		header := []interface{}{"Date", "PM2.5_Average", "PM2.5_Median"}
		if err := wb.f.SetSheetRow(summarySheet, headerCell, &header); err != nil {
			return err
		}
		row++

		for _, d := range t.Rows {
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			vals := []interface{}{d.Day, statCell(d.Average), statCell(d.Median)}
			if err := wb.f.SetSheetRow(summarySheet, cell, &vals); err != nil {
				return err
			}
			row++
		}

		// spacer before the next section
		row++
	}
	return nil
}

// Save writes the workbook, dropping the implicit default sheet first.
func (wb *Workbook) Save(path string) error {
	wb.f.DeleteSheet("Sheet1")
	return wb.f.SaveAs(path)
}

func statCell(v *float64) interface{} {
	if v == nil {
		return "missing"
	}
	return *v
}
