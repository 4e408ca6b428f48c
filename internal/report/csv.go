// Package report writes the per-area raw-data extracts and the consolidated
// workbook the pipeline produces.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

// columns is the extract header, matching the remote projection order.
var columns = []string{
	"entity_id", "recording_timestamp", "acc_max", "error_code",
	"horizontal_accuracy", "humidity", "latitude", "longitude",
	"pm2_5", "pressure", "temperature",
	"vertical_accuracy", "voc", "voltage", "version_major",
}

// WriteCSV writes one extract file per (area, window) into dir. The pm2_5
// column is converted to physical units at write time; everything upstream
// stays at the ×100 scale.
func WriteCSV(dir, area string, w airdata.Window, records []airdata.MeasurementRecord) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_data_%s_to_%s.csv", area, w.Start, w.End)
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return err
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(recordRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func recordRow(r airdata.MeasurementRecord) []string {
	return []string{
		r.EntityID,
		r.RecordingTimestamp.Format("2006-01-02T15:04:05"),
		formatFloat(r.AccMax),
		r.ErrorCode,
		formatFloat(r.HorizontalAccuracy),
		formatFloat(r.Humidity),
		formatFloat(r.Latitude),
		formatFloat(r.Longitude),
		formatFloat(r.PM25 / 100),
		formatFloat(r.Pressure),
		formatFloat(r.Temperature),
		formatFloat(r.VerticalAccuracy),
		formatFloat(r.VOC),
		formatFloat(r.Voltage),
		r.VersionMajor,
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
