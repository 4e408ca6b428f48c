package airdata

import (
	"fmt"
	"time"
)

// dayFormat is the calendar-day layout used for window bounds, daily
// bucketing keys and cache/report labels.
const dayFormat = "2006-01-02"

// RawRecord is one unvalidated field map exactly as the remote datastore
// returns it. Values may arrive as JSON numbers or strings.
type RawRecord map[string]any

// MeasurementRecord is a normalized sensor reading.
//
// PM25 is kept at the fixed-point ×100 scale used throughout the pipeline;
// it is divided by 100 only when written out for presentation.
type MeasurementRecord struct {
	EntityID           string    `json:"entity_id"`
	RecordingTimestamp time.Time `json:"recording_timestamp"`
	AccMax             float64   `json:"acc_max"`
	ErrorCode          string    `json:"error_code"`
	HorizontalAccuracy float64   `json:"horizontal_accuracy"`
	Humidity           float64   `json:"humidity"`
	Latitude           float64   `json:"latitude"`
	Longitude          float64   `json:"longitude"`
	PM25               float64   `json:"pm2_5"`
	Pressure           float64   `json:"pressure"`
	Temperature        float64   `json:"temperature"`
	VerticalAccuracy   float64   `json:"vertical_accuracy"`
	VOC                float64   `json:"voc"`
	Voltage            float64   `json:"voltage"`
	VersionMajor       string    `json:"version_major"`
}

// Window is an inclusive [Start, End] date range at day granularity.
// Its literal bound strings identify both the remote query filter and the
// cache/report keys, so they are never reformatted.
type Window struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

// Label returns the human-readable form used in logs and report headings.
func (w Window) Label() string {
	return w.Start + " to " + w.End
}

// Validate checks that both bounds parse and that Start does not come
// after End.
func (w Window) Validate() error {
	start, err := time.Parse(dayFormat, w.Start)
	if err != nil {
		return fmt.Errorf("invalid window start %q: %w", w.Start, err)
	}
	end, err := time.Parse(dayFormat, w.End)
	if err != nil {
		return fmt.Errorf("invalid window end %q: %w", w.End, err)
	}
	if end.Before(start) {
		return fmt.Errorf("window end %s before start %s", w.End, w.Start)
	}
	return nil
}

// Days enumerates every calendar day of the window, inclusive on both ends.
func (w Window) Days() ([]string, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	start, _ := time.Parse(dayFormat, w.Start)
	end, _ := time.Parse(dayFormat, w.End)

	var days []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayFormat))
	}
	return days, nil
}

// Day returns the calendar-day bucket key for a timestamp, in the same
// clock the timestamp was recorded in.
func Day(ts time.Time) string {
	return ts.Format(dayFormat)
}
