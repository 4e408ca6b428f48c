package airdata

import (
	"encoding/json"
	"strconv"
	"time"
)

// maxPM25 is the upper bound of the plausible sensor range at the ×100
// fixed-point scale. Readings outside (0, maxPM25] are sensor glitches.
const maxPM25 = 10000

// timestampLayouts covers the formats the datastore emits. Timestamps carry
// no zone and are bucketed in the clock they were recorded in.
var timestampLayouts = []string{
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Normalize converts raw field maps into measurement records, applying the
// filter and scale rules in order:
//
//  1. drop records whose pm2_5 is missing, non-numeric, <= 0 or > 10000;
//  2. multiply pm2_5 by 100 when version_major == "1", normalizing the
//     legacy encoding to the current fixed-point scale;
//  3. carry (longitude, latitude) through as the record's point.
//
// Records without a parseable timestamp or coordinates are unusable by every
// downstream step and are dropped as well. An empty input yields an empty
// output.
func Normalize(raw []RawRecord) []MeasurementRecord {
	records := make([]MeasurementRecord, 0, len(raw))
	for _, r := range raw {
		pm25, ok := toFloat(r["pm2_5"])
		if !ok || pm25 <= 0 || pm25 > maxPM25 {
			continue
		}

		ts, ok := toTimestamp(r["recording_timestamp"])
		if !ok {
			continue
		}
		lat, okLat := toFloat(r["latitude"])
		lon, okLon := toFloat(r["longitude"])
		if !okLat || !okLon {
			continue
		}

		version := toString(r["version_major"])
		if version == "1" {
			pm25 *= 100
		}

		rec := MeasurementRecord{
			EntityID:           toString(r["entity_id"]),
			RecordingTimestamp: ts,
			ErrorCode:          toString(r["error_code"]),
			Latitude:           lat,
			Longitude:          lon,
			PM25:               pm25,
			VersionMajor:       version,
		}
		rec.AccMax, _ = toFloat(r["acc_max"])
		rec.HorizontalAccuracy, _ = toFloat(r["horizontal_accuracy"])
		rec.Humidity, _ = toFloat(r["humidity"])
		rec.Pressure, _ = toFloat(r["pressure"])
		rec.Temperature, _ = toFloat(r["temperature"])
		rec.VerticalAccuracy, _ = toFloat(r["vertical_accuracy"])
		rec.VOC, _ = toFloat(r["voc"])
		rec.Voltage, _ = toFloat(r["voltage"])

		records = append(records, rec)
	}
	return records
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}

func toTimestamp(v any) (time.Time, bool) {
	s := toString(v)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
