// Package stats computes per-day and overall central-tendency tables for
// one (window, area) record set.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

// OverallDay labels the synthetic row computed over the whole window,
// independent of the daily bucketing.
const OverallDay = "Overall"

// DailyStat is one row of a stats table. Average and Median are in physical
// units rounded to two decimals; nil marks a day with no measurements,
// distinct from zero.
type DailyStat struct {
	Day     string
	Average *float64
	Median  *float64
}

// Table holds the daily rows plus the Overall row for one (window, area).
type Table struct {
	Label string
	Rows  []DailyStat
}

// Aggregate buckets records by calendar day of their recording timestamp,
// computes mean and median per day at the internal ×100 scale, left-joins
// the results onto every calendar day of the window so empty days appear
// with nil stats, and appends the Overall row computed across the entire
// record set. Division by 100 and rounding happen only after all internal
// computation; empty days take part in no arithmetic.
//
// The same input always produces an identical table.
func Aggregate(records []airdata.MeasurementRecord, w airdata.Window) (Table, error) {
	days, err := w.Days()
	if err != nil {
		return Table{}, err
	}

	buckets := make(map[string][]float64)
	all := make([]float64, 0, len(records))
	for _, r := range records {
		day := airdata.Day(r.RecordingTimestamp)
		buckets[day] = append(buckets[day], r.PM25)
		all = append(all, r.PM25)
	}

	rows := make([]DailyStat, 0, len(days)+1)
	for _, day := range days {
		rows = append(rows, statRow(day, buckets[day]))
	}
	rows = append(rows, statRow(OverallDay, all))

	return Table{Rows: rows}, nil
}

func statRow(day string, values []float64) DailyStat {
	if len(values) == 0 {
		return DailyStat{Day: day}
	}
	return DailyStat{
		Day:     day,
		Average: toPhysical(stat.Mean(values, nil)),
		Median:  toPhysical(median(values)),
	}
}

// toPhysical converts a ×100 fixed-point value to physical units rounded to
// two decimals. At this scale, two-decimal rounding of the quotient is
// integral rounding of the raw value.
func toPhysical(v float64) *float64 {
	p := math.Round(v) / 100
	return &p
}

// median uses the average-of-two-middles rule for even counts. The input is
// not modified.
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}
