package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

func reading(day string, hour int, pm float64) airdata.MeasurementRecord {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return airdata.MeasurementRecord{
		RecordingTimestamp: d.Add(time.Duration(hour) * time.Hour),
		PM25:               pm,
	}
}

func value(t *testing.T, v *float64) float64 {
	t.Helper()
	if v == nil {
		t.Fatal("expected a value, got the missing marker")
	}
	return *v
}

// TestAggregateScenario covers the three-day window with a gap: daily rows
// for present days, the missing marker for the empty day, and an Overall
// row across the whole set.
func TestAggregateScenario(t *testing.T) {
	w := airdata.Window{Start: "2022-04-01", End: "2022-04-03"}
	records := []airdata.MeasurementRecord{
		reading("2022-04-01", 9, 500),
		reading("2022-04-01", 15, 1500),
		reading("2022-04-03", 12, 1000),
	}

	table, err := Aggregate(records, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 4 {
		t.Fatalf("expected 3 day rows plus Overall, got %d rows", len(table.Rows))
	}

	d1 := table.Rows[0]
	if d1.Day != "2022-04-01" || value(t, d1.Average) != 10.00 || value(t, d1.Median) != 10.00 {
		t.Fatalf("day 1: %+v", d1)
	}
	d2 := table.Rows[1]
	if d2.Day != "2022-04-02" || d2.Average != nil || d2.Median != nil {
		t.Fatalf("day 2 must carry the missing marker: %+v", d2)
	}
	d3 := table.Rows[2]
	if d3.Day != "2022-04-03" || value(t, d3.Average) != 10.00 || value(t, d3.Median) != 10.00 {
		t.Fatalf("day 3: %+v", d3)
	}
	overall := table.Rows[3]
	if overall.Day != OverallDay || value(t, overall.Average) != 10.00 || value(t, overall.Median) != 10.00 {
		t.Fatalf("overall: %+v", overall)
	}
}

// TestAggregateCompleteness verifies day-row count is purely a function of
// the window, regardless of data sparsity.
func TestAggregateCompleteness(t *testing.T) {
	w := airdata.Window{Start: "2022-04-01", End: "2022-05-31"}
	table, err := Aggregate(nil, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows) != 61+1 {
		t.Fatalf("expected 61 day rows plus Overall, got %d", len(table.Rows))
	}
	for _, row := range table.Rows {
		if row.Average != nil || row.Median != nil {
			t.Fatalf("empty window must be all missing, got %+v", row)
		}
	}
	if table.Rows[61].Day != OverallDay {
		t.Fatalf("last row must be Overall, got %q", table.Rows[61].Day)
	}
}

// TestAggregateIdempotent verifies re-running on the same record set yields
// an identical table.
func TestAggregateIdempotent(t *testing.T) {
	w := airdata.Window{Start: "2022-04-01", End: "2022-04-05"}
	records := []airdata.MeasurementRecord{
		reading("2022-04-01", 1, 123),
		reading("2022-04-02", 2, 456),
		reading("2022-04-02", 3, 789),
		reading("2022-04-05", 4, 1011),
	}

	first, err := Aggregate(records, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Aggregate(records, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("aggregation is not deterministic")
	}
}

// TestAggregateMedianEvenCount verifies the average-of-two-middles rule.
func TestAggregateMedianEvenCount(t *testing.T) {
	w := airdata.Window{Start: "2022-04-01", End: "2022-04-01"}
	records := []airdata.MeasurementRecord{
		reading("2022-04-01", 8, 100),
		reading("2022-04-01", 10, 400),
		reading("2022-04-01", 12, 200),
		reading("2022-04-01", 14, 300),
	}

	table, err := Aggregate(records, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := value(t, table.Rows[0].Median); got != 2.5 {
		t.Fatalf("median of [1.0 2.0 3.0 4.0] physical: got %v, want 2.5", got)
	}
	if got := value(t, table.Rows[0].Average); got != 2.5 {
		t.Fatalf("mean: got %v, want 2.5", got)
	}
}

// TestAggregateRounding verifies two-decimal rounding happens after the
// division to physical units.
func TestAggregateRounding(t *testing.T) {
	w := airdata.Window{Start: "2022-04-01", End: "2022-04-01"}
	records := []airdata.MeasurementRecord{
		reading("2022-04-01", 8, 100),
		reading("2022-04-01", 10, 200),
		reading("2022-04-01", 12, 700),
	}

	table, err := Aggregate(records, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// mean 333.33... internal -> 3.33 physical
	if got := value(t, table.Rows[0].Average); got != 3.33 {
		t.Fatalf("average: got %v, want 3.33", got)
	}
	if got := value(t, table.Rows[0].Median); got != 2.00 {
		t.Fatalf("median: got %v, want 2.00", got)
	}
}

// TestAggregateOverallIgnoresDayGaps verifies the Overall row is computed
// over the records only; missing days contribute nothing.
func TestAggregateOverallIgnoresDayGaps(t *testing.T) {
	w := airdata.Window{Start: "2022-04-01", End: "2022-04-10"}
	records := []airdata.MeasurementRecord{
		reading("2022-04-01", 8, 200),
		reading("2022-04-10", 8, 400),
	}

	table, err := Aggregate(records, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	overall := table.Rows[len(table.Rows)-1]
	if got := value(t, overall.Average); got != 3.00 {
		t.Fatalf("overall average: got %v, want 3.00", got)
	}
	if got := value(t, overall.Median); got != 3.00 {
		t.Fatalf("overall median: got %v, want 3.00", got)
	}
}

func TestAggregateInvalidWindow(t *testing.T) {
	if _, err := Aggregate(nil, airdata.Window{Start: "bad", End: "2022-04-01"}); err == nil {
		t.Fatal("expected error for malformed window")
	}
}
