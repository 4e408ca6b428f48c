// Package pipeline drives the fetch-cache-filter-aggregate loop across the
// cross-product of date windows and areas.
package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/stadslucht/pm25-extract/internal/airdata"
	"github.com/stadslucht/pm25-extract/internal/cache"
	"github.com/stadslucht/pm25-extract/internal/geo"
	"github.com/stadslucht/pm25-extract/internal/stats"
)

// Fetcher retrieves the raw result set of one window from the remote
// datastore.
type Fetcher interface {
	Fetch(ctx context.Context, w airdata.Window) ([]airdata.RawRecord, error)
}

// Writer is the external report collaborator: it receives each pair's
// cleaned records and, at the end, every labeled stats table.
type Writer interface {
	WriteExtract(area string, w airdata.Window, records []airdata.MeasurementRecord) error
	WriteSummary(tables []stats.Table) error
}

// AreaSource names an area and the GeoJSON file defining it. Order is
// preserved through the run, so outputs are deterministic.
type AreaSource struct {
	Name string
	Path string
}

// Pipeline wires the paginator, cache, filters, aggregator and writer
// together. It owns all mutable run state; execution is strictly
// sequential.
type Pipeline struct {
	windows []airdata.Window
	areas   []AreaSource
	cache   *cache.Cache
	fetcher Fetcher
	writer  Writer
}

// Report is the outcome of one run: the summary tables that were produced
// and every unit error that was downgraded to a skip.
type Report struct {
	Tables []stats.Table
	Errors []*UnitError
}

// New builds a pipeline over the given windows and areas.
func New(windows []airdata.Window, areas []AreaSource, c *cache.Cache, fetcher Fetcher, writer Writer) *Pipeline {
	return &Pipeline{
		windows: windows,
		areas:   areas,
		cache:   c,
		fetcher: fetcher,
		writer:  writer,
	}
}

// Run processes every window in order and every area within it in order.
// Per-window and per-area failures are recorded on the report and skipped,
// never allowed to abort sibling units. Only writing the final summary can
// fail the run itself.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	// Unreadable geometry disqualifies an area for all windows up front.
	areas := make([]*geo.Area, 0, len(p.areas))
	for _, src := range p.areas {
		area, err := geo.LoadArea(src.Name, src.Path)
		if err != nil {
			report.fail(&UnitError{Kind: KindSpatialInput, Area: src.Name, Err: err})
			continue
		}
		areas = append(areas, area)
	}

	for _, w := range p.windows {
		raw, err := p.cache.Resolve(ctx, w, p.fetcher.Fetch)
		if err != nil {
			// The partial set is retained and processed; only this
			// window's pagination was cut short.
			report.fail(&UnitError{Kind: KindTransport, Window: w.Label(), Err: err})
		}

		records := airdata.Normalize(raw)
		if len(records) == 0 {
			log.Printf("pipeline: no data found for date range %s", w.Label())
			continue
		}

		for _, area := range areas {
			inArea := area.Within(records)
			if len(inArea) == 0 {
				log.Printf("pipeline: no data for %s in range %s", area.Name, w.Label())
				continue
			}

			table, err := stats.Aggregate(inArea, w)
			if err != nil {
				report.fail(&UnitError{Kind: KindAggregation, Window: w.Label(), Area: area.Name, Err: err})
				continue
			}
			table.Label = fmt.Sprintf("%s (%s)", area.Name, w.Label())

			if err := p.writer.WriteExtract(area.Name, w, inArea); err != nil {
				// Extract output is best-effort per pair; the stats
				// still make the summary.
				log.Printf("pipeline: error saving data for %s: %v", area.Name, err)
			}
			report.Tables = append(report.Tables, table)
		}
	}

	if err := p.writer.WriteSummary(report.Tables); err != nil {
		return report, err
	}
	return report, nil
}

func (r *Report) fail(err *UnitError) {
	log.Printf("pipeline: %v", err)
	r.Errors = append(r.Errors, err)
}
