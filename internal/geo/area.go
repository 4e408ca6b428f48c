// Package geo loads named area polygons from GeoJSON and restricts
// measurement records to their interior.
package geo

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/golang/geo/s2"

	"github.com/stadslucht/pm25-extract/internal/airdata"
)

// Area is a named region bounded by a single simple polygon. Only the first
// geometry of the source file is authoritative; holes and additional
// polygons are ignored.
type Area struct {
	Name string

	loop *s2.Loop
}

type geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

type feature struct {
	Geometry *geometry `json:"geometry"`
}

type document struct {
	Type        string          `json:"type"`
	Features    []feature       `json:"features"`
	Geometry    *geometry       `json:"geometry"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// LoadArea reads a GeoJSON file holding a FeatureCollection, Feature or bare
// geometry and builds an Area from its first polygon.
func LoadArea(name, path string) (*Area, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read area %s: %w", name, err)
	}
	ring, err := firstRing(b)
	if err != nil {
		return nil, fmt.Errorf("area %s: %w", name, err)
	}

	// GeoJSON rings repeat the first vertex at the end; s2 loops close
	// implicitly.
	if n := len(ring); n > 1 && ring[0][0] == ring[n-1][0] && ring[0][1] == ring[n-1][1] {
		ring = ring[:n-1]
	}
	if len(ring) < 3 {
		return nil, fmt.Errorf("area %s: polygon ring has %d distinct vertices", name, len(ring))
	}

	points := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		points = append(points, s2.PointFromLatLng(s2.LatLngFromDegrees(c[1], c[0])))
	}
	loop := s2.LoopFromPoints(points)
	// Orientation in source files varies; take the smaller of the two
	// regions the ring bounds.
	loop.Normalize()

	return &Area{Name: name, loop: loop}, nil
}

// Contains reports whether the point lies strictly inside the area polygon,
// following the geometry library's interior convention: points on the
// boundary are excluded.
func (a *Area) Contains(lat, lon float64) bool {
	return a.loop.ContainsPoint(s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon)))
}

// Within returns the records whose location falls inside the area. A linear
// scan is fine at this data scale. Zero survivors is a valid outcome.
func (a *Area) Within(records []airdata.MeasurementRecord) []airdata.MeasurementRecord {
	inside := make([]airdata.MeasurementRecord, 0, len(records))
	for _, r := range records {
		if a.Contains(r.Latitude, r.Longitude) {
			inside = append(inside, r)
		}
	}
	return inside
}

// firstRing extracts the outer ring of the first polygon geometry in the
// document: [lon, lat, ...] coordinate positions per the GeoJSON convention.
func firstRing(b []byte) ([][]float64, error) {
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	var geom *geometry
	switch doc.Type {
	case "FeatureCollection":
		for _, f := range doc.Features {
			if f.Geometry != nil {
				geom = f.Geometry
				break
			}
		}
	case "Feature":
		geom = doc.Geometry
	default:
		geom = &geometry{Type: doc.Type, Coordinates: doc.Coordinates}
	}
	if geom == nil {
		return nil, fmt.Errorf("no geometry found")
	}

	switch geom.Type {
	case "Polygon":
		var rings [][][]float64
		if err := json.Unmarshal(geom.Coordinates, &rings); err != nil {
			return nil, fmt.Errorf("parse polygon coordinates: %w", err)
		}
		if len(rings) == 0 {
			return nil, fmt.Errorf("polygon has no rings")
		}
		return checkRing(rings[0])
	case "MultiPolygon":
		var polys [][][][]float64
		if err := json.Unmarshal(geom.Coordinates, &polys); err != nil {
			return nil, fmt.Errorf("parse multipolygon coordinates: %w", err)
		}
		if len(polys) == 0 || len(polys[0]) == 0 {
			return nil, fmt.Errorf("multipolygon has no rings")
		}
		return checkRing(polys[0][0])
	default:
		return nil, fmt.Errorf("unsupported geometry type %q", geom.Type)
	}
}

// checkRing rejects positions with fewer than the lon/lat pair.
func checkRing(ring [][]float64) ([][]float64, error) {
	for _, c := range ring {
		if len(c) < 2 {
			return nil, fmt.Errorf("polygon position has %d coordinates", len(c))
		}
	}
	return ring, nil
}
