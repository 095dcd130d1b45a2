// Package model holds the energy, grid mix and indicator types shared by
// every package.
package model

import (
	"math"
	"sort"
	"time"
)

// Quantity is the canonical semantic name of an energy series.
type Quantity string

const (
	QuantityDemand          Quantity = "Demand"
	QuantityProduction      Quantity = "Production"
	QuantitySelfConsumption Quantity = "SelfConsumption"
	QuantityGridImport      Quantity = "ImportfromGrid"
	QuantityExportToGrid    Quantity = "ExportToGrid"
)

// QuantityInfo holds display name and unit for a quantity.
type QuantityInfo struct {
	Name string
	Unit string
}

// QuantityCatalog maps every known Quantity to its display name and unit.
var QuantityCatalog = map[Quantity]QuantityInfo{
	QuantityDemand:          {Name: "Demand", Unit: "kWh"},
	QuantityProduction:      {Name: "Production", Unit: "kWh"},
	QuantitySelfConsumption: {Name: "Self Consumption", Unit: "kWh"},
	QuantityGridImport:      {Name: "Import from Grid", Unit: "kWh"},
	QuantityExportToGrid:    {Name: "Export to Grid", Unit: "kWh"},
}

// TimePoint is a single observation of a series.
type TimePoint struct {
	Timestamp time.Time
	Value     float64
}

// Series is a named, time-ordered set of observations with unique timestamps.
// Build it with NewSeries; the zero value is an empty series.
type Series struct {
	Quantity Quantity
	points   []TimePoint
}

// NewSeries sorts points ascending, drops NaN/Inf values and collapses
// duplicate timestamps, keeping the last occurrence in input order.
func NewSeries(q Quantity, points []TimePoint) Series {
	byTime := make(map[time.Time]int, len(points))
	clean := make([]TimePoint, 0, len(points))
	for _, p := range points {
		if math.IsNaN(p.Value) || math.IsInf(p.Value, 0) {
			continue
		}
		p.Timestamp = NormalizeTimestamp(p.Timestamp)
		if idx, ok := byTime[p.Timestamp]; ok {
			clean[idx] = p
			continue
		}
		byTime[p.Timestamp] = len(clean)
		clean = append(clean, p)
	}
	sort.Slice(clean, func(i, j int) bool {
		return clean[i].Timestamp.Before(clean[j].Timestamp)
	})
	return Series{Quantity: q, points: clean}
}

// Len returns the number of points.
func (s Series) Len() int { return len(s.points) }

// Points returns a copy of the points in ascending order.
func (s Series) Points() []TimePoint {
	out := make([]TimePoint, len(s.points))
	copy(out, s.points)
	return out
}

// At returns the value stored at exactly ts.
func (s Series) At(ts time.Time) (float64, bool) {
	ts = NormalizeTimestamp(ts)
	idx := sort.Search(len(s.points), func(i int) bool {
		return !s.points[i].Timestamp.Before(ts)
	})
	if idx < len(s.points) && s.points[idx].Timestamp.Equal(ts) {
		return s.points[idx].Value, true
	}
	return 0, false
}

// TimeRange returns the first and last timestamps of the series.
func (s Series) TimeRange() (TimeRange, bool) {
	if len(s.points) == 0 {
		return TimeRange{}, false
	}
	return TimeRange{Start: s.points[0].Timestamp, End: s.points[len(s.points)-1].Timestamp}, true
}

// TimeRange is an inclusive span between two instants.
type TimeRange struct {
	Start time.Time
	End   time.Time
}
