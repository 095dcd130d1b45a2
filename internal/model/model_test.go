package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func TestNewSeries_SortsAndDedupes(t *testing.T) {
	s := NewSeries(QuantityDemand, []TimePoint{
		{Timestamp: base.Add(2 * time.Hour), Value: 3},
		{Timestamp: base, Value: 1},
		{Timestamp: base.Add(time.Hour), Value: math.NaN()},
		{Timestamp: base, Value: 5},
	})

	pts := s.Points()
	require.Len(t, pts, 2)
	assert.Equal(t, base, pts[0].Timestamp)
	assert.InDelta(t, 5.0, pts[0].Value, 0.001)
	assert.Equal(t, base.Add(2*time.Hour), pts[1].Timestamp)
	assert.Equal(t, QuantityDemand, s.Quantity)
}

func TestNewSeries_NormalizesZone(t *testing.T) {
	cet := time.FixedZone("CET", 3600)
	s := NewSeries(QuantityProduction, []TimePoint{
		{Timestamp: time.Date(2020, 1, 1, 10, 0, 0, 500, cet), Value: 2},
	})

	v, ok := s.At(time.Date(2020, 1, 1, 10, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 0.001)

	_, ok = s.At(base)
	assert.False(t, ok)
}

func TestSeries_TimeRange(t *testing.T) {
	_, ok := Series{}.TimeRange()
	assert.False(t, ok)

	s := NewSeries(QuantityDemand, []TimePoint{
		{Timestamp: base.Add(5 * time.Hour), Value: 1},
		{Timestamp: base, Value: 1},
	})
	tr, ok := s.TimeRange()
	require.True(t, ok)
	assert.Equal(t, base, tr.Start)
	assert.Equal(t, base.Add(5*time.Hour), tr.End)
}

func TestNewBalanceRecord(t *testing.T) {
	tests := []struct {
		name       string
		demand     float64
		production float64
		self       float64
		grid       float64
		export     float64
	}{
		{"deficit", 10, 4, 4, 6, 0},
		{"surplus", 10, 12, 10, 0, 2},
		{"balanced", 5, 5, 5, 0, 0},
		{"night", 3, 0, 0, 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewBalanceRecord(base, tt.demand, tt.production)
			assert.InDelta(t, tt.self, r.SelfConsumption, 1e-9)
			assert.InDelta(t, tt.grid, r.GridImport, 1e-9)
			assert.InDelta(t, tt.export, r.ExportToGrid, 1e-9)
			assert.InDelta(t, r.Demand, r.SelfConsumption+r.GridImport, 1e-9)
			assert.InDelta(t, r.Production, r.SelfConsumption+r.ExportToGrid, 1e-9)
		})
	}
}

func TestEnergyTotals_AddAndValue(t *testing.T) {
	a := EnergyTotals{Demand: 1, Production: 2, SelfConsumption: 1, GridImport: 0, ExportToGrid: 1}
	b := EnergyTotals{Demand: 3, Production: 1, SelfConsumption: 1, GridImport: 2, ExportToGrid: 0}
	sum := a.Add(b)

	assert.InDelta(t, 4.0, sum.Value(QuantityDemand), 1e-9)
	assert.InDelta(t, 3.0, sum.Value(QuantityProduction), 1e-9)
	assert.InDelta(t, 2.0, sum.Value(QuantitySelfConsumption), 1e-9)
	assert.InDelta(t, 2.0, sum.Value(QuantityGridImport), 1e-9)
	assert.InDelta(t, 1.0, sum.Value(QuantityExportToGrid), 1e-9)
	assert.Zero(t, sum.Value(Quantity("unknown")))
}

func TestGranularity_PeriodStart(t *testing.T) {
	ts := time.Date(2021, 7, 15, 13, 45, 0, 0, time.UTC)

	assert.Equal(t, time.Date(2021, 7, 15, 13, 0, 0, 0, time.UTC), GranularityHour.PeriodStart(ts))
	assert.Equal(t, time.Date(2021, 7, 15, 0, 0, 0, 0, time.UTC), GranularityDay.PeriodStart(ts))
	assert.Equal(t, time.Date(2021, 7, 1, 0, 0, 0, 0, time.UTC), GranularityMonth.PeriodStart(ts))
	assert.Equal(t, time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC), GranularityYear.PeriodStart(ts))

	assert.True(t, GranularityMonth.IsValid())
	assert.False(t, Granularity("WEEK").IsValid())
}

func TestSourceName(t *testing.T) {
	assert.Equal(t, "Hydropower", SourceName("Hydropower_kWh"))
	assert.Equal(t, "PV Solar Power", SourceName(" PV Solar Power_kWh "))
	assert.Equal(t, "Coal", SourceName("Coal"))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2020-03-04")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, 3, 4, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("04/03/2020")
	assert.Error(t, err)
}

func TestIndicatorCatalog(t *testing.T) {
	for _, ind := range StandardIndicators {
		info, ok := IndicatorCatalog[ind]
		require.True(t, ok, ind)
		assert.NotEmpty(t, info.Unit)
	}
	assert.Equal(t, "kg CO2-Eq", IndicatorGWP100.Unit())
	assert.Empty(t, Indicator("custom").Unit())
}
