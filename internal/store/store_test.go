package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maryakemi70/HY4RES-WP2/internal/ingest"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

func makeSeries(q model.Quantity, values []float64, startTime time.Time, interval time.Duration) model.Series {
	points := make([]model.TimePoint, len(values))
	for i, v := range values {
		points[i] = model.TimePoint{
			Timestamp: startTime.Add(time.Duration(i) * interval),
			Value:     v,
		}
	}
	return model.NewSeries(q, points)
}

var (
	startTime = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	hour      = time.Hour
)

func TestStore_AddAndQuery(t *testing.T) {
	s := New(nil)
	s.Add(makeSeries(model.QuantityDemand, []float64{1, 2, 3}, startTime, hour), Source{Path: "demand.csv"})

	series, ok := s.Series(model.QuantityDemand)
	require.True(t, ok)
	assert.Equal(t, 3, series.Len())

	_, ok = s.Series(model.QuantityProduction)
	assert.False(t, ok)

	sources := s.Sources()
	require.Len(t, sources, 1)
	assert.Equal(t, model.QuantityDemand, sources[0].Quantity)
	assert.Equal(t, 3, sources[0].Points)
	assert.Equal(t, "demand.csv", sources[0].Path)
}

func TestStore_TimeRange(t *testing.T) {
	s := New(nil)
	s.Add(makeSeries(model.QuantityDemand, []float64{1, 2, 3}, startTime, hour), Source{})

	tr, ok := s.TimeRange(model.QuantityDemand)
	require.True(t, ok)
	assert.Equal(t, startTime, tr.Start)
	assert.Equal(t, startTime.Add(2*hour), tr.End)

	_, ok = s.TimeRange(model.QuantityProduction)
	assert.False(t, ok)
}

func TestStore_GlobalTimeRange(t *testing.T) {
	s := New(nil)

	_, ok := s.GlobalTimeRange()
	assert.False(t, ok)

	s.Add(makeSeries(model.QuantityDemand, []float64{1, 2}, startTime, hour), Source{})
	s.Add(makeSeries(model.QuantityProduction, []float64{3, 4}, startTime.Add(-hour), 3*hour), Source{})

	tr, ok := s.GlobalTimeRange()
	require.True(t, ok)
	assert.Equal(t, startTime.Add(-hour), tr.Start)
	assert.Equal(t, startTime.Add(2*hour), tr.End)
}

func TestStore_PointsInRange(t *testing.T) {
	s := New(nil)
	s.Add(makeSeries(model.QuantityDemand, []float64{100, 200, 300, 400, 500}, startTime, hour), Source{})

	result := s.PointsInRange(model.QuantityDemand, startTime.Add(hour), startTime.Add(3*hour))
	require.Len(t, result, 2)
	assert.InDelta(t, 200.0, result[0].Value, 0.001)
	assert.InDelta(t, 300.0, result[1].Value, 0.001)

	assert.Empty(t, s.PointsInRange(model.QuantityDemand, startTime.Add(10*hour), startTime.Add(11*hour)))
	assert.Empty(t, s.PointsInRange(model.QuantityProduction, startTime, startTime.Add(hour)))
}

func TestStore_LoadCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "true_data.csv")
	content := "Datetime,Energy Consumption kWh,Producción Planta\n" +
		"2020-01-01 00:00:00,10,4\n" +
		"2020-01-01 01:00:00,10,12\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s := New(nil)
	demand, err := s.LoadCSV(path, ingest.NewCSVSeriesParser("Datetime", "Energy Consumption kWh", model.QuantityDemand))
	require.NoError(t, err)
	assert.Equal(t, 2, demand.Len())

	production, err := s.LoadCSV(path, ingest.NewCSVSeriesParser("Datetime", "Producción Planta", model.QuantityProduction))
	require.NoError(t, err)
	v, ok := production.At(startTime.Add(hour))
	require.True(t, ok)
	assert.InDelta(t, 12.0, v, 0.001)

	assert.Len(t, s.Sources(), 2)

	_, err = s.LoadCSV(filepath.Join(dir, "missing.csv"), ingest.NewCSVSeriesParser("Datetime", "x", model.QuantityDemand))
	assert.Error(t, err)
}
