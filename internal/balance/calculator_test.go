package balance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

var day0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func hourly(q model.Quantity, start time.Time, values ...float64) model.Series {
	points := make([]model.TimePoint, len(values))
	for i, v := range values {
		points[i] = model.TimePoint{Timestamp: start.Add(time.Duration(i) * time.Hour), Value: v}
	}
	return model.NewSeries(q, points)
}

// threeDays builds 72 hourly records: demand 2 kWh, production alternating 0 and 3 kWh.
func threeDays(t *testing.T) *Calculator {
	t.Helper()
	demand := make([]float64, 72)
	production := make([]float64, 72)
	for i := range demand {
		demand[i] = 2
		if i%2 == 1 {
			production[i] = 3
		}
	}
	c, err := Compute(hourly(model.QuantityDemand, day0, demand...), hourly(model.QuantityProduction, day0, production...))
	require.NoError(t, err)
	return c
}

func TestCalculate_Decomposition(t *testing.T) {
	c := New(
		hourly(model.QuantityDemand, day0, 10, 10),
		hourly(model.QuantityProduction, day0, 4, 12),
	)
	records, err := c.Calculate()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.InDelta(t, 4.0, records[0].SelfConsumption, 1e-9)
	assert.InDelta(t, 6.0, records[0].GridImport, 1e-9)
	assert.InDelta(t, 0.0, records[0].ExportToGrid, 1e-9)

	assert.InDelta(t, 10.0, records[1].SelfConsumption, 1e-9)
	assert.InDelta(t, 0.0, records[1].GridImport, 1e-9)
	assert.InDelta(t, 2.0, records[1].ExportToGrid, 1e-9)
}

func TestCalculate_Invariants(t *testing.T) {
	c := threeDays(t)
	records, err := c.Records()
	require.NoError(t, err)

	for _, r := range records {
		assert.InDelta(t, r.Demand, r.SelfConsumption+r.GridImport, 1e-9)
		assert.InDelta(t, r.Production, r.SelfConsumption+r.ExportToGrid, 1e-9)
		assert.GreaterOrEqual(t, r.SelfConsumption, 0.0)
		assert.GreaterOrEqual(t, r.GridImport, 0.0)
		assert.GreaterOrEqual(t, r.ExportToGrid, 0.0)
	}
}

func TestCalculate_InnerJoin(t *testing.T) {
	demand := hourly(model.QuantityDemand, day0, 1, 2, 3, 4)
	production := hourly(model.QuantityProduction, day0.Add(2*time.Hour), 5, 5, 5)

	c := New(demand, production)
	records, err := c.Calculate()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, day0.Add(2*time.Hour), records[0].Timestamp)
	assert.Equal(t, day0.Add(3*time.Hour), records[1].Timestamp)
}

func TestCalculate_NoOverlap(t *testing.T) {
	c := New(
		hourly(model.QuantityDemand, day0, 1, 2),
		hourly(model.QuantityProduction, day0.Add(24*time.Hour), 1, 2),
	)
	_, err := c.Calculate()
	assert.ErrorIs(t, err, model.ErrData)

	_, err = Compute(model.Series{}, model.Series{})
	assert.ErrorIs(t, err, model.ErrData)
}

func TestCalculate_NegativeValue(t *testing.T) {
	_, err := Compute(hourly(model.QuantityDemand, day0, 1, -1), hourly(model.QuantityProduction, day0, 1, 1))
	assert.ErrorIs(t, err, model.ErrData)
}

func TestCalculate_Cached(t *testing.T) {
	c := New(hourly(model.QuantityDemand, day0, 10), hourly(model.QuantityProduction, day0, 4))
	first, err := c.Calculate()
	require.NoError(t, err)

	first[0].Demand = 999

	second, err := c.Calculate()
	require.NoError(t, err)
	assert.InDelta(t, 10.0, second[0].Demand, 1e-9)
}

func TestQueriesBeforeCalculate(t *testing.T) {
	c := New(hourly(model.QuantityDemand, day0, 1), hourly(model.QuantityProduction, day0, 1))

	_, err := c.LastHoursFrom(day0, 24)
	assert.ErrorIs(t, err, model.ErrState)

	_, err = c.DailyAggregatedFrom(day0, 7)
	assert.ErrorIs(t, err, model.ErrState)

	_, err = c.AggregatedFrom(day0, model.GranularityMonth)
	assert.ErrorIs(t, err, model.ErrState)

	_, err = c.LastHours(24)
	assert.ErrorIs(t, err, model.ErrState)

	_, err = c.DailyAggregatedLast(168, 7)
	assert.ErrorIs(t, err, model.ErrState)

	_, err = c.Records()
	assert.ErrorIs(t, err, model.ErrState)

	_, err = c.TimeRange()
	assert.ErrorIs(t, err, model.ErrState)
}

func TestLastHoursFrom(t *testing.T) {
	c := threeDays(t)

	// Start mid-day is floored to the start of that day.
	records, err := c.LastHoursFrom(day0.Add(24*time.Hour+15*time.Hour), 30)
	require.NoError(t, err)
	require.Len(t, records, 30)
	assert.Equal(t, day0.Add(24*time.Hour), records[0].Timestamp)
	assert.Equal(t, day0.Add(53*time.Hour), records[29].Timestamp)

	records, err = c.LastHoursFrom(day0.Add(48*time.Hour), 100)
	require.NoError(t, err)
	assert.Len(t, records, 24)

	records, err = c.LastHoursFrom(day0.AddDate(0, 0, 10), 24)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestLastHours(t *testing.T) {
	c := threeDays(t)

	records, err := c.LastHours(30)
	require.NoError(t, err)
	require.Len(t, records, 30)
	assert.Equal(t, day0.Add(42*time.Hour), records[0].Timestamp)
	assert.Equal(t, day0.Add(71*time.Hour), records[29].Timestamp)

	records, err = c.LastHours(100)
	require.NoError(t, err)
	require.Len(t, records, 72)
	assert.Equal(t, day0, records[0].Timestamp)

	records, err = c.LastHours(0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDailyAggregatedLast(t *testing.T) {
	c := threeDays(t)

	tests := []struct {
		name       string
		hours      int
		days       int
		wantDates  []time.Time
		wantDemand []float64
	}{
		{"partial first day", 30, 7, []time.Time{day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2)}, []float64{12, 48}},
		{"hours beyond data", 1000, 7, []time.Time{day0, day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2)}, []float64{48, 48, 48}},
		{"keeps last days", 1000, 2, []time.Time{day0.AddDate(0, 0, 1), day0.AddDate(0, 0, 2)}, []float64{48, 48}},
		{"no hours", 0, 7, nil, nil},
		{"no days", 72, 0, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			daily, err := c.DailyAggregatedLast(tt.hours, tt.days)
			require.NoError(t, err)
			require.NotNil(t, daily)
			require.Len(t, daily, len(tt.wantDates))
			for i, d := range daily {
				assert.Equal(t, tt.wantDates[i], d.Date)
				assert.InDelta(t, tt.wantDemand[i], d.Demand, 1e-9)
			}
		})
	}

	daily, err := c.DailyAggregatedLast(48, 7)
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.InDelta(t, 24.0, daily[1].SelfConsumption, 1e-9)
	assert.InDelta(t, 24.0, daily[1].GridImport, 1e-9)
	assert.InDelta(t, 12.0, daily[1].ExportToGrid, 1e-9)
}

func TestDailyAggregatedFrom(t *testing.T) {
	c := threeDays(t)

	daily, err := c.DailyAggregatedFrom(day0.Add(24*time.Hour), 7)
	require.NoError(t, err)
	require.Len(t, daily, 2)

	assert.Equal(t, day0.Add(24*time.Hour), daily[0].Date)
	assert.InDelta(t, 48.0, daily[0].Demand, 1e-9)
	assert.InDelta(t, 36.0, daily[0].Production, 1e-9)
	assert.InDelta(t, 24.0, daily[0].SelfConsumption, 1e-9)
	assert.InDelta(t, 24.0, daily[0].GridImport, 1e-9)
	assert.InDelta(t, 12.0, daily[0].ExportToGrid, 1e-9)

	daily, err = c.DailyAggregatedFrom(day0, 1)
	require.NoError(t, err)
	assert.Len(t, daily, 1)
}

func TestDailyAggregatedFrom_AfterLastDate(t *testing.T) {
	c := threeDays(t)

	daily, err := c.DailyAggregatedFrom(day0.AddDate(0, 1, 0), 7)
	require.NoError(t, err)
	assert.NotNil(t, daily)
	assert.Empty(t, daily)
}

func TestDailyAggregatedFrom_Idempotent(t *testing.T) {
	c := threeDays(t)

	a, err := c.DailyAggregatedFrom(day0, 3)
	require.NoError(t, err)
	b, err := c.DailyAggregatedFrom(day0, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestDailyAggregatedFrom_RoundTrip(t *testing.T) {
	c := threeDays(t)
	records, err := c.Records()
	require.NoError(t, err)
	daily, err := c.DailyAll()
	require.NoError(t, err)
	require.Len(t, daily, 3)

	for _, d := range daily {
		var sameDay []model.BalanceRecord
		for _, r := range records {
			if model.Day(r.Timestamp).Equal(d.Date) {
				sameDay = append(sameDay, r)
			}
		}
		want := Totals(sameDay)
		for _, q := range model.BalanceQuantities {
			assert.InDelta(t, want.Value(q), d.Value(q), 1e-9, "%s on %s", q, d.Date)
		}
	}
}

func TestAggregatedFrom_Month(t *testing.T) {
	// Two hourly points on Jan 31 and Feb 1
	ts := []model.TimePoint{
		{Timestamp: time.Date(2020, 1, 31, 12, 0, 0, 0, time.UTC), Value: 5},
		{Timestamp: time.Date(2020, 2, 1, 12, 0, 0, 0, time.UTC), Value: 7},
		{Timestamp: time.Date(2020, 2, 2, 12, 0, 0, 0, time.UTC), Value: 1},
	}
	pv := []model.TimePoint{
		{Timestamp: ts[0].Timestamp, Value: 1},
		{Timestamp: ts[1].Timestamp, Value: 10},
		{Timestamp: ts[2].Timestamp, Value: 0},
	}
	c, err := Compute(model.NewSeries(model.QuantityDemand, ts), model.NewSeries(model.QuantityProduction, pv))
	require.NoError(t, err)

	months, err := c.AggregatedFrom(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), model.GranularityMonth)
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC), months[1].PeriodStart)
	assert.InDelta(t, 8.0, months[1].Demand, 1e-9)
	assert.InDelta(t, 3.0, months[1].ExportToGrid, 1e-9)
	assert.InDelta(t, 1.0, months[1].GridImport, 1e-9)

	years, err := c.AggregatedFrom(day0, model.GranularityYear)
	require.NoError(t, err)
	require.Len(t, years, 1)
	assert.InDelta(t, 13.0, years[0].Demand, 1e-9)

	_, err = c.AggregatedFrom(day0, model.Granularity("WEEK"))
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	c := threeDays(t)

	hourlyRows, err := c.Window(day0, 2, ModeHourly)
	require.NoError(t, err)
	assert.Len(t, hourlyRows, 48)

	dailyRows, err := c.Window(day0, 2, ModeDaily)
	require.NoError(t, err)
	require.Len(t, dailyRows, 2)
	assert.Equal(t, day0.Add(24*time.Hour), dailyRows[1].Timestamp)
	assert.InDelta(t, 48.0, dailyRows[1].Demand, 1e-9)

	_, err = c.Window(day0, 2, Mode("weekly"))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestTimeRange(t *testing.T) {
	c := threeDays(t)
	tr, err := c.TimeRange()
	require.NoError(t, err)
	assert.Equal(t, day0, tr.Start)
	assert.Equal(t, day0.Add(71*time.Hour), tr.End)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("hourly")
	require.NoError(t, err)
	assert.Equal(t, ModeHourly, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeDaily, m)

	_, err = ParseMode("monthly")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestSummarize(t *testing.T) {
	s := Summarize(model.EnergyTotals{Demand: 10, Production: 8, SelfConsumption: 6, GridImport: 4, ExportToGrid: 2})
	assert.InDelta(t, 50.0, s.SelfConsumptionShare, 1e-9)
	assert.InDelta(t, 100.0/3, s.GridImportShare, 1e-9)
	assert.InDelta(t, 100.0/6, s.ExportShare, 1e-9)
	assert.InDelta(t, 75.0, s.SelfConsumptionRate, 1e-9)
	assert.InDelta(t, 60.0, s.AutarkyRate, 1e-9)

	zero := Summarize(model.EnergyTotals{})
	assert.Zero(t, zero.SelfConsumptionShare)
	assert.Zero(t, zero.SelfConsumptionRate)
	assert.Zero(t, zero.AutarkyRate)
}
