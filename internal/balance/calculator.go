// Package balance decomposes aligned demand and production series into
// self-consumption, grid import and grid export, and answers time-window
// queries over the result.
package balance

import (
	"errors"
	"fmt"
	"time"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Mode selects the resolution of a window query.
type Mode string

const (
	ModeHourly Mode = "hourly"
	ModeDaily  Mode = "daily"
)

// ErrInvalidMode is returned for a mode other than hourly or daily.
var ErrInvalidMode = errors.New("balance: invalid mode")

// ParseMode validates a mode string. An empty string means daily.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeHourly:
		return ModeHourly, nil
	case ModeDaily, "":
		return ModeDaily, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
}

// Calculator joins a demand and a production series on timestamp.
// The decomposition is computed once by Calculate and reused by every query.
type Calculator struct {
	demand     model.Series
	production model.Series

	records    []model.BalanceRecord
	calculated bool
}

// New returns a calculator over demand and production. Call Calculate
// before querying it.
func New(demand, production model.Series) *Calculator {
	return &Calculator{demand: demand, production: production}
}

// Compute builds a calculator and runs Calculate.
func Compute(demand, production model.Series) (*Calculator, error) {
	c := New(demand, production)
	if _, err := c.Calculate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Calculate inner-joins the two series and derives the balance of every
// shared timestamp. Timestamps present in only one series are dropped.
// Repeat calls return the cached result.
func (c *Calculator) Calculate() ([]model.BalanceRecord, error) {
	if c.calculated {
		return c.copyRecords(c.records), nil
	}

	prod := c.production.Points()
	byTime := make(map[time.Time]float64, len(prod))
	for _, p := range prod {
		byTime[p.Timestamp] = p.Value
	}

	// Demand points are already sorted, so the joined rows are too.
	var records []model.BalanceRecord
	for _, d := range c.demand.Points() {
		pv, ok := byTime[d.Timestamp]
		if !ok {
			continue
		}
		if d.Value < 0 || pv < 0 {
			return nil, fmt.Errorf("%w: negative energy at %s (demand %.3f, production %.3f)",
				model.ErrData, d.Timestamp.Format(time.DateTime), d.Value, pv)
		}
		records = append(records, model.NewBalanceRecord(d.Timestamp, d.Value, pv))
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: demand (%d points) and production (%d points) share no timestamps",
			model.ErrData, c.demand.Len(), c.production.Len())
	}

	c.records = records
	c.calculated = true
	return c.copyRecords(records), nil
}

// Records returns every calculated record in chronological order.
func (c *Calculator) Records() ([]model.BalanceRecord, error) {
	if !c.calculated {
		return nil, notCalculated("Records")
	}
	return c.copyRecords(c.records), nil
}

// TimeRange returns the first and last joined timestamps.
func (c *Calculator) TimeRange() (model.TimeRange, error) {
	if !c.calculated {
		return model.TimeRange{}, notCalculated("TimeRange")
	}
	return model.TimeRange{
		Start: c.records[0].Timestamp,
		End:   c.records[len(c.records)-1].Timestamp,
	}, nil
}

// LastHoursFrom returns up to hours records starting at the start of the
// day of start. Fewer records are returned when the data runs out.
func (c *Calculator) LastHoursFrom(start time.Time, hours int) ([]model.BalanceRecord, error) {
	if !c.calculated {
		return nil, notCalculated("LastHoursFrom")
	}
	from := c.fromIndex(start)
	if hours <= 0 || from >= len(c.records) {
		return []model.BalanceRecord{}, nil
	}
	end := min(from+hours, len(c.records))
	return c.copyRecords(c.records[from:end]), nil
}

// LastHours returns the last hours records. All records are returned when
// fewer exist.
func (c *Calculator) LastHours(hours int) ([]model.BalanceRecord, error) {
	if !c.calculated {
		return nil, notCalculated("LastHours")
	}
	return c.copyRecords(c.tail(hours)), nil
}

// DailyAggregatedLast sums the last hours records per calendar date and
// keeps the last days aggregates.
func (c *Calculator) DailyAggregatedLast(hours, days int) ([]model.DailyAggregate, error) {
	if !c.calculated {
		return nil, notCalculated("DailyAggregatedLast")
	}
	if days <= 0 {
		return []model.DailyAggregate{}, nil
	}
	daily := toDaily(aggregate(c.tail(hours), model.GranularityDay, 0))
	if len(daily) > days {
		daily = daily[len(daily)-days:]
	}
	return daily, nil
}

func (c *Calculator) tail(n int) []model.BalanceRecord {
	if n <= 0 {
		return nil
	}
	return c.records[max(len(c.records)-n, 0):]
}

// DailyAggregatedFrom sums records per calendar date starting at the day of
// start and returns the first days aggregates.
func (c *Calculator) DailyAggregatedFrom(start time.Time, days int) ([]model.DailyAggregate, error) {
	if !c.calculated {
		return nil, notCalculated("DailyAggregatedFrom")
	}
	if days <= 0 {
		return []model.DailyAggregate{}, nil
	}
	periods := aggregate(c.records[c.fromIndex(start):], model.GranularityDay, days)
	return toDaily(periods), nil
}

// DailyAll returns the daily aggregate of the whole joined range.
func (c *Calculator) DailyAll() ([]model.DailyAggregate, error) {
	if !c.calculated {
		return nil, notCalculated("DailyAll")
	}
	return toDaily(aggregate(c.records, model.GranularityDay, 0)), nil
}

// AggregatedFrom sums records per period of granularity g starting at the
// day of start.
func (c *Calculator) AggregatedFrom(start time.Time, g model.Granularity) ([]model.PeriodAggregate, error) {
	if !c.calculated {
		return nil, notCalculated("AggregatedFrom")
	}
	if !g.IsValid() {
		return nil, fmt.Errorf("balance: invalid granularity %q", g)
	}
	return aggregate(c.records[c.fromIndex(start):], g, 0), nil
}

// Window answers a dashboard query: hourly mode returns days*24 hourly
// records, daily mode returns days daily aggregates stamped at midnight.
func (c *Calculator) Window(start time.Time, days int, mode Mode) ([]model.BalanceRecord, error) {
	switch mode {
	case ModeHourly:
		return c.LastHoursFrom(start, days*24)
	case ModeDaily:
		daily, err := c.DailyAggregatedFrom(start, days)
		if err != nil {
			return nil, err
		}
		out := make([]model.BalanceRecord, len(daily))
		for i, d := range daily {
			out[i] = model.BalanceRecord{Timestamp: d.Date, EnergyTotals: d.EnergyTotals}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
}

// fromIndex returns the index of the first record at or after the start of
// the day of t.
func (c *Calculator) fromIndex(t time.Time) int {
	day := model.Day(t)
	for i, r := range c.records {
		if !r.Timestamp.Before(day) {
			return i
		}
	}
	return len(c.records)
}

func (c *Calculator) copyRecords(rs []model.BalanceRecord) []model.BalanceRecord {
	out := make([]model.BalanceRecord, len(rs))
	copy(out, rs)
	return out
}

func notCalculated(op string) error {
	return fmt.Errorf("%w: %s called before Calculate", model.ErrState, op)
}
