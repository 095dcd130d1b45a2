// Package service composes the balance calculator, the grid mix table and
// the indicator engine behind explicit per-call queries.
package service

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maryakemi70/HY4RES-WP2/internal/balance"
	"github.com/maryakemi70/HY4RES-WP2/internal/compare"
	"github.com/maryakemi70/HY4RES-WP2/internal/gridmix"
	"github.com/maryakemi70/HY4RES-WP2/internal/impact"
	"github.com/maryakemi70/HY4RES-WP2/internal/metrics"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/report"
	"github.com/maryakemi70/HY4RES-WP2/internal/solar"
)

// ErrInvalidQuery is returned for a query with a non-positive day count
// or an unknown mode.
var ErrInvalidQuery = errors.New("invalid query")

// Query selects a window of days starting at the calendar date of Start.
// A zero Start means the first day with data.
type Query struct {
	Start time.Time
	Days  int
	Mode  balance.Mode
}

func (q Query) validate() error {
	if q.Days <= 0 {
		return fmt.Errorf("%w: days must be positive, got %d", ErrInvalidQuery, q.Days)
	}
	if _, err := balance.ParseMode(string(q.Mode)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}
	return nil
}

// Options tune a Service. Zero values use the defaults.
type Options struct {
	PVSource string
	// Indicators restricts and orders the reported indicators.
	Indicators []model.Indicator
	Logger     *slog.Logger
}

// Service answers balance and impact queries over one loaded dataset.
type Service struct {
	calc       *balance.Calculator
	engine     *impact.Engine
	mix        *gridmix.Table
	factors    []model.CharacterizationFactor
	indicators []model.Indicator
	coverage   model.TimeRange
	logger     *slog.Logger
}

// New calculates the balance of demand and production once and prepares
// the indicator engine.
func New(demand, production model.Series, mix *gridmix.Table, factors []model.CharacterizationFactor, opts Options) (*Service, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if mix == nil {
		mix = gridmix.New(nil)
	}

	calc, err := balance.Compute(demand, production)
	if err != nil {
		return nil, fmt.Errorf("calculating balance: %w", err)
	}
	daily, err := calc.DailyAll()
	if err != nil {
		return nil, err
	}
	coverage, err := calc.TimeRange()
	if err != nil {
		return nil, err
	}

	engine := impact.New(daily, mix, logger)
	if opts.PVSource != "" {
		engine.SetPVSource(opts.PVSource)
	}

	fs := make([]model.CharacterizationFactor, len(factors))
	copy(fs, factors)

	logger.Info("balance calculated",
		"records", len(daily),
		"from", coverage.Start.Format(model.DateLayout),
		"to", coverage.End.Format(model.DateLayout))

	s := &Service{
		calc:       calc,
		engine:     engine,
		mix:        mix,
		factors:    fs,
		indicators: opts.Indicators,
		coverage:   coverage,
		logger:     logger,
	}
	if len(opts.Indicators) > 0 {
		engine.SetIndicators(s.Indicators())
	}
	return s, nil
}

// Coverage is the time range of the joined balance.
func (s *Service) Coverage() model.TimeRange {
	return s.coverage
}

// Sources lists the grid generation sources known to the mix table.
func (s *Service) Sources() []string {
	return s.mix.Sources()
}

// Indicators lists the indicators every impact query reports.
func (s *Service) Indicators() []model.Indicator {
	return s.filter(impact.Indicators(s.factors))
}

// BalanceResult is the balance of one query window.
type BalanceResult struct {
	Start   time.Time             `json:"start_date"`
	Days    int                   `json:"days"`
	Mode    balance.Mode          `json:"mode"`
	Records []model.BalanceRecord `json:"records"`
	Summary balance.Summary       `json:"summary"`
}

// Balance returns hourly records or daily rows for the window, with totals.
func (s *Service) Balance(q Query) (res BalanceResult, err error) {
	began := time.Now()
	defer func() { metrics.ObserveQuery("balance", metrics.Result(err), time.Since(began)) }()

	q, err = s.normalize(q)
	if err != nil {
		return BalanceResult{}, err
	}
	records, err := s.calc.Window(q.Start, q.Days, q.Mode)
	if err != nil {
		return BalanceResult{}, err
	}
	return BalanceResult{
		Start:   q.Start,
		Days:    q.Days,
		Mode:    q.Mode,
		Records: records,
		Summary: balance.Summarize(balance.Totals(records)),
	}, nil
}

// ImpactResult holds the indicator tables of one query window and the
// metrics derived from them.
type ImpactResult struct {
	Start          time.Time                                     `json:"start_date"`
	Days           int                                           `json:"days"`
	Daily          []model.DailyAggregate                        `json:"daily"`
	Energy         balance.Summary                               `json:"energy"`
	Indicators     []model.Indicator                             `json:"indicators"`
	Tables         map[model.Indicator][]model.IndicatorDailyRow `json:"tables"`
	Reference      map[model.Indicator]float64                   `json:"reference"`
	Metrics        []compare.Metrics                             `json:"metrics"`
	Intensities    []compare.Intensity                           `json:"intensities"`
	MissingMixDays []time.Time                                   `json:"missing_mix_days"`
}

// Impacts evaluates every indicator over the days [Start, Start+Days).
func (s *Service) Impacts(q Query) (res ImpactResult, err error) {
	began := time.Now()
	defer func() { metrics.ObserveQuery("impact", metrics.Result(err), time.Since(began)) }()

	q, err = s.normalize(q)
	if err != nil {
		return ImpactResult{}, err
	}
	w := impact.Window{Start: q.Start, Days: q.Days}

	tables, err := s.engine.DailyTables(s.factors, w)
	if err != nil {
		return ImpactResult{}, err
	}
	reference := tables.Reference
	indicators := s.filter(tables.Indicators)

	var energy model.EnergyTotals
	for _, d := range tables.Daily {
		energy = energy.Add(d.EnergyTotals)
	}

	cmp := compare.Table(indicators, tables.Tables, reference)
	for _, m := range cmp {
		if m.ReferenceZero && len(tables.Daily) > 0 {
			s.logger.Warn("reference impact is zero, percentages set to 0", "indicator", m.Indicator)
		}
	}
	metrics.AddMissingMixDays(len(tables.MissingMixDays))

	res = ImpactResult{
		Start:          q.Start,
		Days:           q.Days,
		Daily:          tables.Daily,
		Energy:         balance.Summarize(energy),
		Indicators:     indicators,
		Tables:         make(map[model.Indicator][]model.IndicatorDailyRow, len(indicators)),
		Reference:      make(map[model.Indicator]float64, len(indicators)),
		Metrics:        cmp,
		Intensities:    compare.Intensities(cmp, energy),
		MissingMixDays: tables.MissingMixDays,
	}
	for _, ind := range indicators {
		res.Tables[ind] = tables.Tables[ind]
		res.Reference[ind] = reference[ind]
	}
	if res.Daily == nil {
		res.Daily = []model.DailyAggregate{}
	}
	return res, nil
}

// ProfileResult is the mean hour-of-day shape of a query window.
type ProfileResult struct {
	Start   time.Time     `json:"start_date"`
	Days    int           `json:"days"`
	Profile solar.Profile `json:"profile"`
}

// Profile averages the hourly balance of the window by hour of day.
func (s *Service) Profile(q Query) (res ProfileResult, err error) {
	began := time.Now()
	defer func() { metrics.ObserveQuery("profile", metrics.Result(err), time.Since(began)) }()

	q, err = s.normalize(q)
	if err != nil {
		return ProfileResult{}, err
	}
	records, err := s.calc.Window(q.Start, q.Days, balance.ModeHourly)
	if err != nil {
		return ProfileResult{}, err
	}
	return ProfileResult{
		Start:   q.Start,
		Days:    q.Days,
		Profile: solar.BuildProfile(records),
	}, nil
}

// Report runs both queries and bundles them for export.
func (s *Service) Report(q Query) (report.Report, error) {
	bal, err := s.Balance(q)
	if err != nil {
		return report.Report{}, err
	}
	imp, err := s.Impacts(q)
	if err != nil {
		return report.Report{}, err
	}
	return report.Report{
		Start:       bal.Start,
		Days:        bal.Days,
		Mode:        bal.Mode,
		Balance:     bal.Records,
		Summary:     bal.Summary,
		Indicators:  imp.Indicators,
		Tables:      imp.Tables,
		Metrics:     imp.Metrics,
		Intensities: imp.Intensities,

		MissingMixDays: imp.MissingMixDays,
	}, nil
}

func (s *Service) normalize(q Query) (Query, error) {
	if err := q.validate(); err != nil {
		return Query{}, err
	}
	q.Mode, _ = balance.ParseMode(string(q.Mode))
	if q.Start.IsZero() {
		q.Start = s.coverage.Start
	}
	q.Start = model.Day(q.Start)
	return q, nil
}

// filter keeps the configured indicators, in configured order, that are
// present in available.
func (s *Service) filter(available []model.Indicator) []model.Indicator {
	if len(s.indicators) == 0 {
		return available
	}
	present := make(map[model.Indicator]bool, len(available))
	for _, ind := range available {
		present[ind] = true
	}
	out := make([]model.Indicator, 0, len(s.indicators))
	for _, ind := range s.indicators {
		if present[ind] {
			out = append(out, ind)
		}
	}
	return out
}
