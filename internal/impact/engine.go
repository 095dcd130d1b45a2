// Package impact converts a daily energy balance into life-cycle impact
// indicator tables using a time-varying grid mix and per-source
// characterization factors.
package impact

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/maryakemi70/HY4RES-WP2/internal/gridmix"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Window selects the calendar dates [Start, Start+Days).
type Window struct {
	Start time.Time
	Days  int
}

// Contains reports whether the date of t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	start := model.Day(w.Start)
	day := model.Day(t)
	return !day.Before(start) && day.Before(start.AddDate(0, 0, w.Days))
}

// Result holds one daily table per indicator.
type Result struct {
	// Daily holds the balance rows retained by the window.
	Daily      []model.DailyAggregate
	Indicators []model.Indicator
	Tables     map[model.Indicator][]model.IndicatorDailyRow

	// Reference is the grid-only impact of the window per indicator.
	Reference map[model.Indicator]float64

	// MissingMixDays lists retained days without a grid mix row; their
	// grid import impact is 0.
	MissingMixDays []time.Time
}

// Engine evaluates impact indicators over a daily balance.
type Engine struct {
	daily      []model.DailyAggregate
	mix        *gridmix.Table
	pvSource   string
	indicators []model.Indicator
	logger     *slog.Logger
}

// New copies and sorts daily by date. A nil logger uses slog.Default.
func New(daily []model.DailyAggregate, mix *gridmix.Table, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if mix == nil {
		mix = gridmix.New(nil)
	}
	rows := make([]model.DailyAggregate, len(daily))
	copy(rows, daily)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	return &Engine{
		daily:    rows,
		mix:      mix,
		pvSource: model.PVSource,
		logger:   logger,
	}
}

// SetPVSource changes the factor entry used for self-consumption and export.
func (e *Engine) SetPVSource(name string) {
	e.pvSource = model.SourceName(name)
}

// SetIndicators restricts evaluation to inds, in that order. An empty list
// evaluates every indicator the factors support.
func (e *Engine) SetIndicators(inds []model.Indicator) {
	e.indicators = append([]model.Indicator(nil), inds...)
}

// DailyTables computes, per indicator, the grid import, self-consumption,
// export and net impact of every day in w, and the grid-only reference.
// A coefficient missing from a factor entry contributes 0.
func (e *Engine) DailyTables(factors []model.CharacterizationFactor, w Window) (Result, error) {
	indicators := e.selected(factors)
	days := e.window(w)

	result := Result{
		Daily:      days,
		Indicators: indicators,
		Tables:     make(map[model.Indicator][]model.IndicatorDailyRow, len(indicators)),
	}
	for _, ind := range indicators {
		result.Tables[ind] = make([]model.IndicatorDailyRow, 0, len(days))
	}
	if len(days) == 0 {
		result.Reference = e.reference(factors, indicators, nil)
		return result, nil
	}

	pv, hasPV := e.pvFactor(factors)
	if !hasPV {
		for _, d := range days {
			if d.SelfConsumption != 0 || d.ExportToGrid != 0 {
				return Result{}, fmt.Errorf("%w: no characterization factor for %q but the window has self-consumption or export",
					model.ErrConfig, e.pvSource)
			}
		}
	}

	for _, d := range days {
		mix, ok := e.mix.MixFor(d.Date)
		if !ok {
			result.MissingMixDays = append(result.MissingMixDays, d.Date)
		}
		for _, ind := range indicators {
			pvCoef, _ := pv.Coefficient(ind)
			result.Tables[ind] = append(result.Tables[ind], dailyRow(d, mix, factors, ind, pvCoef))
		}
	}
	result.Reference = e.reference(factors, indicators, days)

	e.warnMissing(result.MissingMixDays)
	return result, nil
}

// ReferenceImpacts returns, per indicator, the impact over w if the whole
// delivered demand (self-consumption plus grid import) had come from the
// grid mix.
func (e *Engine) ReferenceImpacts(factors []model.CharacterizationFactor, w Window) map[model.Indicator]float64 {
	days := e.window(w)
	var missing []time.Time
	for _, d := range days {
		if !e.mix.Has(d.Date) {
			missing = append(missing, d.Date)
		}
	}
	e.warnMissing(missing)
	return e.reference(factors, e.selected(factors), days)
}

func (e *Engine) reference(factors []model.CharacterizationFactor, indicators []model.Indicator, days []model.DailyAggregate) map[model.Indicator]float64 {
	ref := make(map[model.Indicator]float64, len(indicators))
	for _, ind := range indicators {
		ref[ind] = 0
	}
	for _, d := range days {
		mix, _ := e.mix.MixFor(d.Date)
		demand := d.SelfConsumption + d.GridImport
		for _, ind := range indicators {
			ref[ind] += gridImpact(demand, mix, factors, ind)
		}
	}
	return ref
}

func (e *Engine) selected(factors []model.CharacterizationFactor) []model.Indicator {
	if len(e.indicators) > 0 {
		return append([]model.Indicator(nil), e.indicators...)
	}
	return Indicators(factors)
}

// Indicators returns the standard indicators followed by any extra
// indicator for which every factor entry supplies a coefficient.
func Indicators(factors []model.CharacterizationFactor) []model.Indicator {
	out := make([]model.Indicator, len(model.StandardIndicators))
	copy(out, model.StandardIndicators)
	if len(factors) == 0 {
		return out
	}

	standard := make(map[model.Indicator]bool, len(out))
	for _, ind := range out {
		standard[ind] = true
	}

	var extras []model.Indicator
	for ind := range factors[0].Factors {
		if standard[ind] {
			continue
		}
		everywhere := true
		for _, f := range factors[1:] {
			if _, ok := f.Factors[ind]; !ok {
				everywhere = false
				break
			}
		}
		if everywhere {
			extras = append(extras, ind)
		}
	}
	sort.Slice(extras, func(i, j int) bool { return extras[i] < extras[j] })
	return append(out, extras...)
}

func (e *Engine) window(w Window) []model.DailyAggregate {
	if w.Days <= 0 {
		return nil
	}
	var out []model.DailyAggregate
	for _, d := range e.daily {
		if !w.Contains(d.Date) {
			continue
		}
		out = append(out, d)
		if len(out) == w.Days {
			break
		}
	}
	return out
}

func (e *Engine) pvFactor(factors []model.CharacterizationFactor) (model.CharacterizationFactor, bool) {
	for _, f := range factors {
		if model.SourceName(f.Source) == e.pvSource {
			return f, true
		}
	}
	return model.CharacterizationFactor{}, false
}

func (e *Engine) warnMissing(days []time.Time) {
	if len(days) == 0 {
		return
	}
	dates := make([]string, len(days))
	for i, d := range days {
		dates[i] = d.Format(model.DateLayout)
	}
	e.logger.Warn("grid mix missing, grid impacts set to zero", "days", len(days), "dates", dates)
}

func dailyRow(d model.DailyAggregate, mix gridmix.Mix, factors []model.CharacterizationFactor, ind model.Indicator, pv float64) model.IndicatorDailyRow {
	row := model.IndicatorDailyRow{
		Date:                  d.Date,
		GridImportImpact:      gridImpact(d.GridImport, mix, factors, ind),
		SelfConsumptionImpact: d.SelfConsumption * pv,
	}
	if d.ExportToGrid != 0 {
		row.ExportImpact = -(d.ExportToGrid * pv)
	}
	row.NetImpact = row.GridImportImpact + row.SelfConsumptionImpact + row.ExportImpact
	return row
}

// gridImpact spreads kwh over the mix and weights each source share by its
// coefficient. Sources without a coefficient contribute nothing.
func gridImpact(kwh float64, mix gridmix.Mix, factors []model.CharacterizationFactor, ind model.Indicator) float64 {
	var total float64
	for _, f := range factors {
		coef, ok := f.Coefficient(ind)
		if !ok {
			continue
		}
		sourceKWh := kwh * mix.Share(model.SourceName(f.Source)) / 100
		total += sourceKWh * coef
	}
	return total
}
