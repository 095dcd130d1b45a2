package balance

import "github.com/maryakemi70/HY4RES-WP2/internal/model"

// aggregate groups chronologically ordered records into periods of g.
// A positive limit stops after that many periods.
func aggregate(records []model.BalanceRecord, g model.Granularity, limit int) []model.PeriodAggregate {
	var out []model.PeriodAggregate
	for _, r := range records {
		start := g.PeriodStart(r.Timestamp)
		n := len(out)
		if n > 0 && out[n-1].PeriodStart.Equal(start) {
			out[n-1].EnergyTotals = out[n-1].EnergyTotals.Add(r.EnergyTotals)
			continue
		}
		if limit > 0 && n == limit {
			break
		}
		out = append(out, model.PeriodAggregate{
			Granularity:  g,
			PeriodStart:  start,
			EnergyTotals: r.EnergyTotals,
		})
	}
	if out == nil {
		out = []model.PeriodAggregate{}
	}
	return out
}

func toDaily(periods []model.PeriodAggregate) []model.DailyAggregate {
	out := make([]model.DailyAggregate, len(periods))
	for i, p := range periods {
		out[i] = model.DailyAggregate{Date: p.PeriodStart, EnergyTotals: p.EnergyTotals}
	}
	return out
}

// Totals sums the energy of any number of records.
func Totals(records []model.BalanceRecord) model.EnergyTotals {
	var t model.EnergyTotals
	for _, r := range records {
		t = t.Add(r.EnergyTotals)
	}
	return t
}

// Summary is the cumulative energy distribution of a window.
type Summary struct {
	Totals model.EnergyTotals `json:"totals"`

	// Shares of self-consumption, grid import and export over their sum, in percent.
	SelfConsumptionShare float64 `json:"self_consumption_share"`
	GridImportShare      float64 `json:"grid_import_share"`
	ExportShare          float64 `json:"export_share"`

	// SelfConsumptionRate is the percentage of production consumed on site.
	SelfConsumptionRate float64 `json:"self_consumption_rate"`
	// AutarkyRate is the percentage of demand covered by on-site production.
	AutarkyRate float64 `json:"autarky_rate"`
}

// Summarize derives shares and rates from totals. Every ratio with a zero
// denominator is 0.
func Summarize(t model.EnergyTotals) Summary {
	s := Summary{Totals: t}
	if flow := t.SelfConsumption + t.GridImport + t.ExportToGrid; flow > 0 {
		s.SelfConsumptionShare = t.SelfConsumption / flow * 100
		s.GridImportShare = t.GridImport / flow * 100
		s.ExportShare = t.ExportToGrid / flow * 100
	}
	if t.Production > 0 {
		s.SelfConsumptionRate = t.SelfConsumption / t.Production * 100
	}
	if t.Demand > 0 {
		s.AutarkyRate = t.SelfConsumption / t.Demand * 100
	}
	return s
}
