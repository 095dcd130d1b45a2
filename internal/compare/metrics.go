// Package compare derives comparative metrics from indicator tables and the
// grid-only reference impact.
package compare

import (
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Metrics compares the actual impact of one indicator over a window with
// its grid-only reference.
type Metrics struct {
	Indicator       model.Indicator `json:"indicator"`
	Unit            string          `json:"unit"`
	TotalGridImport float64         `json:"total_grid_import"`
	TotalSelf       float64         `json:"total_self_consumption"`
	TotalExport     float64         `json:"total_export"`
	TotalNet        float64         `json:"total_net"`
	Reference       float64         `json:"reference"`
	AvoidedPct      float64         `json:"avoided_pct"`
	NetPct          float64         `json:"net_pct"`

	// NetImpactAvoided is Reference - TotalNet.
	NetImpactAvoided float64 `json:"net_impact_avoided_absolute"`

	// ReferenceZero marks AvoidedPct and NetPct as undefined and set to 0.
	ReferenceZero bool `json:"reference_zero"`
}

// Compute sums the daily rows of one indicator and compares them with reference.
func Compute(ind model.Indicator, rows []model.IndicatorDailyRow, reference float64) Metrics {
	m := Metrics{Indicator: ind, Unit: ind.Unit(), Reference: reference}
	for _, r := range rows {
		m.TotalGridImport += r.GridImportImpact
		m.TotalSelf += r.SelfConsumptionImpact
		m.TotalExport += r.ExportImpact
	}
	m.TotalNet = m.TotalSelf + m.TotalGridImport + m.TotalExport
	m.NetImpactAvoided = reference - m.TotalNet

	if reference == 0 {
		m.ReferenceZero = true
		return m
	}
	m.AvoidedPct = abs(m.TotalExport) / reference * 100
	m.NetPct = m.TotalNet / reference * 100
	return m
}

// Table computes metrics for every indicator in order. Indicators without a
// reference entry compare against 0.
func Table(indicators []model.Indicator, tables map[model.Indicator][]model.IndicatorDailyRow, reference map[model.Indicator]float64) []Metrics {
	out := make([]Metrics, 0, len(indicators))
	for _, ind := range indicators {
		out = append(out, Compute(ind, tables[ind], reference[ind]))
	}
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
