package compare

import (
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Intensity is the impact per kWh of each energy flow. A nil field means
// the flow carried no energy over the window.
type Intensity struct {
	Indicator       model.Indicator `json:"indicator"`
	Unit            string          `json:"unit"`
	GridImport      *float64        `json:"grid_import_per_kwh"`
	SelfConsumption *float64        `json:"self_consumption_per_kwh"`
	Export          *float64        `json:"export_per_kwh"`
	Net             *float64        `json:"net_per_kwh_demand"`
}

// Intensities divides each metric total by the matching energy total. Net is
// expressed per kWh of demand.
func Intensities(metrics []Metrics, energy model.EnergyTotals) []Intensity {
	out := make([]Intensity, 0, len(metrics))
	for _, m := range metrics {
		unit := ""
		if m.Unit != "" {
			unit = m.Unit + "/kWh"
		}
		out = append(out, Intensity{
			Indicator:       m.Indicator,
			Unit:            unit,
			GridImport:      ratio(m.TotalGridImport, energy.GridImport),
			SelfConsumption: ratio(m.TotalSelf, energy.SelfConsumption),
			Export:          ratio(m.TotalExport, energy.ExportToGrid),
			Net:             ratio(m.TotalNet, energy.Demand),
		})
	}
	return out
}

func ratio(impact, kwh float64) *float64 {
	if kwh == 0 {
		return nil
	}
	v := impact / kwh
	return &v
}
