package model

import "time"

// EnergyTotals are the five energy quantities of a balance, in kWh.
type EnergyTotals struct {
	Demand          float64 `json:"demand"`
	Production      float64 `json:"production"`
	SelfConsumption float64 `json:"self_consumption"`
	GridImport      float64 `json:"import_from_grid"`
	ExportToGrid    float64 `json:"export_to_grid"`
}

// Add returns the field-wise sum of t and o.
func (t EnergyTotals) Add(o EnergyTotals) EnergyTotals {
	return EnergyTotals{
		Demand:          t.Demand + o.Demand,
		Production:      t.Production + o.Production,
		SelfConsumption: t.SelfConsumption + o.SelfConsumption,
		GridImport:      t.GridImport + o.GridImport,
		ExportToGrid:    t.ExportToGrid + o.ExportToGrid,
	}
}

// Value returns the field for a quantity.
func (t EnergyTotals) Value(q Quantity) float64 {
	switch q {
	case QuantityDemand:
		return t.Demand
	case QuantityProduction:
		return t.Production
	case QuantitySelfConsumption:
		return t.SelfConsumption
	case QuantityGridImport:
		return t.GridImport
	case QuantityExportToGrid:
		return t.ExportToGrid
	default:
		return 0
	}
}

// BalanceQuantities lists the output columns of a balance table in order.
var BalanceQuantities = []Quantity{
	QuantityDemand,
	QuantityProduction,
	QuantitySelfConsumption,
	QuantityGridImport,
	QuantityExportToGrid,
}

// BalanceRecord is the decomposition of one aligned timestamp.
// Invariants: Demand = SelfConsumption + GridImport and
// Production = SelfConsumption + ExportToGrid.
type BalanceRecord struct {
	Timestamp time.Time `json:"timestamp"`
	EnergyTotals
}

// NewBalanceRecord derives the decomposition from demand and production.
func NewBalanceRecord(ts time.Time, demand, production float64) BalanceRecord {
	self := min(demand, production)
	return BalanceRecord{
		Timestamp: ts,
		EnergyTotals: EnergyTotals{
			Demand:          demand,
			Production:      production,
			SelfConsumption: self,
			GridImport:      max(demand-production, 0),
			ExportToGrid:    max(production-demand, 0),
		},
	}
}

// DailyAggregate sums every BalanceRecord of one calendar date.
type DailyAggregate struct {
	Date time.Time `json:"date"`
	EnergyTotals
}

// PeriodAggregate sums every BalanceRecord of one period.
type PeriodAggregate struct {
	Granularity Granularity `json:"granularity"`
	PeriodStart time.Time   `json:"period_start"`
	EnergyTotals
}
