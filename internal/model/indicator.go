package model

import (
	"strings"
	"time"
)

// Indicator names an environmental life-cycle impact indicator.
type Indicator string

const (
	IndicatorGWP100      Indicator = "GWP100"
	IndicatorADPFossil   Indicator = "ADP_fossil"
	IndicatorADPElements Indicator = "ADP_elements"
	IndicatorUDP         Indicator = "UDP"
)

// StandardIndicators is the closed set computed for every query, in display order.
var StandardIndicators = []Indicator{
	IndicatorGWP100,
	IndicatorADPFossil,
	IndicatorADPElements,
	IndicatorUDP,
}

// IndicatorInfo describes an indicator for display.
type IndicatorInfo struct {
	Title          string `json:"title"`
	ImpactCategory string `json:"impact_category"`
	Unit           string `json:"unit"`
	Description    string `json:"description"`
}

// IndicatorCatalog holds EF v3.1 metadata for the standard indicators.
var IndicatorCatalog = map[Indicator]IndicatorInfo{
	IndicatorGWP100: {
		Title:          "Global Warming Potential (GWP100)",
		ImpactCategory: "Climate Change",
		Unit:           "kg CO2-Eq",
		Description:    "Contribution to climate change from greenhouse gas emissions over a 100-year horizon, as CO2 equivalents.",
	},
	IndicatorADPFossil: {
		Title:          "Abiotic Depletion Potential - Fossil Fuels",
		ImpactCategory: "Energy resources: non-renewable",
		Unit:           "MJ, net calorific value",
		Description:    "Depletion of non-renewable fossil energy resources caused by energy consumption.",
	},
	IndicatorADPElements: {
		Title:          "Abiotic Depletion Potential - Elements",
		ImpactCategory: "Material resources: metals/minerals",
		Unit:           "kg Sb-Eq",
		Description:    "Depletion of mineral and metal resources based on their ultimate reserves.",
	},
	IndicatorUDP: {
		Title:          "User Deprivation Potential (UDP)",
		ImpactCategory: "Water use",
		Unit:           "m3 world Eq deprived",
		Description:    "Freshwater consumption weighted by regional water scarcity.",
	},
}

// Unit returns the catalog unit of i, or "" for indicators outside the catalog.
func (i Indicator) Unit() string {
	return IndicatorCatalog[i].Unit
}

// PVSource is the generation source whose factors apply to self-consumption and export.
const PVSource = "PV Solar Power"

// SourceName normalizes a generation source name: trims spaces and a trailing "_kWh".
func SourceName(s string) string {
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "_kWh"))
}

// CharacterizationFactor carries the per-kWh impact coefficients of one source.
type CharacterizationFactor struct {
	Source  string                `json:"energy_source"`
	Factors map[Indicator]float64 `json:"factors"`
}

// Coefficient returns the coefficient for i and whether it is supplied.
func (f CharacterizationFactor) Coefficient(i Indicator) (float64, bool) {
	v, ok := f.Factors[i]
	return v, ok
}

// GridMixRow is the percentage share (0-100) of each source for one day.
type GridMixRow struct {
	Date   time.Time          `json:"date"`
	Shares map[string]float64 `json:"shares"`
}

// IndicatorDailyRow is the impact decomposition for one indicator and day.
// ExportImpact is an avoided impact and is never positive.
type IndicatorDailyRow struct {
	Date                  time.Time `json:"date"`
	GridImportImpact      float64   `json:"grid_import_impact"`
	SelfConsumptionImpact float64   `json:"self_consumption_impact"`
	ExportImpact          float64   `json:"export_impact"`
	NetImpact             float64   `json:"net_impact"`
}
