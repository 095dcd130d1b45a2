// Package report writes balance and indicator tables as CSV files or as a
// single XLSX workbook.
package report

import (
	"strconv"
	"time"

	"github.com/maryakemi70/HY4RES-WP2/internal/balance"
	"github.com/maryakemi70/HY4RES-WP2/internal/compare"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Report is everything one query produced.
type Report struct {
	Start time.Time
	Days  int
	Mode  balance.Mode

	Balance []model.BalanceRecord
	Summary balance.Summary

	Indicators  []model.Indicator
	Tables      map[model.Indicator][]model.IndicatorDailyRow
	Metrics     []compare.Metrics
	Intensities []compare.Intensity

	// MissingMixDays had no grid mix row; their grid impacts are 0.
	MissingMixDays []time.Time
}

const timestampLayout = "2006-01-02 15:04:05"

var balanceHeader = []string{"Datetime", "Demand", "Production", "SelfConsumption", "ImportfromGrid", "ExportToGrid"}

var indicatorHeader = []string{"Date", "GridImportImpact", "SelfConsumptionImpact", "ExportImpact", "NetImpact"}

var metricsHeader = []string{
	"Indicator", "Unit",
	"TotalGridImport", "TotalSelfConsumption", "TotalExport", "TotalNet",
	"Reference", "AvoidedPct", "NetPct", "NetImpactAvoided", "ReferenceZero",
}

func balanceRow(r model.BalanceRecord) []string {
	return []string{
		r.Timestamp.Format(timestampLayout),
		fmtFloat(r.Demand),
		fmtFloat(r.Production),
		fmtFloat(r.SelfConsumption),
		fmtFloat(r.GridImport),
		fmtFloat(r.ExportToGrid),
	}
}

func indicatorRow(r model.IndicatorDailyRow) []string {
	return []string{
		r.Date.Format(model.DateLayout),
		fmtFloat(r.GridImportImpact),
		fmtFloat(r.SelfConsumptionImpact),
		fmtFloat(r.ExportImpact),
		fmtFloat(r.NetImpact),
	}
}

func metricsRow(m compare.Metrics) []string {
	return []string{
		string(m.Indicator),
		m.Unit,
		fmtFloat(m.TotalGridImport),
		fmtFloat(m.TotalSelf),
		fmtFloat(m.TotalExport),
		fmtFloat(m.TotalNet),
		fmtFloat(m.Reference),
		fmtFloat(m.AvoidedPct),
		fmtFloat(m.NetPct),
		fmtFloat(m.NetImpactAvoided),
		strconv.FormatBool(m.ReferenceZero),
	}
}

// fmtFloat keeps full precision; ADP_elements values are around 1e-7.
func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
