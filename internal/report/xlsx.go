package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

const (
	summarySheet     = "summary"
	balanceSheet     = "balance"
	metricsSheet     = "metrics"
	intensitiesSheet = "intensities"
)

// BuildWorkbook renders the report as an XLSX workbook: a summary sheet,
// the balance rows, one sheet per indicator, the comparative metrics and
// the per-kWh intensities.
func BuildWorkbook(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	sheets := []string{balanceSheet}
	for _, ind := range r.Indicators {
		sheets = append(sheets, string(ind))
	}
	sheets = append(sheets, metricsSheet, intensitiesSheet)
	for _, name := range sheets {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", name, err)
		}
	}

	writeSummary(f, r)

	setRow(f, balanceSheet, 1, balanceHeader)
	for i, rec := range r.Balance {
		setRow(f, balanceSheet, i+2, []any{
			rec.Timestamp.Format(timestampLayout),
			rec.Demand, rec.Production, rec.SelfConsumption, rec.GridImport, rec.ExportToGrid,
		})
	}

	for _, ind := range r.Indicators {
		sheet := string(ind)
		setRow(f, sheet, 1, indicatorHeader)
		for i, row := range r.Tables[ind] {
			setRow(f, sheet, i+2, []any{
				row.Date.Format(model.DateLayout),
				row.GridImportImpact, row.SelfConsumptionImpact, row.ExportImpact, row.NetImpact,
			})
		}
	}

	setRow(f, metricsSheet, 1, metricsHeader)
	for i, m := range r.Metrics {
		setRow(f, metricsSheet, i+2, []any{
			string(m.Indicator), m.Unit,
			m.TotalGridImport, m.TotalSelf, m.TotalExport, m.TotalNet,
			m.Reference, m.AvoidedPct, m.NetPct, m.NetImpactAvoided, m.ReferenceZero,
		})
	}

	setRow(f, intensitiesSheet, 1, []string{"Indicator", "Unit", "GridImport", "SelfConsumption", "Export", "NetPerDemand"})
	for i, in := range r.Intensities {
		setRow(f, intensitiesSheet, i+2, []any{
			string(in.Indicator), in.Unit,
			cellValue(in.GridImport), cellValue(in.SelfConsumption), cellValue(in.Export), cellValue(in.Net),
		})
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, r Report) {
	s := r.Summary
	rows := [][]any{
		{"Energy balance and environmental indicators"},
		{},
		{"Start", r.Start.Format(model.DateLayout)},
		{"Days", r.Days},
		{"Mode", string(r.Mode)},
		{},
		{"Demand (kWh)", s.Totals.Demand},
		{"Production (kWh)", s.Totals.Production},
		{"Self-consumption (kWh)", s.Totals.SelfConsumption},
		{"Import from grid (kWh)", s.Totals.GridImport},
		{"Export to grid (kWh)", s.Totals.ExportToGrid},
		{"Self-consumption share (%)", s.SelfConsumptionShare},
		{"Grid import share (%)", s.GridImportShare},
		{"Export share (%)", s.ExportShare},
		{"Self-consumption rate (%)", s.SelfConsumptionRate},
		{"Autarky rate (%)", s.AutarkyRate},
	}
	for i, row := range rows {
		setRow(f, summarySheet, i+1, row)
	}
}

func setRow[T any](f *excelize.File, sheet string, row int, values []T) {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			continue
		}
		_ = f.SetCellValue(sheet, cell, v)
	}
}

// cellValue leaves undefined intensities as empty cells.
func cellValue(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
