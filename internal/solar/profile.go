// Package solar derives the mean hour-of-day shape of PV production and
// the energy balance around it.
package solar

import (
	"math"

	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// HourStats are the mean energy flows of one hour of the day, in kWh.
type HourStats struct {
	Hour    int `json:"hour"`
	Samples int `json:"samples"`
	model.EnergyTotals
}

// Profile holds the average daily shape of a balance window.
type Profile struct {
	Hours [24]HourStats `json:"hours"`

	// ProductionFactor is the mean production per hour normalized to the
	// peak hour (peak = 1.0).
	ProductionFactor [24]float64 `json:"production_factor"`

	// PeakHour is the hour with the highest mean production, -1 without production.
	PeakHour int `json:"peak_hour"`
}

// BuildProfile averages hourly balance records by hour of day.
func BuildProfile(records []model.BalanceRecord) Profile {
	var sums [24]model.EnergyTotals
	var counts [24]int
	for _, r := range records {
		h := r.Timestamp.Hour()
		sums[h] = sums[h].Add(r.EnergyTotals)
		counts[h]++
	}

	p := Profile{PeakHour: -1}
	var maxAvg float64
	for h := 0; h < 24; h++ {
		p.Hours[h].Hour = h
		p.Hours[h].Samples = counts[h]
		if counts[h] == 0 {
			continue
		}
		n := float64(counts[h])
		s := sums[h]
		p.Hours[h].EnergyTotals = model.EnergyTotals{
			Demand:          s.Demand / n,
			Production:      s.Production / n,
			SelfConsumption: s.SelfConsumption / n,
			GridImport:      s.GridImport / n,
			ExportToGrid:    s.ExportToGrid / n,
		}
		if avg := p.Hours[h].Production; avg > maxAvg {
			maxAvg = avg
			p.PeakHour = h
		}
	}

	if maxAvg > 0 {
		for h := 0; h < 24; h++ {
			p.ProductionFactor[h] = p.Hours[h].Production / maxAvg
		}
	}
	return p
}

// FactorAt returns the production factor for a fractional hour, linearly
// interpolated and wrapping at midnight.
func (p *Profile) FactorAt(hour float64) float64 {
	return interpolate(p.ProductionFactor, hour)
}

// SelfConsumptionRate returns the share (0-100) of mean production
// consumed on site during hour h, 0 when nothing is produced.
func (p *Profile) SelfConsumptionRate(h int) float64 {
	if h < 0 || h > 23 || p.Hours[h].Production == 0 {
		return 0
	}
	return p.Hours[h].SelfConsumption / p.Hours[h].Production * 100
}

// interpolate returns linearly interpolated factor for a fractional hour.
func interpolate(factors [24]float64, hour float64) float64 {
	hour = math.Mod(hour, 24)
	if hour < 0 {
		hour += 24
	}

	lo := int(math.Floor(hour)) % 24
	hi := (lo + 1) % 24
	frac := hour - math.Floor(hour)

	return factors[lo]*(1-frac) + factors[hi]*frac
}
