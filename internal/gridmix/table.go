// Package gridmix indexes the daily percentage contribution of each grid
// generation source by calendar date.
package gridmix

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/maryakemi70/HY4RES-WP2/internal/ingest"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Mix maps a source name to its percentage share (0-100) of grid supply.
type Mix map[string]float64

// Share returns the share of source, 0 when the source is absent.
func (m Mix) Share(source string) float64 {
	return m[source]
}

// Table is a read-only index of grid mix rows by date.
type Table struct {
	byDate  map[time.Time]Mix
	dates   []time.Time
	sources []string
}

// New builds a table from parsed rows. A later row for the same date
// replaces an earlier one.
func New(rows []model.GridMixRow) *Table {
	t := &Table{byDate: make(map[time.Time]Mix, len(rows))}
	seen := make(map[string]bool)

	for _, row := range rows {
		day := model.Day(row.Date)
		if _, ok := t.byDate[day]; !ok {
			t.dates = append(t.dates, day)
		}
		mix := make(Mix, len(row.Shares))
		for src, pct := range row.Shares {
			name := model.SourceName(src)
			mix[name] = pct
			if !seen[name] {
				seen[name] = true
				t.sources = append(t.sources, name)
			}
		}
		t.byDate[day] = mix
	}

	sort.Slice(t.dates, func(i, j int) bool { return t.dates[i].Before(t.dates[j]) })
	sort.Strings(t.sources)
	return t
}

// LoadFile parses a grid mix CSV export with the default parser and indexes it.
func LoadFile(path string) (*Table, error) {
	return LoadFileWith(path, ingest.NewGridMixParser())
}

// LoadFileWith parses a grid mix CSV export with p and indexes it.
func LoadFileWith(path string, p *ingest.GridMixParser) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	rows, err := p.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return New(rows), nil
}

// MixFor returns the mix of the calendar date of day. Missing dates yield
// an all-zero mix and ok == false.
func (t *Table) MixFor(day time.Time) (Mix, bool) {
	mix, ok := t.byDate[model.Day(day)]
	if !ok {
		return Mix{}, false
	}
	out := make(Mix, len(mix))
	for k, v := range mix {
		out[k] = v
	}
	return out, true
}

// Has reports whether the table holds a row for the date of day.
func (t *Table) Has(day time.Time) bool {
	_, ok := t.byDate[model.Day(day)]
	return ok
}

// Sources returns every source name seen in any row, sorted.
func (t *Table) Sources() []string {
	out := make([]string, len(t.sources))
	copy(out, t.sources)
	return out
}

// Len returns the number of dates in the table.
func (t *Table) Len() int { return len(t.dates) }

// TimeRange returns the first and last dates in the table.
func (t *Table) TimeRange() (model.TimeRange, bool) {
	if len(t.dates) == 0 {
		return model.TimeRange{}, false
	}
	return model.TimeRange{Start: t.dates[0], End: t.dates[len(t.dates)-1]}, true
}
