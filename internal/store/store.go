package store

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/maryakemi70/HY4RES-WP2/internal/ingest"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Source describes where a stored series came from.
type Source struct {
	Quantity model.Quantity
	Path     string
	Column   string
	Points   int
}

// Store holds canonical series in memory, keyed by quantity.
type Store struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	sources map[model.Quantity]Source
	series  map[model.Quantity]model.Series
}

func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger:  logger,
		sources: make(map[model.Quantity]Source),
		series:  make(map[model.Quantity]model.Series),
	}
}

// LoadCSV parses a CSV file with p and stores the resulting series.
func (s *Store) LoadCSV(path string, p *ingest.CSVSeriesParser) (model.Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return model.Series{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	series, err := p.Parse(f)
	if err != nil {
		return model.Series{}, fmt.Errorf("parsing %s: %w", path, err)
	}

	s.Add(series, Source{Quantity: p.Quantity, Path: path, Column: p.ValueColumn})
	s.logger.Info("series loaded",
		"quantity", string(p.Quantity),
		"path", path,
		"column", p.ValueColumn,
		"points", series.Len())
	return series, nil
}

// Add stores a series under its quantity, replacing any previous one.
func (s *Store) Add(series model.Series, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.series[series.Quantity]; ok {
		s.logger.Warn("replacing stored series", "quantity", string(series.Quantity))
	}
	src.Quantity = series.Quantity
	src.Points = series.Len()
	s.series[series.Quantity] = series
	s.sources[series.Quantity] = src
}

// Series returns the stored series for a quantity.
func (s *Store) Series(q model.Quantity) (model.Series, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	series, ok := s.series[q]
	return series, ok
}

// Sources returns all registered sources ordered by quantity.
func (s *Store) Sources() []Source {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Source, 0, len(s.sources))
	for _, src := range s.sources {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}

// TimeRange returns the time range covered by one series.
func (s *Store) TimeRange(q model.Quantity) (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.series[q].TimeRange()
}

// GlobalTimeRange returns the union of all series' time ranges.
func (s *Store) GlobalTimeRange() (model.TimeRange, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var start, end time.Time
	first := true

	for _, series := range s.series {
		tr, ok := series.TimeRange()
		if !ok {
			continue
		}
		if first || tr.Start.Before(start) {
			start = tr.Start
		}
		if first || tr.End.After(end) {
			end = tr.End
		}
		first = false
	}

	if first {
		return model.TimeRange{}, false
	}
	return model.TimeRange{Start: start, End: end}, true
}

// PointsInRange returns points of a series between start (inclusive) and end (exclusive).
func (s *Store) PointsInRange(q model.Quantity, start, end time.Time) []model.TimePoint {
	s.mu.RLock()
	series, ok := s.series[q]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	all := series.Points()
	startIdx := sort.Search(len(all), func(i int) bool {
		return !all[i].Timestamp.Before(start)
	})
	endIdx := sort.Search(len(all), func(i int) bool {
		return !all[i].Timestamp.Before(end)
	})

	if startIdx >= endIdx {
		return nil
	}
	return all[startIdx:endIdx]
}
