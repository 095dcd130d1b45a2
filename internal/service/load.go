package service

import (
	"fmt"
	"log/slog"

	"github.com/maryakemi70/HY4RES-WP2/internal/config"
	"github.com/maryakemi70/HY4RES-WP2/internal/gridmix"
	"github.com/maryakemi70/HY4RES-WP2/internal/ingest"
	"github.com/maryakemi70/HY4RES-WP2/internal/metrics"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/store"
)

// Load reads the demand, production and grid mix files named by cfg and
// builds a Service over them.
func Load(cfg *config.Config, logger *slog.Logger) (*Service, *store.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	st := store.New(logger)

	series := []struct {
		q   model.Quantity
		cfg config.SeriesConfig
	}{
		{model.QuantityDemand, cfg.Data.Demand},
		{model.QuantityProduction, cfg.Data.Production},
	}
	for _, s := range series {
		logger.Info("loading series", "quantity", s.q, "path", s.cfg.Path)
		parser := ingest.NewCSVSeriesParser(s.cfg.DatetimeColumn, s.cfg.ValueColumn, s.q)
		loaded, err := st.LoadCSV(s.cfg.Path, parser)
		if err != nil {
			return nil, nil, err
		}
		metrics.SetSeriesPoints(string(s.q), loaded.Len())
	}

	logger.Info("loading grid mix", "path", cfg.Data.GridMix.Path)
	mixParser := ingest.NewGridMixParser()
	mixParser.DatetimeColumn = cfg.Data.GridMix.DatetimeColumn
	mix, err := gridmix.LoadFileWith(cfg.Data.GridMix.Path, mixParser)
	if err != nil {
		return nil, nil, err
	}
	mixRange, _ := mix.TimeRange()
	logger.Info("grid mix loaded",
		"days", mix.Len(),
		"sources", len(mix.Sources()),
		"from", mixRange.Start.Format(model.DateLayout),
		"to", mixRange.End.Format(model.DateLayout))

	demand, _ := st.Series(model.QuantityDemand)
	production, _ := st.Series(model.QuantityProduction)

	svc, err := New(demand, production, mix, cfg.CharacterizationFactors(), Options{
		PVSource:   cfg.PVSource,
		Indicators: cfg.IndicatorList(),
		Logger:     logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("building service: %w", err)
	}
	return svc, st, nil
}
