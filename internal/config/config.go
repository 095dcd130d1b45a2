// Package config loads the YAML configuration and the built-in
// characterization factors.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/maryakemi70/HY4RES-WP2/internal/balance"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	ListenAddr string `yaml:"listen_addr"`

	Data  DataConfig  `yaml:"data"`
	Query QueryConfig `yaml:"query"`

	// PVSource names the factor entry applied to self-consumption and export.
	PVSource string `yaml:"pv_source"`
	// Indicators restricts and orders the reported indicators. Empty means
	// every indicator the factors support.
	Indicators []string `yaml:"indicators"`
	// Factors replaces the built-in characterization factors when non-empty.
	Factors []FactorConfig `yaml:"factors"`
}

// DataConfig names the three input files.
type DataConfig struct {
	Demand     SeriesConfig  `yaml:"demand"`
	Production SeriesConfig  `yaml:"production"`
	GridMix    GridMixConfig `yaml:"grid_mix"`
}

// SeriesConfig locates one timestamped value column in a CSV file.
type SeriesConfig struct {
	Path           string `yaml:"path"`
	DatetimeColumn string `yaml:"datetime_column"`
	ValueColumn    string `yaml:"value_column"`
}

// GridMixConfig locates the daily grid mix export.
type GridMixConfig struct {
	Path           string `yaml:"path"`
	DatetimeColumn string `yaml:"datetime_column"`
}

// QueryConfig holds the default query window.
type QueryConfig struct {
	StartDate string `yaml:"start_date"`
	Days      int    `yaml:"days"`
	Mode      string `yaml:"mode"`
}

// Defaults mirror the exports the dashboard was built around.
const (
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "json"
	DefaultListenAddr       = ":8080"
	DefaultDatetimeColumn   = "Datetime"
	DefaultDemandColumn     = "Energy Consumption kWh"
	DefaultProductionColumn = "Producción Planta"
	DefaultDays             = 7
)

// Default returns a config with every default applied and no data paths.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads, completes and validates a config file. Relative data paths
// are resolved against the directory of path.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and completes a config but does not validate it.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", model.ErrConfig, path, err)
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", model.ErrConfig, path, err)
	}
	c.applyDefaults()
	c.resolvePaths(filepath.Dir(path))
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Data.Demand.DatetimeColumn == "" {
		c.Data.Demand.DatetimeColumn = DefaultDatetimeColumn
	}
	if c.Data.Demand.ValueColumn == "" {
		c.Data.Demand.ValueColumn = DefaultDemandColumn
	}
	if c.Data.Production.DatetimeColumn == "" {
		c.Data.Production.DatetimeColumn = DefaultDatetimeColumn
	}
	if c.Data.Production.ValueColumn == "" {
		c.Data.Production.ValueColumn = DefaultProductionColumn
	}
	if c.Data.GridMix.DatetimeColumn == "" {
		c.Data.GridMix.DatetimeColumn = DefaultDatetimeColumn
	}
	if c.Query.Days == 0 {
		c.Query.Days = DefaultDays
	}
	if c.Query.Mode == "" {
		c.Query.Mode = string(balance.ModeDaily)
	}
	if c.PVSource == "" {
		c.PVSource = model.PVSource
	}
}

func (c *Config) resolvePaths(dir string) {
	for _, p := range []*string{&c.Data.Demand.Path, &c.Data.Production.Path, &c.Data.GridMix.Path} {
		*p = resolve(dir, *p)
	}
}

// resolve prefers a path relative to dir, falling back to the path as
// given (relative to cwd) when that does not exist.
func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	cand := filepath.Join(dir, p)
	if _, err := os.Stat(cand); err == nil {
		return cand
	}
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return cand
}

// Validate reports every problem found, joined, wrapped in model.ErrConfig.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", model.ErrConfig)
	}
	var errs []error
	if c.Data.Demand.Path == "" {
		errs = append(errs, errors.New("data.demand.path is required"))
	}
	if c.Data.Production.Path == "" {
		errs = append(errs, errors.New("data.production.path is required"))
	}
	if c.Data.GridMix.Path == "" {
		errs = append(errs, errors.New("data.grid_mix.path is required"))
	}
	if c.Query.Days <= 0 {
		errs = append(errs, fmt.Errorf("query.days must be positive, got %d", c.Query.Days))
	}
	if _, err := balance.ParseMode(c.Query.Mode); err != nil {
		errs = append(errs, fmt.Errorf("query.mode: %w", err))
	}
	if _, err := c.Query.Start(); err != nil {
		errs = append(errs, fmt.Errorf("query.start_date: %w", err))
	}

	seen := make(map[string]bool, len(c.Factors))
	for i, f := range c.Factors {
		name := model.SourceName(f.EnergySource)
		if name == "" {
			errs = append(errs, fmt.Errorf("factors[%d]: energy_source is required", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("factors[%d]: duplicate energy_source %q", i, name))
		}
		seen[name] = true
		for ind, v := range f.Coefficients {
			if v < 0 {
				errs = append(errs, fmt.Errorf("factors[%d] %s: %s must be non-negative, got %g", i, name, ind, v))
			}
		}
	}

	factors := c.CharacterizationFactors()
	for _, name := range c.Indicators {
		ind := model.Indicator(name)
		for _, f := range factors {
			if _, ok := f.Coefficient(ind); !ok {
				errs = append(errs, fmt.Errorf("indicators: %s has no %s coefficient", f.Source, ind))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", model.ErrConfig, errors.Join(errs...))
	}
	return nil
}

// Start parses start_date. An empty value gives the zero time.
func (q QueryConfig) Start() (time.Time, error) {
	if q.StartDate == "" {
		return time.Time{}, nil
	}
	return model.ParseDate(q.StartDate)
}

// CharacterizationFactors returns the configured factors, or the built-in
// table when none are configured.
func (c *Config) CharacterizationFactors() []model.CharacterizationFactor {
	if len(c.Factors) == 0 {
		return DefaultFactors()
	}
	out := make([]model.CharacterizationFactor, len(c.Factors))
	for i, f := range c.Factors {
		out[i] = f.ToModel()
	}
	return out
}

// IndicatorList returns the configured indicators as model values.
func (c *Config) IndicatorList() []model.Indicator {
	out := make([]model.Indicator, len(c.Indicators))
	for i, s := range c.Indicators {
		out[i] = model.Indicator(s)
	}
	return out
}
