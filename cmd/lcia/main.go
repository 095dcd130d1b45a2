package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maryakemi70/HY4RES-WP2/internal/balance"
	"github.com/maryakemi70/HY4RES-WP2/internal/config"
	"github.com/maryakemi70/HY4RES-WP2/internal/logger"
	"github.com/maryakemi70/HY4RES-WP2/internal/metrics"
	"github.com/maryakemi70/HY4RES-WP2/internal/model"
	"github.com/maryakemi70/HY4RES-WP2/internal/report"
	"github.com/maryakemi70/HY4RES-WP2/internal/service"
	"github.com/maryakemi70/HY4RES-WP2/internal/solar"
)

type options struct {
	configPath string
	demand     string
	production string
	mix        string
	start      string
	days       int
	mode       string
	csvDir     string
	xlsxPath   string
	logLevel   string
	profile    bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to YAML config (optional)")
	flag.StringVar(&o.demand, "demand", "", "demand CSV (overrides data.demand.path)")
	flag.StringVar(&o.production, "production", "", "production CSV (overrides data.production.path)")
	flag.StringVar(&o.mix, "mix", "", "grid mix CSV (overrides data.grid_mix.path)")
	flag.StringVar(&o.start, "start", "", "first day YYYY-MM-DD (default: first day with data)")
	flag.IntVar(&o.days, "days", 0, "window length in days (overrides query.days)")
	flag.StringVar(&o.mode, "mode", "", "balance resolution: hourly or daily")
	flag.StringVar(&o.csvDir, "csv-dir", "", "write CSV tables into this directory")
	flag.StringVar(&o.xlsxPath, "xlsx", "", "write an XLSX workbook to this path")
	flag.StringVar(&o.logLevel, "log-level", "", "log level (overrides log_level)")
	flag.BoolVar(&o.profile, "profile", false, "print the mean hour-of-day profile of the window")
	flag.Parse()

	cfg, err := loadConfig(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(cfg.LogLevel, "text")
	metrics.Init()

	svc, _, err := service.Load(cfg, log)
	if err != nil {
		log.Error("failed to load data", "err", err)
		os.Exit(1)
	}

	q, err := queryFromConfig(cfg)
	if err != nil {
		log.Error("invalid query", "err", err)
		os.Exit(1)
	}

	r, err := svc.Report(q)
	if err != nil {
		log.Error("query failed", "err", err)
		os.Exit(1)
	}

	printReport(os.Stdout, r)

	if o.profile {
		pr, err := svc.Profile(q)
		if err != nil {
			log.Error("profile query failed", "err", err)
			os.Exit(1)
		}
		printProfile(os.Stdout, pr.Profile)
	}

	if o.csvDir != "" {
		paths, err := report.WriteDir(o.csvDir, r)
		metrics.IncExport("csv", metrics.Result(err))
		if err != nil {
			log.Error("csv export failed", "err", err)
			os.Exit(1)
		}
		for _, p := range paths {
			fmt.Fprintf(os.Stderr, "  wrote %s\n", p)
		}
	}
	if o.xlsxPath != "" {
		err := writeWorkbook(o.xlsxPath, r)
		metrics.IncExport("xlsx", metrics.Result(err))
		if err != nil {
			log.Error("xlsx export failed", "err", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "  wrote %s\n", o.xlsxPath)
	}
}

// loadConfig reads the config file when given and applies flag overrides.
func loadConfig(o options) (*config.Config, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		cfg, err = config.LoadUnchecked(o.configPath)
		if err != nil {
			return nil, err
		}
	}
	if o.demand != "" {
		cfg.Data.Demand.Path = o.demand
	}
	if o.production != "" {
		cfg.Data.Production.Path = o.production
	}
	if o.mix != "" {
		cfg.Data.GridMix.Path = o.mix
	}
	if o.start != "" {
		cfg.Query.StartDate = o.start
	}
	if o.days != 0 {
		cfg.Query.Days = o.days
	}
	if o.mode != "" {
		cfg.Query.Mode = o.mode
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, cfg.Validate()
}

func queryFromConfig(cfg *config.Config) (service.Query, error) {
	start, err := cfg.Query.Start()
	if err != nil {
		return service.Query{}, err
	}
	mode, err := balance.ParseMode(cfg.Query.Mode)
	if err != nil {
		return service.Query{}, err
	}
	return service.Query{Start: start, Days: cfg.Query.Days, Mode: mode}, nil
}

func writeWorkbook(path string, r report.Report) error {
	data, err := report.BuildWorkbook(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printReport(w io.Writer, r report.Report) {
	s := r.Summary
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Energy Balance")
	fmt.Fprintf(w, "  Window: %s, %d day(s), %s\n", r.Start.Format(model.DateLayout), r.Days, r.Mode)
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %16s │ %12s │ %7s\n", "Quantity", "Energy", "Share")
	fmt.Fprintf(w, "──────────────────┼──────────────┼─────────\n")
	fmt.Fprintf(w, " %16s │ %8.1f kWh │ %7s\n", "Demand", s.Totals.Demand, "-")
	fmt.Fprintf(w, " %16s │ %8.1f kWh │ %7s\n", "Production", s.Totals.Production, "-")
	fmt.Fprintf(w, " %16s │ %8.1f kWh │ %6.1f%%\n", "Self-consumption", s.Totals.SelfConsumption, s.SelfConsumptionShare)
	fmt.Fprintf(w, " %16s │ %8.1f kWh │ %6.1f%%\n", "Grid import", s.Totals.GridImport, s.GridImportShare)
	fmt.Fprintf(w, " %16s │ %8.1f kWh │ %6.1f%%\n", "Export", s.Totals.ExportToGrid, s.ExportShare)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  Self-consumption rate: %.1f%%, autarky rate: %.1f%%\n", s.SelfConsumptionRate, s.AutarkyRate)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environmental Indicators")
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %12s │ %12s │ %12s │ %12s │ %12s │ %12s │ %8s │ %8s\n",
		"Indicator", "Grid Import", "Self-Cons.", "Export", "Net", "Reference", "Avoided", "Net/Ref")
	fmt.Fprintf(w, "──────────────┼──────────────┼──────────────┼──────────────┼──────────────┼──────────────┼──────────┼──────────\n")
	for _, m := range r.Metrics {
		avoided, netPct := fmt.Sprintf("%7.1f%%", m.AvoidedPct), fmt.Sprintf("%7.1f%%", m.NetPct)
		if m.ReferenceZero {
			avoided, netPct = "-", "-"
		}
		fmt.Fprintf(w, " %12s │ %12s │ %12s │ %12s │ %12s │ %12s │ %8s │ %8s\n",
			m.Indicator,
			fmtImpact(m.TotalGridImport),
			fmtImpact(m.TotalSelf),
			fmtImpact(m.TotalExport),
			fmtImpact(m.TotalNet),
			fmtImpact(m.Reference),
			avoided,
			netPct,
		)
	}
	fmt.Fprintln(w)

	if n := len(r.MissingMixDays); n > 0 {
		fmt.Fprintf(w, "  Warning: %d day(s) without grid mix, grid impacts counted as 0\n", n)
		fmt.Fprintln(w)
	}

	units := make([]string, 0, len(r.Metrics))
	for _, m := range r.Metrics {
		if m.Unit != "" {
			units = append(units, fmt.Sprintf("%s [%s]", m.Indicator, m.Unit))
		}
	}
	if len(units) > 0 {
		fmt.Fprintf(w, "  Units: %s\n", strings.Join(units, ", "))
		fmt.Fprintln(w)
	}
}

func printProfile(w io.Writer, p solar.Profile) {
	fmt.Fprintln(w, "Hour-of-day Profile (mean kWh)")
	if p.PeakHour >= 0 {
		fmt.Fprintf(w, "  Production peak: %02d:00\n", p.PeakHour)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, " %5s │ %8s │ %8s │ %8s │ %8s │ %8s │ %6s\n",
		"Hour", "Demand", "PV", "Self", "Import", "Export", "Factor")
	fmt.Fprintf(w, "───────┼──────────┼──────────┼──────────┼──────────┼──────────┼────────\n")
	for _, h := range p.Hours {
		if h.Samples == 0 {
			continue
		}
		fmt.Fprintf(w, " %02d:00 │ %8.3f │ %8.3f │ %8.3f │ %8.3f │ %8.3f │ %6.2f\n",
			h.Hour, h.Demand, h.Production, h.SelfConsumption, h.GridImport, h.ExportToGrid,
			p.ProductionFactor[h.Hour])
	}
	fmt.Fprintln(w)
}

// fmtImpact switches to exponent notation for the very small ADP_elements values.
func fmtImpact(v float64) string {
	if v != 0 && (v < 0.01 && v > -0.01) {
		return fmt.Sprintf("%.3e", v)
	}
	return fmt.Sprintf("%.3f", v)
}
