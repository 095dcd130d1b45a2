package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "lcia_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	queryTotal   *prometheus.CounterVec
	queryLatency *prometheus.HistogramVec

	exportTotal *prometheus.CounterVec

	missingMixDays prometheus.Counter

	seriesPoints *prometheus.GaugeVec
)

// Init registers query, export and data metrics on the default registry.
func Init() {
	registerOnce.Do(func() {
		queryTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "query_total",
				Help: "Total queries by kind and result",
			},
			[]string{"kind", "result"},
		)
		queryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "query_latency_seconds",
				Help:    "Query latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind", "result"},
		)

		exportTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "export_total",
				Help: "Total table exports by format and result",
			},
			[]string{"format", "result"},
		)

		missingMixDays = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "grid_mix_missing_days_total",
				Help: "Days evaluated without a grid mix row",
			},
		)

		seriesPoints = prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "series_points",
				Help: "Points loaded per series",
			},
			[]string{"series"},
		)

		prometheus.MustRegister(
			queryTotal,
			queryLatency,
			exportTotal,
			missingMixDays,
			seriesPoints,
		)
	})
}

// ObserveQuery records a query by kind with its duration and result.
func ObserveQuery(kind, result string, duration time.Duration) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if queryTotal != nil {
		queryTotal.WithLabelValues(kind, result).Inc()
	}
	if queryLatency != nil {
		queryLatency.WithLabelValues(kind, result).Observe(duration.Seconds())
	}
}

// IncExport counts a table export.
func IncExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if exportTotal != nil {
		exportTotal.WithLabelValues(format, result).Inc()
	}
}

// AddMissingMixDays counts days evaluated with a zero grid mix.
func AddMissingMixDays(count int) {
	if count <= 0 {
		return
	}
	if missingMixDays != nil {
		missingMixDays.Add(float64(count))
	}
}

// SetSeriesPoints records the size of a loaded series.
func SetSeriesPoints(series string, points int) {
	if seriesPoints != nil {
		seriesPoints.WithLabelValues(series).Set(float64(points))
	}
}

// Result returns the result label for err.
func Result(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError
)
