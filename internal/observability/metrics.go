package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "footfall_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the pipeline.
type Metrics struct {
	PipelineRuns  *prometheus.CounterVec // labels: outcome={success,fetch_error,parse_error,weather_error,publish_error}
	RunDuration   prometheus.Histogram
	LastSuccess   prometheus.Gauge
	PipelineReady prometheus.Gauge

	// Feed and aggregation metrics.
	FeedRows       *prometheus.CounterVec // labels: result={parsed,skipped}
	DaysAggregated prometheus.Gauge

	// Weather enrichment metrics.
	WeatherMergeErrors prometheus.Counter
	WeatherCache       *prometheus.CounterVec // labels: result={hit,miss}
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Pipeline runs by outcome.",
		}, []string{"outcome"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete fetch-parse-aggregate-merge run.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		LastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      "1 once a snapshot is available, 0 before.",
		}),
		FeedRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feed_rows_total",
			Help:      "Feed rows by parse result.",
		}, []string{"result"}),
		DaysAggregated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "days_aggregated",
			Help:      "Number of daily records in the latest snapshot.",
		}),
		WeatherMergeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_merge_errors_total",
			Help:      "Runs where the weather series did not line up with the days.",
		}),
		WeatherCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "weather_cache_total",
			Help:      "Weather cache lookups by result.",
		}, []string{"result"}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRuns,
		m.RunDuration,
		m.LastSuccess,
		m.PipelineReady,
		m.FeedRows,
		m.DaysAggregated,
		m.WeatherMergeErrors,
		m.WeatherCache,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
