package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"waferplot/internal/aggregation"
)

var (
	// recordsTotal counts parsed sheet records by outcome
	recordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waferplot_records_total",
		Help: "Sheet records seen by the aggregation engine, by outcome",
	}, []string{"outcome"}) // "decoded" or "dropped"

	// samplesTotal counts accumulated (label, value) samples
	samplesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waferplot_samples_total",
		Help: "Measurement samples accumulated into channel series",
	})

	// missingValuesTotal counts blank or non-numeric measurement cells
	missingValuesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "waferplot_missing_values_total",
		Help: "Measurement cells skipped as missing",
	})

	// chartsTotal counts rendered charts by kind and result
	chartsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waferplot_charts_total",
		Help: "Charts rendered, by kind and result",
	}, []string{"kind", "result"})

	// renderDuration tracks chart rendering latency
	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "waferplot_render_duration_seconds",
		Help:    "Chart render duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~2.5s
	}, []string{"kind"})

	// httpRequests counts API requests by route and status class
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waferplot_http_requests_total",
		Help: "API requests by route and status",
	}, []string{"route", "status"})
)

// Chart kinds
const (
	KindScatter = "scatter"
	KindBoxPlot = "boxplot"
	KindCorner  = "corner"
)

// ObserveAggregation records the counters of one aggregation pass
func ObserveAggregation(s aggregation.Stats) {
	recordsTotal.WithLabelValues("decoded").Add(float64(s.Decoded))
	recordsTotal.WithLabelValues("dropped").Add(float64(s.DroppedKeys))
	samplesTotal.Add(float64(s.Samples))
	missingValuesTotal.Add(float64(s.MissingValues))
}

// ObserveRender records one chart render
func ObserveRender(kind string, started time.Time, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	chartsTotal.WithLabelValues(kind, result).Inc()
	renderDuration.WithLabelValues(kind).Observe(time.Since(started).Seconds())
}

// ObserveRequest records one API request
func ObserveRequest(route, status string) {
	httpRequests.WithLabelValues(route, status).Inc()
}
