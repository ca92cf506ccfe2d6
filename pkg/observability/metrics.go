package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shipyard"

// Outcome labels shared by the recorders.
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
	OutcomePanic   = "panic"
)

var (
	registerOnce sync.Once

	generations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "invocations_total",
			Help:      "Generator invocations by kind and outcome.",
		},
		[]string{"kind", "outcome"},
	)
	generationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "duration_seconds",
			Help:      "Generator invocation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"kind", "outcome"},
	)
	artifactBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "generator",
			Name:      "artifact_bytes",
			Help:      "Size of generated archives in bytes.",
			Buckets:   prometheus.ExponentialBuckets(1024, 4, 8),
		},
		[]string{"kind"},
	)
	baselineFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "baseline",
			Name:      "fetches_total",
			Help:      "Baseline fetches by target (manifest or document) and outcome.",
		},
		[]string{"target", "outcome"},
	)
	baselineDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "baseline",
			Name:      "documents",
			Help:      "Documents in the most recently latched baseline.",
		},
	)
	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "uploads",
			Name:      "files_total",
			Help:      "Uploaded files by disposition.",
		},
		[]string{"disposition"},
	)
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"method", "route", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RegisterMetrics registers every collector on the default registry. It is idempotent.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			generations, generationDuration, artifactBytes,
			baselineFetches, baselineDocuments,
			uploads,
			httpRequests, httpDuration,
		)
	})
}

// Handler returns the /metrics handler for the default registry.
func Handler() http.Handler {
	RegisterMetrics()
	return promhttp.Handler()
}

func RecordGeneration(kind, outcome string, duration time.Duration) {
	RegisterMetrics()
	generations.WithLabelValues(kind, outcome).Inc()
	generationDuration.WithLabelValues(kind, outcome).Observe(duration.Seconds())
}

func RecordArtifact(kind string, size int) {
	RegisterMetrics()
	artifactBytes.WithLabelValues(kind).Observe(float64(size))
}

func RecordBaselineFetch(target string, success bool) {
	RegisterMetrics()
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailed
	}
	baselineFetches.WithLabelValues(target, outcome).Inc()
}

func RecordBaselineLoaded(documents int) {
	RegisterMetrics()
	baselineDocuments.Set(float64(documents))
}

func RecordUpload(accepted bool) {
	RegisterMetrics()
	disposition := "accepted"
	if !accepted {
		disposition = "ignored"
	}
	uploads.WithLabelValues(disposition).Inc()
}

func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(method, route, statusLabel).Inc()
	httpDuration.WithLabelValues(method, route, statusLabel).Observe(duration.Seconds())
}
