// file: internal/metrics/metrics.go
// version: 1.1.0
// guid: 3a5ce35a-9b70-4d8b-8918-bba6e6be6b2d

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	identifyRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medication_identifier",
		Name:      "identify_requests_total",
		Help:      "Total number of identification requests by outcome (matched, barcode, empty, error)",
	}, []string{"outcome"})
	identifyDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "medication_identifier",
		Name:      "identify_duration_seconds",
		Help:      "Histogram of identification durations in seconds by outcome",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12), // ~0.5ms up to a couple of seconds
	}, []string{"outcome"})
	candidatesScored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "medication_identifier",
		Name:      "candidates_scored_total",
		Help:      "Total number of candidate records scored across all requests",
	})
	aiSuggestions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medication_identifier",
		Name:      "ai_suggestions_total",
		Help:      "Total number of AI term suggestion calls by status (ok, error)",
	}, []string{"status"})
	seedImports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "medication_identifier",
		Name:      "seed_imports_total",
		Help:      "Total number of seed file imports by status (ok, error)",
	}, []string{"status"})

	recordsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "medication_identifier",
		Name:      "records_total",
		Help:      "Current total number of medication records in the store",
	})
	sessionsGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "medication_identifier",
		Name:      "capture_sessions_active",
		Help:      "Number of currently live capture sessions",
	})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(identifyRequests, identifyDuration, candidatesScored,
			aiSuggestions, seedImports, recordsGauge, sessionsGauge)
	})
}

// Identification lifecycle helpers
func IncIdentify(outcome string) { identifyRequests.WithLabelValues(outcome).Inc() }
func ObserveIdentifyDuration(outcome string, d time.Duration) {
	identifyDuration.WithLabelValues(outcome).Observe(d.Seconds())
}
func AddCandidatesScored(n int) { candidatesScored.Add(float64(n)) }

// Integration counters
func IncAISuggestion(status string) { aiSuggestions.WithLabelValues(status).Inc() }
func IncSeedImport(status string)   { seedImports.WithLabelValues(status).Inc() }

// Gauges
func SetRecords(n int)        { recordsGauge.Set(float64(n)) }
func SetActiveSessions(n int) { sessionsGauge.Set(float64(n)) }
