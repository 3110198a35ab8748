package optimizer

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// decisionDuration tracks the time taken by Decide and Analyze.
	decisionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "optimizer_decision_duration_seconds",
		Help:    "Time taken to compute a recommendation by path",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
	}, []string{"path"}) // path: single_store, route, analysis

	// decisionErrors tracks requests the engine could not satisfy.
	decisionErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_decision_errors_total",
		Help: "Total number of unsatisfiable or invalid optimization requests by reason",
	}, []string{"reason"})

	// basketSize tracks the distribution of basket sizes.
	basketSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_basket_items_count",
		Help:    "Number of items in optimization requests",
		Buckets: []float64{1, 5, 10, 20, 50, 100},
	})

	// requiredStops tracks how many stores a recommended trip visits.
	requiredStops = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_required_stops_count",
		Help:    "Number of stores required by the multi-store allocation",
		Buckets: []float64{1, 2, 3, 4, 5, 8, 12},
	})

	// providerOutcomes tracks route provider calls by outcome.
	providerOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_route_provider_calls_total",
		Help: "Route provider calls by outcome",
	}, []string{"outcome"}) // outcome: ok, error, circuit_open, rate_limited, disabled

	// providerDuration tracks latency of route provider calls that were attempted.
	providerDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_route_provider_duration_seconds",
		Help:    "Latency of route provider calls",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	})

	// verdicts tracks worth-it decisions.
	verdicts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "optimizer_recommendations_total",
		Help: "Recommendations by path and worth-it verdict",
	}, []string{"path", "worth_it"})

	// circuitState exposes the circuit breaker state (0 closed, 1 open, 2 half-open).
	circuitState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "optimizer_circuit_breaker_state",
		Help: "Circuit breaker state: 0 closed, 1 open, 2 half-open",
	}, []string{"name"})
)

// Provider outcome labels.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeCircuitOpen = "circuit_open"
	OutcomeRateLimited = "rate_limited"
	OutcomeDisabled    = "disabled"
)

// MetricsRecorder provides methods to record optimizer metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// RecordDecisionDuration records the duration of a decision by path.
func (m *MetricsRecorder) RecordDecisionDuration(path string, duration time.Duration) {
	decisionDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordDecisionError records a request the engine rejected.
func (m *MetricsRecorder) RecordDecisionError(reason string) {
	decisionErrors.WithLabelValues(reason).Inc()
}

// RecordBasketSize records the size of a basket.
func (m *MetricsRecorder) RecordBasketSize(size int) {
	basketSize.Observe(float64(size))
}

// RecordRequiredStops records the number of stores a trip needs.
func (m *MetricsRecorder) RecordRequiredStops(count int) {
	requiredStops.Observe(float64(count))
}

// RecordProviderOutcome records the outcome of a route provider call.
func (m *MetricsRecorder) RecordProviderOutcome(outcome string) {
	providerOutcomes.WithLabelValues(outcome).Inc()
}

// RecordProviderDuration records the latency of an attempted provider call.
func (m *MetricsRecorder) RecordProviderDuration(duration time.Duration) {
	providerDuration.Observe(duration.Seconds())
}

// RecordVerdict records a worth-it verdict.
func (m *MetricsRecorder) RecordVerdict(path string, worthIt bool) {
	verdicts.WithLabelValues(path, strconv.FormatBool(worthIt)).Inc()
}

// RecordCircuitState records the state of a named circuit breaker.
func (m *MetricsRecorder) RecordCircuitState(name string, state CircuitBreakerState) {
	circuitState.WithLabelValues(name).Set(float64(state))
}
