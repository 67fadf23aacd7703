package cpfauthinfra

import (
	"errors"
	"strconv"
	"time"

	"github.com/Abraxas-365/cpfauth/pkg/cpfauth"
	"github.com/Abraxas-365/cpfauth/pkg/identity"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics implements cpfauth.MetricsRecorder.
type PrometheusMetrics struct {
	requestsTotal   *prometheus.CounterVec
	stepDuration    *prometheus.HistogramVec
	provisioned     prometheus.Counter
	partialFailures *prometheus.CounterVec
}

var _ cpfauth.MetricsRecorder = (*PrometheusMetrics)(nil)

// NewPrometheusMetrics registers metrics with prometheus.DefaultRegisterer.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	return NewPrometheusMetricsWithRegisterer(namespace, prometheus.DefaultRegisterer)
}

// NewPrometheusMetricsWithRegisterer registers metrics with registerer.
// Collectors already registered under the same names are reused.
func NewPrometheusMetricsWithRegisterer(namespace string, registerer prometheus.Registerer) *PrometheusMetrics {
	if namespace == "" {
		namespace = "cpfauth"
	}
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &PrometheusMetrics{
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Authentication requests by outcome and HTTP status",
			},
			[]string{"outcome", "status", "new_user"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "step_duration_seconds",
				Help:      "Identity provider round trip duration per step",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"step", "result"},
		),
		provisioned: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "provisioned_total",
				Help:      "Accounts created on first authentication",
			},
		),
		partialFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "partial_failures_total",
				Help:      "Accounts created whose permanent credential could not be set",
			},
			[]string{"step"},
		),
	}

	m.requestsTotal = register(registerer, m.requestsTotal)
	m.stepDuration = register(registerer, m.stepDuration)
	m.provisioned = register(registerer, m.provisioned)
	m.partialFailures = register(registerer, m.partialFailures)
	return m
}

func register[T prometheus.Collector](registerer prometheus.Registerer, c T) T {
	if err := registerer.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
	}
	return c
}

// ObserveStep records one provider round trip. The result label is "ok" or
// the identity error kind.
func (m *PrometheusMetrics) ObserveStep(step cpfauth.Step, duration time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = identity.KindOf(err).String()
	}
	m.stepDuration.WithLabelValues(string(step), result).Observe(duration.Seconds())
}

// ObserveAttempt records the final outcome of a request.
func (m *PrometheusMetrics) ObserveAttempt(status int, newUser bool) {
	outcome := "success"
	if status >= 400 {
		outcome = "failure"
	}
	m.requestsTotal.WithLabelValues(outcome, strconv.Itoa(status), strconv.FormatBool(newUser)).Inc()
	if outcome == "success" && newUser {
		m.provisioned.Inc()
	}
}

// IncPartialFailure counts a half-provisioned account.
func (m *PrometheusMetrics) IncPartialFailure(step cpfauth.Step) {
	m.partialFailures.WithLabelValues(string(step)).Inc()
}
