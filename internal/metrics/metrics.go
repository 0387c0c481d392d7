// Package metrics exposes Prometheus instruments for the levels service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dgnsrekt/gexbot-levels/internal/gamma"
)

const namespace = "gexlevels"

// Registry holds every instrument on its own prometheus.Registry so that
// independent servers (and tests) never collide on registration.
type Registry struct {
	registry *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	Requests        *prometheus.CounterVec
	RateLimited     prometheus.Counter

	Analyses        *prometheus.CounterVec
	AnalysisStrikes prometheus.Histogram
	AnalysisErrors  *prometheus.CounterVec
	AlertsTriggered *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
			},
			[]string{"route"},
		),

		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status code",
			},
			[]string{"route", "status"},
		),

		RateLimited: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_rate_limited_total",
				Help:      "Requests rejected by the rate limiter",
			},
		),

		Analyses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Completed analyses by resulting regime",
			},
			[]string{"regime"},
		),

		AnalysisStrikes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_strikes",
				Help:      "Distinct strikes per analysis",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
			},
		),

		AnalysisErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analysis_errors_total",
				Help:      "Rejected analysis requests by reason",
			},
			[]string{"reason"},
		),

		AlertsTriggered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_triggered_total",
				Help:      "Alert conditions fired by level name",
			},
			[]string{"level"},
		),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.RequestDuration,
		r.Requests,
		r.RateLimited,
		r.Analyses,
		r.AnalysisStrikes,
		r.AnalysisErrors,
		r.AlertsTriggered,
	)

	return r
}

// Handler serves the exposition format for this registry.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// ObserveRequest records one finished HTTP request.
func (r *Registry) ObserveRequest(route string, status int, elapsed time.Duration) {
	r.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
	r.Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveAnalysis records a completed analysis.
func (r *Registry) ObserveAnalysis(regime gamma.Regime, strikes int) {
	r.Analyses.WithLabelValues(string(regime)).Inc()
	r.AnalysisStrikes.Observe(float64(strikes))
}

func (r *Registry) ObserveAnalysisError(reason string) {
	r.AnalysisErrors.WithLabelValues(reason).Inc()
}

func (r *Registry) ObserveAlert(level string) {
	r.AlertsTriggered.WithLabelValues(level).Inc()
}
