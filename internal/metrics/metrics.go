// Package metrics holds the Prometheus collectors for the server.
//
// Every method is safe to call on a nil *Metrics, so metrics can be
// disabled by passing nil around.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookduck"

// Metrics is the set of server collectors registered on one registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	experience    *prometheus.CounterVec
	levelUps      prometheus.Counter
	badgeUnlocks  *prometheus.CounterVec
	badgeFailures *prometheus.CounterVec
	catalogCalls  *prometheus.CounterVec
	catalogTiming *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
}

// New registers all collectors on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		experience: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progression",
			Name:      "experience_awarded_total",
			Help:      "Experience points awarded by activity.",
		}, []string{"activity"}),
		levelUps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progression",
			Name:      "level_ups_total",
			Help:      "Level increases across all users.",
		}),
		badgeUnlocks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progression",
			Name:      "badge_unlocks_total",
			Help:      "Badge unlocks by badge.",
		}, []string{"badge"}),
		badgeFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "progression",
			Name:      "badge_rule_failures_total",
			Help:      "Badge rules skipped because their counter failed.",
		}, []string{"rule"}),
		catalogCalls: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "upstream_requests_total",
			Help:      "Catalog provider calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		catalogTiming: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "upstream_duration_seconds",
			Help:      "Catalog provider call latency.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"op"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Response cache lookups by result.",
		}, []string{"result"}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveHTTP records one finished request.
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ExperienceAwarded records points granted for an activity.
func (m *Metrics) ExperienceAwarded(activity string, points int64) {
	if m == nil || points <= 0 {
		return
	}
	m.experience.WithLabelValues(activity).Add(float64(points))
}

// LevelUps records level increases.
func (m *Metrics) LevelUps(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.levelUps.Add(float64(n))
}

// BadgeUnlocked records one new unlock.
func (m *Metrics) BadgeUnlocked(badgeID string) {
	if m == nil {
		return
	}
	m.badgeUnlocks.WithLabelValues(badgeID).Inc()
}

// BadgeRuleFailed records a rule skipped during evaluation.
func (m *Metrics) BadgeRuleFailed(ruleID string) {
	if m == nil {
		return
	}
	m.badgeFailures.WithLabelValues(ruleID).Inc()
}

// CatalogCall records one provider call. Outcome is "ok" or an error class.
func (m *Metrics) CatalogCall(op, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.catalogCalls.WithLabelValues(op, outcome).Inc()
	m.catalogTiming.WithLabelValues(op).Observe(elapsed.Seconds())
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
