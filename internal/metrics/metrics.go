// Package metrics exposes Prometheus metrics for the auth API and the portal.
package metrics

import (
	"net/http"
	"time"

	"go-medical-booking/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records session lifecycle and route gate metrics
type Collector struct {
	logins           *prometheus.CounterVec
	profileFetches   *prometheus.CounterVec
	profileLatency   prometheus.Histogram
	discarded        *prometheus.CounterVec
	sessionEvents    *prometheus.CounterVec
	gateDecisions    *prometheus.CounterVec
	rateLimitedCalls *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medibook_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		profileFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medibook_profile_fetches_total",
			Help: "Profile fetches by outcome",
		}, []string{"outcome"}),
		profileLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "medibook_profile_fetch_latency_seconds",
			Help:    "Profile fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		discarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medibook_session_publications_discarded_total",
			Help: "Session results discarded because a later trigger already published",
		}, []string{"trigger"}),
		sessionEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medibook_session_events_total",
			Help: "Out-of-band session change events by type",
		}, []string{"type"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medibook_gate_decisions_total",
			Help: "Route gate decisions by route and outcome",
		}, []string{"route", "outcome"}),
		rateLimitedCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "medibook_rate_limited_requests_total",
			Help: "Requests rejected by the rate limiter",
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.logins,
		c.profileFetches,
		c.profileLatency,
		c.discarded,
		c.sessionEvents,
		c.gateDecisions,
		c.rateLimitedCalls,
	)

	return c
}

func (c *Collector) ObserveLogin(outcome string) {
	c.logins.WithLabelValues(outcome).Inc()
}

func (c *Collector) ObserveProfileFetch(outcome string, elapsed time.Duration) {
	c.profileFetches.WithLabelValues(outcome).Inc()
	c.profileLatency.Observe(elapsed.Seconds())
}

func (c *Collector) ObserveDiscardedPublication(trigger string) {
	c.discarded.WithLabelValues(trigger).Inc()
}

func (c *Collector) ObserveSessionEvent(eventType entity.SessionEventType) {
	c.sessionEvents.WithLabelValues(string(eventType)).Inc()
}

func (c *Collector) ObserveGateDecision(route, outcome string) {
	c.gateDecisions.WithLabelValues(route, outcome).Inc()
}

func (c *Collector) ObserveRateLimited(route string) {
	c.rateLimitedCalls.WithLabelValues(route).Inc()
}

// Handler returns the HTTP handler for Prometheus scrapes
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
