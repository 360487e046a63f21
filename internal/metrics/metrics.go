// Package metrics exposes Prometheus metrics for the newsdesk service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "newsdesk"

// Metrics holds all newsdesk Prometheus metrics. A nil *Metrics records
// nothing.
type Metrics struct {
	Submissions        *prometheus.CounterVec
	Verifications      *prometheus.CounterVec
	Decisions          *prometheus.CounterVec
	Views              *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	NotificationsDrop  prometheus.Counter
	QueueFetchDuration prometheus.Histogram
	DedupPurged        prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the metrics with reg. Pass prometheus.NewRegistry() in
// tests to avoid duplicate registration.
func New(reg prometheus.Registerer, gatherer prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Report submissions by outcome",
		}, []string{"outcome"}),

		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Bot verification checks by outcome",
		}, []string{"outcome"}),

		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "moderation_decisions_total",
			Help:      "Moderator decisions by action and outcome",
		}, []string{"action", "outcome"}),

		Views: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "views_total",
			Help:      "View signals by result (counted, deduplicated, not_found, error)",
		}, []string{"result"}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_published_total",
			Help:      "Notification events delivered to subscribers by type",
		}, []string{"type"}),

		NotificationsDrop: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_dropped_total",
			Help:      "Notification events dropped because a buffer was full",
		}),

		QueueFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "moderation_queue_fetch_seconds",
			Help:      "Time to fetch one moderation queue page",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		DedupPurged: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "view_dedup_purged_total",
			Help:      "Expired view dedup claims removed by the janitor",
		}),

		gatherer: gatherer,
	}
}

// NewDefault registers with the global Prometheus registry.
func NewDefault() *Metrics {
	return New(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
}

// Handler returns the Prometheus HTTP handler for /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordSubmission counts a submission outcome.
func (m *Metrics) RecordSubmission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

// RecordVerification counts a verification outcome.
func (m *Metrics) RecordVerification(outcome string) {
	if m == nil {
		return
	}
	m.Verifications.WithLabelValues(outcome).Inc()
}

// RecordDecision counts a moderator decision.
func (m *Metrics) RecordDecision(action, outcome string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(action, outcome).Inc()
}

// RecordView counts a view signal result.
func (m *Metrics) RecordView(result string) {
	if m == nil {
		return
	}
	m.Views.WithLabelValues(result).Inc()
}

// RecordNotification counts a delivered notification.
func (m *Metrics) RecordNotification(eventType string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(eventType).Inc()
}

// RecordNotificationDropped counts a dropped notification.
func (m *Metrics) RecordNotificationDropped() {
	if m == nil {
		return
	}
	m.NotificationsDrop.Inc()
}

// ObserveQueueFetch records a queue fetch duration in seconds.
func (m *Metrics) ObserveQueueFetch(seconds float64) {
	if m == nil {
		return
	}
	m.QueueFetchDuration.Observe(seconds)
}

// RecordDedupPurged adds n purged dedup claims.
func (m *Metrics) RecordDedupPurged(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.DedupPurged.Add(float64(n))
}
