package notify

import (
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
)

// LogSubscriber logs every event it receives.
func LogSubscriber(log logger.Logger) func(Event) {
	return func(e Event) {
		log.Info("Report published",
			logger.String("event_type", e.Type),
			logger.ReportID(e.ReportID),
			logger.String("title", e.Title),
		)
	}
}

// MetricsSubscriber counts delivered events by type.
func MetricsSubscriber(m *metrics.Metrics) func(Event) {
	return func(e Event) {
		m.RecordNotification(e.Type)
	}
}
