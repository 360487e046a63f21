// Package notify is the in-process notification bus for moderation events.
package notify

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
)

// Event types.
const (
	EventReportPublished = "report.published"
)

// Event is a best-effort notification. Subscribers re-fetch whatever data
// they need.
type Event struct {
	Type       string    `json:"type"`
	ReportID   string    `json:"report_id"`
	Title      string    `json:"title"`
	OccurredAt time.Time `json:"occurred_at"`
}

// ReportPublished builds the event emitted after a report is approved.
func ReportPublished(report *domain.Report, at time.Time) Event {
	return Event{
		Type:       EventReportPublished,
		ReportID:   report.ID,
		Title:      report.Title,
		OccurredAt: at,
	}
}

// Filter selects events for a subscriber.
type Filter func(Event) bool

// OfType accepts events of the given types.
func OfType(types ...string) Filter {
	return func(e Event) bool {
		for _, t := range types {
			if e.Type == t {
				return true
			}
		}
		return false
	}
}

// Publisher publishes events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
