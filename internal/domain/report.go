// Package domain defines the report, category and moderation types shared
// across the newsdesk service.
package domain

import (
	"fmt"
	"strings"
	"time"
)

// Status is the moderation state of a report.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// ParseStatus parses a status string. The empty string is not a status.
func ParseStatus(s string) (Status, error) {
	switch st := Status(strings.ToLower(strings.TrimSpace(s))); st {
	case StatusPending, StatusApproved, StatusRejected:
		return st, nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Decision is a moderator action on a pending report.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision parses a moderator action.
func ParseDecision(s string) (Decision, error) {
	switch d := Decision(strings.ToLower(strings.TrimSpace(s))); d {
	case DecisionApprove, DecisionReject:
		return d, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// Target returns the status a decision moves a pending report to.
func (d Decision) Target() Status {
	if d == DecisionApprove {
		return StatusApproved
	}
	return StatusRejected
}

// Report is a submitted, location-tagged news report.
type Report struct {
	ID              string     `db:"id"                json:"id"`
	Title           string     `db:"title"             json:"title"`
	Content         string     `db:"content"           json:"content,omitempty"`
	LocationName    string     `db:"location_name"     json:"location_name"`
	Latitude        float64    `db:"latitude"          json:"latitude"`
	Longitude       float64    `db:"longitude"         json:"longitude"`
	CategoryID      string     `db:"category_id"       json:"category_id"`
	SubmitterEmail  string     `db:"submitter_email"   json:"submitter_email"`
	SourceURL       string     `db:"source_url"        json:"source_url"`
	ImageURL        string     `db:"image_url"         json:"image_url,omitempty"`
	Status          Status     `db:"status"            json:"status"`
	StatusNotes     *string    `db:"status_notes"      json:"status_notes,omitempty"`
	StatusChangedAt *time.Time `db:"status_changed_at" json:"status_changed_at,omitempty"`
	ViewCount       int64      `db:"view_count"        json:"view_count"`
	CreatedAt       time.Time  `db:"created_at"        json:"created_at"`
}

// ReportSummary is a report joined with its localized category.
type ReportSummary struct {
	Report
	CategoryKey  string `db:"category_key"  json:"category_key"`
	CategoryName string `db:"category_name" json:"category_name"`
}

// Category is a read-only entry of the externally owned category catalog.
type Category struct {
	ID    string      `db:"id"    json:"id"`
	Key   string      `db:"key"   json:"key"`
	Names LocaleNames `db:"names" json:"names"`
}

// Name returns the display name for locale, falling back to English and
// then to the key.
func (c Category) Name(locale string) string {
	if name := c.Names[locale]; name != "" {
		return name
	}
	if name := c.Names["en"]; name != "" {
		return name
	}
	return c.Key
}

// VisitorSignal identifies a reader for view deduplication. Any field may
// be empty.
type VisitorSignal struct {
	IP        string
	UserAgent string
	Referrer  string
}
