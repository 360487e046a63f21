// Package moderation lists pending work for moderators and applies their
// decisions.
package moderation

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/repository"
)

// Paging bounds.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// QueueQuery selects one page of the moderation queue. A zero Limit means
// DefaultLimit.
type QueueQuery struct {
	Status *domain.Status
	Search string
	Limit  int
	Offset int
	Locale string
}

// ParseQueueQuery builds a QueueQuery from raw query parameters. Empty
// parameters take their defaults.
func ParseQueueQuery(status, search, limit, offset, locale string) (QueueQuery, error) {
	verr := &domain.ValidationError{}
	q := QueueQuery{Search: search, Locale: locale}

	if status = strings.TrimSpace(status); status != "" {
		st, err := domain.ParseStatus(status)
		if err != nil {
			verr.Add("status", "must be one of pending, approved, rejected")
		} else {
			q.Status = &st
		}
	}

	if limit = strings.TrimSpace(limit); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			verr.Add("limit", "must be an integer")
		} else {
			q.Limit = max(n, 1)
		}
	}

	if offset = strings.TrimSpace(offset); offset != "" {
		n, err := strconv.Atoi(offset)
		switch {
		case err != nil:
			verr.Add("offset", "must be an integer")
		case n < 0:
			verr.Add("offset", "must not be negative")
		default:
			q.Offset = n
		}
	}

	if verr.HasErrors() {
		return QueueQuery{}, verr
	}
	return q, nil
}

// ReportLister reads report summaries.
type ReportLister interface {
	List(ctx context.Context, filter repository.ListFilter) ([]domain.ReportSummary, error)
	GetSummary(ctx context.Context, id, locale string) (*domain.ReportSummary, error)
}

// Queue serves the moderation queue.
type Queue struct {
	store    ReportLister
	maxLimit int
	defLimit int
	metrics  *metrics.Metrics
}

// NewQueue creates a queue. Non-positive limits fall back to the package
// defaults.
func NewQueue(store ReportLister, defaultLimit, maxLimit int, m *metrics.Metrics) *Queue {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultLimit, maxLimit)
	}
	return &Queue{store: store, maxLimit: maxLimit, defLimit: defaultLimit, metrics: m}
}

// List returns one page ordered newest first. A page shorter than the
// effective limit means there is no more data.
func (q *Queue) List(ctx context.Context, query QueueQuery) ([]domain.ReportSummary, error) {
	if query.Offset < 0 {
		return nil, domain.NewValidationError("offset", "must not be negative")
	}

	filter := repository.ListFilter{
		Status: query.Status,
		Search: strings.TrimSpace(query.Search),
		Limit:  q.EffectiveLimit(query.Limit),
		Offset: query.Offset,
		Locale: query.Locale,
	}

	start := time.Now()
	summaries, err := q.store.List(ctx, filter)
	q.metrics.ObserveQueueFetch(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("list moderation queue: %w", err)
	}
	return summaries, nil
}

// EffectiveLimit applies the default and clamps to [1, max].
func (q *Queue) EffectiveLimit(limit int) int {
	switch {
	case limit == 0:
		return q.defLimit
	case limit < 1:
		return 1
	case limit > q.maxLimit:
		return q.maxLimit
	default:
		return limit
	}
}

// Get returns one report summary for the detail view.
func (q *Queue) Get(ctx context.Context, id, locale string) (*domain.ReportSummary, error) {
	summary, err := q.store.GetSummary(ctx, id, locale)
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return summary, nil
}
