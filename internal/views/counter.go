package views

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/domain"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
)

// View result labels.
const (
	ResultCounted      = "counted"
	ResultDeduplicated = "deduplicated"
	ResultNotFound     = "not_found"
	ResultError        = "error"
)

const releaseTimeout = 2 * time.Second

// ReportStore is the subset of the report repository the counter needs.
type ReportStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	IncrementViews(ctx context.Context, id string) (int64, error)
}

// Counter records at most one view per visitor per report per window.
type Counter struct {
	reports ReportStore
	dedup   DedupStore
	window  time.Duration
	log     logger.Logger
	metrics *metrics.Metrics
}

// NewCounter creates a view counter.
func NewCounter(
	reports ReportStore,
	dedup DedupStore,
	window time.Duration,
	log logger.Logger,
	m *metrics.Metrics,
) *Counter {
	return &Counter{reports: reports, dedup: dedup, window: window, log: log, metrics: m}
}

// Record counts a view. It returns true when the view was counted and
// false when the visitor was already counted within the window.
func (c *Counter) Record(ctx context.Context, reportID string, signal domain.VisitorSignal) (bool, error) {
	exists, err := c.reports.Exists(ctx, reportID)
	if err != nil {
		c.metrics.RecordView(ResultError)
		return false, fmt.Errorf("check report: %w", err)
	}
	if !exists {
		c.metrics.RecordView(ResultNotFound)
		return false, fmt.Errorf("report %s: %w", reportID, domain.ErrNotFound)
	}

	fingerprint := Fingerprint(signal)

	claimed, err := c.dedup.Claim(ctx, reportID, fingerprint, c.window)
	if err != nil {
		c.metrics.RecordView(ResultError)
		return false, asStorage("claim view", err)
	}
	if !claimed {
		c.metrics.RecordView(ResultDeduplicated)
		return false, nil
	}

	if _, incErr := c.reports.IncrementViews(ctx, reportID); incErr != nil {
		c.release(ctx, reportID, fingerprint)
		if errors.Is(incErr, domain.ErrNotFound) {
			c.metrics.RecordView(ResultNotFound)
			return false, incErr
		}
		c.metrics.RecordView(ResultError)
		return false, asStorage("increment views", incErr)
	}

	c.metrics.RecordView(ResultCounted)
	return true, nil
}

func (c *Counter) release(ctx context.Context, reportID, fingerprint string) {
	releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	if err := c.dedup.Release(releaseCtx, reportID, fingerprint); err != nil {
		c.log.Warn("Failed to release view claim",
			logger.ReportID(reportID),
			logger.Error(err),
		)
	}
}

func asStorage(op string, err error) error {
	if errors.Is(err, domain.ErrStorage) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return domain.StorageError(op, err)
}
