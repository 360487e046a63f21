package views

import (
	"context"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/metrics"
)

// Purger deletes expired dedup claims.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

// Janitor periodically purges expired dedup claims.
type Janitor struct {
	purger   Purger
	interval time.Duration
	log      logger.Logger
	metrics  *metrics.Metrics
}

// NewJanitor creates a janitor that runs every interval.
func NewJanitor(purger Purger, interval time.Duration, log logger.Logger, m *metrics.Metrics) *Janitor {
	return &Janitor{purger: purger, interval: interval, log: log, metrics: m}
}

// Run purges on every tick until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context) {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.log.Info("View dedup janitor started", logger.Duration("interval", j.interval))

	for {
		select {
		case <-ctx.Done():
			j.log.Info("View dedup janitor stopped")
			return
		case <-ticker.C:
			j.purgeOnce(ctx)
		}
	}
}

func (j *Janitor) purgeOnce(ctx context.Context) {
	n, err := j.purger.PurgeExpired(ctx)
	if err != nil {
		j.log.Error("Failed to purge expired view claims", logger.Error(err))
		return
	}
	j.metrics.RecordDedupPurged(n)
	if n > 0 {
		j.log.Debug("Purged expired view claims", logger.Int64("count", n))
	}
}
