package views_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
	"github.com/jonesrussell/north-cloud/newsdesk/internal/views"
)

type countingPurger struct {
	calls atomic.Int32
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 1, nil
}

func TestJanitor_RunsUntilCancelled(t *testing.T) {
	t.Parallel()

	purger := &countingPurger{}
	janitor := views.NewJanitor(purger, 5*time.Millisecond, logger.NewNop(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return purger.calls.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
