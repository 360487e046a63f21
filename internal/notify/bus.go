package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonesrussell/north-cloud/newsdesk/internal/logger"
)

// Default bus sizing.
const (
	DefaultBufferSize           = 256
	DefaultSubscriberBufferSize = 32
	DefaultShutdownTimeout      = 5 * time.Second
)

var (
	// ErrBufferFull is returned when the publish buffer cannot take the event.
	ErrBufferFull = errors.New("notification buffer full")
	// ErrStopped is returned by Publish after Stop.
	ErrStopped = errors.New("notification bus stopped")
)

// Option configures a Bus.
type Option func(*Bus)

// WithBufferSize sets the publish buffer size.
func WithBufferSize(size int) Option {
	return func(b *Bus) {
		if size > 0 {
			b.bufferSize = size
		}
	}
}

// WithSubscriberBufferSize sets the per-subscriber buffer size.
func WithSubscriberBufferSize(size int) Option {
	return func(b *Bus) {
		if size > 0 {
			b.subscriberBufferSize = size
		}
	}
}

// WithDropHook is called for every event dropped at publish or delivery.
func WithDropHook(fn func(Event)) Option {
	return func(b *Bus) {
		b.onDrop = fn
	}
}

// Bus fans published events out to subscribers. Delivery is best effort: a
// full buffer drops the event.
type Bus struct {
	log         logger.Logger
	subscribers map[uint64]*subscriber
	nextID      uint64
	mu          sync.RWMutex

	publish chan Event
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped chan struct{}

	bufferSize           int
	subscriberBufferSize int
	shutdownTimeout      time.Duration
	onDrop               func(Event)
}

// NewBus creates a bus. Call Start before publishing.
func NewBus(log logger.Logger, opts ...Option) *Bus {
	b := &Bus{
		log:                  log,
		subscribers:          make(map[uint64]*subscriber),
		bufferSize:           DefaultBufferSize,
		subscriberBufferSize: DefaultSubscriberBufferSize,
		shutdownTimeout:      DefaultShutdownTimeout,
		stopped:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.publish = make(chan Event, b.bufferSize)
	return b
}

// Start runs the broadcast loop until ctx is cancelled or Stop is called.
func (b *Bus) Start(ctx context.Context) error {
	b.ctx, b.cancel = context.WithCancel(ctx)

	b.wg.Add(1)
	go b.broadcastLoop()

	b.log.Info("Notification bus started",
		logger.Int("buffer_size", b.bufferSize),
		logger.Int("subscriber_buffer_size", b.subscriberBufferSize),
	)
	return nil
}

// Stop ends the broadcast loop and closes every subscription.
func (b *Bus) Stop() error {
	if b.cancel != nil {
		b.cancel()
	}

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		b.log.Info("Notification bus stopped")
	case <-time.After(b.shutdownTimeout):
		b.log.Warn("Notification bus shutdown timeout exceeded")
	}
	return nil
}

// Publish enqueues event without blocking.
func (b *Bus) Publish(ctx context.Context, event Event) error {
	select {
	case <-b.stopped:
		return ErrStopped
	default:
	}

	select {
	case b.publish <- event:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("publish cancelled: %w", ctx.Err())
	default:
		b.dropped(event)
		return fmt.Errorf("%w: dropped %s", ErrBufferFull, event.Type)
	}
}

// Subscribe registers a subscription. The channel is closed by cancel or
// when the bus stops.
func (b *Bus) Subscribe(filters ...Filter) (events <-chan Event, cancel func()) {
	b.mu.Lock()
	b.nextID++
	s := newSubscriber(b.nextID, b.subscriberBufferSize, filters)
	b.subscribers[s.id] = s
	b.mu.Unlock()

	return s.events, func() { b.remove(s.id) }
}

// Handle subscribes fn and runs it on its own goroutine until the
// subscription closes.
func (b *Bus) Handle(name string, fn func(Event), filters ...Filter) (cancel func()) {
	events, cancel := b.Subscribe(filters...)

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for event := range events {
			fn(event)
		}
		b.log.Debug("Notification subscriber finished", logger.String("subscriber", name))
	}()
	return cancel
}

// SubscriberCount returns the number of active subscriptions.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

func (b *Bus) broadcastLoop() {
	defer b.wg.Done()
	defer close(b.stopped)

	for {
		select {
		case event := <-b.publish:
			b.broadcast(event)
		case <-b.ctx.Done():
			b.closeAll()
			return
		}
	}
}

func (b *Bus) broadcast(event Event) {
	b.mu.RLock()
	subs := make([]*subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	for _, s := range subs {
		if !s.accepts(event) {
			continue
		}
		if !s.send(event) {
			b.log.Warn("Subscriber buffer full, dropping event",
				logger.Int64("subscriber_id", int64(s.id)),
				logger.String("event_type", event.Type),
				logger.ReportID(event.ReportID),
			)
			b.dropped(event)
		}
	}
}

func (b *Bus) dropped(event Event) {
	if b.onDrop != nil {
		b.onDrop(event)
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	s, ok := b.subscribers[id]
	delete(b.subscribers, id)
	b.mu.Unlock()

	if ok {
		s.close()
	}
}

func (b *Bus) closeAll() {
	b.mu.Lock()
	subs := b.subscribers
	b.subscribers = make(map[uint64]*subscriber)
	b.mu.Unlock()

	for _, s := range subs {
		s.close()
	}
}

type subscriber struct {
	id      uint64
	events  chan Event
	filters []Filter
	mu      sync.Mutex
	closed  bool
}

func newSubscriber(id uint64, size int, filters []Filter) *subscriber {
	return &subscriber{id: id, events: make(chan Event, size), filters: filters}
}

func (s *subscriber) accepts(event Event) bool {
	for _, f := range s.filters {
		if !f(event) {
			return false
		}
	}
	return true
}

// send reports false when the buffer is full. Sending to a closed
// subscriber is a silent no-op.
func (s *subscriber) send(event Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return true
	}
	select {
	case s.events <- event:
		return true
	default:
		return false
	}
}

func (s *subscriber) close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
