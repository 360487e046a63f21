package verification

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCircuitOpen is returned while the breaker refuses calls.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// BreakerConfig configures a Breaker.
type BreakerConfig struct {
	// FailureThreshold consecutive failures open the circuit.
	FailureThreshold int
	// OpenDuration is how long the circuit stays open before one trial call.
	OpenDuration time.Duration
	// OnStateChange is called with the lock held; it must not call back
	// into the breaker.
	OnStateChange func(from, to State)
}

// Breaker stops calling an unavailable verifier for a cool-down period.
// Only calls whose error is reported as a failure by the caller count.
type Breaker struct {
	mu          sync.Mutex
	state       State
	failures    int
	openedAt    time.Time
	trialActive bool
	cfg         BreakerConfig
	now         func() time.Time
}

// NewBreaker creates a closed breaker.
func NewBreaker(cfg BreakerConfig) *Breaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenDuration <= 0 {
		cfg.OpenDuration = 30 * time.Second
	}
	return &Breaker{cfg: cfg, now: time.Now}
}

// Execute runs fn unless the circuit is open. isFailure decides whether the
// returned error counts towards opening the circuit.
func (b *Breaker) Execute(fn func() error, isFailure func(error) bool) error {
	if err := b.beforeCall(); err != nil {
		return err
	}

	err := fn()
	b.afterCall(err != nil && isFailure(err))
	return err
}

func (b *Breaker) beforeCall() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		elapsed := b.now().Sub(b.openedAt)
		if elapsed < b.cfg.OpenDuration {
			return fmt.Errorf("%w: retry after %v", ErrCircuitOpen, b.cfg.OpenDuration-elapsed)
		}
		b.transitionTo(StateHalfOpen)
		b.trialActive = true
		return nil
	case StateHalfOpen:
		if b.trialActive {
			return fmt.Errorf("%w: trial call in progress", ErrCircuitOpen)
		}
		b.trialActive = true
		return nil
	default:
		return nil
	}
}

func (b *Breaker) afterCall(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == StateHalfOpen {
		b.trialActive = false
		if failed {
			b.open()
		} else {
			b.transitionTo(StateClosed)
		}
		return
	}

	if !failed {
		b.failures = 0
		return
	}
	b.failures++
	if b.failures >= b.cfg.FailureThreshold {
		b.open()
	}
}

func (b *Breaker) open() {
	b.openedAt = b.now()
	b.transitionTo(StateOpen)
}

func (b *Breaker) transitionTo(next State) {
	if b.state == next {
		return
	}
	prev := b.state
	b.state = next
	b.failures = 0
	if b.cfg.OnStateChange != nil {
		b.cfg.OnStateChange(prev, next)
	}
}

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
