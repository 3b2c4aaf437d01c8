package infra

import (
	"errors"
	"sync"
	"time"
)

// ── SMTP circuit breaker ──────────────────────────────────────────────────────
// Closed → Open → Half-Open. While the relay is down the breaker fails fast
// instead of stacking dial timeouts in the worker pool; after OpenTimeout it
// lets probe sends through and closes again once enough of them succeed. The
// email worker and the dead-letter redrive cron both consult it.

// CBState is the breaker position.
type CBState int

const (
	CBClosed   CBState = iota // sends pass through
	CBOpen                    // fast-fail until OpenTimeout elapses
	CBHalfOpen                // probe traffic allowed
)

// String is used in logs and the health payload.
func (s CBState) String() string {
	switch s {
	case CBClosed:
		return "closed"
	case CBOpen:
		return "open"
	case CBHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute while the breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// CircuitBreakerConfig tunes the trip and recovery behavior.
type CircuitBreakerConfig struct {
	FailureThreshold int           // consecutive failures that trip the breaker
	SuccessThreshold int           // half-open successes needed to close again
	OpenTimeout      time.Duration // how long to fast-fail before probing
}

// DefaultCBConfig is tuned for a flaky SMTP relay: trip after 5 straight
// failures, probe after a minute, close on 2 good sends.
func DefaultCBConfig() CircuitBreakerConfig {
	return CircuitBreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		OpenTimeout:      60 * time.Second,
	}
}

// CircuitBreaker tracks relay health across goroutines. The zero value is
// not usable; construct with NewCircuitBreaker.
type CircuitBreaker struct {
	mu       sync.Mutex
	cfg      CircuitBreakerConfig
	state    CBState
	streak   int // consecutive failures while closed, consecutive successes while half-open
	openedAt time.Time
}

// NewCircuitBreaker returns a closed breaker. Zero or negative config
// fields fall back to the defaults.
func NewCircuitBreaker(cfg CircuitBreakerConfig) *CircuitBreaker {
	def := DefaultCBConfig()
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = def.FailureThreshold
	}
	if cfg.SuccessThreshold <= 0 {
		cfg.SuccessThreshold = def.SuccessThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = def.OpenTimeout
	}
	return &CircuitBreaker{cfg: cfg, state: CBClosed}
}

// State reports the current position, moving Open → Half-Open once the
// open window has elapsed.
func (cb *CircuitBreaker) State() CBState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	if cb.state == CBOpen && time.Since(cb.openedAt) >= cb.cfg.OpenTimeout {
		cb.state = CBHalfOpen
		cb.streak = 0
	}
	return cb.state
}

// Execute runs fn unless the breaker is open, in which case it returns
// ErrCircuitOpen without calling fn at all.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if cb.State() == CBOpen {
		return ErrCircuitOpen
	}
	err := fn()
	cb.record(err)
	return err
}

func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		switch cb.state {
		case CBHalfOpen:
			cb.streak++
			if cb.streak >= cb.cfg.SuccessThreshold {
				cb.state = CBClosed
				cb.streak = 0
			}
		case CBClosed:
			cb.streak = 0
		}
		return
	}

	switch cb.state {
	case CBClosed:
		cb.streak++
		if cb.streak >= cb.cfg.FailureThreshold {
			cb.trip()
		}
	default:
		// Failed probe, or a send that raced past State() while tripping.
		cb.trip()
	}
}

// trip must be called with cb.mu held.
func (cb *CircuitBreaker) trip() {
	cb.state = CBOpen
	cb.openedAt = time.Now()
	cb.streak = 0
}
