// Package broker provides the single-holder communication token that
// gates which agent may currently take a conversational turn.
package broker

import (
	"sync"
	"time"
)

// DefaultMinInterval is the minimum time between successful
// acquisitions by the same agent.
const DefaultMinInterval = 2 * time.Second

// TokenBroker is an advisory admission control primitive, not a true
// lock: acquisition is polled, never queued, and a failed Acquire is an
// expected control-flow branch. At most one agent holds the token at
// any instant. The token is process-local and never persisted.
type TokenBroker struct {
	mu          sync.Mutex
	holder      string
	lastAcquire map[string]time.Time
	minInterval time.Duration
	now         func() time.Time
}

// New creates a TokenBroker with the default rate-limit interval.
func New() *TokenBroker {
	return NewWithInterval(DefaultMinInterval)
}

// NewWithInterval creates a TokenBroker with a custom rate-limit
// interval. Zero disables rate limiting.
func NewWithInterval(minInterval time.Duration) *TokenBroker {
	return &TokenBroker{
		lastAcquire: make(map[string]time.Time),
		minInterval: minInterval,
		now:         time.Now,
	}
}

// Acquire attempts to take the token for agentID. It succeeds iff the
// token is free or already held by agentID, and at least the rate-limit
// interval has elapsed since agentID's last successful acquisition.
// Never blocks; callers must self-schedule a retry on false.
func (b *TokenBroker) Acquire(agentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.holder != "" && b.holder != agentID {
		return false
	}

	// Re-acquisition by the current holder bypasses the rate limit.
	if b.holder != agentID && b.minInterval > 0 {
		if last, ok := b.lastAcquire[agentID]; ok {
			if b.now().Sub(last) < b.minInterval {
				return false
			}
		}
	}

	b.holder = agentID
	b.lastAcquire[agentID] = b.now()
	return true
}

// Release clears the holder only if agentID currently holds the token.
// Releasing a token never acquired is a documented no-op.
func (b *TokenBroker) Release(agentID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.holder == agentID {
		b.holder = ""
	}
}

// ForceRelease clears the holder unconditionally. Used on the turn
// failure path to avoid deadlock when the failing agent may not be the
// holder.
func (b *TokenBroker) ForceRelease() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.holder = ""
}

// IsHeld reports whether agentID currently holds the token.
func (b *TokenBroker) IsHeld(agentID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holder == agentID
}

// Holder returns the current holder, if any.
func (b *TokenBroker) Holder() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.holder, b.holder != ""
}

// TimeUntilNext returns how long agentID must wait before its next
// acquisition can succeed. Zero means the rate window has passed; the
// token may still be held by someone else.
func (b *TokenBroker) TimeUntilNext(agentID string) time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	last, ok := b.lastAcquire[agentID]
	if !ok {
		return 0
	}
	elapsed := b.now().Sub(last)
	if elapsed >= b.minInterval {
		return 0
	}
	return b.minInterval - elapsed
}
