// Package bus provides the addressable pub/sub channel that delivers
// inter-agent messages and caches recent ones per recipient.
package bus

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

const (
	// DefaultCacheSize is the per-recipient message cache bound.
	DefaultCacheSize = 100
	// DefaultPollInterval is how often the polling loop checks the
	// transport for messages written by other processes.
	DefaultPollInterval = 5 * time.Second
	// SystemRecipient receives copies of progress messages for the
	// activity feed.
	SystemRecipient = "system"
	// maxPollFailures is the number of consecutive poll failures
	// before the loop self-disables.
	maxPollFailures = 5
	// pollBackoffBase is the first backoff delay after a poll failure.
	pollBackoffBase = time.Second
	// seenSetFactor sizes the poll-dedup ID set as a multiple of the
	// cache bound. The set only needs to cover the poll fetch horizon,
	// which is at most cacheSize recent messages per polled recipient.
	seenSetFactor = 8
)

// Handler receives messages for a subscribed recipient. Handlers run
// synchronously on the publishing goroutine; panics are contained and
// never abort delivery to other subscribers.
type Handler func(m *models.Message)

// MessageBus routes messages between agents. Delivery to live
// subscribers is at-most-once per Publish call; the bounded cache and
// the durable transport provide history. This is a best-effort layer
// over an eventually consistent store: no global ordering across
// recipients and no exactly-once guarantee.
type MessageBus struct {
	projectID string
	primary   Transport
	fallback  Transport
	poll      time.Duration
	cacheSize int
	backoff   time.Duration

	mu          sync.Mutex
	caches      map[string][]models.Message
	subscribers map[string]map[int]Handler
	nextSubID   int
	seen        map[string]bool
	seenOrder   []string
	pollers     map[string]context.CancelFunc
	onFallback  bool
	closed      bool

	wg sync.WaitGroup
}

// Option customizes a MessageBus.
type Option func(*MessageBus)

// WithPollInterval overrides the polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(b *MessageBus) { b.poll = d }
}

// WithCacheSize overrides the per-recipient cache bound.
func WithCacheSize(n int) Option {
	return func(b *MessageBus) { b.cacheSize = n }
}

// New creates a MessageBus for a project. primary may equal fallback
// when no remote endpoint is configured, in which case the sticky
// fallback switch is a no-op.
func New(projectID string, primary, fallback Transport, opts ...Option) *MessageBus {
	b := &MessageBus{
		projectID:   projectID,
		primary:     primary,
		fallback:    fallback,
		poll:        DefaultPollInterval,
		cacheSize:   DefaultCacheSize,
		backoff:     pollBackoffBase,
		caches:      make(map[string][]models.Message),
		subscribers: make(map[string]map[int]Handler),
		seen:        make(map[string]bool),
		pollers:     make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish assigns an ID and timestamp, caches the message for its
// recipient, persists it through the transport, and synchronously
// notifies current subscribers. Returns the assigned message ID.
func (b *MessageBus) Publish(m *models.Message) string {
	return b.publish(m, true)
}

// publish is the shared path for local publishes and poll
// republication. Republished messages are already durable, so persist
// is false for them.
func (b *MessageBus) publish(m *models.Message, persist bool) string {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	if m.ProjectID == "" {
		m.ProjectID = b.projectID
	}

	b.mu.Lock()
	b.markSeenLocked(m.ID)
	b.appendLocked(m.To, *m)
	handlers := b.handlersForLocked(m)
	b.mu.Unlock()

	if persist {
		b.deliver(m)
	}

	for _, h := range handlers {
		b.invoke(h, m)
	}
	return m.ID
}

// markSeenLocked records a delivered message ID for poll
// deduplication, evicting the oldest IDs once the set exceeds its
// bound so the set cannot grow without limit over a long run.
func (b *MessageBus) markSeenLocked(id string) {
	if b.seen[id] {
		return
	}
	b.seen[id] = true
	b.seenOrder = append(b.seenOrder, id)
	limit := b.cacheSize * seenSetFactor
	for len(b.seenOrder) > limit {
		delete(b.seen, b.seenOrder[0])
		b.seenOrder = b.seenOrder[1:]
	}
}

// appendLocked adds a message to the recipient's cache, evicting the
// oldest entry beyond the bound. FIFO eviction, not LRU.
func (b *MessageBus) appendLocked(recipient string, m models.Message) {
	cache := append(b.caches[recipient], m)
	if len(cache) > b.cacheSize {
		cache = cache[len(cache)-b.cacheSize:]
	}
	b.caches[recipient] = cache
}

// handlersForLocked snapshots the handlers that should see this
// message: the recipient's, plus system subscribers for progress.
func (b *MessageBus) handlersForLocked(m *models.Message) []Handler {
	var handlers []Handler
	for _, h := range b.subscribers[m.To] {
		handlers = append(handlers, h)
	}
	if m.Type == models.MessageTypeProgress && m.To != SystemRecipient {
		for _, h := range b.subscribers[SystemRecipient] {
			handlers = append(handlers, h)
		}
	}
	return handlers
}

// invoke runs a handler, containing panics so one bad subscriber
// cannot abort delivery to the rest.
func (b *MessageBus) invoke(h Handler, m *models.Message) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[bus] subscriber panic delivering %s: %v", m.ID, r)
		}
	}()
	h(m)
}

// deliver persists the message, switching to the fallback transport on
// the first primary failure and staying switched for the process
// lifetime.
func (b *MessageBus) deliver(m *models.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	b.mu.Lock()
	usingFallback := b.onFallback
	b.mu.Unlock()

	if !usingFallback {
		if err := b.primary.Deliver(ctx, m); err == nil {
			return
		} else {
			log.Printf("[bus] primary transport failed, switching to direct storage: %v", err)
			b.mu.Lock()
			b.onFallback = true
			b.mu.Unlock()
		}
	}

	if err := b.fallback.Deliver(ctx, m); err != nil {
		log.Printf("[bus] fallback delivery failed for %s: %v", m.ID, err)
	}
}

// Subscribe registers a handler for messages addressed to agentID and
// returns an unsubscribe function. The first subscriber for a
// recipient starts a polling loop that republishes messages found in
// the durable store; the last unsubscribe stops it.
func (b *MessageBus) Subscribe(agentID string, h Handler) func() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return func() {}
	}

	id := b.nextSubID
	b.nextSubID++
	if b.subscribers[agentID] == nil {
		b.subscribers[agentID] = make(map[int]Handler)
	}
	b.subscribers[agentID][id] = h

	if _, running := b.pollers[agentID]; !running {
		ctx, cancel := context.WithCancel(context.Background())
		b.pollers[agentID] = cancel
		b.wg.Add(1)
		go b.pollLoop(ctx, agentID)
	}
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subscribers[agentID], id)
			if len(b.subscribers[agentID]) == 0 {
				delete(b.subscribers, agentID)
				if cancel, ok := b.pollers[agentID]; ok {
					cancel()
					delete(b.pollers, agentID)
				}
			}
		})
	}
}

// pollLoop periodically fetches messages for agentID from the durable
// transport and republishes unseen ones through the normal publish
// path. Consecutive failures back off exponentially (1s, 2s, 4s, 8s,
// 16s) and then the loop self-disables; a later re-subscription starts
// a fresh loop with reset backoff.
func (b *MessageBus) pollLoop(ctx context.Context, agentID string) {
	defer b.wg.Done()

	failures := 0
	for {
		delay := b.poll
		if failures > 0 {
			delay = b.backoff << (failures - 1)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}

		fetchCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		msgs, err := b.fetchSource().Fetch(fetchCtx, b.projectID, agentID, b.cacheSize)
		cancel()
		if err != nil {
			failures++
			if failures >= maxPollFailures {
				log.Printf("[bus] polling for %s disabled after %d failures: %v", agentID, failures, err)
				b.mu.Lock()
				// Allow a future Subscribe to restart the loop.
				if cancel, ok := b.pollers[agentID]; ok {
					cancel()
					delete(b.pollers, agentID)
				}
				b.mu.Unlock()
				return
			}
			log.Printf("[bus] poll failure %d for %s: %v", failures, agentID, err)
			continue
		}
		failures = 0

		for i := range msgs {
			m := msgs[i]
			b.mu.Lock()
			dup := b.seen[m.ID]
			b.mu.Unlock()
			if dup {
				continue
			}
			b.publish(&m, false)
		}
	}
}

// fetchSource returns the transport used by the polling loop. Fetch
// always goes to the durable side so the loop sees messages written by
// other processes even before any delivery failure.
func (b *MessageBus) fetchSource() Transport {
	return b.fallback
}

// Cached returns a copy of the in-memory cache for the recipient. It
// never triggers a fetch.
func (b *MessageBus) Cached(agentID string) []models.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	cache := b.caches[agentID]
	out := make([]models.Message, len(cache))
	copy(out, cache)
	return out
}

// UsingFallback reports whether the sticky fallback switch has fired.
func (b *MessageBus) UsingFallback() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.onFallback
}

// Close stops all polling loops and rejects further subscriptions.
func (b *MessageBus) Close() {
	b.mu.Lock()
	b.closed = true
	for agentID, cancel := range b.pollers {
		cancel()
		delete(b.pollers, agentID)
	}
	b.mu.Unlock()
	b.wg.Wait()
}
