package conversation

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/api"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/broker"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

const (
	// FreshnessWindow is how recently a conversation between the same
	// pair must have started for a new Initiate to reuse it instead of
	// creating a duplicate. The source varied between 60s and 180s;
	// this implementation standardizes on 120s.
	FreshnessWindow = 120 * time.Second
	// MaxTurns is the hard cap after which a conversation completes
	// regardless of the continuation probability.
	MaxTurns = 10
	// DefaultTurnDelay spaces consecutive turns to respect the broker
	// rate limit and avoid bursts against the completion service.
	DefaultTurnDelay = 3 * time.Second
)

// degradedNotice is shown to users when a turn fails; errors never
// propagate past the turn boundary.
const degradedNotice = "Conversation paused: the assistant service is temporarily unavailable."

// Publisher publishes messages to the bus.
type Publisher interface {
	Publish(m *models.Message) string
}

// AgentLookup resolves agent metadata for prompting and the lead
// bonus. Returns nil, nil when the agent is unknown.
type AgentLookup interface {
	GetAgent(id string) (*models.Agent, error)
}

// Scheduler queues deferred work. Scheduling with a key already
// pending replaces the earlier entry.
type Scheduler interface {
	Schedule(key string, delay time.Duration, fn func())
	Cancel(key string)
}

// Manager owns the conversation table and drives the turn state
// machine. All state is process-local; a restart garbage-collects it.
type Manager struct {
	broker    *broker.TokenBroker
	completer api.Completer
	publisher Publisher
	agents    AgentLookup
	scheduler Scheduler

	turnDelay time.Duration
	now       func() time.Time

	mu     sync.Mutex
	states map[string]*State
	rng    *rand.Rand
}

// Config wires a Manager's collaborators.
type Config struct {
	Broker    *broker.TokenBroker
	Completer api.Completer
	Publisher Publisher
	Agents    AgentLookup
	Scheduler Scheduler
	// TurnDelay overrides DefaultTurnDelay when positive.
	TurnDelay time.Duration
	// Seed seeds the continuation RNG. Zero seeds from the clock.
	Seed int64
}

// NewManager creates a Manager.
func NewManager(cfg Config) *Manager {
	delay := cfg.TurnDelay
	if delay <= 0 {
		delay = DefaultTurnDelay
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Manager{
		broker:    cfg.Broker,
		completer: cfg.Completer,
		publisher: cfg.Publisher,
		agents:    cfg.Agents,
		scheduler: cfg.Scheduler,
		turnDelay: delay,
		now:       time.Now,
		states:    make(map[string]*State),
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Initiate starts or reuses a conversation between source and target.
// An active conversation between the same unordered pair initiated
// within the freshness window is reused: its last message, priority,
// and initiation time are refreshed and its turn count reset,
// preventing redundant parallel conversations. The source then
// attempts to acquire the token; on success the first turn runs
// immediately, otherwise the conversation stays queued for a later
// sweep. Returns the conversation ID.
func (m *Manager) Initiate(ctx context.Context, source, target, firstMessage string, priority int) string {
	m.mu.Lock()
	state := m.findReusableLocked(source, target)
	if state != nil {
		state.LastMessage = firstMessage
		state.Priority = priority
		state.TurnCount = 0
		state.InitiatedAt = m.now()
		// The initiator speaks first. Reuse from the other side of the
		// pair reorders the participants so turn 0 belongs to source;
		// otherwise the token acquired below would not match the
		// current speaker and the conversation could never advance.
		if state.Participants[0] != source {
			for i, p := range state.Participants {
				if p == source {
					state.Participants[0], state.Participants[i] = state.Participants[i], state.Participants[0]
					break
				}
			}
		}
		log.Printf("[conversation] reusing %s for %s<->%s", state.ID, source, target)
	} else {
		state = &State{
			ID:           uuid.NewString(),
			Participants: []string{source, target},
			LastMessage:  firstMessage,
			TurnCount:    0,
			Status:       StatusActive,
			Priority:     priority,
			InitiatedAt:  m.now(),
		}
		m.states[state.ID] = state
	}
	id := state.ID
	m.mu.Unlock()

	if m.broker.Acquire(source) {
		m.AdvanceTurn(ctx, id)
	} else {
		// Queued; the sweep or a completion will pick it up.
		m.scheduleSweep()
	}
	return id
}

// findReusableLocked returns an active conversation for the unordered
// pair initiated within the freshness window, or nil.
func (m *Manager) findReusableLocked(a, b string) *State {
	cutoff := m.now().Add(-FreshnessWindow)
	for _, s := range m.states {
		if s.Status == StatusActive && s.SamePair(a, b) && s.InitiatedAt.After(cutoff) {
			return s
		}
	}
	return nil
}

// Get returns a copy of the conversation state, or nil if unknown.
func (m *Manager) Get(id string) *State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.states[id]
	if !ok {
		return nil
	}
	copied := *s
	copied.Participants = append([]string(nil), s.Participants...)
	return &copied
}

// Active returns copies of all active conversations, highest priority
// first with ties broken by earliest initiation.
func (m *Manager) Active() []State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeLocked()
}

func (m *Manager) activeLocked() []State {
	var out []State
	for _, s := range m.states {
		if s.Status == StatusActive {
			copied := *s
			copied.Participants = append([]string(nil), s.Participants...)
			out = append(out, copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].InitiatedAt.Before(out[j].InitiatedAt)
	})
	return out
}

// AdvanceTurn runs one turn of the conversation if its current speaker
// holds the token; otherwise it is a no-op and the turn is deferred.
// Structural validation failures and collaborator errors both mark the
// conversation failed and release the token; errors never propagate.
func (m *Manager) AdvanceTurn(ctx context.Context, id string) {
	m.mu.Lock()
	state, ok := m.states[id]
	if !ok || state.Status.Terminal() {
		m.mu.Unlock()
		return
	}

	if err := state.Validate(); err != nil {
		state.Status = StatusFailed
		state.EndedAt = m.now()
		m.mu.Unlock()
		log.Printf("[conversation] validation failed: %v", err)
		m.broker.ForceRelease()
		return
	}

	speaker := state.CurrentSpeaker()
	if !m.broker.IsHeld(speaker) {
		// Deferred: the speaker does not have the floor.
		m.mu.Unlock()
		return
	}
	lastMessage := state.LastMessage
	turnCount := state.TurnCount
	listener := state.Participants[(turnCount+1)%len(state.Participants)]
	m.mu.Unlock()

	reply, role, err := m.takeTurn(ctx, speaker, listener, lastMessage)
	if err != nil {
		m.failTurn(id, speaker, err)
		return
	}

	m.mu.Lock()
	state, ok = m.states[id]
	if !ok || state.Status.Terminal() {
		m.mu.Unlock()
		return
	}
	state.LastMessage = reply
	state.TurnCount++
	newCount := state.TurnCount
	m.mu.Unlock()

	msgType := models.MessageTypeResponse
	if newCount == 1 {
		msgType = models.MessageTypeRequest
	}
	m.publisher.Publish(&models.Message{
		From:    speaker,
		To:      listener,
		Content: reply,
		Type:    msgType,
		Metadata: map[string]string{
			"conversation_id": id,
			"turn":            fmt.Sprintf("%d", newCount),
		},
	})

	m.applyTermination(id, newCount, role, reply)
}

// takeTurn prompts the completion service for the speaker's response.
func (m *Manager) takeTurn(ctx context.Context, speaker, listener, lastMessage string) (string, models.Specialization, error) {
	var role models.Specialization
	var name string
	if agent, err := m.agents.GetAgent(speaker); err != nil {
		return "", "", fmt.Errorf("look up speaker %s: %w", speaker, err)
	} else if agent != nil {
		role = agent.Specialization
		name = agent.Name
	}

	var listenerRole models.Specialization
	if agent, err := m.agents.GetAgent(listener); err == nil && agent != nil {
		listenerRole = agent.Specialization
	}

	prompt := turnPrompt(name, role, listenerRole, lastMessage)
	reply, err := m.completer.Complete(ctx, prompt)
	if err != nil {
		return "", role, fmt.Errorf("completion for %s: %w", speaker, err)
	}
	return reply, role, nil
}

// failTurn marks the conversation failed, releases the token
// unconditionally to avoid deadlock, and emits a user-visible degraded
// notice instead of propagating the error.
func (m *Manager) failTurn(id, speaker string, err error) {
	log.Printf("[conversation] turn failed in %s: %v", id, err)

	m.mu.Lock()
	if state, ok := m.states[id]; ok {
		state.Status = StatusFailed
		state.EndedAt = m.now()
	}
	m.mu.Unlock()

	m.scheduler.Cancel("turn:" + id)
	m.broker.ForceRelease()

	m.publisher.Publish(&models.Message{
		From:    speaker,
		To:      busSystemRecipient,
		Content: degradedNotice,
		Type:    models.MessageTypeNotification,
		Metadata: map[string]string{
			"conversation_id": id,
		},
	})

	m.scheduleSweep()
}

// busSystemRecipient mirrors bus.SystemRecipient without importing the
// bus package, keeping the manager bound to the Publisher interface.
const busSystemRecipient = "system"

// applyTermination decides whether the conversation continues after a
// completed turn. Policy order: hard cap, then probabilistic decay.
func (m *Manager) applyTermination(id string, turnCount int, role models.Specialization, lastMessage string) {
	if turnCount >= MaxTurns {
		log.Printf("[conversation] %s reached turn cap", id)
		m.complete(id)
		return
	}

	p := ContinueProbability(turnCount, role, lastMessage)
	m.mu.Lock()
	roll := m.rng.Float64()
	m.mu.Unlock()

	if roll >= p {
		m.complete(id)
		return
	}

	// Continue: hand the floor to the next speaker after a delay. The
	// delay respects the broker rate limit and spaces completion calls.
	m.scheduler.Schedule("turn:"+id, m.turnDelay, func() {
		state := m.Get(id)
		if state == nil || state.Status.Terminal() {
			return
		}
		speaker := state.CurrentSpeaker()
		m.broker.Release(priorSpeaker(state))
		if m.broker.Acquire(speaker) {
			m.AdvanceTurn(context.Background(), id)
		} else {
			// Try again next sweep.
			m.scheduleSweep()
		}
	})
}

// priorSpeaker returns the participant who spoke last.
func priorSpeaker(s *State) string {
	n := len(s.Participants)
	return s.Participants[(s.TurnCount+n-1)%n]
}

// complete marks the conversation completed, releases the token if a
// participant holds it, and resumes the next queued conversation.
func (m *Manager) complete(id string) {
	m.mu.Lock()
	state, ok := m.states[id]
	if !ok || state.Status.Terminal() {
		m.mu.Unlock()
		return
	}
	state.Status = StatusCompleted
	state.EndedAt = m.now()
	participants := append([]string(nil), state.Participants...)
	m.mu.Unlock()

	m.scheduler.Cancel("turn:" + id)

	if holder, held := m.broker.Holder(); held {
		for _, p := range participants {
			if p == holder {
				m.broker.Release(holder)
				break
			}
		}
	}

	log.Printf("[conversation] %s completed", id)
	m.Sweep()
}

// Sweep evicts aged-out terminal conversations, then resumes the
// highest-priority active conversation whose current speaker can
// acquire the token. Called after completions and periodically by the
// orchestrator for conversations that queued while the token was busy.
func (m *Manager) Sweep() {
	m.pruneTerminal()
	for _, state := range m.Active() {
		speaker := state.CurrentSpeaker()
		if m.broker.Acquire(speaker) {
			m.AdvanceTurn(context.Background(), state.ID)
			return
		}
	}
}

// pruneTerminal drops completed and failed conversations once they are
// older than the freshness window. Keeping them that long lets Get
// answer for recently ended conversations while bounding the table.
func (m *Manager) pruneTerminal() {
	cutoff := m.now().Add(-FreshnessWindow)
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.states {
		if s.Status.Terminal() && !s.EndedAt.IsZero() && s.EndedAt.Before(cutoff) {
			delete(m.states, id)
		}
	}
}

// scheduleSweep queues a sweep attempt shortly in the future. Keyed so
// repeated requests collapse into one pending sweep.
func (m *Manager) scheduleSweep() {
	m.scheduler.Schedule("sweep", m.turnDelay, m.Sweep)
}

// CancelFor cancels the pending continuation of every active
// conversation involving the agent. Used when an agent is stopped.
func (m *Manager) CancelFor(agentID string) {
	for _, state := range m.Active() {
		for _, p := range state.Participants {
			if p == agentID {
				m.scheduler.Cancel("turn:" + state.ID)
				break
			}
		}
	}
}

// ActiveCount returns the number of active conversations.
func (m *Manager) ActiveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.states {
		if s.Status == StatusActive {
			n++
		}
	}
	return n
}
