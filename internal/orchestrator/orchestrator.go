package orchestrator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/api"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/broker"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/conversation"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/store"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/taskparse"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

const (
	// DefaultStallTimeout is how long an agent may sit in a working
	// state before the liveness sweep resets it to idle.
	DefaultStallTimeout = 30 * time.Second
	// DefaultLivenessInterval is how often the liveness sweep runs.
	DefaultLivenessInterval = 10 * time.Second
	// defaultPriority is used for greeting conversations.
	defaultPriority = 5
)

// Publisher is the slice of the message bus the orchestrator needs.
type Publisher interface {
	Publish(m *models.Message) string
}

// Config wires an Orchestrator's collaborators. One Orchestrator is
// constructed per project per process; it owns all coordination state
// that the original design kept in module-level singletons.
type Config struct {
	// ProjectID scopes all store access.
	ProjectID string
	// Store is the durable collaborator.
	Store store.Store
	// Completer is the LLM collaborator.
	Completer api.Completer
	// Bus publishes inter-agent messages.
	Bus Publisher
	// DebugLogPath enables file-backed debug logging when set.
	DebugLogPath string
	// Seed seeds the conversation RNG; zero means time-seeded.
	Seed int64
	// TurnDelay overrides the conversation turn spacing.
	TurnDelay time.Duration
	// StallTimeout overrides DefaultStallTimeout.
	StallTimeout time.Duration
	// LivenessInterval overrides DefaultLivenessInterval.
	LivenessInterval time.Duration
}

// Orchestrator composes the token broker, message bus, conversation
// manager, and task parser to run a project's agents.
type Orchestrator struct {
	cfg       Config
	store     store.Store
	completer api.Completer
	bus       Publisher

	broker        *broker.TokenBroker
	scheduler     *Scheduler
	conversations *conversation.Manager
	parser        *taskparse.Parser
	emitter       *EventEmitter
	logger        *DebugLogger

	cancel context.CancelFunc
	done   chan struct{}
}

// New creates an Orchestrator. Call Run to start the liveness sweep
// and Close to tear everything down.
func New(cfg Config) (*Orchestrator, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("project id is required")
	}
	if cfg.Store == nil || cfg.Completer == nil || cfg.Bus == nil {
		return nil, fmt.Errorf("store, completer, and bus are required")
	}
	if cfg.StallTimeout <= 0 {
		cfg.StallTimeout = DefaultStallTimeout
	}
	if cfg.LivenessInterval <= 0 {
		cfg.LivenessInterval = DefaultLivenessInterval
	}

	logger, err := NewDebugLogger(cfg.DebugLogPath)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:       cfg,
		store:     cfg.Store,
		completer: cfg.Completer,
		bus:       cfg.Bus,
		broker:    broker.New(),
		scheduler: NewScheduler(),
		parser:    taskparse.NewParser(),
		emitter:   NewEventEmitter(256),
		logger:    logger,
	}

	o.conversations = conversation.NewManager(conversation.Config{
		Broker:    o.broker,
		Completer: o.completer,
		Publisher: &eventingPublisher{bus: o.bus, emitter: o.emitter},
		Agents:    o.store,
		Scheduler: o.scheduler,
		TurnDelay: cfg.TurnDelay,
		Seed:      cfg.Seed,
	})

	return o, nil
}

// Events returns the orchestrator event stream.
func (o *Orchestrator) Events() <-chan Event {
	return o.emitter.Events()
}

// Broker exposes the token broker for diagnostics.
func (o *Orchestrator) Broker() *broker.TokenBroker {
	return o.broker
}

// Conversations exposes the conversation manager for diagnostics.
func (o *Orchestrator) Conversations() *conversation.Manager {
	return o.conversations
}

// StartAgent begins an agent's participation: its status moves to
// working and it opens a conversation toward a partner. The architect
// additionally bootstraps the project's initial task set when no tasks
// exist yet.
func (o *Orchestrator) StartAgent(ctx context.Context, agentID string) error {
	agent, err := o.store.GetAgent(agentID)
	if err != nil {
		return fmt.Errorf("start agent: %w", err)
	}
	if agent == nil {
		return fmt.Errorf("start agent: %s not found", agentID)
	}

	o.setStatus(agent, models.AgentStatusWorking)
	o.logger.Log("[orchestrator] starting agent %s (%s)", agent.Name, agent.Specialization)

	if agent.IsLead() {
		tasks, err := o.store.ListTasks(o.cfg.ProjectID)
		if err != nil {
			o.logger.Log("[orchestrator] list tasks: %v", err)
		}
		if len(tasks) == 0 {
			if err := o.BootstrapProject(ctx); err != nil {
				// Degraded, not fatal: the team can still converse.
				log.Printf("[orchestrator] bootstrap failed: %v", err)
				o.emitter.Emit(Event{
					Type:    EventDegraded,
					AgentID: agentID,
					Message: "Project analysis unavailable; starting with a generic task.",
				})
			}
		}
	}

	partner := o.pickPartner(agent)
	if partner != nil {
		greeting := fmt.Sprintf("Hi, I'm %s, the %s specialist. What should we focus on first?",
			agent.Name, agent.Specialization)
		convID := o.conversations.Initiate(ctx, agent.ID, partner.ID, greeting, defaultPriority)
		o.logger.Log("[orchestrator] agent %s opened conversation %s with %s", agent.ID, convID, partner.ID)
	}

	o.setStatus(agent, models.AgentStatusWaiting)
	return nil
}

// pickPartner chooses who a starting agent talks to: non-leads address
// the architect; the architect addresses the first other teammate.
func (o *Orchestrator) pickPartner(agent *models.Agent) *models.Agent {
	agents, err := o.store.ListAgents(o.cfg.ProjectID)
	if err != nil {
		o.logger.Log("[orchestrator] list agents: %v", err)
		return nil
	}

	if !agent.IsLead() {
		for i := range agents {
			if agents[i].Specialization == models.SpecArchitect && agents[i].ID != agent.ID {
				return &agents[i]
			}
		}
	}
	for i := range agents {
		if agents[i].ID != agent.ID {
			return &agents[i]
		}
	}
	return nil
}

// StopAgent halts an agent's participation: pending continuations for
// its conversations are cancelled, the token is released if it holds
// it, and its status returns to idle.
func (o *Orchestrator) StopAgent(agentID string) error {
	agent, err := o.store.GetAgent(agentID)
	if err != nil {
		return fmt.Errorf("stop agent: %w", err)
	}
	if agent == nil {
		return fmt.Errorf("stop agent: %s not found", agentID)
	}

	o.conversations.CancelFor(agentID)
	o.broker.Release(agentID)
	o.setStatus(agent, models.AgentStatusIdle)
	o.logger.Log("[orchestrator] stopped agent %s", agentID)
	return nil
}

// RestartAgent stops and immediately restarts an agent.
func (o *Orchestrator) RestartAgent(ctx context.Context, agentID string) error {
	if err := o.StopAgent(agentID); err != nil {
		return err
	}
	return o.StartAgent(ctx, agentID)
}

// BootstrapProject asks the completion service for an initial project
// analysis and turns the response into persisted tasks. A response the
// parser cannot use yields a single generic fallback task rather than
// an error surfacing to the caller.
func (o *Orchestrator) BootstrapProject(ctx context.Context) error {
	agents, err := o.store.ListAgents(o.cfg.ProjectID)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	text, err := o.completer.Complete(ctx, bootstrapPrompt(agents))
	if err != nil {
		// Collaborator failure: fall back to a generic starter task.
		o.createTask(taskparse.ParsedTask{
			Title:        "Plan the project",
			Description:  "Outline the first milestone and split the work across the team.",
			AssignedRole: models.SpecArchitect,
		})
		return fmt.Errorf("bootstrap analysis: %w", err)
	}

	parsed := o.parser.Parse(text, false)
	if len(parsed) == 0 {
		parsed = []taskparse.ParsedTask{{
			Title:        "Plan the project",
			Description:  "Outline the first milestone and split the work across the team.",
			AssignedRole: models.SpecArchitect,
		}}
	}

	for _, p := range parsed {
		o.createTask(p)
	}
	o.logger.Log("[orchestrator] bootstrapped %d tasks", len(parsed))
	return nil
}

// createTask persists a parsed task, announces it on the bus, and
// emits an event.
func (o *Orchestrator) createTask(p taskparse.ParsedTask) {
	task := &models.Task{
		ID:           uuid.NewString(),
		ProjectID:    o.cfg.ProjectID,
		Title:        p.Title,
		Description:  p.Description,
		AssignedRole: p.AssignedRole,
		Status:       models.TaskStatusPending,
		CreatedAt:    time.Now(),
	}
	if err := o.store.CreateTask(task); err != nil {
		log.Printf("[orchestrator] persist task %q: %v", task.Title, err)
		return
	}

	if assignee := o.agentForRole(p.AssignedRole); assignee != nil {
		o.bus.Publish(&models.Message{
			From:    "system",
			To:      assignee.ID,
			Content: fmt.Sprintf("New task: %s", task.Title),
			Type:    models.MessageTypeTask,
			Metadata: map[string]string{
				"task_id": task.ID,
			},
		})
	}

	o.emitter.Emit(Event{
		Type:    EventTaskCreated,
		Message: task.Title,
	})
}

// agentForRole returns a project agent with the given specialization,
// or nil.
func (o *Orchestrator) agentForRole(role models.Specialization) *models.Agent {
	if role == "" {
		return nil
	}
	agents, err := o.store.ListAgents(o.cfg.ProjectID)
	if err != nil {
		return nil
	}
	for i := range agents {
		if agents[i].Specialization == role {
			return &agents[i]
		}
	}
	return nil
}

// setStatus persists an agent status change and emits an event.
func (o *Orchestrator) setStatus(agent *models.Agent, status models.AgentStatus) {
	now := time.Now()
	if err := o.store.UpdateAgentStatus(agent.ID, status, now); err != nil {
		log.Printf("[orchestrator] update status for %s: %v", agent.ID, err)
	}
	agent.Status = status
	agent.UpdatedAt = now

	o.emitter.Emit(Event{
		Type:    EventAgentStatus,
		AgentID: agent.ID,
		Status:  status,
		Message: fmt.Sprintf("%s is %s", agent.Name, status),
	})
}

// Run starts the liveness sweep. It returns immediately; Close stops
// the sweep.
func (o *Orchestrator) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.done = make(chan struct{})

	go func() {
		defer close(o.done)
		ticker := time.NewTicker(o.cfg.LivenessInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				o.livenessSweep()
				o.conversations.Sweep()
			}
		}
	}()
}

// livenessSweep resets agents stuck in a working state past the stall
// timeout. A stalled agent holding the token would otherwise block
// every conversation; resetting it frees the way for fresh
// acquisitions.
func (o *Orchestrator) livenessSweep() {
	agents, err := o.store.ListAgents(o.cfg.ProjectID)
	if err != nil {
		o.logger.Log("[liveness] list agents: %v", err)
		return
	}

	cutoff := time.Now().Add(-o.cfg.StallTimeout)
	for i := range agents {
		a := &agents[i]
		if a.Status != models.AgentStatusWorking || !a.UpdatedAt.Before(cutoff) {
			continue
		}
		log.Printf("[liveness] agent %s stalled, resetting to idle", a.ID)
		o.broker.Release(a.ID)
		o.setStatus(a, models.AgentStatusIdle)
	}
}

// Close stops the liveness sweep, cancels pending scheduled work, and
// closes the event stream.
func (o *Orchestrator) Close() {
	if o.cancel != nil {
		o.cancel()
		<-o.done
	}
	o.scheduler.Close()
	o.emitter.Close()
	o.logger.Close()
}

// eventingPublisher forwards conversation messages to the bus and
// mirrors them as orchestrator events.
type eventingPublisher struct {
	bus     Publisher
	emitter *EventEmitter
}

func (p *eventingPublisher) Publish(m *models.Message) string {
	id := p.bus.Publish(m)

	switch m.Type {
	case models.MessageTypeRequest, models.MessageTypeResponse:
		p.emitter.Emit(Event{
			Type:           EventTurnTaken,
			AgentID:        m.From,
			ConversationID: m.Metadata["conversation_id"],
			Message:        m.Content,
		})
	case models.MessageTypeNotification:
		p.emitter.Emit(Event{
			Type:           EventDegraded,
			AgentID:        m.From,
			ConversationID: m.Metadata["conversation_id"],
			Message:        m.Content,
		})
	}
	return id
}
