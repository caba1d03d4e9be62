package orchestrator

import (
	"time"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// EventType identifies an orchestrator event.
type EventType string

const (
	// EventAgentStatus signals an agent status change.
	EventAgentStatus EventType = "agent_status"
	// EventTurnTaken signals a completed conversational turn.
	EventTurnTaken EventType = "turn_taken"
	// EventConversationDone signals a conversation reaching a
	// terminal state.
	EventConversationDone EventType = "conversation_done"
	// EventTaskCreated signals a bootstrapped task.
	EventTaskCreated EventType = "task_created"
	// EventDegraded signals a degraded-mode notice for the user.
	EventDegraded EventType = "degraded"
)

// Event is a single orchestrator notification consumed by the TUI and
// the status command.
type Event struct {
	// Type identifies the event.
	Type EventType
	// AgentID is the agent this event concerns, if any.
	AgentID string
	// Status is the new agent status for EventAgentStatus.
	Status models.AgentStatus
	// ConversationID is set for conversation events.
	ConversationID string
	// Message is a human-readable summary.
	Message string
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}
