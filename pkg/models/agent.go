package models

import (
	"strings"
	"time"
)

// AgentStatus represents the current state of an agent.
type AgentStatus string

const (
	// AgentStatusIdle indicates the agent is not participating in any work.
	AgentStatusIdle AgentStatus = "idle"
	// AgentStatusWorking indicates the agent is actively taking a turn.
	AgentStatusWorking AgentStatus = "working"
	// AgentStatusWaiting indicates the agent is waiting for the token or a reply.
	AgentStatusWaiting AgentStatus = "waiting"
	// AgentStatusCompleted indicates the agent finished its participation.
	AgentStatusCompleted AgentStatus = "completed"
	// AgentStatusFailed indicates the agent encountered an error.
	AgentStatusFailed AgentStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentStatusIdle, AgentStatusWorking, AgentStatusWaiting,
		AgentStatusCompleted, AgentStatusFailed:
		return true
	default:
		return false
	}
}

// Specialization is an agent's functional category, used to route
// parsed tasks and to pick conversation partners.
type Specialization string

const (
	// SpecArchitect designs the system and leads conversations.
	SpecArchitect Specialization = "architect"
	// SpecFrontend builds user-facing components.
	SpecFrontend Specialization = "frontend"
	// SpecBackend builds APIs and services.
	SpecBackend Specialization = "backend"
	// SpecTesting writes and runs tests.
	SpecTesting Specialization = "testing"
	// SpecDevOps handles deployment and infrastructure.
	SpecDevOps Specialization = "devops"
)

// Valid returns true if the specialization is a known value.
func (s Specialization) Valid() bool {
	switch s {
	case SpecArchitect, SpecFrontend, SpecBackend, SpecTesting, SpecDevOps:
		return true
	default:
		return false
	}
}

// ResolveSpecialization maps free-text role hints to a Specialization.
// Matching is case-insensitive substring matching over a keyword table.
// Returns empty string if no keyword matches.
func ResolveSpecialization(text string) Specialization {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "front"):
		return SpecFrontend
	case strings.Contains(lower, "back"), strings.Contains(lower, "api"):
		return SpecBackend
	case strings.Contains(lower, "test"), strings.Contains(lower, "qa"):
		return SpecTesting
	case strings.Contains(lower, "deploy"), strings.Contains(lower, "devops"):
		return SpecDevOps
	case strings.Contains(lower, "arch"):
		return SpecArchitect
	default:
		return ""
	}
}

// Agent represents an autonomous project participant.
type Agent struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id"`
	// ProjectID is the project this agent belongs to.
	ProjectID string `json:"project_id"`
	// Name is the human-readable agent name.
	Name string `json:"name"`
	// Specialization is the agent's functional category.
	Specialization Specialization `json:"specialization"`
	// Status is the current state of the agent.
	Status AgentStatus `json:"status"`
	// UpdatedAt is when the status last changed. The liveness sweep
	// uses this to detect agents stuck in a working state.
	UpdatedAt time.Time `json:"updated_at"`
}

// IsLead returns true if this agent leads conversations. The architect
// gets a continuation bonus so design discussions run a little longer.
func (a *Agent) IsLead() bool {
	return a.Specialization == SpecArchitect
}
