// Package conversation tracks turn-based exchanges between agents and
// decides when they continue or end.
package conversation

import (
	"fmt"
	"time"
)

// Status represents the lifecycle state of a conversation.
type Status string

const (
	// StatusActive indicates the conversation can still take turns.
	StatusActive Status = "active"
	// StatusCompleted indicates the conversation ended normally.
	StatusCompleted Status = "completed"
	// StatusFailed indicates an error ended the conversation.
	StatusFailed Status = "failed"
)

// Terminal returns true for states with no outgoing transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// State is the tracked state of one conversation. States live in
// memory only; they are not persisted and do not survive a restart.
type State struct {
	// ID is the unique conversation identifier.
	ID string
	// Participants are the agent IDs in speaking order. Turn
	// alternation is participants[TurnCount mod len(participants)].
	Participants []string
	// LastMessage is the most recent turn's text.
	LastMessage string
	// TurnCount is the number of completed turns. It increases by
	// exactly 1 per completed turn and never otherwise.
	TurnCount int
	// Status is the lifecycle state.
	Status Status
	// Priority orders the resume sweep; higher resumes first.
	Priority int
	// InitiatedAt is when the conversation was created or reused.
	InitiatedAt time.Time
	// EndedAt is when the conversation reached a terminal status. Zero
	// while active. Terminal states are evicted from the table once
	// EndedAt falls outside the freshness window.
	EndedAt time.Time
}

// Validate checks structural invariants. A conversation that fails
// validation is forced to failed and never retried.
func (s *State) Validate() error {
	if len(s.Participants) < 2 {
		return fmt.Errorf("conversation %s: %d participants, need at least 2", s.ID, len(s.Participants))
	}
	if s.TurnCount < 0 {
		return fmt.Errorf("conversation %s: negative turn count %d", s.ID, s.TurnCount)
	}
	if s.InitiatedAt.IsZero() {
		return fmt.Errorf("conversation %s: missing initiation timestamp", s.ID)
	}
	return nil
}

// CurrentSpeaker returns the agent whose turn it is.
func (s *State) CurrentSpeaker() string {
	return s.Participants[s.TurnCount%len(s.Participants)]
}

// SamePair reports whether the conversation is between the given
// unordered pair of agents.
func (s *State) SamePair(a, b string) bool {
	if len(s.Participants) != 2 {
		return false
	}
	p0, p1 := s.Participants[0], s.Participants[1]
	return (p0 == a && p1 == b) || (p0 == b && p1 == a)
}
