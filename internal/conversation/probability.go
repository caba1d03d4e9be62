package conversation

import (
	"strings"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// Continuation bonuses. A trailing question invites an answer, and the
// architect gets extra room to finish design discussions.
const (
	questionBonus = 0.15
	leadBonus     = 0.10
)

// ContinueProbability returns the likelihood that a conversation
// continues after a completed turn. It is a pure function of the turn
// count, the speaker's role, and the last message, so termination
// behavior is reproducible with a seeded random source. The hard cap
// at 10 turns is enforced by the manager before this is consulted.
func ContinueProbability(turnCount int, role models.Specialization, lastMessage string) float64 {
	var p float64
	switch {
	case turnCount <= 3:
		p = 0.9
	case turnCount <= 6:
		p = 0.7
	default:
		p = 0.4
	}

	if strings.Contains(lastMessage, "?") {
		p += questionBonus
	}
	if role == models.SpecArchitect {
		p += leadBonus
	}

	if p > 1 {
		p = 1
	}
	if p < 0 {
		p = 0
	}
	return p
}
