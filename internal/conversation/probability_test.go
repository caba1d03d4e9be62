package conversation

import (
	"math/rand"
	"testing"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

func TestContinueProbabilityCurve(t *testing.T) {
	tests := []struct {
		name      string
		turnCount int
		role      models.Specialization
		last      string
		want      float64
	}{
		{"early turn", 1, models.SpecBackend, "plain statement", 0.9},
		{"turn three boundary", 3, models.SpecBackend, "plain", 0.9},
		{"mid conversation", 5, models.SpecBackend, "plain", 0.7},
		{"turn six boundary", 6, models.SpecBackend, "plain", 0.7},
		{"late conversation", 8, models.SpecBackend, "plain", 0.4},
		{"question bonus", 8, models.SpecBackend, "what about this?", 0.55},
		{"lead bonus", 8, models.SpecArchitect, "plain", 0.5},
		{"both bonuses", 8, models.SpecArchitect, "shall we?", 0.65},
		{"clamped at one", 1, models.SpecArchitect, "really?", 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ContinueProbability(tt.turnCount, tt.role, tt.last)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("ContinueProbability(%d, %q, %q) = %v, want %v",
					tt.turnCount, tt.role, tt.last, got, tt.want)
			}
		})
	}
}

func TestContinueProbabilityIsPure(t *testing.T) {
	a := ContinueProbability(4, models.SpecTesting, "hmm")
	b := ContinueProbability(4, models.SpecTesting, "hmm")
	if a != b {
		t.Errorf("pure function returned %v then %v", a, b)
	}
}

func TestSeededTerminationIsReproducible(t *testing.T) {
	// Two generators with the same seed make identical continuation
	// decisions against the same probability sequence.
	decide := func(seed int64) []bool {
		rng := rand.New(rand.NewSource(seed))
		var out []bool
		for turn := 1; turn < MaxTurns; turn++ {
			p := ContinueProbability(turn, models.SpecBackend, "working on it")
			out = append(out, rng.Float64() < p)
		}
		return out
	}

	a := decide(7)
	b := decide(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("decision %d diverged with identical seeds", i)
		}
	}
}
