package team

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/store"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

func writeRoster(t *testing.T, root, content string) {
	t.Helper()
	dir := filepath.Join(root, ".crafters")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, RosterFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingFileUsesDefault(t *testing.T) {
	roster, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(roster.Members) != 3 {
		t.Errorf("default roster has %d members, want 3", len(roster.Members))
	}
	if roster.Members[0].Specialization != string(models.SpecArchitect) {
		t.Errorf("first default member is %q, want architect", roster.Members[0].Specialization)
	}
}

func TestLoadParsesRoster(t *testing.T) {
	root := t.TempDir()
	writeRoster(t, root, `
members:
  - name: Ada
    specialization: architect
  - name: Tess
    specialization: testing
`)

	roster, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(roster.Members) != 2 {
		t.Fatalf("got %d members, want 2", len(roster.Members))
	}
	if roster.Members[1].Name != "Tess" || roster.Members[1].Specialization != "testing" {
		t.Errorf("second member = %+v", roster.Members[1])
	}
}

func TestLoadRejectsInvalidRoster(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"too few members", "members:\n  - name: Ada\n    specialization: architect\n"},
		{"unknown role", "members:\n  - name: Ada\n    specialization: architect\n  - name: Bob\n    specialization: wizard\n"},
		{"duplicate name", "members:\n  - name: Ada\n    specialization: architect\n  - name: Ada\n    specialization: backend\n"},
		{"no architect", "members:\n  - name: Ben\n    specialization: backend\n  - name: Fey\n    specialization: frontend\n"},
		{"two architects", "members:\n  - name: Ada\n    specialization: architect\n  - name: Al\n    specialization: architect\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			writeRoster(t, root, tt.content)
			if _, err := Load(root); err == nil {
				t.Error("Load should reject the roster")
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	roster := DefaultRoster()

	if err := Save(root, roster); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded.Members) != len(roster.Members) {
		t.Fatalf("got %d members, want %d", len(loaded.Members), len(roster.Members))
	}
	for i := range roster.Members {
		if loaded.Members[i] != roster.Members[i] {
			t.Errorf("member %d = %+v, want %+v", i, loaded.Members[i], roster.Members[i])
		}
	}
}

func TestSeedCreatesMissingAgents(t *testing.T) {
	db, err := store.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	roster := DefaultRoster()
	agents, err := Seed(db, "proj-1", roster)
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	if len(agents) != 3 {
		t.Fatalf("got %d agents, want 3", len(agents))
	}
	for _, a := range agents {
		if a.Status != models.AgentStatusIdle {
			t.Errorf("agent %s status = %q, want idle", a.Name, a.Status)
		}
	}

	// Seeding again is idempotent.
	again, err := Seed(db, "proj-1", roster)
	if err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	if len(again) != 3 {
		t.Errorf("after reseed got %d agents, want 3", len(again))
	}
}
