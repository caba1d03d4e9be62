package taskparse

import (
	"strings"
	"testing"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

func TestParseNumberedTasks(t *testing.T) {
	p := NewParser()
	text := "1. Build login page\n" +
		"Assigned to: frontend\n" +
		"Create the login form with validation.\n" +
		"Expected outcome: working login page\n" +
		"2. Create auth API\n" +
		"Assigned to: backend\n" +
		"Implement token-based auth endpoints."

	tasks := p.Parse(text, false)
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}

	if tasks[0].Title != "Build login page" {
		t.Errorf("title = %q", tasks[0].Title)
	}
	if tasks[0].AssignedRole != models.SpecFrontend {
		t.Errorf("role = %q, want frontend", tasks[0].AssignedRole)
	}
	if !strings.Contains(tasks[0].Description, "Expected outcome: working login page") {
		t.Errorf("description should keep the expected-outcome line, got %q", tasks[0].Description)
	}
	if tasks[1].AssignedRole != models.SpecBackend {
		t.Errorf("role = %q, want backend", tasks[1].AssignedRole)
	}
}

func TestParseTaskPrefixAndBullets(t *testing.T) {
	p := NewParser()
	text := "Task 1: Set up CI pipeline\n" +
		"Assigned to: devops\n" +
		"- Write integration tests\n" +
		"Assigned to: qa\n" +
		"* Design database schema\n" +
		"Assigned to: architect"

	tasks := p.Parse(text, false)
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}

	wantRoles := []models.Specialization{models.SpecDevOps, models.SpecTesting, models.SpecArchitect}
	wantTitles := []string{"Set up CI pipeline", "Write integration tests", "Design database schema"}
	for i, task := range tasks {
		if task.Title != wantTitles[i] {
			t.Errorf("task %d title = %q, want %q", i, task.Title, wantTitles[i])
		}
		if task.AssignedRole != wantRoles[i] {
			t.Errorf("task %d role = %q, want %q", i, task.AssignedRole, wantRoles[i])
		}
	}
}

func TestParseDuplicateTitleDropped(t *testing.T) {
	p := NewParser()
	text := "1. Fix login bug\n" +
		"Assigned to: backend\n" +
		"2. Fix login bug\n" +
		"Assigned to: frontend"

	tasks := p.Parse(text, true)
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Title != "Fix login bug" {
		t.Errorf("title = %q", tasks[0].Title)
	}
	// The first occurrence wins, so the role is backend.
	if tasks[0].AssignedRole != models.SpecBackend {
		t.Errorf("role = %q, want backend", tasks[0].AssignedRole)
	}
}

func TestParseDedupAcrossCalls(t *testing.T) {
	p := NewParser()

	first := p.Parse("1. Add search feature", false)
	if len(first) != 1 {
		t.Fatalf("first call: got %d tasks, want 1", len(first))
	}

	// Normalized form matches despite punctuation and case.
	second := p.Parse("1. Add Search Feature!", false)
	if len(second) != 0 {
		t.Fatalf("second call: got %d tasks, want 0", len(second))
	}

	p.Reset()
	third := p.Parse("1. Add search feature", false)
	if len(third) != 1 {
		t.Fatalf("after Reset: got %d tasks, want 1", len(third))
	}
}

func TestParseConciseDescription(t *testing.T) {
	p := NewParser()
	text := "1. Build dashboard\n" +
		"Assigned to: frontend\n" +
		"A very long rambling description that should not survive concise mode."

	tasks := p.Parse(text, true)
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	want := "Implementation task for the frontend specialist."
	if tasks[0].Description != want {
		t.Errorf("description = %q, want %q", tasks[0].Description, want)
	}
}

func TestParseNoMarkersYieldsEmpty(t *testing.T) {
	p := NewParser()
	tasks := p.Parse("Just some prose about the project.\nNothing actionable here.", false)
	if len(tasks) != 0 {
		t.Errorf("got %d tasks, want 0", len(tasks))
	}

	tasks = p.Parse("", false)
	if len(tasks) != 0 {
		t.Errorf("empty input: got %d tasks, want 0", len(tasks))
	}
}

func TestAssignedToOnlyParsedBeforeExpectedOutcome(t *testing.T) {
	p := NewParser()
	text := "1. Write docs\n" +
		"Expected outcome: complete docs\n" +
		"Assigned to: backend"

	tasks := p.Parse(text, false)
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].AssignedRole != "" {
		t.Errorf("role = %q, want empty: assignment lines after expected outcome are prose", tasks[0].AssignedRole)
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Fix Login Bug", "fix login bug"},
		{"fix login bug!!!", "fix login bug"},
		{"  Fix   login	bug  ", "fix login bug"},
		{"---", ""},
	}
	for _, tt := range tests {
		if got := NormalizeTitle(tt.in); got != tt.want {
			t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
