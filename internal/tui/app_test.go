package tui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/orchestrator"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

type stubLister struct {
	agents []models.Agent
	err    error
}

func (s *stubLister) ListAgents(projectID string) ([]models.Agent, error) {
	return s.agents, s.err
}

func testApp(lister *stubLister) (*App, chan orchestrator.Event) {
	events := make(chan orchestrator.Event, 8)
	return New("proj-1", lister, events, time.Millisecond), events
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []string{"q", "ctrl+c", "esc"} {
		a, _ := testApp(&stubLister{})
		var msg tea.KeyMsg
		switch key {
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
		}

		model, cmd := a.Update(msg)
		if cmd == nil {
			t.Errorf("key %q should produce a quit command", key)
		}
		if !model.(*App).quitting {
			t.Errorf("key %q should set quitting", key)
		}
	}
}

func TestTickReloadsAgents(t *testing.T) {
	lister := &stubLister{agents: []models.Agent{
		{ID: "a-1", Name: "Ada", Specialization: models.SpecArchitect, Status: models.AgentStatusWorking},
	}}
	a, _ := testApp(lister)

	model, cmd := a.Update(tickMsg(time.Now()))
	a = model.(*App)
	if cmd == nil {
		t.Error("tick should reschedule itself")
	}
	if len(a.agents) != 1 || a.agents[0].Name != "Ada" {
		t.Errorf("agents = %+v", a.agents)
	}
	if a.workingCount() != 1 {
		t.Errorf("workingCount = %d, want 1", a.workingCount())
	}
}

func TestTickKeepsSnapshotOnStoreError(t *testing.T) {
	lister := &stubLister{agents: []models.Agent{{ID: "a-1", Name: "Ada"}}}
	a, _ := testApp(lister)
	a.Update(tickMsg(time.Now()))

	lister.err = fmt.Errorf("database locked")
	lister.agents = nil
	a.Update(tickMsg(time.Now()))

	if len(a.agents) != 1 {
		t.Errorf("agents = %+v, want previous snapshot kept", a.agents)
	}
}

func TestEventFeedIsBounded(t *testing.T) {
	a, _ := testApp(&stubLister{})

	for i := 0; i < maxFeedEntries+20; i++ {
		a.appendEvent(orchestrator.Event{
			Type:    orchestrator.EventTurnTaken,
			Message: fmt.Sprintf("turn %d", i),
		})
	}

	if a.FeedLen() != maxFeedEntries {
		t.Fatalf("feed length = %d, want %d", a.FeedLen(), maxFeedEntries)
	}
	if got := a.feed[len(a.feed)-1].text; got != fmt.Sprintf("turn %d", maxFeedEntries+19) {
		t.Errorf("newest entry = %q", got)
	}
	if got := a.feed[0].text; got != "turn 20" {
		t.Errorf("oldest entry = %q, want turn 20 after eviction", got)
	}
}

func TestEventMsgRearmsWait(t *testing.T) {
	a, events := testApp(&stubLister{})
	events <- orchestrator.Event{Type: orchestrator.EventTaskCreated, Message: "New task"}

	model, cmd := a.Update(EventMsg{Event: orchestrator.Event{Type: orchestrator.EventTaskCreated, Message: "New task"}})
	a = model.(*App)
	if cmd == nil {
		t.Error("EventMsg should re-arm the event wait")
	}
	if a.FeedLen() != 1 {
		t.Errorf("feed length = %d, want 1", a.FeedLen())
	}
}

func TestClosedStreamStopsWaiting(t *testing.T) {
	a, _ := testApp(&stubLister{})
	model, cmd := a.Update(eventsClosedMsg{})
	a = model.(*App)
	if cmd != nil {
		t.Error("closed stream should not re-arm the wait")
	}
	if !a.closed {
		t.Error("closed flag should be set")
	}
}

func TestViewShowsRosterAndFeed(t *testing.T) {
	lister := &stubLister{agents: []models.Agent{
		{ID: "a-1", Name: "Ada", Specialization: models.SpecArchitect, Status: models.AgentStatusWaiting},
		{ID: "a-2", Name: "Ben", Specialization: models.SpecBackend, Status: models.AgentStatusFailed},
	}}
	a, _ := testApp(lister)
	a.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	a.Update(tickMsg(time.Now()))
	a.appendEvent(orchestrator.Event{Type: orchestrator.EventDegraded, Message: "Collaborator unavailable"})

	view := a.View()
	for _, want := range []string{"Ada", "Ben", "degraded", "Collaborator unavailable", "proj-1"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a longer message that must shrink", 10, "a longe..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
