// Package tui provides the live watch view for a running project: the
// agent roster on top, a scrolling event feed below.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/orchestrator"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// maxFeedEntries bounds the event feed held in memory.
const maxFeedEntries = 50

// AgentLister is the slice of the store the watch view reads.
type AgentLister interface {
	ListAgents(projectID string) ([]models.Agent, error)
}

// EventMsg wraps an orchestrator event for the update loop.
type EventMsg struct {
	Event orchestrator.Event
}

// eventsClosedMsg signals the orchestrator event stream has ended.
type eventsClosedMsg struct{}

// tickMsg drives the periodic roster refresh.
type tickMsg time.Time

// feedEntry is one rendered line of the event feed.
type feedEntry struct {
	at    time.Time
	kind  orchestrator.EventType
	text  string
	agent string
}

// App is the bubbletea model for the watch view.
type App struct {
	projectID string
	store     AgentLister
	events    <-chan orchestrator.Event
	refresh   time.Duration

	spinner spinner.Model
	agents  []models.Agent
	feed    []feedEntry

	width    int
	height   int
	quitting bool
	closed   bool
}

// New creates the watch view. The events channel is typically the
// orchestrator's Events() stream.
func New(projectID string, store AgentLister, events <-chan orchestrator.Event, refresh time.Duration) *App {
	if refresh <= 0 {
		refresh = 100 * time.Millisecond
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = spinnerStyle

	return &App{
		projectID: projectID,
		store:     store,
		events:    events,
		refresh:   refresh,
		spinner:   sp,
	}
}

// Run starts the bubbletea program and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.tick(), a.waitForEvent())
}

// tick schedules the next roster refresh.
func (a *App) tick() tea.Cmd {
	return tea.Tick(a.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForEvent blocks on the orchestrator event stream.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-a.events
		if !ok {
			return eventsClosedMsg{}
		}
		return EventMsg{Event: e}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			a.quitting = true
			return a, tea.Quit
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case tickMsg:
		a.reloadAgents()
		return a, a.tick()

	case EventMsg:
		a.appendEvent(msg.Event)
		return a, a.waitForEvent()

	case eventsClosedMsg:
		a.closed = true
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

// reloadAgents refreshes the roster from the store. Read failures keep
// the previous snapshot.
func (a *App) reloadAgents() {
	agents, err := a.store.ListAgents(a.projectID)
	if err != nil {
		return
	}
	a.agents = agents
}

// appendEvent adds an event to the feed, evicting the oldest entry
// once the feed is full.
func (a *App) appendEvent(e orchestrator.Event) {
	at := e.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	a.feed = append(a.feed, feedEntry{
		at:    at,
		kind:  e.Type,
		text:  e.Message,
		agent: e.AgentID,
	})
	if len(a.feed) > maxFeedEntries {
		a.feed = a.feed[len(a.feed)-maxFeedEntries:]
	}
}

// workingCount returns how many agents are mid-turn.
func (a *App) workingCount() int {
	n := 0
	for _, agent := range a.agents {
		if agent.Status == models.AgentStatusWorking {
			n++
		}
	}
	return n
}

// FeedLen returns the number of buffered feed entries.
func (a *App) FeedLen() int {
	return len(a.feed)
}

var _ tea.Model = (*App)(nil)

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}

func truncate(s string, max int) string {
	if max <= 3 || len(s) <= max {
		if len(s) > max && max >= 0 {
			return s[:max]
		}
		return s
	}
	return s[:max-3] + "..."
}

func eventLabel(t orchestrator.EventType) string {
	switch t {
	case orchestrator.EventAgentStatus:
		return "status"
	case orchestrator.EventTurnTaken:
		return "turn"
	case orchestrator.EventConversationDone:
		return "done"
	case orchestrator.EventTaskCreated:
		return "task"
	case orchestrator.EventDegraded:
		return "degraded"
	default:
		return string(t)
	}
}

func clockStamp(t time.Time) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
