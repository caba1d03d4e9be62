package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/orchestrator"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	degradedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	statusStyles = map[models.AgentStatus]lipgloss.Style{
		models.AgentStatusIdle:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		models.AgentStatusWorking:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.AgentStatusWaiting:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		models.AgentStatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		models.AgentStatusFailed:    lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
)

// View implements tea.Model.
func (a *App) View() string {
	if a.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(a.viewHeader())
	b.WriteString("\n")
	b.WriteString(a.viewAgents())
	b.WriteString("\n")
	b.WriteString(a.viewFeed())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(" q: quit"))
	return b.String()
}

func (a *App) viewHeader() string {
	title := fmt.Sprintf("crafters watch  %s", a.projectID)
	if a.workingCount() > 0 {
		title = a.spinner.View() + " " + title
	}
	if a.closed {
		title += dimStyle.Render("  (orchestrator stopped)")
	}
	return headerStyle.Render(title)
}

func (a *App) viewAgents() string {
	if len(a.agents) == 0 {
		return panelStyle.Render(dimStyle.Render("No agents yet"))
	}

	var rows []string
	for _, agent := range a.agents {
		style, ok := statusStyles[agent.Status]
		if !ok {
			style = dimStyle
		}
		rows = append(rows, fmt.Sprintf("%-12s %-10s %s",
			truncate(agent.Name, 12),
			agent.Specialization,
			style.Render(string(agent.Status))))
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}

func (a *App) viewFeed() string {
	if len(a.feed) == 0 {
		return panelStyle.Render(dimStyle.Render("Waiting for activity..."))
	}

	// Newest entries at the bottom; show what fits.
	visible := a.feed
	maxLines := a.height - len(a.agents) - 8
	if maxLines > 0 && len(visible) > maxLines {
		visible = visible[len(visible)-maxLines:]
	}

	var rows []string
	for _, e := range visible {
		line := fmt.Sprintf("%s %-8s %s",
			dimStyle.Render(clockStamp(e.at)),
			eventLabel(e.kind),
			truncate(firstLine(e.text), 80))
		if e.kind == orchestrator.EventDegraded {
			line = degradedStyle.Render(line)
		}
		rows = append(rows, line)
	}
	return panelStyle.Render(strings.Join(rows, "\n"))
}
