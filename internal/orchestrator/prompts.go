package orchestrator

import (
	"fmt"
	"strings"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// bootstrapPrompt asks the completion service for an initial task
// breakdown the task parser understands.
func bootstrapPrompt(agents []models.Agent) string {
	var b strings.Builder

	b.WriteString("You are planning the first iteration of a software project. ")
	b.WriteString("The team consists of:\n")
	if len(agents) == 0 {
		b.WriteString("- (no agents registered yet)\n")
	}
	for _, a := range agents {
		fmt.Fprintf(&b, "- %s (%s)\n", a.Name, a.Specialization)
	}

	b.WriteString("\nList 3 to 6 concrete starter tasks, one per line, numbered like:\n")
	b.WriteString("1. Task title\n")
	b.WriteString("Assigned to: <role>\n")
	b.WriteString("A short description.\n")
	b.WriteString("Expected outcome: what done looks like\n\n")
	b.WriteString("Roles must be one of: architect, frontend, backend, testing, devops.")

	return b.String()
}
