package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/store"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

var statusProjectID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project's agents and tasks",
	Long: `Display the current state of the project.

Shows:
  - Each agent with its role and status
  - Open and completed tasks
  - Recent system notices`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusProjectID, "project", "", "Project ID (defaults to the directory name)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	dbPath := store.ProjectDBPath(cwd)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No project database. Run 'crafters init' then 'crafters run' to start.")
		return nil
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	projectID := statusProjectID
	if projectID == "" {
		projectID = filepath.Base(cwd)
	}

	agents, err := db.ListAgents(projectID)
	if err != nil {
		return fmt.Errorf("list agents: %w", err)
	}
	if len(agents) == 0 {
		fmt.Printf("No agents for project %q yet.\n", projectID)
		return nil
	}

	fmt.Printf("Project: %s\n\nAgents:\n", projectID)
	for _, a := range agents {
		fmt.Printf("  %-12s %-10s %s  %s\n",
			a.Name, a.Specialization, statusColor(a.Status), agoString(a.UpdatedAt))
	}

	tasks, err := db.ListTasks(projectID)
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	fmt.Println()
	if len(tasks) == 0 {
		fmt.Println("Tasks: none")
	} else {
		open, done := 0, 0
		for _, t := range tasks {
			if t.Status == models.TaskStatusDone {
				done++
			} else {
				open++
			}
		}
		fmt.Printf("Tasks: %d open, %d done\n", open, done)
		for _, t := range tasks {
			marker := " "
			if t.Status == models.TaskStatusDone {
				marker = color.GreenString("✓")
			} else if t.Status == models.TaskStatusFailed {
				marker = color.RedString("✗")
			}
			role := ""
			if t.AssignedRole != "" {
				role = fmt.Sprintf(" [%s]", t.AssignedRole)
			}
			fmt.Printf("  %s %s%s\n", marker, t.Title, role)
		}
	}

	notices, err := db.ListMessagesFor(projectID, "system", 5)
	if err == nil && len(notices) > 0 {
		fmt.Println("\nRecent notices:")
		for _, n := range notices {
			fmt.Printf("  %s %s\n", n.Timestamp.Format("15:04:05"), n.Content)
		}
	}

	return nil
}

func statusColor(s models.AgentStatus) string {
	switch s {
	case models.AgentStatusWorking:
		return color.YellowString(string(s))
	case models.AgentStatusWaiting:
		return color.CyanString(string(s))
	case models.AgentStatusCompleted:
		return color.GreenString(string(s))
	case models.AgentStatusFailed:
		return color.RedString(string(s))
	default:
		return string(s)
	}
}

// agoString formats how long ago a timestamp was, coarsely.
func agoString(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}
