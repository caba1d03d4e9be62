package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "crafters",
	Short: "Multi-agent project coordination",
	Long: `Crafters coordinates a team of AI specialist agents on a project.

Agents take turns in rate-limited conversations, exchange messages over
a durable bus, and work from a task list bootstrapped by the architect.

Core capabilities:
- Single speaking token shared by the whole team
- Conversations that resume instead of duplicating
- Project analysis turned into assignable tasks
- Local SQLite state with optional remote message delivery`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
