package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/team"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Initialize a crafters project",
	Long: `Initialize a directory for use with crafters.

This command sets up everything needed to run a team:
  - Creates the .crafters directory
  - Writes a default team roster (team.yaml)
  - Writes a .crafters.yaml config template
  - Checks that an Anthropic API key is available

The directory argument is optional and defaults to the current directory.

Examples:
  crafters init              # Initialize current directory
  crafters init ./myproject  # Initialize specific directory
  crafters init --force      # Overwrite an existing roster`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing roster and config template")
}

func runInit(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}

	craftersDir := filepath.Join(root, ".crafters")
	if err := os.MkdirAll(craftersDir, 0755); err != nil {
		return fmt.Errorf("create %s: %w", craftersDir, err)
	}
	printStatus("✓", "Created .crafters directory", color.FgGreen)

	rosterPath := filepath.Join(craftersDir, team.RosterFile)
	if _, err := os.Stat(rosterPath); os.IsNotExist(err) || initForce {
		if err := team.Save(root, team.DefaultRoster()); err != nil {
			return fmt.Errorf("write roster: %w", err)
		}
		printStatus("✓", "Wrote default team roster", color.FgGreen)
	} else {
		printStatus("✓", "Team roster exists", color.FgGreen)
	}

	configPath := filepath.Join(root, ".crafters.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) || initForce {
		if err := os.WriteFile(configPath, []byte(configTemplate), 0644); err != nil {
			return fmt.Errorf("write config template: %w", err)
		}
		printStatus("✓", "Created .crafters.yaml template", color.FgGreen)
	} else {
		printStatus("✓", ".crafters.yaml exists", color.FgGreen)
	}

	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		printStatus("⚠", "ANTHROPIC_API_KEY not set (you can set it later)", color.FgYellow)
	} else {
		printStatus("✓", "ANTHROPIC_API_KEY is set", color.FgGreen)
	}

	fmt.Printf("\n%s Project initialized. Run 'crafters run' to start the team.\n", color.GreenString("✓"))
	return nil
}

func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Printf("  %s %s\n", c.Sprint(symbol), message)
}

const configTemplate = `# crafters project configuration.
# Values here override ~/.config/crafters/config.yaml.

anthropic:
  # api_key: ${ANTHROPIC_API_KEY}
  # model: claude-sonnet-4-20250514

bus:
  # Base URL of a remote message service. Empty keeps delivery local.
  # remote_url: http://localhost:9090
  # poll_interval: 5s

orchestrator:
  # turn_delay: 3s
  # stall_timeout: 30s
`
