package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/spf13/cobra"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/api"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/bus"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/config"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/orchestrator"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/store"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/team"
	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/tui"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

var (
	runProjectID string
	runHeadless  bool
	runRemoteURL string
	runDebugLog  string
	runAgents    []string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the agent team",
	Long: `Start the project's agent team.

Loads the roster from .crafters/team.yaml, seeds agent records in the
project database, and starts each agent. Agents greet the team, the
architect bootstraps the initial task list, and conversations proceed
turn by turn under the shared speaking token.

By default a live watch view opens; use --headless to log to stderr
instead.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runProjectID, "project", "", "Project ID (defaults to the directory name)")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Run without the watch view")
	runCmd.Flags().StringVar(&runRemoteURL, "remote", "", "Remote message service URL (overrides config)")
	runCmd.Flags().StringVar(&runDebugLog, "debug-log", "", "Write debug output to this file")
	runCmd.Flags().StringSliceVar(&runAgents, "agents", nil, "Start only the named agents")
}

func runRun(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	projectID := runProjectID
	if projectID == "" {
		projectID = filepath.Base(cwd)
	}

	db, err := store.OpenProject(cwd)
	if err != nil {
		return fmt.Errorf("open project database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	roster, err := team.Load(cwd)
	if err != nil {
		return err
	}
	agents, err := team.Seed(db, projectID, roster)
	if err != nil {
		return err
	}

	clientCfg := api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		MaxTokens:     int64(cfg.Anthropic.MaxTokens),
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	}
	if !cfg.Anthropic.UseAWSBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			return fmt.Errorf("%w\n\nSet ANTHROPIC_API_KEY or run 'crafters config anthropic.api_key <key>'", err)
		}
		clientCfg.APIKey = key
	}
	client, err := api.NewClient(clientCfg)
	if err != nil {
		return fmt.Errorf("create API client: %w", err)
	}

	remoteURL := cfg.Bus.RemoteURL
	if runRemoteURL != "" {
		remoteURL = runRemoteURL
	}
	fallback := bus.NewStoreTransport(db)
	var primary bus.Transport = fallback
	if remoteURL != "" {
		primary = bus.NewHTTPTransport(remoteURL)
	}
	mb := bus.New(projectID, primary, fallback,
		bus.WithPollInterval(cfg.Bus.PollInterval),
		bus.WithCacheSize(cfg.Bus.CacheSize))
	defer mb.Close()

	orch, err := orchestrator.New(orchestrator.Config{
		ProjectID:        projectID,
		Store:            db,
		Completer:        client,
		Bus:              mb,
		DebugLogPath:     runDebugLog,
		TurnDelay:        cfg.Orchestrator.TurnDelay,
		StallTimeout:     cfg.Orchestrator.StallTimeout,
		LivenessInterval: cfg.Orchestrator.LivenessInterval,
	})
	if err != nil {
		return fmt.Errorf("create orchestrator: %w", err)
	}
	defer orch.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orch.Run(ctx)

	if runHeadless {
		// System-addressed messages carry degraded-mode notices. The
		// watch view surfaces these through the event stream instead.
		unsubscribe := mb.Subscribe(bus.SystemRecipient, func(m *models.Message) {
			log.Printf("[system] %s", m.Content)
		})
		defer unsubscribe()
	}

	selected := selectAgents(agents, runAgents)
	if len(selected) == 0 {
		return fmt.Errorf("no agents to start")
	}
	for _, a := range selected {
		if err := orch.StartAgent(ctx, a.ID); err != nil {
			log.Printf("[run] start %s: %v", a.Name, err)
		}
	}

	if runHeadless {
		fmt.Printf("Team running with %d agents. Ctrl-C to stop.\n", len(selected))
		<-ctx.Done()
		return nil
	}

	return tui.New(projectID, db, orch.Events(), cfg.TUI.RefreshRate).Run()
}

// selectAgents filters the roster to the requested names, or returns
// everyone when no filter is set.
func selectAgents(agents []models.Agent, names []string) []models.Agent {
	if len(names) == 0 {
		return agents
	}
	wanted := make(map[string]bool, len(names))
	for _, n := range names {
		wanted[n] = true
	}
	var out []models.Agent
	for _, a := range agents {
		if wanted[a.Name] {
			out = append(out, a)
		}
	}
	return out
}
