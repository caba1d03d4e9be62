// Package team loads the project roster that defines which agents a
// run starts with.
package team

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/spotty118/collaborative-ai-crafters-sub000/internal/store"
	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// RosterFile is the roster filename inside a project's .crafters
// directory.
const RosterFile = "team.yaml"

// Member is one roster entry.
type Member struct {
	// Name is the agent's display name.
	Name string `yaml:"name"`
	// Specialization is the agent's role.
	Specialization string `yaml:"specialization"`
}

// Roster is the parsed team file.
type Roster struct {
	Members []Member `yaml:"members"`
}

// DefaultRoster is used when a project has no team file.
func DefaultRoster() *Roster {
	return &Roster{Members: []Member{
		{Name: "Ada", Specialization: string(models.SpecArchitect)},
		{Name: "Ben", Specialization: string(models.SpecBackend)},
		{Name: "Fey", Specialization: string(models.SpecFrontend)},
	}}
}

// Load reads the roster for a project root, falling back to
// DefaultRoster when no team file exists.
func Load(projectRoot string) (*Roster, error) {
	path := filepath.Join(projectRoot, ".crafters", RosterFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRoster(), nil
		}
		return nil, fmt.Errorf("reading roster: %w", err)
	}

	roster := &Roster{}
	if err := yaml.Unmarshal(data, roster); err != nil {
		return nil, fmt.Errorf("parsing roster %s: %w", path, err)
	}
	if err := roster.Validate(); err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return roster, nil
}

// Save writes the roster to a project's .crafters directory.
func Save(projectRoot string, roster *Roster) error {
	if err := roster.Validate(); err != nil {
		return err
	}

	dir := filepath.Join(projectRoot, ".crafters")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}

	data, err := yaml.Marshal(roster)
	if err != nil {
		return fmt.Errorf("encoding roster: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, RosterFile), data, 0644)
}

// Validate checks the roster is usable: at least two members, valid
// roles, unique names, and exactly one architect.
func (r *Roster) Validate() error {
	if len(r.Members) < 2 {
		return fmt.Errorf("roster needs at least 2 members, has %d", len(r.Members))
	}

	seen := make(map[string]bool)
	architects := 0
	for _, m := range r.Members {
		if m.Name == "" {
			return fmt.Errorf("roster member is missing a name")
		}
		if seen[m.Name] {
			return fmt.Errorf("duplicate roster member %q", m.Name)
		}
		seen[m.Name] = true

		spec := models.Specialization(m.Specialization)
		if !spec.Valid() {
			return fmt.Errorf("member %q has unknown specialization %q", m.Name, m.Specialization)
		}
		if spec == models.SpecArchitect {
			architects++
		}
	}
	if architects != 1 {
		return fmt.Errorf("roster needs exactly one architect, has %d", architects)
	}
	return nil
}

// Seed ensures every roster member has a persisted agent record,
// creating missing ones as idle. Existing agents are matched by name
// and left untouched. It returns all agents for the project.
func Seed(s store.Store, projectID string, roster *Roster) ([]models.Agent, error) {
	existing, err := s.ListAgents(projectID)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	byName := make(map[string]bool, len(existing))
	for _, a := range existing {
		byName[a.Name] = true
	}

	for _, m := range roster.Members {
		if byName[m.Name] {
			continue
		}
		agent := &models.Agent{
			ID:             uuid.NewString(),
			ProjectID:      projectID,
			Name:           m.Name,
			Specialization: models.Specialization(m.Specialization),
			Status:         models.AgentStatusIdle,
			UpdatedAt:      time.Now(),
		}
		if err := s.CreateAgent(agent); err != nil {
			return nil, fmt.Errorf("creating agent %q: %w", m.Name, err)
		}
	}

	return s.ListAgents(projectID)
}
