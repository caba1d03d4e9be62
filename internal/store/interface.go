package store

import (
	"io"
	"time"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// AgentStore handles agent persistence.
type AgentStore interface {
	CreateAgent(a *models.Agent) error
	GetAgent(id string) (*models.Agent, error)
	UpdateAgentStatus(id string, status models.AgentStatus, updatedAt time.Time) error
	ListAgents(projectID string) ([]models.Agent, error)
}

// MessageStore handles message persistence.
type MessageStore interface {
	CreateMessage(m *models.Message) error
	ListMessagesFor(projectID, recipient string, limit int) ([]models.Message, error)
}

// TaskStore handles task persistence.
type TaskStore interface {
	CreateTask(t *models.Task) error
	GetTask(id string) (*models.Task, error)
	UpdateTask(t *models.Task) error
	ListTasks(projectID string) ([]models.Task, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// Store is the durable collaborator interface the core depends on.
// It composes focused sub-interfaces so components can declare only
// what they use; the concrete SQLite implementation satisfies all.
type Store interface {
	io.Closer
	Migrator
	AgentStore
	MessageStore
	TaskStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ Store        = (*DB)(nil)
	_ AgentStore   = (*DB)(nil)
	_ MessageStore = (*DB)(nil)
	_ TaskStore    = (*DB)(nil)
)
