package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// CreateAgent inserts a new agent record.
func (db *DB) CreateAgent(a *models.Agent) error {
	_, err := db.Exec(`
		INSERT INTO agents (id, project_id, name, specialization, status, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ID, a.ProjectID, a.Name, string(a.Specialization), string(a.Status), formatTime(a.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create agent: %w", err)
	}
	return nil
}

// GetAgent retrieves an agent by ID. Returns nil, nil when not found.
func (db *DB) GetAgent(id string) (*models.Agent, error) {
	row := db.QueryRow(`
		SELECT id, project_id, name, specialization, status, updated_at
		FROM agents WHERE id = ?
	`, id)
	return scanAgent(row)
}

// UpdateAgentStatus sets the agent's status and stamps updated_at.
func (db *DB) UpdateAgentStatus(id string, status models.AgentStatus, updatedAt time.Time) error {
	res, err := db.Exec(`
		UPDATE agents SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), formatTime(updatedAt), id)
	if err != nil {
		return fmt.Errorf("update agent status: %w", err)
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("update agent status: agent %s not found", id)
	}
	return nil
}

// ListAgents returns all agents for a project.
func (db *DB) ListAgents(projectID string) ([]models.Agent, error) {
	rows, err := db.Query(`
		SELECT id, project_id, name, specialization, status, updated_at
		FROM agents WHERE project_id = ? ORDER BY name
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list agents: %w", err)
	}
	defer rows.Close()

	var agents []models.Agent
	for rows.Next() {
		var a models.Agent
		var updatedAt string
		if err := rows.Scan(&a.ID, &a.ProjectID, &a.Name, &a.Specialization, &a.Status, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan agent: %w", err)
		}
		a.UpdatedAt, _ = parseTime(updatedAt)
		agents = append(agents, a)
	}
	return agents, rows.Err()
}

func scanAgent(row *sql.Row) (*models.Agent, error) {
	var a models.Agent
	var updatedAt string
	err := row.Scan(&a.ID, &a.ProjectID, &a.Name, &a.Specialization, &a.Status, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get agent: %w", err)
	}
	a.UpdatedAt, _ = parseTime(updatedAt)
	return &a, nil
}
