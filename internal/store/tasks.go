package store

import (
	"database/sql"
	"fmt"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// CreateTask inserts a new task record.
func (db *DB) CreateTask(t *models.Task) error {
	var completedAt interface{}
	if t.CompletedAt != nil {
		completedAt = formatTime(*t.CompletedAt)
	}

	_, err := db.Exec(`
		INSERT INTO tasks (id, project_id, title, description, assigned_role, status, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ProjectID, t.Title, t.Description, string(t.AssignedRole), string(t.Status),
		formatTime(t.CreatedAt), completedAt)
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. Returns nil, nil when not found.
func (db *DB) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow(`
		SELECT id, project_id, title, description, assigned_role, status, created_at, completed_at
		FROM tasks WHERE id = ?
	`, id)

	t, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTask rewrites a task's mutable fields.
func (db *DB) UpdateTask(t *models.Task) error {
	var completedAt interface{}
	if t.CompletedAt != nil {
		completedAt = formatTime(*t.CompletedAt)
	}

	_, err := db.Exec(`
		UPDATE tasks SET title = ?, description = ?, assigned_role = ?, status = ?, completed_at = ?
		WHERE id = ?
	`, t.Title, t.Description, string(t.AssignedRole), string(t.Status), completedAt, t.ID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// ListTasks returns all tasks for a project, oldest first.
func (db *DB) ListTasks(projectID string) ([]models.Task, error) {
	rows, err := db.Query(`
		SELECT id, project_id, title, description, assigned_role, status, created_at, completed_at
		FROM tasks WHERE project_id = ? ORDER BY created_at
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func scanTask(scan func(dest ...interface{}) error) (*models.Task, error) {
	var t models.Task
	var createdAt string
	var completedAt sql.NullString
	err := scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &t.AssignedRole, &t.Status, &createdAt, &completedAt)
	if err != nil {
		return nil, err
	}
	t.CreatedAt, _ = parseTime(createdAt)
	if completedAt.Valid {
		ts, err := parseTime(completedAt.String)
		if err == nil {
			t.CompletedAt = &ts
		}
	}
	return &t, nil
}
