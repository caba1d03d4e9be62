package store

import (
	"encoding/json"
	"fmt"

	"github.com/spotty118/collaborative-ai-crafters-sub000/pkg/models"
)

// CreateMessage inserts a message record. Metadata is stored as JSON.
func (db *DB) CreateMessage(m *models.Message) error {
	var metadata []byte
	if len(m.Metadata) > 0 {
		var err error
		metadata, err = json.Marshal(m.Metadata)
		if err != nil {
			return fmt.Errorf("marshal message metadata: %w", err)
		}
	}

	_, err := db.Exec(`
		INSERT INTO messages (id, project_id, sender, recipient, content, type, timestamp, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, m.ID, m.ProjectID, m.From, m.To, m.Content, string(m.Type), formatTime(m.Timestamp), nullable(metadata))
	if err != nil {
		return fmt.Errorf("create message: %w", err)
	}
	return nil
}

// ListMessagesFor returns the most recent messages addressed to the
// recipient, newest last, capped at limit. The bus polling loop uses
// this to pick up messages written by other processes.
func (db *DB) ListMessagesFor(projectID, recipient string, limit int) ([]models.Message, error) {
	rows, err := db.Query(`
		SELECT id, project_id, sender, recipient, content, type, timestamp, metadata
		FROM messages
		WHERE project_id = ? AND recipient = ?
		ORDER BY timestamp DESC LIMIT ?
	`, projectID, recipient, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.Message
	for rows.Next() {
		var m models.Message
		var ts string
		var metadata []byte
		if err := rows.Scan(&m.ID, &m.ProjectID, &m.From, &m.To, &m.Content, &m.Type, &ts, &metadata); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Timestamp, _ = parseTime(ts)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &m.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal message metadata: %w", err)
			}
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to oldest-first so callers see arrival order.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// nullable converts an empty byte slice to nil so the column stores NULL.
func nullable(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
