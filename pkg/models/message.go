package models

import "time"

// MessageType identifies the kind of inter-agent message.
type MessageType string

const (
	// MessageTypeRequest asks another agent to do or answer something.
	MessageTypeRequest MessageType = "request"
	// MessageTypeResponse answers a prior request.
	MessageTypeResponse MessageType = "response"
	// MessageTypeUpdate carries a status change.
	MessageTypeUpdate MessageType = "update"
	// MessageTypeNotification is informational, no reply expected.
	MessageTypeNotification MessageType = "notification"
	// MessageTypeTask assigns or describes a work item.
	MessageTypeTask MessageType = "task"
	// MessageTypeProgress reports work progress; also delivered to
	// system subscribers for the activity feed.
	MessageTypeProgress MessageType = "progress"
)

// Valid returns true if the type is a known value.
func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeRequest, MessageTypeResponse, MessageTypeUpdate,
		MessageTypeNotification, MessageTypeTask, MessageTypeProgress:
		return true
	default:
		return false
	}
}

// Message is a single communication unit between agents. Messages are
// transient: the bus caches the most recent ones per recipient and the
// durable store keeps the full history for the UI.
type Message struct {
	// ID is the unique identifier, assigned by the bus on publish.
	ID string `json:"id"`
	// ProjectID is the project this message belongs to.
	ProjectID string `json:"project_id"`
	// From is the sender agent ID.
	From string `json:"from"`
	// To is the recipient agent ID.
	To string `json:"to"`
	// Content is the message body.
	Content string `json:"content"`
	// Type is the message kind.
	Type MessageType `json:"type"`
	// Timestamp is when the bus accepted the message.
	Timestamp time.Time `json:"timestamp"`
	// Metadata carries optional transport- or caller-specific fields.
	Metadata map[string]string `json:"metadata,omitempty"`
}
