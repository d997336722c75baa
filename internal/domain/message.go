// File: internal/domain/message.go
package domain

import "time"

type MessageType string

const (
	MessageTypeUser MessageType = "user"
	MessageTypeAI   MessageType = "ai"
)

// Message represents a single turn within a conversation. Messages are never
// modified after creation.
type Message struct {
	ID             string      `json:"id"`
	Content        string      `json:"content"`
	Type           MessageType `json:"type"`
	Timestamp      time.Time   `json:"timestamp"`
	ConversationID string      `json:"conversationId"`
}

func (m *Message) IsUser() bool {
	return m.Type == MessageTypeUser
}
