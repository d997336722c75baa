// File: internal/domain/conversation.go
package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	DefaultConversationTitle = "new conversation"
	maxTitleRunes            = 20
)

// Conversation owns its messages; insertion order is chronological order.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

// Clone returns a deep copy so callers can't mutate stored state through a
// shared Messages slice.
func (c Conversation) Clone() Conversation {
	msgs := make([]Message, len(c.Messages))
	copy(msgs, c.Messages)
	c.Messages = msgs
	return c
}

// TitleFromContent derives a conversation title from the first user message.
func TitleFromContent(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return DefaultConversationTitle
	}
	if utf8.RuneCountInString(clean) > maxTitleRunes {
		runes := []rune(clean)
		return string(runes[:maxTitleRunes]) + "..."
	}
	return clean
}
