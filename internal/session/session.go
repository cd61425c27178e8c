// Package session holds the conversation data model and the session store.
package session

import (
	"encoding/json"
	"fmt"

	"agentchat-backend/internal/content"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// DefaultTitle is assigned to freshly created sessions until the first user
// message supplies a real one.
const DefaultTitle = "New Conversation"

const titleMaxChars = 30

// Message is one turn entry. Content is never empty: a plain reply is a
// single text block. Timestamp is epoch milliseconds.
type Message struct {
	ID        string          `json:"id"`
	Role      Role            `json:"role"`
	Content   []content.Block `json:"content"`
	Timestamp int64           `json:"timestamp"`
}

// UnmarshalJSON dispatches each content entry through the tagged-union
// decoder.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID        string          `json:"id"`
		Role      Role            `json:"role"`
		Content   json.RawMessage `json:"content"`
		Timestamp int64           `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode message: %w", err)
	}
	m.ID = raw.ID
	m.Role = raw.Role
	m.Timestamp = raw.Timestamp
	m.Content = nil
	if len(raw.Content) > 0 {
		blocks, err := content.DecodeBlocks(raw.Content)
		if err != nil {
			return fmt.Errorf("decode message %s: %w", raw.ID, err)
		}
		m.Content = blocks
	}
	return nil
}

// ChatSession is an append-only conversation. Messages are chronological;
// UpdatedAt is bumped on every append and never precedes CreatedAt.
type ChatSession struct {
	ID        string    `json:"id"`
	Messages  []Message `json:"messages"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
	Title     string    `json:"title,omitempty"`
}

func (s *ChatSession) clone() *ChatSession {
	cp := *s
	cp.Messages = append([]Message(nil), s.Messages...)
	return &cp
}

// DeriveTitle produces a session title from the first user message: the text
// verbatim when it fits, otherwise the first 30 characters plus an ellipsis.
func DeriveTitle(text string) string {
	r := []rune(text)
	if len(r) <= titleMaxChars {
		return text
	}
	return string(r[:titleMaxChars]) + "..."
}

// firstText returns the text of the leading text block, if any.
func firstText(msg Message) string {
	for _, b := range msg.Content {
		if t, ok := b.(content.Text); ok {
			return t.Text
		}
	}
	return ""
}
