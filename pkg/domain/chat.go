package domain

import "time"

// Chat roles.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role    string `json:"role" mapstructure:"role"`
	Content string `json:"content" mapstructure:"content"`
}

// Conversation is the server-side history of a chat.
type Conversation struct {
	ID        string        `json:"id"`
	Messages  []ChatMessage `json:"messages"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewConversation creates an empty conversation.
func NewConversation(id string) *Conversation {
	return &Conversation{ID: id, Messages: []ChatMessage{}, UpdatedAt: time.Now()}
}

// Append adds turns in order and bumps UpdatedAt.
func (c *Conversation) Append(msgs ...ChatMessage) {
	c.Messages = append(c.Messages, msgs...)
	c.UpdatedAt = time.Now()
}

// History returns the messages as records suitable for the chat action input.
func (c *Conversation) History() []any {
	out := make([]any, 0, len(c.Messages))
	for _, m := range c.Messages {
		out = append(out, map[string]any{"role": m.Role, "content": m.Content})
	}
	return out
}

// Clone returns a deep copy.
func (c *Conversation) Clone() *Conversation {
	cp := *c
	cp.Messages = append([]ChatMessage{}, c.Messages...)
	return &cp
}
