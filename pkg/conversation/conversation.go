// Package conversation defines the data contract between callers and the
// compression engine. A conversation is an ordered sequence of messages;
// the engine only ever reads it, never mutates or retains it.
package conversation

// Role identifies the author of a message.
type Role string

// Supported roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Valid reports whether the role is one of the supported values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem, RoleTool:
		return true
	}
	return false
}

// Message is a single conversation entry. Index is the ordinal position
// assigned by the caller; insertion order is semantically meaningful
// (recency drives the protected window).
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
	Index   int    `json:"index,omitempty"`
}

// Text returns the message content. A message with a missing or empty
// content field is treated as empty rather than rejected, so aggregate
// operations stay robust to partially malformed histories.
func (m Message) Text() string {
	return m.Content
}

// TotalLength returns the summed content length in bytes across all messages.
func TotalLength(messages []Message) int {
	total := 0
	for i := range messages {
		total += len(messages[i].Content)
	}
	return total
}
