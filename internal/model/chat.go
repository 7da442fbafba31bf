package model

// Chat turn roles. The agent contract knows only these two; there is no
// system role on the wire.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one role-tagged message in a conversation. Immutable once
// appended to a history.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
