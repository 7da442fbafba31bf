// Package session owns the in-memory, per-session conversation state for the
// transcript chat. Histories live for the lifetime of the process only; a
// client that starts over simply uses a fresh session id.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"insightapi/internal/agent"
	"insightapi/internal/model"
)

// Literal fallback turns appended when the agent cannot produce a reply.
// They are permanent parts of the history and are stored exactly like real
// replies; only their text marks them as synthetic.
const (
	FallbackNoReply     = "The agent responded, but no text reply was parsed from the payload."
	FallbackUnreachable = "I couldn't reach the Interview Insight Agent. Please verify the agent endpoint configuration."
)

// ErrEmptyQuery is returned when the submitted text is empty after trimming.
// The history is left unchanged.
var ErrEmptyQuery = errors.New("query is empty")

type state int

const (
	stateIdle state = iota
	stateAwaitingReply
)

// conversation is the state for one session: an ordered, append-only turn
// history and the idle/awaiting-reply flag. The mutex serializes submits, so
// a second submit for the same session blocks until the first settles.
type conversation struct {
	mu    sync.Mutex
	state state
	turns []model.ChatTurn
}

// Manager maintains conversation state per session id and reconciles agent
// success and failure into a consistent transcript. A backend failure never
// escapes as an error: it becomes a synthetic assistant turn and the session
// returns to idle, ready for the next submit.
type Manager struct {
	mu     sync.Mutex
	agent  agent.Client // nil when the agent endpoint is unconfigured
	convos map[string]*conversation
}

// NewManager constructs a Manager. cli may be nil; every submit then settles
// with the unreachable-backend fallback turn.
func NewManager(cli agent.Client) *Manager {
	return &Manager{
		agent:  cli,
		convos: make(map[string]*conversation),
	}
}

func (m *Manager) conversation(sessionID string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.convos[sessionID]
	if !ok {
		c = &conversation{}
		m.convos[sessionID] = c
	}
	return c
}

// SubmitTurn appends the user's turn, asks the agent with the full history
// including that turn, and appends the reply or a fallback turn. Once the
// call settles the history has grown by exactly two turns and the session is
// idle again. Blank text is a no-op returning ErrEmptyQuery.
func (m *Manager) SubmitTurn(ctx context.Context, sessionID, text string) (string, []model.ChatTurn, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", m.History(sessionID), ErrEmptyQuery
	}

	c := m.conversation(sessionID)
	c.mu.Lock()
	defer c.mu.Unlock()

	// Optimistic append: the user turn lands before the agent is consulted.
	c.turns = append(c.turns, model.ChatTurn{Role: model.RoleUser, Content: trimmed})
	c.state = stateAwaitingReply

	history := snapshot(c.turns)

	replyText := FallbackUnreachable
	if m.agent != nil {
		reply, err := m.agent.Ask(ctx, trimmed, sessionID, history)
		switch {
		case err != nil:
			replyText = FallbackUnreachable
		case reply == "":
			replyText = FallbackNoReply
		default:
			replyText = reply
		}
	}

	c.turns = append(c.turns, model.ChatTurn{Role: model.RoleAssistant, Content: replyText})
	c.state = stateIdle

	return replyText, snapshot(c.turns), nil
}

// History returns a copy of the session's ordered turn history. An unknown
// session id yields an empty history.
func (m *Manager) History(sessionID string) []model.ChatTurn {
	m.mu.Lock()
	c, ok := m.convos[sessionID]
	m.mu.Unlock()
	if !ok {
		return []model.ChatTurn{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return snapshot(c.turns)
}

func snapshot(turns []model.ChatTurn) []model.ChatTurn {
	out := make([]model.ChatTurn, len(turns))
	copy(out, turns)
	return out
}
