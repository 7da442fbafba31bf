// Package agent contains the client for the external question-answering
// backend that grounds chat replies in the uploaded transcripts. The agent's
// indexing and ranking are entirely its own; this package only speaks its
// request/response contract.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"insightapi/internal/config"
	"insightapi/internal/model"
)

var (
	// ErrNotConfigured means no agent endpoint was provided; chat submits
	// resolve to the unreachable-backend fallback turn.
	ErrNotConfigured = errors.New("agent endpoint is not configured")
	// ErrBackend covers transport faults, non-2xx statuses, and responses
	// carrying an error field.
	ErrBackend = errors.New("agent request failed")
)

// Client asks the external agent a question over the full conversation
// history. A nil error with an empty reply means the agent answered but no
// text reply could be parsed from the payload.
type Client interface {
	Ask(ctx context.Context, query, sessionID string, history []model.ChatTurn) (string, error)
}

// askRequest is the wire format the agent consumes.
type askRequest struct {
	Query     string           `json:"query"`
	SessionID string           `json:"sessionId"`
	History   []model.ChatTurn `json:"history"`
}

// askResponse is the wire format the agent produces. Reply and Error are
// both optional; an empty body is a valid (if useless) success.
type askResponse struct {
	Reply string `json:"reply"`
	Error string `json:"error"`
}

// httpClient implements Client over HTTP JSON with an otel-instrumented
// transport. Safe for concurrent use.
type httpClient struct {
	endpoint string
	client   *http.Client
}

// NewHTTP creates an agent client from config. The endpoint is required.
func NewHTTP(cfg config.AgentConfig) (Client, error) {
	if cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if cfg.TimeoutSec <= 0 {
		timeout = 60 * time.Second
	}
	return &httpClient{
		endpoint: cfg.Endpoint,
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
	}, nil
}

func (c *httpClient) Ask(ctx context.Context, query, sessionID string, history []model.ChatTurn) (string, error) {
	body, err := json.Marshal(askRequest{
		Query:     query,
		SessionID: sessionID,
		History:   history,
	})
	if err != nil {
		return "", fmt.Errorf("encode agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBackend, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrBackend, err)
	}

	var out askResponse
	// A malformed body on a 2xx still counts as a backend failure; on a
	// non-2xx the status alone is enough.
	decodeErr := json.Unmarshal(raw, &out)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if out.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrBackend, out.Error)
		}
		return "", fmt.Errorf("%w: status %d", ErrBackend, resp.StatusCode)
	}
	if decodeErr != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrBackend, decodeErr)
	}
	if out.Error != "" {
		return "", fmt.Errorf("%w: %s", ErrBackend, out.Error)
	}

	// Missing reply on success is not an error here; the session manager
	// substitutes its parse-failure notice.
	return out.Reply, nil
}
