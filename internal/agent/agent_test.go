package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"insightapi/internal/config"
	"insightapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cli, err := NewHTTP(config.AgentConfig{Endpoint: srv.URL, TimeoutSec: 5})
	require.NoError(t, err)
	return cli, srv
}

func TestNewHTTP_Unconfigured(t *testing.T) {
	cli, err := NewHTTP(config.AgentConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Nil(t, cli)
}

func TestAsk(t *testing.T) {
	ctx := context.Background()
	history := []model.ChatTurn{
		{Role: model.RoleUser, Content: "Who are the candidates?"},
	}

	t.Run("reply returned", func(t *testing.T) {
		cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req askRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Who are the candidates?", req.Query)
			assert.Equal(t, "web-demo-session", req.SessionID)
			assert.Equal(t, history, req.History)

			json.NewEncoder(w).Encode(map[string]string{"reply": "Candidate A scored 8/10"})
		})

		reply, err := cli.Ask(ctx, "Who are the candidates?", "web-demo-session", history)
		assert.NoError(t, err)
		assert.Equal(t, "Candidate A scored 8/10", reply)
	})

	t.Run("empty success body yields empty reply without error", func(t *testing.T) {
		cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		})

		reply, err := cli.Ask(ctx, "q", "s", nil)
		assert.NoError(t, err)
		assert.Empty(t, reply)
	})

	t.Run("error field on success status", func(t *testing.T) {
		cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"error":"index offline"}`))
		})

		_, err := cli.Ask(ctx, "q", "s", nil)
		assert.ErrorIs(t, err, ErrBackend)
		assert.Contains(t, err.Error(), "index offline")
	})

	t.Run("non-2xx status", func(t *testing.T) {
		cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := cli.Ask(ctx, "q", "s", nil)
		assert.ErrorIs(t, err, ErrBackend)
	})

	t.Run("malformed body on success status", func(t *testing.T) {
		cli, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		})

		_, err := cli.Ask(ctx, "q", "s", nil)
		assert.ErrorIs(t, err, ErrBackend)
	})

	t.Run("unreachable endpoint", func(t *testing.T) {
		cli, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
		srv.Close()

		_, err := cli.Ask(ctx, "q", "s", nil)
		assert.ErrorIs(t, err, ErrBackend)
	})
}
