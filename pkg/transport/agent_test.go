// pkg/transport/agent_test.go

package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

func TestAgentPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/health", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","uptime_seconds":42}`))
	}))
	defer srv.Close()

	a := NewAgentWithClient(srv.URL, srv.Client())
	latency, err := a.Ping(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, latency, time.Duration(0))
}

func TestAgentPingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens on the URL anymore

	a := NewAgentWithClient(srv.URL, http.DefaultClient)
	_, err := a.Ping(context.Background())
	require.Error(t, err)
	assert.True(t, hermes_err.IsCategory(err, hermes_err.CategoryTransport))
	assert.Contains(t, err.Error(), "hermes serve")
}

func TestAgentPingDegraded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"degraded"}`))
	}))
	defer srv.Close()

	a := NewAgentWithClient(srv.URL, srv.Client())
	_, err := a.Ping(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "degraded")
}

func TestAgentVerifyTokensDecodesForwardCompatibly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/tokens/verify", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"statuses": [
				{"tool_id": "github", "installed": true, "authenticated": true, "version": "2.40.1", "account": "alice", "checked_at": "2026-08-23T10:00:00Z", "future_field": 7},
				{"tool_id": "claude", "installed": true, "authenticated": false, "checked_at": "2026-08-23T10:00:00Z"}
			],
			"agent_version": "0.9.0"
		}`))
	}))
	defer srv.Close()

	a := NewAgentWithClient(srv.URL, srv.Client())
	statuses, err := a.VerifyTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, 2)

	assert.Equal(t, credentials.ToolGitHub, statuses[0].ToolID)
	assert.True(t, statuses[0].Authenticated)
	assert.Equal(t, "2.40.1", statuses[0].Version)
	assert.Equal(t, "alice", statuses[0].Account)

	assert.Equal(t, credentials.ToolClaude, statuses[1].ToolID)
	assert.True(t, statuses[1].Installed)
	assert.False(t, statuses[1].Authenticated)
}

func TestAgentVerifyTokensDownFoldsPerTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	a := NewAgentWithClient(srv.URL, http.DefaultClient)
	statuses, err := a.VerifyTokens(context.Background())
	require.NoError(t, err, "a dead agent must not abort verification")
	require.Len(t, statuses, len(verify.Probes))

	for _, status := range statuses {
		assert.False(t, status.Installed)
		assert.False(t, status.Authenticated)
		assert.Contains(t, status.Error, "agent request failed")
	}
}

func TestAgentVerifyTokensServerErrorFoldsPerTool(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "probe runner wedged", http.StatusInternalServerError)
	}))
	defer srv.Close()

	a := NewAgentWithClient(srv.URL, srv.Client())
	statuses, err := a.VerifyTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, statuses, len(verify.Probes))
	assert.Contains(t, statuses[0].Error, "500")
	assert.Contains(t, statuses[0].Error, "probe runner wedged")
}
