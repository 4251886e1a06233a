// pkg/agent/server_test.go

package agent

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/secrets"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/testutil"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

// fakePath fills PATH with stub executables so LookPath resolves them.
func fakePath(t *testing.T, binaries ...string) {
	t.Helper()
	dir := t.TempDir()
	for _, name := range binaries {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	}
	t.Setenv("PATH", dir)
}

func authKey(t *testing.T, toolID string) string {
	t.Helper()
	p, ok := verify.LookupProbe(toolID)
	require.True(t, ok)
	return "sh -c " + p.AuthCommand
}

func versionKey(t *testing.T, toolID string) string {
	t.Helper()
	p, ok := verify.LookupProbe(toolID)
	require.True(t, ok)
	return "sh -c " + p.VersionCommand
}

func statusFor(t *testing.T, statuses []verify.TokenStatus, toolID string) verify.TokenStatus {
	t.Helper()
	for _, s := range statuses {
		if s.ToolID == toolID {
			return s
		}
	}
	t.Fatalf("no status for %s", toolID)
	return verify.TokenStatus{}
}

func TestHealthEndpoint(t *testing.T) {
	s := NewServer("127.0.0.1:0", credentials.NewDetector(t.TempDir(), secrets.NewMock(nil)))
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var body struct {
		Status        string  `json:"status"`
		UptimeSeconds float64 `json:"uptime_seconds"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.GreaterOrEqual(t, body.UptimeSeconds, 0.0)
}

func TestRequestIDEchoed(t *testing.T) {
	s := NewServer("127.0.0.1:0", credentials.NewDetector(t.TempDir(), secrets.NewMock(nil)))
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/v1/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-Id", "operator-trace-1")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "operator-trace-1", resp.Header.Get("X-Request-Id"))
}

func TestVerifyTokensEndpoint(t *testing.T) {
	fakePath(t, "gh", "claude", "codex")

	home := t.TempDir()
	testutil.CreateTestFile(t, home, ".config/gh/hosts.yml",
		"github.com:\n    user: alice\n    oauth_token: gho_testtoken\n", 0o600)
	testutil.CreateTestFile(t, home, ".claude.json",
		`{"oauthAccount": {"emailAddress": "alice@example.com"}}`, 0o600)

	runner := testutil.NewFakeRunner().
		Respond(authKey(t, credentials.ToolGitHub), "✓ Logged in to github.com account alice (keyring)", nil).
		Respond(versionKey(t, credentials.ToolGitHub), "gh version 2.40.1 (2023-12-13)", nil).
		Respond(authKey(t, credentials.ToolClaude), "Invalid API key · Please run /login", nil).
		Respond(versionKey(t, credentials.ToolClaude), "1.0.33 (Claude Code)", nil).
		Respond(authKey(t, credentials.ToolCodex), "present", nil).
		Respond(versionKey(t, credentials.ToolCodex), "codex-cli 0.4.0", nil)

	s := NewServerWithRunner("127.0.0.1:0", credentials.NewDetector(home, secrets.NewMock(nil)), runner.Run)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/tokens/verify")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var report verify.RemoteTokenVerification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Len(t, report.Statuses, len(verify.Probes))
	assert.False(t, report.CheckedAt.IsZero())

	github := statusFor(t, report.Statuses, credentials.ToolGitHub)
	assert.True(t, github.Installed)
	assert.True(t, github.Authenticated)
	assert.Equal(t, "2.40.1", github.Version)
	assert.Equal(t, "alice", github.Account)

	claude := statusFor(t, report.Statuses, credentials.ToolClaude)
	assert.True(t, claude.Installed)
	assert.False(t, claude.Authenticated)
	assert.Empty(t, claude.Account, "accounts are only reported for authenticated tools")

	codex := statusFor(t, report.Statuses, credentials.ToolCodex)
	assert.True(t, codex.Installed)
	assert.True(t, codex.Authenticated)
	assert.Equal(t, "0.4.0", codex.Version)
}

func TestVerifyTokensNothingInstalled(t *testing.T) {
	fakePath(t) // empty PATH, no tool resolves

	runner := testutil.NewFakeRunner()
	s := NewServerWithRunner("127.0.0.1:0", credentials.NewDetector(t.TempDir(), secrets.NewMock(nil)), runner.Run)
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/tokens/verify")
	require.NoError(t, err)
	defer resp.Body.Close()

	var report verify.RemoteTokenVerification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	require.Len(t, report.Statuses, len(verify.Probes))
	for _, status := range report.Statuses {
		assert.False(t, status.Installed)
		assert.False(t, status.Authenticated)
		assert.Empty(t, status.Error)
	}
	assert.Empty(t, runner.Calls, "no probe commands run when nothing is installed")
}

func TestVerifyTokensRejectsPost(t *testing.T) {
	s := NewServer("127.0.0.1:0", credentials.NewDetector(t.TempDir(), secrets.NewMock(nil)))
	srv := httptest.NewServer(s.Router())
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/v1/tokens/verify", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}
