// pkg/verify/probe_test.go

package verify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/testutil"
)

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"gh banner", "gh version 2.40.1 (2023-12-13)\nhttps://github.com/cli/cli/releases/tag/v2.40.1", "2.40.1"},
		{"claude", "1.0.33 (Claude Code)", "1.0.33"},
		{"codex", "codex-cli 0.4.0", "0.4.0"},
		{"v prefix", "v1.2.3", "1.2.3"},
		{"bare", "2.40.1", "2.40.1"},
		{"nothing parseable", "built from source", "built from source"},
		{"surrounding whitespace", "  2.40.1  \n", "2.40.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeVersion(tt.raw))
		})
	}
}

func TestLookupProbe(t *testing.T) {
	p, ok := LookupProbe(credentials.ToolGitHub)
	require.True(t, ok)
	assert.Equal(t, "gh", p.Binary)

	_, ok = LookupProbe("terraform")
	assert.False(t, ok)
}

func TestProbeTableCoversCatalog(t *testing.T) {
	for _, entry := range credentials.Catalog {
		_, ok := LookupProbe(entry.ToolID)
		assert.True(t, ok, "tool %s has no probe", entry.ToolID)
	}
}

func TestAuthenticatedClassifiers(t *testing.T) {
	exitErr := errors.New("exit status 1")

	tests := []struct {
		name   string
		toolID string
		output string
		err    error
		want   bool
	}{
		{"gh logged in", credentials.ToolGitHub, "github.com\n  ✓ Logged in to github.com account alice (keyring)", nil, true},
		{"gh logged out", credentials.ToolGitHub, "You are not logged into any GitHub hosts. To log in, run: gh auth login", exitErr, false},
		{"gh checkmark only", credentials.ToolGitHub, "✓ Token valid", nil, true},
		{"claude responds", credentials.ToolClaude, "OK", nil, true},
		{"claude invalid key", credentials.ToolClaude, "Invalid API key · Please run /login", nil, false},
		{"claude not authenticated", credentials.ToolClaude, "Error: not authenticated", nil, false},
		{"claude unauthorized", credentials.ToolClaude, "Error: Unauthorized", nil, false},
		{"claude command failed", credentials.ToolClaude, "", exitErr, false},
		{"codex auth file present", credentials.ToolCodex, "present\n", nil, true},
		{"codex auth file missing", credentials.ToolCodex, "", exitErr, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := LookupProbe(tt.toolID)
			require.True(t, ok)
			assert.Equal(t, tt.want, p.Authenticated(tt.output, tt.err))
		})
	}
}

func TestRunProbesCollectsEveryTool(t *testing.T) {
	statuses := RunProbes(context.Background(), time.Second, func(_ context.Context, p Probe) TokenStatus {
		return TokenStatus{ToolID: p.ToolID, Installed: true}
	})

	require.Len(t, statuses, len(Probes))
	for i, p := range Probes {
		assert.Equal(t, p.ToolID, statuses[i].ToolID)
		assert.True(t, statuses[i].Installed)
	}
}

func TestRunProbesTimesOutStuckProbe(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	start := time.Now()
	statuses := RunProbes(context.Background(), 50*time.Millisecond, func(_ context.Context, p Probe) TokenStatus {
		if p.ToolID == credentials.ToolClaude {
			<-block // ignores its context on purpose
		}
		return TokenStatus{ToolID: p.ToolID, Installed: true}
	})
	elapsed := time.Since(start)

	require.Len(t, statuses, len(Probes))
	assert.Less(t, elapsed, 5*time.Second, "stuck probe must be abandoned at its deadline")

	for i, p := range Probes {
		if p.ToolID == credentials.ToolClaude {
			assert.False(t, statuses[i].Installed)
			assert.Contains(t, statuses[i].Error, "timed out")
			continue
		}
		assert.True(t, statuses[i].Installed)
		assert.Empty(t, statuses[i].Error)
	}
}

func TestProbeLocalNotInstalled(t *testing.T) {
	p := Probe{ToolID: credentials.ToolGitHub, Binary: "hermes-test-missing-binary"}

	status := ProbeLocal(context.Background(), testutil.NewFakeRunner().Run, p)

	assert.Equal(t, credentials.ToolGitHub, status.ToolID)
	assert.False(t, status.Installed)
	assert.False(t, status.Authenticated)
	assert.Empty(t, status.Version)
	assert.False(t, status.CheckedAt.IsZero())
}

func TestProbeLocalAuthenticated(t *testing.T) {
	fake := testutil.NewFakeRunner().
		Respond("sh -c gh auth status 2>&1", "✓ Logged in to github.com account alice (keyring)", nil).
		Respond("sh -c gh --version", "gh version 2.40.1 (2023-12-13)", nil)

	p, ok := LookupProbe(credentials.ToolGitHub)
	require.True(t, ok)
	p.Binary = "sh" // resolvable on any test host

	status := ProbeLocal(context.Background(), fake.Run, p)

	assert.True(t, status.Installed)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "2.40.1", status.Version)
}

func TestProbeLocalNotAuthenticated(t *testing.T) {
	fake := testutil.NewFakeRunner().
		Respond("sh -c gh auth status 2>&1", "You are not logged into any GitHub hosts.", errors.New("exit status 1")).
		Respond("sh -c gh --version", "gh version 2.40.1 (2023-12-13)", nil)

	p, ok := LookupProbe(credentials.ToolGitHub)
	require.True(t, ok)
	p.Binary = "sh"

	status := ProbeLocal(context.Background(), fake.Run, p)

	assert.True(t, status.Installed)
	assert.False(t, status.Authenticated)
	assert.Equal(t, "2.40.1", status.Version)
}

func TestProbeLocalVersionFailureTolerated(t *testing.T) {
	fake := testutil.NewFakeRunner().
		Respond("sh -c test -f ~/.codex/auth.json && echo present", "present\n", nil).
		Respond("sh -c codex --version", "", errors.New("exit status 127"))

	p, ok := LookupProbe(credentials.ToolCodex)
	require.True(t, ok)
	p.Binary = "sh"

	status := ProbeLocal(context.Background(), fake.Run, p)

	assert.True(t, status.Installed)
	assert.True(t, status.Authenticated)
	assert.Empty(t, status.Version)
}
