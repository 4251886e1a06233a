// pkg/verify/probe.go

package verify

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	goversion "github.com/hashicorp/go-version"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
)

// DefaultProbeTimeout bounds a single tool probe. The claude probe runs the
// CLI end to end, so the bound is generous.
const DefaultProbeTimeout = 30 * time.Second

// Probe describes how one tool is checked on a target host. Commands are
// shell strings so the same table drives ssh and the local agent.
type Probe struct {
	ToolID string
	Binary string

	InstalledCommand string
	AuthCommand      string
	VersionCommand   string

	// Authenticated classifies the auth command's combined output. Exit
	// status arrives as err; classifiers that only match output text
	// ignore it.
	Authenticated func(output string, err error) bool
}

// Probes is the verification table. The auth heuristics follow what each CLI
// actually prints today; treat them as tuned defaults, not fixed contracts.
var Probes = []Probe{
	{
		ToolID:           credentials.ToolGitHub,
		Binary:           "gh",
		InstalledCommand: "command -v gh",
		AuthCommand:      "gh auth status 2>&1",
		VersionCommand:   "gh --version",
		Authenticated: func(output string, _ error) bool {
			// gh prints "✓ Logged in to <host>" per authenticated host.
			return strings.Contains(output, "Logged in") || strings.Contains(output, "✓")
		},
	},
	{
		ToolID:           credentials.ToolClaude,
		Binary:           "claude",
		InstalledCommand: "command -v claude",
		AuthCommand:      `script -q /dev/null -c "timeout 30 claude -p 'say OK'" 2>&1`,
		VersionCommand:   "claude --version",
		Authenticated: func(output string, err error) bool {
			if err != nil {
				return false
			}
			lower := strings.ToLower(output)
			for _, marker := range []string{"invalid api key", "not authenticated", "unauthorized", "/login"} {
				if strings.Contains(lower, marker) {
					return false
				}
			}
			return true
		},
	},
	{
		ToolID:           credentials.ToolCodex,
		Binary:           "codex",
		InstalledCommand: "command -v codex",
		AuthCommand:      "test -f ~/.codex/auth.json && echo present",
		VersionCommand:   "codex --version",
		Authenticated: func(output string, _ error) bool {
			return strings.Contains(output, "present")
		},
	},
}

// LookupProbe returns the probe for a tool ID.
func LookupProbe(toolID string) (Probe, bool) {
	for _, p := range Probes {
		if p.ToolID == toolID {
			return p, true
		}
	}
	return Probe{}, false
}

// NormalizeVersion extracts a canonical version from raw --version output.
// The first parseable whitespace field of the first line wins, so
// "gh version 2.40.1 (2023-12-13)" normalizes to "2.40.1". Falls back to
// the trimmed first line when nothing parses.
func NormalizeVersion(raw string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(raw), "\n")
	line = strings.TrimSpace(line)
	for _, field := range strings.Fields(line) {
		candidate := strings.TrimPrefix(field, "v")
		if v, err := goversion.NewVersion(candidate); err == nil {
			return v.String()
		}
	}
	return line
}

// RunProbes executes fn once per table entry concurrently and waits for
// every result. Each probe gets its own deadline, and a probe that never
// returns is failed at that boundary rather than stalling the aggregate.
// The aggregate is never returned early.
func RunProbes(ctx context.Context, timeout time.Duration, fn func(ctx context.Context, p Probe) TokenStatus) []TokenStatus {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	statuses := make([]TokenStatus, len(Probes))
	var wg sync.WaitGroup
	for i, p := range Probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			probeCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			done := make(chan TokenStatus, 1)
			go func() { done <- fn(probeCtx, p) }()

			select {
			case status := <-done:
				statuses[i] = status
			case <-probeCtx.Done():
				statuses[i] = TokenStatus{
					ToolID:    p.ToolID,
					CheckedAt: time.Now().UTC(),
					Error:     fmt.Sprintf("probe timed out after %s", timeout),
				}
			}
		}()
	}
	wg.Wait()
	return statuses
}

// ProbeLocal runs one probe against this host. Installed is resolved through
// PATH directly; auth and version commands run under sh so the table's shell
// strings behave the same here as over ssh.
func ProbeLocal(ctx context.Context, run execute.Runner, p Probe) TokenStatus {
	status := TokenStatus{ToolID: p.ToolID, CheckedAt: time.Now().UTC()}

	if _, err := exec.LookPath(p.Binary); err != nil {
		return status
	}
	status.Installed = true

	output, err := runShell(ctx, run, p.AuthCommand)
	status.Authenticated = p.Authenticated(output, err)

	if out, verr := runShell(ctx, run, p.VersionCommand); verr == nil {
		status.Version = NormalizeVersion(out)
	}
	return status
}

func runShell(ctx context.Context, run execute.Runner, command string) (string, error) {
	return run(ctx, execute.Options{
		Command: "sh",
		Args:    []string{"-c", command},
		Capture: true,
	})
}
