// pkg/verify/types.go

// Package verify answers one question for local and remote hosts alike: which
// developer CLI tools hold working credentials right now. Results are built
// fresh on every call and never persisted.
package verify

import (
	"context"
	"time"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
)

// TokenStatus is one tool's verification outcome on a target host. The JSON
// form doubles as the agent wire contract, so fields only grow.
type TokenStatus struct {
	ToolID        string    `json:"tool_id"`
	Installed     bool      `json:"installed"`
	Authenticated bool      `json:"authenticated"`
	Version       string    `json:"version,omitempty"`
	Account       string    `json:"account,omitempty"`
	CheckedAt     time.Time `json:"checked_at"`

	// Error records why a tool could not be checked at all, as opposed to a
	// clean "not authenticated" answer. Empty on a successful probe.
	Error string `json:"error,omitempty"`
}

// RemoteTokenVerification aggregates one verification pass against a remote
// target.
type RemoteTokenVerification struct {
	Statuses  []TokenStatus `json:"statuses"`
	CheckedAt time.Time     `json:"checked_at"`
}

// LocalTokenVerification is the pre-migration gate over local credentials.
type LocalTokenVerification struct {
	GitHub bool
	Claude bool
	Codex  bool

	// AllRequiredPresent is true only when both required tools hold
	// credentials. Codex never participates in the gate.
	AllRequiredPresent bool
}

// Transport reaches a target host for verification. Implementations live in
// pkg/transport and import this package for TokenStatus, so the interface
// sits here on the consumer side.
type Transport interface {
	// Ping checks reachability and reports observed latency.
	Ping(ctx context.Context) (time.Duration, error)

	// VerifyTokens probes every catalogued tool on the target. Per-tool
	// failures land in TokenStatus.Error; the returned error is reserved
	// for problems on the calling host, such as a missing sshpass.
	VerifyTokens(ctx context.Context) ([]TokenStatus, error)

	// Name identifies the transport in logs and rendered output.
	Name() string
}

// RemedialCommands maps each tool to the command that restores its
// credential. Gate warnings and health rendering both quote from here.
var RemedialCommands = map[string]string{
	credentials.ToolGitHub: "Run 'gh auth login'",
	credentials.ToolClaude: "Run 'claude', then type /login",
	credentials.ToolCodex:  "Run 'codex login'",
}
