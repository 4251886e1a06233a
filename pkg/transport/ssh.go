// pkg/transport/ssh.go

// Package transport reaches verification targets. Both implementations
// satisfy verify.Transport: an SSH command transport for any host with sshd,
// and a trusted HTTP agent for hosts running hermes serve.
package transport

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

// SSH verifies tokens by running probe commands on the target through the
// local ssh binary. Nothing gets installed on the remote side.
type SSH struct {
	Host string
	User string
	Port int

	// Password auth shells through sshpass; Identity selects key auth and
	// enables BatchMode. Setting both means sshpass wins, since BatchMode
	// would silently disable the password.
	Password string
	Identity string

	// Timeout bounds each probe command. Zero means verify.DefaultProbeTimeout.
	Timeout time.Duration

	runner execute.Runner
}

// NewSSH creates an SSH transport backed by the real ssh binary.
func NewSSH(host, user string, port int) *SSH {
	return &SSH{Host: host, User: user, Port: port, runner: execute.Run}
}

// NewSSHWithRunner creates an SSH transport with an injected runner.
func NewSSHWithRunner(host, user string, port int, runner execute.Runner) *SSH {
	return &SSH{Host: host, User: user, Port: port, runner: runner}
}

func (s *SSH) Name() string { return "ssh" }

// Ping runs a trivial remote command and reports round-trip latency.
func (s *SSH) Ping(ctx context.Context) (time.Duration, error) {
	if err := s.checkPrerequisites(); err != nil {
		return 0, err
	}

	start := time.Now()
	output, err := s.run(ctx, "echo hermes-ping")
	latency := time.Since(start)

	if err != nil {
		reason := transportFailureReason(output, err)
		if reason == "" {
			reason = strings.TrimSpace(output)
		}
		if reason == "" {
			reason = err.Error()
		}
		return latency, hermes_err.NewTransportError(
			fmt.Sprintf("cannot reach %s: %s", s.target(), reason), err,
			"Check the host address and that sshd is running",
			fmt.Sprintf("Try it by hand: ssh -p %d %s", s.port(), s.target()))
	}
	if !strings.Contains(output, "hermes-ping") {
		return latency, hermes_err.NewTransportError(
			fmt.Sprintf("unexpected response from %s", s.target()), nil,
			"The remote shell may be printing a banner or prompt on every command")
	}
	return latency, nil
}

// VerifyTokens probes every catalogued tool on the remote host concurrently.
// Unreachable targets and failed probes fold into per-tool statuses, so the
// aggregate always comes back; the only hard error is a missing prerequisite
// on this machine.
func (s *SSH) VerifyTokens(ctx context.Context) ([]verify.TokenStatus, error) {
	if err := s.checkPrerequisites(); err != nil {
		return nil, err
	}
	return verify.RunProbes(ctx, s.Timeout, s.probeTool), nil
}

func (s *SSH) probeTool(ctx context.Context, p verify.Probe) verify.TokenStatus {
	status := verify.TokenStatus{ToolID: p.ToolID, CheckedAt: time.Now().UTC()}

	output, err := s.run(ctx, p.InstalledCommand)
	if err != nil {
		if reason := transportFailureReason(output, err); reason != "" {
			status.Error = reason
			return status
		}
		// command -v exits non-zero: the tool simply is not there.
		return status
	}
	status.Installed = true

	output, err = s.run(ctx, p.AuthCommand)
	if reason := transportFailureReason(output, err); reason != "" {
		status.Error = reason
		return status
	}
	status.Authenticated = p.Authenticated(output, err)

	if out, verr := s.run(ctx, p.VersionCommand); verr == nil {
		status.Version = verify.NormalizeVersion(out)
	}
	return status
}

// run executes one command on the remote host and returns combined output.
// The remote command travels as a single argv element; the remote shell does
// the word splitting.
func (s *SSH) run(ctx context.Context, remoteCmd string) (string, error) {
	command := "ssh"
	args := s.baseArgs()
	sensitive := false

	if s.Password != "" {
		command = "sshpass"
		args = append([]string{"-p", s.Password, "ssh"}, args...)
		sensitive = true
	}
	args = append(args, s.target(), remoteCmd)

	return s.runner(ctx, execute.Options{
		Command:   command,
		Args:      args,
		Timeout:   s.probeTimeout(),
		Capture:   true,
		Sensitive: sensitive,
	})
}

func (s *SSH) baseArgs() []string {
	args := []string{
		"-o", "StrictHostKeyChecking=no",
		"-o", "UserKnownHostsFile=/dev/null",
		"-o", "ConnectTimeout=30",
		"-p", strconv.Itoa(s.port()),
	}
	if s.Identity != "" && s.Password == "" {
		// BatchMode only with key auth: it disables password prompts.
		args = append(args, "-i", s.Identity, "-o", "BatchMode=yes")
	}
	return args
}

// checkPrerequisites confirms this machine can run the transport at all. A
// missing sshpass is its own error class so the operator fixes the calling
// host, not the remote one.
func (s *SSH) checkPrerequisites() error {
	if _, err := exec.LookPath("ssh"); err != nil {
		return hermes_err.NewPrerequisiteError("ssh", "remote verification",
			"Install an OpenSSH client and retry")
	}
	if s.Password != "" {
		if _, err := exec.LookPath("sshpass"); err != nil {
			return hermes_err.NewPrerequisiteError("sshpass", "password-based remote verification",
				"macOS: brew install hudochenkov/sshpass/sshpass",
				"Debian/Ubuntu: apt install sshpass",
				"Or switch to key auth: hermes verify remote --identity ~/.ssh/id_ed25519")
		}
	}
	return nil
}

func (s *SSH) target() string {
	if s.User != "" {
		return s.User + "@" + s.Host
	}
	return s.Host
}

func (s *SSH) port() int {
	if s.Port > 0 {
		return s.Port
	}
	return 22
}

func (s *SSH) probeTimeout() time.Duration {
	if s.Timeout > 0 {
		return s.Timeout
	}
	return verify.DefaultProbeTimeout
}

// transportFailureReason reports a non-empty operator-facing reason when the
// failure is ssh not reaching or not authenticating to the target, rather
// than the remote command exiting non-zero.
func transportFailureReason(output string, err error) string {
	if err == nil {
		return ""
	}
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "permission denied"):
		return "ssh authentication to the target failed: permission denied"
	case strings.Contains(lower, "connection refused"):
		return "connection to target failed: connection refused"
	case strings.Contains(lower, "could not resolve hostname"):
		return "could not resolve target hostname"
	case strings.Contains(lower, "timed out"), strings.Contains(lower, "timeout"):
		return "connection to target timed out"
	case cerr.Is(err, context.DeadlineExceeded):
		return "probe timed out"
	default:
		return ""
	}
}
