// cmd/helpers.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"fmt"
	"os"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/config"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/transport"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

// resolveHome returns the home directory operations act on.
func resolveHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", cerr.Wrap(err, "resolve home directory")
	}
	return home, nil
}

// loadSettings reads config with the command's flags bound to their config
// keys, so resolved settings already carry flag > env > file precedence.
func loadSettings(rc *hermes_io.RuntimeContext, cmd *cobra.Command, flagKeys map[string]string) (*config.Settings, error) {
	v := config.New()
	if err := cli.BindFlagsToViper(v, cmd.Flags(), flagKeys); err != nil {
		return nil, err
	}
	return config.Load(rc.Ctx, v)
}

// remoteOptions is the resolved remote target shared by verify remote and
// health.
type remoteOptions struct {
	host     string
	user     string
	port     int
	password string
	identity string
	agentURL string
	timeout  time.Duration
}

// remoteFlagKeys binds the remote flags to their config keys. The password
// is deliberately absent: it stays flag-or-prompt only and never gains a
// config file or env spelling.
var remoteFlagKeys = map[string]string{
	"host":      "remote.endpoint",
	"user":      "remote.user",
	"port":      "remote.port",
	"identity":  "remote.identity",
	"agent-url": "remote.agent-url",
	"timeout":   "probe.timeout",
}

func addRemoteFlags(cmd *cobra.Command) {
	cmd.Flags().String("host", "", "SSH host to check (default: remote.endpoint)")
	cmd.Flags().String("user", "", "SSH user (default: remote.user)")
	cmd.Flags().Int("port", 0, "SSH port (default: remote.port)")
	cmd.Flags().String("password", "", "SSH password; with no identity set either, hermes prompts")
	cmd.Flags().String("identity", "", "SSH private key path (default: remote.identity)")
	cmd.Flags().String("agent-url", "", "Check through the HTTP agent at this URL instead of ssh")
	cmd.Flags().Duration("timeout", 0, "Per-probe timeout (default: probe.timeout)")
}

// resolveRemoteOptions reads the merged target from settings; only the
// password comes straight off the flag set.
func resolveRemoteOptions(cmd *cobra.Command, settings *config.Settings) remoteOptions {
	return remoteOptions{
		host:     settings.Remote.Endpoint,
		user:     settings.Remote.User,
		port:     settings.Remote.Port,
		password: cli.GetStringOrEmpty(cmd, "password"),
		identity: settings.Remote.Identity,
		agentURL: settings.Remote.AgentURL,
		timeout:  settings.Probe.Timeout,
	}
}

func (o remoteOptions) hasTarget() bool {
	return o.host != "" || o.agentURL != ""
}

// buildTransport turns resolved options into a transport. An agent URL wins
// over ssh. For ssh with neither identity nor password, the password is
// prompted here, before any connection attempt. preflightGate runs the
// ssh/sshpass checks up front; health passes false and lets prerequisite
// failures fold into its report instead.
func buildTransport(rc *hermes_io.RuntimeContext, opts remoteOptions, preflightGate bool) (verify.Transport, error) {
	if opts.agentURL != "" {
		return transport.NewAgent(opts.agentURL), nil
	}
	if opts.host == "" {
		return nil, hermes_err.NewValidationError(
			"no remote target configured",
			"Pass --host (ssh) or --agent-url (agent)",
			"Or set remote.endpoint / remote.agent-url in the config file")
	}

	passwordAuth := opts.identity == ""
	if preflightGate {
		if _, err := preflight.RunChecks(rc.Ctx, preflight.RemoteChecks(passwordAuth)); err != nil {
			return nil, err
		}
	}

	if opts.identity == "" && opts.password == "" {
		otelzap.Ctx(rc.Ctx).Info("terminal prompt: Please enter the SSH password",
			zap.String("user", opts.user),
			zap.String("host", opts.host))
		password, err := rc.PromptSecurePassword(fmt.Sprintf("SSH password for %s@%s: ", opts.user, opts.host))
		if err != nil {
			return nil, err
		}
		opts.password = password
	}

	ssh := transport.NewSSH(opts.host, opts.user, opts.port)
	ssh.Password = opts.password
	ssh.Identity = opts.identity
	ssh.Timeout = opts.timeout
	return ssh, nil
}
