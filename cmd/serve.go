// cmd/serve.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/agent"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/preflight"
)

var serveFlagKeys = map[string]string{"listen": "serve.listen"}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the trusted verification agent on this host",
	Long: `Serve starts the hermes agent: a loopback HTTP endpoint answering
GET /v1/health and GET /v1/tokens/verify for this machine. Point another
hermes at it with --agent-url (or remote.agent-url) to verify this host
without any ssh credential changing hands.

Runs until interrupted; in-flight requests are drained on shutdown.

Examples:
  hermes serve                            # 127.0.0.1:8000
  hermes serve --listen 127.0.0.1:8443`,

	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(rc, cmd, serveFlagKeys)
		if err != nil {
			return err
		}

		listen := settings.Serve.Listen
		port, err := listenPort(listen)
		if err != nil {
			return err
		}
		if _, err := preflight.RunChecks(rc.Ctx, preflight.ServeChecks(port)); err != nil {
			return err
		}

		home, err := resolveHome()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rc.Ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		rc.Ctx = ctx

		// File-only detector: a long-running agent must never trigger
		// Keychain prompts in the background.
		return agent.NewServer(listen, credentials.NewDetector(home, nil)).Serve(rc)
	}),
}

func listenPort(listen string) (int, error) {
	_, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return 0, cerr.Wrapf(err, "invalid listen address %q", listen)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, cerr.Wrapf(err, "invalid listen port %q", portStr)
	}
	return port, nil
}

func init() {
	serveCmd.Flags().String("listen", "", "Listen address (default: serve.listen, 127.0.0.1:8000)")
}
