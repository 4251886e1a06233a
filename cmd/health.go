// cmd/health.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/health"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Render a credential health report for the configured remote",
	Long: `Health pings the configured remote target and, when it is reachable, checks
every tool's credentials there. Each tool lands in one of three states:
verified, not authenticated (with the command that fixes it), or could not
be checked.

The report is advisory: health always exits zero, an unreachable target is
rendered rather than fatal, and no credential probe starts until the target
has answered the ping.`,

	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)

		settings, err := loadSettings(rc, cmd, remoteFlagKeys)
		if err != nil {
			return err
		}

		opts := resolveRemoteOptions(cmd, settings)
		if !opts.hasTarget() {
			logger.Info("terminal prompt: No remote target configured; nothing to check.")
			logger.Info("terminal prompt: Set remote.endpoint or remote.agent-url in config, or pass --host/--agent-url.")
			return nil
		}

		t, err := buildTransport(rc, opts, false)
		if err != nil {
			return err
		}

		result := health.RunHealthChecks(rc, t)
		fmt.Print(health.Render(result))
		return nil
	}),
}

func init() {
	addRemoteFlags(healthCmd)
}
