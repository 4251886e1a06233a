// cmd/verify.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/health"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/secrets"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check locally that the required tools are logged in",
	Long: `Verify runs the local credential gate: GitHub CLI and Claude Code must both
have credentials on this machine before a migration is worth starting. Codex
is optional; a missing Codex login only warns.

The answer comes from a fresh detection pass every run; nothing is cached.

Use 'hermes verify remote' to check a target machine instead.`,

	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)

		home, err := resolveHome()
		if err != nil {
			return err
		}

		verification, err := verify.CheckRequired(rc, credentials.NewDetector(home, secrets.ForPlatform()))
		if err != nil {
			return err
		}

		if !verification.AllRequiredPresent {
			var remediation []string
			if !verification.GitHub {
				remediation = append(remediation, "GitHub CLI: "+verify.RemedialCommands[credentials.ToolGitHub])
			}
			if !verification.Claude {
				remediation = append(remediation, "Claude Code: "+verify.RemedialCommands[credentials.ToolClaude])
			}
			return hermes_err.NewNotFoundError(
				"required credentials are missing on this machine", remediation...)
		}

		logger.Info("terminal prompt: ✅ GitHub CLI and Claude Code credentials are present. Ready to migrate.")
		if !verification.Codex {
			logger.Info("terminal prompt: ⚠️  Codex credentials not found (optional, migration proceeds without it).")
		}
		return nil
	}),
}

var verifyRemoteCmd = &cobra.Command{
	Use:   "remote",
	Short: "Check a remote target's tool credentials over ssh or the agent",
	Long: `Verify remote probes each supported tool on a target machine and reports
whether it is installed and actually authenticated, straight from the tool
itself. Probes run concurrently, each under its own timeout, and a probe
that cannot run is reported for that tool alone; the rest still answer.

The target comes from flags or from remote.* in the config file. With
--agent-url the check goes through a hermes agent on the target; otherwise
ssh is used, prompting for a password unless --identity or --password is
given.

Examples:
  hermes verify remote --host db1.example.com --user deploy
  hermes verify remote --host db1 --identity ~/.ssh/id_ed25519
  hermes verify remote --agent-url http://127.0.0.1:8000`,

	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(rc, cmd, remoteFlagKeys)
		if err != nil {
			return err
		}

		t, err := buildTransport(rc, resolveRemoteOptions(cmd, settings), true)
		if err != nil {
			return err
		}

		result, err := verify.VerifyRemote(rc, t)
		if err != nil {
			return err
		}

		fmt.Print(health.RenderStatuses(result.Statuses))
		return nil
	}),
}

func init() {
	addRemoteFlags(verifyRemoteCmd)
	verifyCmd.AddCommand(verifyRemoteCmd)
}
