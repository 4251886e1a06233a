// cmd/list.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/secrets"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which tool credentials exist on this machine",
	Long: `List runs detection across every supported tool and shows what was found:
whether credentials are present, where the evidence came from (file or the
platform secure store), and which files contributed. Detection only reads;
nothing is modified.`,

	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)

		home, err := resolveHome()
		if err != nil {
			return err
		}

		det := credentials.NewDetector(home, secrets.ForPlatform())
		results, err := det.DetectAll(rc)
		if err != nil {
			return err
		}

		for _, result := range results {
			entry, ok := credentials.Lookup(result.ToolID)
			if !ok {
				continue
			}

			if !result.Present {
				logger.Info("terminal prompt: ⚠️  " + entry.Name + ": no credentials found")
				continue
			}

			line := "✅ " + entry.Name + ": present (" + result.Source + ")"
			switch result.ToolID {
			case credentials.ToolGitHub:
				if account, ok := det.GitHubAccount(rc); ok {
					line += ", account " + account
				}
			case credentials.ToolClaude:
				if account, ok := det.ClaudeAccount(rc); ok {
					line += ", account " + account
				}
			}
			logger.Info("terminal prompt: " + line)

			for _, path := range result.ContributingPaths {
				logger.Info("terminal prompt:    " + path)
			}
		}
		return nil
	}),
}
