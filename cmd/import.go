// cmd/import.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/archive"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

var importCmd = &cobra.Command{
	Use:   "import <archive_path>",
	Short: "Restore credentials from an exported archive",
	Long: `Import unpacks an archive produced by hermes export into this user's home
directory. Existing credential files are backed up next to their originals
as <name>.backup.<timestamp> before being replaced.

Items that fail individually are reported and skipped; the remaining items
still restore, and the command exits zero on such partial success. Only a
missing archive or an invalid manifest fails the import outright.

Examples:
  hermes import hermes-credentials-laptop-20250812-143000.tar.gz
  hermes import /tmp/creds.zip`,

	Args: cobra.ExactArgs(1),
	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)

		home, err := resolveHome()
		if err != nil {
			return err
		}

		report, err := archive.NewRestorer(home).Import(rc, args[0])
		if err != nil {
			return err
		}

		for _, item := range report.Restored {
			logger.Info("terminal prompt: ✅ restored " + item)
		}
		for _, backup := range report.BackedUp {
			logger.Info("terminal prompt: 📦 previous file saved as " + backup)
		}
		for _, item := range report.Skipped {
			logger.Info("terminal prompt: ⏭  skipped " + item)
		}
		for _, failure := range report.Failed {
			logger.Warn("terminal prompt: ⚠️  could not restore "+failure.Item,
				zap.String("reason", failure.Reason))
		}

		logger.Info("terminal prompt: Import complete",
			zap.Int("restored", len(report.Restored)),
			zap.Int("backed_up", len(report.BackedUp)),
			zap.Int("skipped", len(report.Skipped)),
			zap.Int("failed", len(report.Failed)))
		logger.Info("terminal prompt: Run 'hermes verify' to confirm the tools are logged in.")
		return nil
	}),
}
