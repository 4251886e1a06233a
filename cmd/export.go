// cmd/export.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/archive"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/preflight"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/secrets"
)

var exportCmd = &cobra.Command{
	Use:   "export [output_path]",
	Short: "Package local credentials into a portable archive",
	Long: `Export detects which supported CLI tools are logged in on this machine and
packages their credential files into a single archive, ready to copy to
another host and import there.

On macOS the Claude Code OAuth credentials live in the Keychain; export
extracts them into the archive so the destination needs no Keychain at all.
Session caches, logs and project history are excluded.

Examples:
  hermes export                      # hermes-credentials-<host>-<ts>.tar.gz
  hermes export /tmp/creds.tar.gz    # explicit output path
  hermes export creds.zip            # zip container instead of tar.gz`,

	Args: cobra.MaximumNArgs(1),
	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		logger := otelzap.Ctx(rc.Ctx)

		outputPath := ""
		if len(args) == 1 {
			outputPath = args[0]
		}

		// Staging happens under the system temp dir, so that is where space
		// must exist.
		if _, err := preflight.RunChecks(rc.Ctx, preflight.ExportChecks(os.TempDir())); err != nil {
			return err
		}

		home, err := resolveHome()
		if err != nil {
			return err
		}

		source := secrets.ForPlatform()
		builder := archive.NewBuilder(credentials.NewDetector(home, source), source)
		archivePath, err := builder.Export(rc, outputPath)
		if err != nil {
			return err
		}

		logger.Info("terminal prompt: ✅ Credentials exported",
			zap.String("archive", archivePath))
		logger.Info("terminal prompt: Copy the archive to the destination machine, then run: hermes import " + archivePath)
		return nil
	}),
}
