// cmd/watch.go
// Copyright © 2025 CODE MONKEY CYBERSECURITY git@cybermonkey.net.au

package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_cli"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/watcher"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch credential files and log login/logout transitions",
	Long: `Watch follows the credential marker files of every supported tool and logs
a line whenever one logs in or out. Detection stays file-only while
watching, so no Keychain prompts fire in the background.

Runs until interrupted.`,

	RunE: hermes_cli.Wrap(func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error {
		home, err := resolveHome()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(rc.Ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
		rc.Ctx = ctx

		w := watcher.New(credentials.NewDetector(home, nil))
		if err := w.Start(rc); err != nil {
			return err
		}

		<-rc.Ctx.Done()
		otelzap.Ctx(rc.Ctx).Info("Watch stopped")
		return nil
	}),
}
