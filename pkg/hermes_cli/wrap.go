// pkg/hermes_cli/wrap.go

package hermes_cli

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/logger"
)

// Wrap adapts a RuntimeContext-aware function to a cobra RunE, handling
// context setup, panic recovery, and error classification in one place.
func Wrap(fn func(rc *hermes_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger.InitFallback()

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		rc := hermes_io.NewContext(ctx, cmd.Name())

		// LIFO: the panic handler runs first so End sees the converted error.
		defer rc.End(&err)
		defer rc.HandlePanic(&err)

		err = fn(rc, cmd, args)
		if err != nil && !hermes_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
