// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/telemetry"
)

// Package execute provides command execution with structured logging.
// Shell interpretation is never used: the command and its arguments go
// straight to exec, so metacharacters in arguments stay literal.

// Run executes a command and returns its combined output when Capture is set.
// Output is captured to a buffer only, never echoed to stdout, so command
// output cannot interleave with structured logs.
func Run(ctx context.Context, opts Options) (string, error) {
	logger := opts.Logger
	if logger == nil {
		logger = DefaultLogger
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if ctx == nil {
		ctx = context.Background()
	}
	runCtx, cancel := context.WithTimeout(ctx, defaultTimeout(opts.Timeout))
	defer cancel()

	runCtx, span := telemetry.Start(runCtx, "execute.Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("command", opts.Command),
		attribute.Int("args", len(opts.Args)),
	)

	cmdStr := loggableCommand(opts)

	if opts.DryRun || DefaultDryRun {
		logger.Info("Dry run mode - command not executed", zap.String("command", cmdStr))
		return "", nil
	}

	logger.Debug("Starting execution", zap.String("command", cmdStr))

	var output string
	var err error

	attempts := max(1, opts.Retries)
	for i := 1; i <= attempts; i++ {
		cmd := exec.CommandContext(runCtx, opts.Command, opts.Args...)
		if opts.Dir != "" {
			cmd.Dir = opts.Dir
		}
		if len(opts.Env) > 0 {
			cmd.Env = opts.Env
		}
		if opts.Stdin != "" {
			cmd.Stdin = strings.NewReader(opts.Stdin)
		}

		var buf bytes.Buffer
		cmd.Stdout = &buf
		cmd.Stderr = &buf

		err = cmd.Run()
		output = buf.String()

		if err == nil {
			logger.Debug("Execution succeeded", zap.String("command", cmdStr))
			break
		}

		summary := hermes_err.ExtractSummary(output, 2)
		span.RecordError(err)
		logger.Warn("Execution failed",
			zap.Int("attempt", i),
			zap.String("command", cmdStr),
			zap.String("summary", summary),
			zap.Error(err),
		)

		if i < attempts {
			time.Sleep(opts.Delay)
		}
	}

	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			err = cerr.Mark(err, context.DeadlineExceeded)
		}
		return output, cerr.Wrapf(err, "command %s failed after %d attempts", opts.Command, attempts)
	}

	if opts.Capture {
		return output, nil
	}
	return "", nil
}

// ExitCode extracts the process exit code from an execution error.
// Returns 0 for nil, -1 when the command never ran or was killed.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if cerr.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// IsTimeout reports whether an execution error was caused by the
// context deadline rather than the command itself.
func IsTimeout(err error) bool {
	return cerr.Is(err, context.DeadlineExceeded)
}

// loggableCommand renders the command for log lines, masking arguments
// of sensitive invocations.
func loggableCommand(opts Options) string {
	if opts.Sensitive {
		return opts.Command + " [arguments redacted]"
	}
	return buildCommandString(opts.Command, opts.Args...)
}
