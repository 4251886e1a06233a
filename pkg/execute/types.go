// pkg/execute/types.go

package execute

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Runner executes a command and returns its combined output. Production
// code uses Run; tests inject a fake so nothing touches the host.
type Runner func(ctx context.Context, opts Options) (string, error)

// Options controls a single command execution.
type Options struct {
	Command string
	Args    []string
	Dir     string
	Env     []string
	Stdin   string

	// Timeout bounds the whole execution. Zero means the 30s default.
	Timeout time.Duration

	// Retries is the total number of attempts. Zero or one means no retry.
	Retries int
	Delay   time.Duration

	// Capture returns combined stdout+stderr to the caller.
	Capture bool

	// Sensitive suppresses argument logging. Used for commands that carry
	// credentials in argv, such as sshpass.
	Sensitive bool

	DryRun bool
	Logger *zap.Logger
}

var (
	// DefaultLogger is used when Options.Logger is nil.
	DefaultLogger *zap.Logger

	// DefaultDryRun forces dry-run mode globally. Tests use this to keep
	// command execution from touching the host.
	DefaultDryRun bool
)
