// pkg/hermes_io/context.go

package hermes_io

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/telemetry"
)

// RuntimeContext carries the per-invocation context, logger and span.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	Component  string
	Attributes map[string]string
}

// NewContext sets up tracing and logging for one command invocation.
func NewContext(ctx context.Context, cmdName string) *RuntimeContext {
	if ctx == nil {
		ctx = context.Background()
	}
	spanCtx, span := telemetry.Start(ctx, cmdName)
	traceID := span.SpanContext().TraceID().String()
	if !span.SpanContext().TraceID().IsValid() {
		// Telemetry off means a noop span with a zero trace id; logs still
		// need a usable correlation id.
		traceID = logger.GenerateTraceID()
	}

	comp, action := resolveCallContext(3)
	log := zap.L().With(
		zap.String("component", comp),
		zap.String("action", action),
		zap.String("trace_id", traceID),
	).Named(comp)

	return &RuntimeContext{
		Ctx:        spanCtx,
		Span:       span,
		Log:        log,
		Timestamp:  time.Now(),
		Component:  comp,
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts to an internal error
// so the process exits with the bug exit code instead of crashing.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		rc.Log.Error("panic recovered",
			zap.Any("panic", r),
			zap.String("command", rc.Command))
		*errPtr = hermes_err.NewInternalError(
			fmt.Sprintf("command %s panicked", rc.Command),
			cerr.AssertionFailedf("panic: %v", r))
	}
}

// End logs the outcome, records the invocation in telemetry, and flushes logs.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	duration := time.Since(rc.Timestamp)
	success := (*errPtr == nil)

	if success {
		rc.Log.Debug("Command completed", zap.Duration("duration", duration))
	} else if hermes_err.IsExpectedUserError(*errPtr) {
		rc.Log.Warn("Command completed with user error", zap.Duration("duration", duration), zap.Error(*errPtr))
	} else {
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(*errPtr))
	}

	telemetry.TrackCommand(rc.Ctx, rc.Command, success, duration.Milliseconds(), map[string]string{
		"os":         runtime.GOOS,
		"args":       telemetry.TruncateOrHashArgs(RedactArgs(os.Args[1:])),
		"error_type": classifyError(*errPtr),
	})

	_ = logger.Sync()
}

// RedactArgs masks values of credential-bearing flags before they are logged
// or recorded in telemetry.
func RedactArgs(args []string) []string {
	redacted := make([]string, len(args))
	copy(redacted, args)
	for i, arg := range redacted {
		switch {
		case arg == "--password" || arg == "-p":
			if i+1 < len(redacted) {
				redacted[i+1] = "[REDACTED]"
			}
		case strings.HasPrefix(arg, "--password="):
			redacted[i] = "--password=[REDACTED]"
		}
	}
	return redacted
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if hermes_err.IsExpectedUserError(err) {
		return "user"
	}
	return "system"
}

func resolveCallContext(skip int) (component, action string) {
	pc, file, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown"
	}
	parts := strings.Split(file, "/")
	component = parts[len(parts)-2]
	if fn := runtime.FuncForPC(pc); fn != nil {
		name := fn.Name()
		fields := strings.Split(name, ".")
		action = fields[len(fields)-1]
	} else {
		action = "unknown"
	}
	return
}
