// pkg/health/orchestrator.go

// Package health runs the startup reachability and credential checks against
// a remote target and renders the outcome. Nothing here is fatal: every
// failure folds into the result.
package health

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/verify"
)

// HealthCheckResult is everything one pass learned about the target.
type HealthCheckResult struct {
	Transport string
	Reachable bool
	Latency   time.Duration
	Statuses  []verify.TokenStatus

	// Err carries the reachability or verification failure, empty when the
	// pass completed.
	Err string
}

// RunHealthChecks pings the target and, only when reachable, verifies every
// catalogued tool. An unreachable target short-circuits: no credential
// probes are started and the result carries just the reachability failure.
func RunHealthChecks(rc *hermes_io.RuntimeContext, t verify.Transport) *HealthCheckResult {
	logger := otelzap.Ctx(rc.Ctx)
	result := &HealthCheckResult{Transport: t.Name()}

	latency, err := t.Ping(rc.Ctx)
	result.Latency = latency
	if err != nil {
		result.Err = err.Error()
		logger.Warn("Health check target unreachable",
			zap.String("transport", t.Name()),
			zap.Error(err))
		return result
	}
	result.Reachable = true
	logger.Debug("Health check target reachable",
		zap.String("transport", t.Name()),
		zap.Duration("latency", latency))

	verification, err := verify.VerifyRemote(rc, t)
	if err != nil {
		result.Err = err.Error()
		logger.Warn("Health check verification failed",
			zap.String("transport", t.Name()),
			zap.Error(err))
		return result
	}
	result.Statuses = verification.Statuses
	return result
}
