// Package preflight runs environment checks before migration operations so
// failures surface with a fix before any work starts.
package preflight

import (
	"context"
	"fmt"
	"net"
	"os/exec"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Check represents a single preflight check
type Check struct {
	Name        string
	Description string
	Check       func(context.Context) error
	Required    bool
}

// CheckResult contains the result of running preflight checks
type CheckResult struct {
	Name    string
	Passed  bool
	Error   error
	Warning string
}

// RunChecks executes all preflight checks and returns results
// Following Assess → Intervene → Evaluate pattern
func RunChecks(ctx context.Context, checks []Check) ([]CheckResult, error) {
	logger := otelzap.Ctx(ctx)

	logger.Info("=== ASSESS PHASE: Running preflight checks ===",
		zap.Int("total_checks", len(checks)))

	results := make([]CheckResult, 0, len(checks))
	criticalFailures := 0

	for _, check := range checks {
		logger.Debug("Running check", zap.String("check", check.Name))

		result := CheckResult{
			Name:   check.Name,
			Passed: false,
		}

		// Run the check with timeout
		checkCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := check.Check(checkCtx)
		cancel()

		if err != nil {
			result.Error = err
			if check.Required {
				logger.Error("✗ Check failed (REQUIRED)",
					zap.String("check", check.Name),
					zap.Error(err))
				criticalFailures++
			} else {
				logger.Warn("⚠ Check failed (optional)",
					zap.String("check", check.Name),
					zap.Error(err))
				result.Warning = err.Error()
			}
		} else {
			result.Passed = true
			logger.Info("✓ Check passed", zap.String("check", check.Name))
		}

		results = append(results, result)
	}

	if criticalFailures > 0 {
		return results, fmt.Errorf("%d required check(s) failed", criticalFailures)
	}

	logger.Info("=== EVALUATE: All required checks passed ===")
	return results, nil
}

// CheckSSHClient verifies an OpenSSH client is on PATH
func CheckSSHClient(ctx context.Context) error {
	if _, err := exec.LookPath("ssh"); err != nil {
		return fmt.Errorf("ssh client is not installed: %w\n"+
			"Fix: Install an OpenSSH client:\n"+
			"  Ubuntu: sudo apt install openssh-client\n"+
			"  macOS ships one by default",
			err)
	}
	return nil
}

// CheckSshpass verifies sshpass is available for password authentication
func CheckSshpass(ctx context.Context) error {
	if _, err := exec.LookPath("sshpass"); err != nil {
		return fmt.Errorf("sshpass is not installed: %w\n"+
			"Fix: Install sshpass for password-based ssh:\n"+
			"  macOS: brew install hudochenkov/sshpass/sshpass\n"+
			"  Debian/Ubuntu: apt install sshpass\n"+
			"Or use key authentication with --identity",
			err)
	}
	return nil
}

// CheckPort verifies a port is available for binding
func CheckPort(port int) func(context.Context) error {
	return func(ctx context.Context) error {
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			return fmt.Errorf("port %d is already in use\n"+
				"Fix: Stop the service using this port:\n"+
				"  sudo lsof -i :%d\n"+
				"  sudo kill <pid>\n"+
				"Or choose a different listen address with --listen",
				port, port)
		}
		ln.Close()
		return nil
	}
}

// CheckDiskSpace verifies minimum disk space is available at path.
// Credential archives are small; this guards the staging copy, not bulk data.
func CheckDiskSpace(path string, minMB uint64) func(context.Context) error {
	return func(ctx context.Context) error {
		available, err := availableBytes(path)
		if err != nil {
			return fmt.Errorf("failed to check disk space at %s: %w", path, err)
		}

		availableMB := available / (1024 * 1024)
		if availableMB < minMB {
			return fmt.Errorf("insufficient disk space at %s: %dMB available, %dMB required\n"+
				"Fix: Free up disk space:\n"+
				"  Check usage: df -h %s",
				path, availableMB, minMB, path)
		}
		return nil
	}
}

// ExportChecks returns the checks run before building an archive.
func ExportChecks(stagingPath string) []Check {
	return []Check{
		{
			Name:        "Disk Space",
			Description: "Enough space to stage credential files",
			Check:       CheckDiskSpace(stagingPath, 64),
			Required:    true,
		},
	}
}

// RemoteChecks returns the checks run before ssh-based verification.
// sshpass is only required when password auth was requested.
func RemoteChecks(passwordAuth bool) []Check {
	checks := []Check{
		{
			Name:        "SSH Client",
			Description: "OpenSSH client is installed",
			Check:       CheckSSHClient,
			Required:    true,
		},
	}
	if passwordAuth {
		checks = append(checks, Check{
			Name:        "sshpass",
			Description: "sshpass is installed for password authentication",
			Check:       CheckSshpass,
			Required:    true,
		})
	}
	return checks
}

// ServeChecks returns the checks run before starting the local agent.
func ServeChecks(port int) []Check {
	return []Check{
		{
			Name:        fmt.Sprintf("Port %d", port),
			Description: fmt.Sprintf("Port %d is available for binding", port),
			Check:       CheckPort(port),
			Required:    true,
		},
	}
}
