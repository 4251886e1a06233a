// pkg/secrets/keychain.go

package secrets

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
)

// Keychain reads secrets from the macOS Keychain via security(1).
// Reading may trigger a GUI authorization prompt, so the timeout is generous.
type Keychain struct {
	Timeout time.Duration
	runner  execute.Runner
}

// NewKeychain creates a Keychain source backed by the real security binary.
func NewKeychain() *Keychain {
	return &Keychain{
		Timeout: 30 * time.Second,
		runner:  execute.Run,
	}
}

// NewKeychainWithRunner creates a Keychain source with an injected runner.
func NewKeychainWithRunner(runner execute.Runner) *Keychain {
	return &Keychain{
		Timeout: 30 * time.Second,
		runner:  runner,
	}
}

func (k *Keychain) Name() string { return "macos-keychain" }

// Available reports whether security(1) can be invoked on this host.
func (k *Keychain) Available() bool {
	if runtime.GOOS != "darwin" {
		return false
	}
	_, err := exec.LookPath("security")
	return err == nil
}

// Read extracts the generic password stored under the given service name.
func (k *Keychain) Read(ctx context.Context, key string) ([]byte, error) {
	output, err := k.runner(ctx, execute.Options{
		Command: "security",
		Args:    []string{"find-generic-password", "-s", key, "-w"},
		Timeout: k.Timeout,
		Capture: true,
	})

	if err == nil {
		secret := strings.TrimSpace(output)
		if secret == "" {
			return nil, cerr.Wrapf(ErrNotFound, "keychain item %q is empty", key)
		}
		return []byte(secret), nil
	}

	// security(1) reports the reason on stderr, which the runner folds into
	// the captured output.
	lower := strings.ToLower(output)
	switch {
	case strings.Contains(lower, "could not be found"):
		return nil, cerr.Wrapf(ErrNotFound, "no keychain item for service %q", key)
	case strings.Contains(lower, "user interaction is not allowed"),
		strings.Contains(lower, "authorization cancelled"),
		strings.Contains(lower, "user canceled"):
		return nil, cerr.Wrapf(ErrUserCancelled, "keychain access for %q", key)
	case strings.TrimSpace(output) == "":
		// Non-zero exit without diagnostics behaves like not-found.
		return nil, cerr.Wrapf(ErrNotFound, "no keychain item for service %q", key)
	default:
		return nil, cerr.Wrapf(err, "security command failed for %q: %s", key, strings.TrimSpace(output))
	}
}
