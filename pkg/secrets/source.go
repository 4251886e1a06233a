// Package secrets abstracts platform secure stores behind a read-only Source.
//
// Credential detection treats the secure store as one more place a live
// credential can be, selected once per process by platform. Implementations
// must be safe for concurrent use.
package secrets

import (
	"context"
	"errors"
	"runtime"
)

// Common errors returned by Source implementations
var (
	// ErrNotFound indicates the requested secret does not exist
	ErrNotFound = errors.New("secret not found")

	// ErrUserCancelled indicates the user declined the secure store prompt
	ErrUserCancelled = errors.New("secure store access cancelled by user")

	// ErrUnsupported indicates no secure store exists on this platform
	ErrUnsupported = errors.New("secure store not supported on this platform")
)

// Source is a read-only view of the platform secure store.
type Source interface {
	// Read retrieves the secret stored under key.
	//
	// Returns:
	//   - ErrNotFound: no secret under that key
	//   - ErrUserCancelled: the user dismissed the access prompt
	//   - ErrUnsupported: this platform has no secure store
	Read(ctx context.Context, key string) ([]byte, error)

	// Available reports whether the store can be queried at all on this host.
	Available() bool

	// Name returns the backend type (e.g., "macos-keychain")
	Name() string
}

// ForPlatform selects the secure store implementation for the current OS.
// Exactly one source per platform; everything non-darwin is file-only.
func ForPlatform() Source {
	if runtime.GOOS == "darwin" {
		return NewKeychain()
	}
	return &Unsupported{}
}
