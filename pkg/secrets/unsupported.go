// pkg/secrets/unsupported.go

package secrets

import (
	"context"
	"runtime"

	cerr "github.com/cockroachdb/errors"
)

// Unsupported is the secure store on platforms without one. Detection falls
// back to file-only evidence.
type Unsupported struct{}

func (u *Unsupported) Name() string    { return "unsupported" }
func (u *Unsupported) Available() bool { return false }

func (u *Unsupported) Read(ctx context.Context, key string) ([]byte, error) {
	return nil, cerr.Wrapf(ErrUnsupported, "no secure store on %s", runtime.GOOS)
}
