// pkg/secrets/mock.go

package secrets

import (
	"context"

	cerr "github.com/cockroachdb/errors"
)

// Mock is an in-memory Source for tests.
type Mock struct {
	Secrets     map[string][]byte
	ReadErr     error
	Unavailable bool
}

// NewMock creates a mock source holding the given secrets.
func NewMock(secrets map[string][]byte) *Mock {
	if secrets == nil {
		secrets = make(map[string][]byte)
	}
	return &Mock{Secrets: secrets}
}

func (m *Mock) Name() string    { return "mock" }
func (m *Mock) Available() bool { return !m.Unavailable }

func (m *Mock) Read(ctx context.Context, key string) ([]byte, error) {
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	secret, ok := m.Secrets[key]
	if !ok {
		return nil, cerr.Wrapf(ErrNotFound, "mock has no secret %q", key)
	}
	return secret, nil
}
