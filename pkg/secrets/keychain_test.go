package secrets

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/execute"
)

func fixedRunner(output string, err error) execute.Runner {
	return func(ctx context.Context, opts execute.Options) (string, error) {
		return output, err
	}
}

func TestKeychainReadSuccess(t *testing.T) {
	k := NewKeychainWithRunner(fixedRunner("{\"claudeAiOauth\":{\"accessToken\":\"tok\"}}\n", nil))

	secret, err := k.Read(context.Background(), "Claude Code-credentials")
	require.NoError(t, err)
	assert.Equal(t, `{"claudeAiOauth":{"accessToken":"tok"}}`, string(secret))
}

func TestKeychainReadEmptyOutput(t *testing.T) {
	k := NewKeychainWithRunner(fixedRunner("  \n", nil))

	_, err := k.Read(context.Background(), "Claude Code-credentials")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeychainReadClassification(t *testing.T) {
	execErr := fmt.Errorf("command security failed after 1 attempts")

	tests := []struct {
		name   string
		output string
		want   error
	}{
		{
			name:   "item_not_found",
			output: "security: SecKeychainSearchCopyNext: The specified item could not be found in the keychain.",
			want:   ErrNotFound,
		},
		{
			name:   "user_interaction_not_allowed",
			output: "security: SecKeychainItemCopyContent: User interaction is not allowed.",
			want:   ErrUserCancelled,
		},
		{
			name:   "authorization_cancelled",
			output: "security: Authorization cancelled",
			want:   ErrUserCancelled,
		},
		{
			name:   "user_canceled",
			output: "security: The authorization was canceled by the user. (User canceled the operation)",
			want:   ErrUserCancelled,
		},
		{
			name:   "silent_failure_treated_as_not_found",
			output: "",
			want:   ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k := NewKeychainWithRunner(fixedRunner(tt.output, execErr))
			_, err := k.Read(context.Background(), "Claude Code-credentials")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestKeychainReadUnrecognizedError(t *testing.T) {
	execErr := errors.New("boom")
	k := NewKeychainWithRunner(fixedRunner("security: some novel failure", execErr))

	_, err := k.Read(context.Background(), "Claude Code-credentials")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrUserCancelled)
	assert.Contains(t, err.Error(), "some novel failure")
}

func TestUnsupportedSource(t *testing.T) {
	u := &Unsupported{}
	assert.False(t, u.Available())

	_, err := u.Read(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestMockSource(t *testing.T) {
	m := NewMock(map[string][]byte{"svc": []byte("secret")})

	secret, err := m.Read(context.Background(), "svc")
	require.NoError(t, err)
	assert.Equal(t, "secret", string(secret))

	_, err = m.Read(context.Background(), "other")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestForPlatform(t *testing.T) {
	// Whatever the host, the selected source must be coherent: either an
	// available keychain or an explicitly unsupported store.
	source := ForPlatform()
	require.NotNil(t, source)
	if !source.Available() {
		_, err := source.Read(context.Background(), "anything")
		assert.Error(t, err)
	}
}
