// pkg/verify/remote.go

package verify

import (
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// VerifyRemote checks every catalogued tool on the transport's target host.
// Per-tool failures fold into the statuses; the returned error is reserved
// for calling-host problems such as a missing sshpass. No retries.
func VerifyRemote(rc *hermes_io.RuntimeContext, t Transport) (*RemoteTokenVerification, error) {
	logger := otelzap.Ctx(rc.Ctx)
	logger.Info("Verifying credentials on remote target",
		zap.String("transport", t.Name()))

	statuses, err := t.VerifyTokens(rc.Ctx)
	if err != nil {
		return nil, err
	}

	authenticated := 0
	for _, status := range statuses {
		if status.Authenticated {
			authenticated++
		}
	}
	logger.Info("✅ Remote verification complete",
		zap.String("transport", t.Name()),
		zap.Int("tools", len(statuses)),
		zap.Int("authenticated", authenticated))

	return &RemoteTokenVerification{
		Statuses:  statuses,
		CheckedAt: time.Now().UTC(),
	}, nil
}
