// pkg/verify/local.go

package verify

import (
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// CheckRequired gates migration on locally present credentials. The answer
// is derived from a fresh detection pass every call. Missing required tools
// are warned with their remedial command; a missing codex only warns and
// never fails the gate.
func CheckRequired(rc *hermes_io.RuntimeContext, det *credentials.Detector) (*LocalTokenVerification, error) {
	logger := otelzap.Ctx(rc.Ctx)

	results, err := det.DetectAll(rc)
	if err != nil {
		return nil, err
	}

	verification := &LocalTokenVerification{}
	present := make(map[string]bool, len(results))
	for _, result := range results {
		present[result.ToolID] = result.Present
		switch result.ToolID {
		case credentials.ToolGitHub:
			verification.GitHub = result.Present
		case credentials.ToolClaude:
			verification.Claude = result.Present
		case credentials.ToolCodex:
			verification.Codex = result.Present
		}
	}

	// The catalog's Required flags decide the gate.
	verification.AllRequiredPresent = true
	for _, toolID := range credentials.RequiredTools() {
		verification.AllRequiredPresent = verification.AllRequiredPresent && present[toolID]
	}

	if !verification.GitHub {
		logger.Warn("GitHub CLI credentials missing",
			zap.String("tool", credentials.ToolGitHub),
			zap.String("fix", RemedialCommands[credentials.ToolGitHub]))
	}
	if !verification.Claude {
		logger.Warn("Claude Code credentials missing",
			zap.String("tool", credentials.ToolClaude),
			zap.String("fix", RemedialCommands[credentials.ToolClaude]))
	}
	if !verification.Codex {
		logger.Warn("Codex credentials missing (optional, migration proceeds without it)",
			zap.String("tool", credentials.ToolCodex),
			zap.String("fix", RemedialCommands[credentials.ToolCodex]))
	}

	if verification.AllRequiredPresent {
		logger.Info("✅ All required credentials present",
			zap.Bool("github", verification.GitHub),
			zap.Bool("claude", verification.Claude),
			zap.Bool("codex", verification.Codex))
	}

	return verification, nil
}
