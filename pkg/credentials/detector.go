// pkg/credentials/detector.go

// Package credentials locates developer CLI credentials on the local host.
//
// The Detector is the single presence authority: export, the token gate, and
// listing all consume its results rather than re-deriving "present" from raw
// paths. Every call re-reads the filesystem and secure store, results are
// never cached, and detection has no side effects.
package credentials

import (
	"fmt"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/secrets"
)

// DetectionResult reports one tool's presence on this host.
type DetectionResult struct {
	ToolID  string
	Present bool

	// Source is the first positive evidence source in catalog order:
	// SourceSecureStore, then SourceFile. Empty when absent.
	Source string

	// ContributingPaths lists the local files whose content established
	// presence. Empty for purely secure-store evidence.
	ContributingPaths []string
}

// Detector checks the catalog against one home directory and one platform
// secure store.
type Detector struct {
	home   string
	source secrets.Source
}

// NewDetector creates a detector rooted at home. Pass secrets.ForPlatform()
// for real use, or nil for file-only detection; tests pass a t.TempDir()
// home and a mock source.
func NewDetector(home string, source secrets.Source) *Detector {
	return &Detector{home: home, source: source}
}

// Home returns the home directory this detector reads from.
func (d *Detector) Home() string {
	return d.home
}

// Detect checks a single tool. Unknown tool IDs are a validation error.
func (d *Detector) Detect(rc *hermes_io.RuntimeContext, toolID string) (DetectionResult, error) {
	entry, ok := Lookup(toolID)
	if !ok {
		return DetectionResult{}, hermes_err.NewValidationError(
			fmt.Sprintf("unknown tool %q", toolID),
			"Known tools: github, claude, codex")
	}
	return d.detect(rc, entry), nil
}

// DetectAll checks every catalog entry in catalog order. Per-tool absence is
// a result, not an error.
func (d *Detector) DetectAll(rc *hermes_io.RuntimeContext) ([]DetectionResult, error) {
	results := make([]DetectionResult, 0, len(Catalog))
	present := 0
	for _, entry := range Catalog {
		result := d.detect(rc, entry)
		if result.Present {
			present++
		}
		results = append(results, result)
	}

	otelzap.Ctx(rc.Ctx).Info("🔍 Credential detection complete",
		zap.Int("tools_checked", len(results)),
		zap.Int("tools_present", present))
	return results, nil
}

func (d *Detector) detect(rc *hermes_io.RuntimeContext, entry CatalogEntry) DetectionResult {
	logger := otelzap.Ctx(rc.Ctx)
	result := DetectionResult{ToolID: entry.ToolID}

	if entry.SecureStoreKey != "" && d.source != nil && d.source.Available() {
		switch _, err := d.source.Read(rc.Ctx, entry.SecureStoreKey); {
		case err == nil:
			result.Present = true
			result.Source = SourceSecureStore
		case cerr.Is(err, secrets.ErrUserCancelled):
			// The item exists, the operator declined to unlock it. That is
			// presence evidence even though the secret is unextractable.
			result.Present = true
			result.Source = SourceSecureStore
			logger.Warn("Secure store access cancelled, counting item as present",
				zap.String("tool", entry.ToolID),
				zap.String("store", d.source.Name()))
		case cerr.Is(err, secrets.ErrNotFound):
			// No store entry, fall through to the file marker.
		default:
			logger.Warn("Secure store lookup failed, falling back to file detection",
				zap.String("tool", entry.ToolID),
				zap.String("store", d.source.Name()),
				zap.Error(err))
		}
	}

	if paths := d.markerPaths(rc, entry); len(paths) > 0 {
		if !result.Present {
			result.Present = true
			result.Source = SourceFile
		}
		result.ContributingPaths = paths
	}

	logger.Debug("Checked credential presence",
		zap.String("tool", entry.ToolID),
		zap.Bool("present", result.Present),
		zap.String("source", result.Source),
		zap.Strings("paths", result.ContributingPaths))
	return result
}
