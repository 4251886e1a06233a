// pkg/archive/builder.go

// Package archive packages detected credentials into a portable archive and
// restores such archives onto a destination host.
//
// Export stages everything into a scoped temp directory first, builds the
// manifest from what was actually staged, then packs the platform-native
// container. Import trusts only the manifest: per-item failures are reported,
// never fatal, and existing files are backed up rather than overwritten.
package archive

import (
	"os"
	"path/filepath"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/secrets"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/shared"
)

// Builder exports present credentials into an archive.
type Builder struct {
	detector *credentials.Detector
	source   secrets.Source
	fs       *fileops.FileSystemOperations
}

// NewBuilder creates a builder over the given detector and secret source.
// The source lets export extract live secrets that only exist in the
// platform store.
func NewBuilder(detector *credentials.Detector, source secrets.Source) *Builder {
	return &Builder{
		detector: detector,
		source:   source,
		fs:       fileops.NewFileSystemOperations(zap.L()),
	}
}

// Export detects present credentials, stages them through the exclusion
// filter, and packages them with a manifest. Returns the archive path.
// An empty outputPath defaults to hermes-credentials-<hostname>-<timestamp>
// with the platform-native extension in the working directory.
func (b *Builder) Export(rc *hermes_io.RuntimeContext, outputPath string) (string, error) {
	logger := otelzap.Ctx(rc.Ctx)
	start := time.Now()

	// Assessment: what is actually present on this machine.
	results, err := b.detector.DetectAll(rc)
	if err != nil {
		return "", err
	}
	var present []credentials.DetectionResult
	for _, result := range results {
		if result.Present {
			present = append(present, result)
		}
	}
	if len(present) == 0 {
		return "", hermes_err.NewNotFoundError(
			"no credentials found to export",
			"Log in to at least one tool first:",
			"GitHub CLI: Run 'gh auth login'",
			"Claude Code: Run 'claude', then type /login",
			"Codex: Run 'codex login'")
	}

	if outputPath == "" {
		outputPath = DefaultArchiveName(time.Now())
	}
	format := FormatForPath(outputPath)

	logger.Info("Exporting credentials",
		zap.Int("tools", len(present)),
		zap.String("output", outputPath),
		zap.String("format", string(format)))

	// Intervention: stage into a scoped temp dir, removed on every exit path.
	stagingDir, err := os.MkdirTemp("", "hermes-export-")
	if err != nil {
		return "", cerr.Wrap(err, "create staging directory")
	}
	defer func() {
		if err := os.RemoveAll(stagingDir); err != nil {
			logger.Warn("Failed to remove staging directory",
				zap.String("path", stagingDir),
				zap.Error(err))
		}
	}()

	stagedFiles := 0
	for _, result := range present {
		entry, ok := credentials.Lookup(result.ToolID)
		if !ok {
			continue
		}

		for _, rel := range entry.LocalPaths {
			n, err := stageRelPath(rc, b.fs, b.detector.Home(), stagingDir, rel)
			if err != nil {
				return "", cerr.Wrapf(err, "stage %s", rel)
			}
			stagedFiles += n
		}

		if entry.SecureStoreKey != "" {
			n, err := b.extractSecret(rc, entry, stagingDir)
			if err != nil {
				return "", err
			}
			stagedFiles += n
		}
	}
	if stagedFiles == 0 {
		return "", hermes_err.NewNotFoundError(
			"credentials were detected but nothing could be staged",
			"If the secret lives in the platform keychain, approve the access prompt and retry")
	}

	manifest, err := BuildManifest(stagingDir)
	if err != nil {
		return "", err
	}
	if err := manifest.Write(stagingDir); err != nil {
		return "", err
	}

	// Evaluation: package, then verify the archive exists and is non-empty.
	if err := Pack(rc.Ctx, format, stagingDir, outputPath); err != nil {
		return "", cerr.Wrap(err, "package archive")
	}
	info, err := os.Stat(outputPath)
	if err != nil {
		return "", cerr.Wrap(err, "archive was not created")
	}
	if info.Size() == 0 {
		return "", cerr.Newf("archive %s is empty", outputPath)
	}

	logger.Info("✅ Credential archive created",
		zap.String("path", outputPath),
		zap.Int("items", len(manifest.Items)),
		zap.Int64("size_bytes", info.Size()),
		zap.Duration("duration", time.Since(start)))
	return outputPath, nil
}

// extractSecret pulls the tool's live secret out of the platform store and
// writes it to the flat-file location inside the staging tree. The
// destination host has no store re-injection, so this flat file is what the
// tool reads there. A store miss or a declined prompt degrades the archive,
// it never fails the export.
func (b *Builder) extractSecret(rc *hermes_io.RuntimeContext, entry credentials.CatalogEntry, stagingDir string) (int, error) {
	logger := otelzap.Ctx(rc.Ctx)
	if b.source == nil || !b.source.Available() {
		return 0, nil
	}

	secret, err := b.source.Read(rc.Ctx, entry.SecureStoreKey)
	switch {
	case err == nil:
	case cerr.Is(err, secrets.ErrNotFound):
		return 0, nil
	case cerr.Is(err, secrets.ErrUserCancelled):
		logger.Warn("Secure store access cancelled, archive will not carry the extracted secret",
			zap.String("tool", entry.ToolID))
		return 0, nil
	default:
		logger.Warn("Secure store read failed, continuing with file content only",
			zap.String("tool", entry.ToolID),
			zap.Error(err))
		return 0, nil
	}

	dst := filepath.Join(stagingDir, filepath.FromSlash(credentials.ClaudeCredentialsRelPath))
	if err := b.fs.WriteFile(rc.Ctx, dst, secret, shared.FilePermOwnerReadWrite); err != nil {
		return 0, cerr.Wrap(err, "write extracted secret into staging")
	}

	logger.Info("Extracted secure store secret into staging",
		zap.String("tool", entry.ToolID),
		zap.String("relative_path", credentials.ClaudeCredentialsRelPath))
	return 1, nil
}
