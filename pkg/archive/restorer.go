// pkg/archive/restorer.go

package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/shared"
)

// sensitiveBaseNames are restored with owner-only permissions regardless of
// what the archive recorded.
var sensitiveBaseNames = map[string]struct{}{
	"hosts.yml":         {},
	"auth.json":         {},
	".credentials.json": {},
	".claude.json":      {},
	"config.yml":        {},
}

// ItemFailure records one manifest item that could not be restored.
type ItemFailure struct {
	Item   string
	Reason string
}

// ImportReport details what an import did, item by item. Partial success is
// a report, not an error: failures accumulate here while remaining items
// restore.
type ImportReport struct {
	Restored []string
	Skipped  []string
	BackedUp []string
	Failed   []ItemFailure
	Errors   *multierror.Error
}

// Restorer imports credential archives into a home directory.
type Restorer struct {
	home string
	fs   *fileops.FileSystemOperations
}

// NewRestorer creates a restorer targeting the given home directory.
func NewRestorer(home string) *Restorer {
	return &Restorer{
		home: home,
		fs:   fileops.NewFileSystemOperations(zap.L()),
	}
}

// Import unpacks an archive, validates its manifest, and restores the listed
// items under the target home. Existing files are backed up first, never
// overwritten in place, never deleted. A per-item failure is recorded in the
// report and does not stop the remaining items.
func (r *Restorer) Import(rc *hermes_io.RuntimeContext, archivePath string) (*ImportReport, error) {
	logger := otelzap.Ctx(rc.Ctx)
	start := time.Now()

	// Assessment: the archive must exist and carry a valid manifest before
	// any target file is touched.
	if _, err := os.Stat(archivePath); err != nil {
		if os.IsNotExist(err) {
			return nil, hermes_err.NewNotFoundError(
				fmt.Sprintf("archive not found: %s", archivePath),
				"Check the path, or create an archive with: hermes export")
		}
		return nil, cerr.Wrapf(err, "stat archive %s", archivePath)
	}

	format, err := DetectFormat(archivePath)
	if err != nil {
		return nil, hermes_err.NewValidationError(
			fmt.Sprintf("%s is not a credential archive: %v", archivePath, err),
			"Only .tar.gz and .zip archives produced by 'hermes export' can be imported")
	}

	unpackDir, err := os.MkdirTemp("", "hermes-import-")
	if err != nil {
		return nil, cerr.Wrap(err, "create unpack directory")
	}
	defer func() {
		if err := os.RemoveAll(unpackDir); err != nil {
			logger.Warn("Failed to remove unpack directory",
				zap.String("path", unpackDir),
				zap.Error(err))
		}
	}()

	if err := Unpack(rc.Ctx, format, archivePath, unpackDir); err != nil {
		return nil, hermes_err.NewValidationError(
			fmt.Sprintf("could not unpack %s: %v", archivePath, err),
			"The archive may be corrupt or truncated; re-run 'hermes export' on the source host")
	}

	manifest, err := LoadManifest(filepath.Join(unpackDir, ManifestFilename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, hermes_err.NewValidationError(
				"archive has no manifest.json at its root",
				"Only archives produced by 'hermes export' can be imported")
		}
		return nil, hermes_err.NewValidationError(
			fmt.Sprintf("manifest is unreadable: %v", err))
	}
	if err := manifest.Validate(); err != nil {
		return nil, hermes_err.NewValidationError(
			fmt.Sprintf("manifest is invalid: %v", err))
	}

	logger.Info("Importing credential archive",
		zap.String("archive", archivePath),
		zap.String("format", string(format)),
		zap.String("source_hostname", manifest.SourceHostname),
		zap.String("source_os", manifest.SourceOS),
		zap.Int("items", len(manifest.Items)))

	// Intervention: restore item by item in manifest order.
	report := &ImportReport{}
	for _, item := range manifest.Items {
		if err := r.restoreItem(rc, unpackDir, item, report); err != nil {
			logger.Warn("Item restore failed, continuing with remaining items",
				zap.String("item", item),
				zap.Error(err))
			report.Failed = append(report.Failed, ItemFailure{Item: item, Reason: err.Error()})
			report.Errors = multierror.Append(report.Errors, cerr.Wrapf(err, "restore %s", item))
		}
	}

	// Evaluation: summarize what happened.
	logger.Info("✅ Import complete",
		zap.Int("restored", len(report.Restored)),
		zap.Int("skipped", len(report.Skipped)),
		zap.Int("backed_up", len(report.BackedUp)),
		zap.Int("failed", len(report.Failed)),
		zap.Duration("duration", time.Since(start)))
	return report, nil
}

func (r *Restorer) restoreItem(rc *hermes_io.RuntimeContext, unpackDir, item string, report *ImportReport) error {
	logger := otelzap.Ctx(rc.Ctx)

	staged := filepath.Join(unpackDir, filepath.FromSlash(item))
	if _, err := os.Stat(staged); err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Manifest item missing from archive, skipping",
				zap.String("item", item))
			report.Skipped = append(report.Skipped, item)
			return nil
		}
		return cerr.Wrapf(err, "stat staged item")
	}

	target := filepath.Join(r.home, filepath.FromSlash(item))

	if info, err := os.Lstat(target); err == nil {
		backupPath, err := r.backupExisting(rc, target, info)
		if err != nil {
			return cerr.Wrap(err, "back up existing file")
		}
		report.BackedUp = append(report.BackedUp, backupPath)
		logger.Info("Existing file preserved",
			zap.String("path", target),
			zap.String("backup", backupPath))
	}

	if err := os.MkdirAll(filepath.Dir(target), shared.DirPermOwnerOnly); err != nil {
		return cerr.Wrapf(err, "create parent directory for %s", target)
	}

	if err := r.fs.CopyFile(rc.Ctx, staged, target, 0); err != nil {
		return err
	}

	r.hardenMode(rc, target)

	report.Restored = append(report.Restored, item)
	return nil
}

// backupExisting moves the current occupant of target aside. Regular files
// go through the copying backup so the original survives even a failed
// restore; directories and symlinks are renamed wholesale.
func (r *Restorer) backupExisting(rc *hermes_io.RuntimeContext, target string, info os.FileInfo) (string, error) {
	if info.Mode().IsRegular() {
		return r.fs.BackupFile(rc.Ctx, target)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", target, time.Now().Format(fileops.BackupTimestampLayout))
	if err := os.Rename(target, backupPath); err != nil {
		return "", err
	}
	return backupPath, nil
}

// hardenMode forces owner-only permissions on restored credential files.
// Chmod failure is a warning, not an abort.
func (r *Restorer) hardenMode(rc *hermes_io.RuntimeContext, target string) {
	if _, sensitive := sensitiveBaseNames[filepath.Base(target)]; !sensitive {
		return
	}
	if err := os.Chmod(target, shared.FilePermOwnerReadWrite); err != nil {
		otelzap.Ctx(rc.Ctx).Warn("Could not harden file mode",
			zap.String("path", target),
			zap.Error(err))
	}
}
