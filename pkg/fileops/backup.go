// pkg/fileops/backup.go

package fileops

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// BackupTimestampLayout names backup files down to the second.
const BackupTimestampLayout = "20060102-150405"

// BackupFile copies path to <path>.backup.<timestamp> and returns the backup
// path. The original file is left untouched. When a backup with the same
// timestamp already exists, a numeric suffix is appended rather than
// overwriting it.
func (f *FileSystemOperations) BackupFile(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat %s before backup: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("refusing to back up directory %s as a file", path)
	}

	backupPath := fmt.Sprintf("%s.backup.%s", path, time.Now().Format(BackupTimestampLayout))
	for n := 1; ; n++ {
		if _, err := os.Stat(backupPath); os.IsNotExist(err) {
			break
		}
		backupPath = fmt.Sprintf("%s.backup.%s.%d", path, time.Now().Format(BackupTimestampLayout), n)
	}

	if err := f.CopyFile(ctx, path, backupPath, info.Mode().Perm()); err != nil {
		return "", fmt.Errorf("failed to back up %s: %w", path, err)
	}

	f.logger.Info("Created backup",
		zap.String("original", path),
		zap.String("backup", backupPath))

	return backupPath, nil
}
