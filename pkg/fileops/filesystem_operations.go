// Package fileops provides infrastructure implementations for file operations
package fileops

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// FileSystemOperations provides filesystem operations
type FileSystemOperations struct {
	logger *zap.Logger
}

// NewFileSystemOperations creates a new filesystem operations implementation
func NewFileSystemOperations(logger *zap.Logger) *FileSystemOperations {
	return &FileSystemOperations{
		logger: logger.Named("filesystem"),
	}
}

// ReadFile reads the entire contents of a file
func (f *FileSystemOperations) ReadFile(ctx context.Context, path string) ([]byte, error) {
	f.logger.Debug("Reading file", zap.String("path", path))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}

	f.logger.Debug("File read successfully",
		zap.String("path", path),
		zap.Int("size", len(data)))

	return data, nil
}

// WriteFile writes data to a file, creating parent directories if necessary
func (f *FileSystemOperations) WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error {
	f.logger.Debug("Writing file",
		zap.String("path", path),
		zap.Int("size", len(data)),
		zap.String("permissions", perm.String()))

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if err := os.WriteFile(path, data, perm); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}

	return nil
}

// CopyFile copies a file from source to destination. When perm is zero the
// source file's mode is preserved. Modification time is carried over so
// archived files keep their original timestamps.
func (f *FileSystemOperations) CopyFile(ctx context.Context, src, dst string, perm os.FileMode) error {
	f.logger.Debug("Copying file",
		zap.String("src", src),
		zap.String("dst", dst))

	sourceFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", src, err)
	}
	defer func() {
		if err := sourceFile.Close(); err != nil {
			f.logger.Warn("Failed to close source file", zap.Error(err))
		}
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	if perm == 0 {
		perm = sourceInfo.Mode().Perm()
	}

	dstDir := filepath.Dir(dst)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory %s: %w", dstDir, err)
	}

	destFile, err := os.OpenFile(dst, os.O_RDWR|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	_, err = io.Copy(destFile, sourceFile)
	closeErr := destFile.Close()
	if err != nil {
		return fmt.Errorf("failed to copy contents from %s to %s: %w", src, dst, err)
	}
	if closeErr != nil {
		return fmt.Errorf("failed to close destination file %s: %w", dst, closeErr)
	}

	// The copy may run as a different user than the original owner, so the
	// mode set at open time can be masked. Reapply it explicitly.
	if err := os.Chmod(dst, perm); err != nil {
		return fmt.Errorf("failed to set mode on %s: %w", dst, err)
	}

	if err := os.Chtimes(dst, time.Now(), sourceInfo.ModTime()); err != nil {
		f.logger.Warn("Failed to preserve modification time",
			zap.String("dst", dst),
			zap.Error(err))
	}

	f.logger.Debug("File copied successfully",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.Int64("size", sourceInfo.Size()))

	return nil
}

// CopyDir recursively copies a directory tree, preserving file modes and
// modification times. Symlinks are skipped so a crafted link cannot pull
// content from outside the source tree.
func (f *FileSystemOperations) CopyDir(ctx context.Context, src, dst string) error {
	f.logger.Debug("Copying directory",
		zap.String("src", src),
		zap.String("dst", dst))

	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to compute relative path for %s: %w", path, err)
		}
		target := filepath.Join(dst, rel)

		if d.Type()&os.ModeSymlink != 0 {
			f.logger.Debug("Skipping symlink", zap.String("path", path))
			return nil
		}

		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return fmt.Errorf("failed to stat directory %s: %w", path, err)
			}
			if err := os.MkdirAll(target, info.Mode().Perm()); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", target, err)
			}
			return nil
		}

		if !d.Type().IsRegular() {
			f.logger.Debug("Skipping irregular file", zap.String("path", path))
			return nil
		}

		return f.CopyFile(ctx, path, target, 0)
	})
}

// DeleteFile removes a file
func (f *FileSystemOperations) DeleteFile(ctx context.Context, path string) error {
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", path, err)
	}

	f.logger.Debug("File deleted successfully", zap.String("path", path))
	return nil
}

// Exists checks if a file or directory exists
func (f *FileSystemOperations) Exists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check if path exists %s: %w", path, err)
}
