// pkg/archive/staging.go

package archive

import (
	"io/fs"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/fileops"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// stageRelPath copies one catalog path (relative to home) into the staging
// tree, preserving relative structure. Missing sources are skipped: catalog
// paths are candidates, not promises. Directories are walked through the
// exclusion filter, and matching a directory prunes its whole subtree.
// Returns the number of files staged.
func stageRelPath(rc *hermes_io.RuntimeContext, fsOps *fileops.FileSystemOperations, home, stagingDir, rel string) (int, error) {
	logger := otelzap.Ctx(rc.Ctx)
	src := filepath.Join(home, filepath.FromSlash(rel))

	info, err := os.Lstat(src)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("Catalog path not on disk, skipping",
				zap.String("path", src))
			return 0, nil
		}
		return 0, cerr.Wrapf(err, "stat %s", src)
	}

	if Excluded(filepath.FromSlash(rel)) {
		return 0, nil
	}
	if info.Mode()&os.ModeSymlink != 0 {
		logger.Debug("Skipping symlinked catalog path", zap.String("path", src))
		return 0, nil
	}

	if !info.IsDir() {
		if !info.Mode().IsRegular() {
			return 0, nil
		}
		dst := filepath.Join(stagingDir, filepath.FromSlash(rel))
		if err := fsOps.CopyFile(rc.Ctx, src, dst, 0); err != nil {
			return 0, err
		}
		return 1, nil
	}

	return stageDir(rc, fsOps, src, filepath.Join(stagingDir, filepath.FromSlash(rel)), rel)
}

// stageDir walks a source directory into the staging tree. relRoot is the
// directory's own path relative to home, so exclusion patterns see full
// home-relative paths.
func stageDir(rc *hermes_io.RuntimeContext, fsOps *fileops.FileSystemOperations, srcDir, dstDir, relRoot string) (int, error) {
	staged := 0

	err := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := rc.Ctx.Err(); err != nil {
			return err
		}

		inner, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		homeRel := filepath.Join(filepath.FromSlash(relRoot), inner)

		if Excluded(homeRel) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		target := filepath.Join(dstDir, inner)
		if d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm())
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if err := fsOps.CopyFile(rc.Ctx, p, target, 0); err != nil {
			return err
		}
		staged++
		return nil
	})
	if err != nil {
		return staged, cerr.Wrapf(err, "stage directory %s", srcDir)
	}
	return staged, nil
}
