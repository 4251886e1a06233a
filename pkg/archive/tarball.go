// pkg/archive/tarball.go

package archive

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	cerr "github.com/cockroachdb/errors"
)

// entryTarget resolves an archive entry name under destDir, rejecting
// absolute names and traversal that would escape the extraction directory.
func entryTarget(destDir, name string) (string, error) {
	if name == "" {
		return "", cerr.New("archive entry with empty name")
	}
	if path.IsAbs(name) || filepath.IsAbs(filepath.FromSlash(name)) {
		return "", cerr.Newf("archive entry %q has an absolute path", name)
	}

	target := filepath.Join(destDir, filepath.FromSlash(name))
	base := filepath.Clean(destDir)
	if target != base && !strings.HasPrefix(target, base+string(os.PathSeparator)) {
		return "", cerr.Newf("archive entry %q escapes the extraction directory", name)
	}
	return target, nil
}

func packTarGz(ctx context.Context, stagingDir, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return cerr.Wrap(err, "create archive file")
	}

	gz := gzip.NewWriter(out)
	tw := tar.NewWriter(gz)

	walkErr := filepath.WalkDir(stagingDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(stagingDir, p)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !d.IsDir() && !info.Mode().IsRegular() {
			// Symlinks and specials never enter the archive.
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		if d.IsDir() {
			header.Name += "/"
		}
		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		f, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(tw, f)
		f.Close()
		return err
	})

	// Close in reverse order so trailing gzip blocks are flushed. The first
	// failure wins, and a half-written archive is removed.
	if err := tw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := gz.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := out.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		_ = os.Remove(outputPath)
		return cerr.Wrap(walkErr, "pack tar.gz archive")
	}
	return nil
}

func unpackTarGz(ctx context.Context, archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return cerr.Wrap(err, "open archive")
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return cerr.Wrap(err, "read gzip stream")
	}
	defer gz.Close()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if cerr.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return cerr.Wrap(err, "read tar header")
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := entryTarget(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode).Perm()); err != nil {
				return cerr.Wrapf(err, "create directory %s", target)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return cerr.Wrapf(err, "prepare %s", target)
			}
			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(header.Mode).Perm())
			if err != nil {
				return cerr.Wrapf(err, "create %s", target)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return cerr.Wrapf(err, "write %s", target)
			}
			if err := out.Close(); err != nil {
				return cerr.Wrapf(err, "close %s", target)
			}
		default:
			// Symlinks and specials are not restored.
		}
	}
}
