// pkg/archive/zipball.go

package archive

import (
	"archive/zip"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	cerr "github.com/cockroachdb/errors"
)

func packZip(ctx context.Context, stagingDir, outputPath string) error {
	out, err := os.Create(outputPath)
	if err != nil {
		return cerr.Wrap(err, "create archive file")
	}

	zw := zip.NewWriter(out)

	// Only regular files are written; directories are implied by entry
	// paths and recreated on extraction.
	walkErr := filepath.WalkDir(stagingDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(stagingDir, p)
		if err != nil {
			return err
		}

		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = filepath.ToSlash(rel)
		header.Method = zip.Deflate

		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		f, err := os.Open(p)
		if err != nil {
			return err
		}
		_, err = io.Copy(w, f)
		f.Close()
		return err
	})

	if err := zw.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if err := out.Close(); err != nil && walkErr == nil {
		walkErr = err
	}
	if walkErr != nil {
		_ = os.Remove(outputPath)
		return cerr.Wrap(walkErr, "pack zip archive")
	}
	return nil
}

func unpackZip(ctx context.Context, archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return cerr.Wrap(err, "open zip archive")
	}
	defer reader.Close()

	for _, file := range reader.File {
		if err := ctx.Err(); err != nil {
			return err
		}

		target, err := entryTarget(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, file.Mode().Perm()); err != nil {
				return cerr.Wrapf(err, "create directory %s", target)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
			return cerr.Wrapf(err, "prepare %s", target)
		}

		// Zips built on Windows carry no unix mode bits.
		mode := file.Mode().Perm()
		if mode == 0 {
			mode = 0600
		}

		rc, err := file.Open()
		if err != nil {
			return cerr.Wrapf(err, "open zip entry %s", file.Name)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
		if err != nil {
			rc.Close()
			return cerr.Wrapf(err, "create %s", target)
		}
		if _, err := io.Copy(out, rc); err != nil {
			rc.Close()
			out.Close()
			return cerr.Wrapf(err, "write %s", target)
		}
		rc.Close()
		if err := out.Close(); err != nil {
			return cerr.Wrapf(err, "close %s", target)
		}
	}
	return nil
}
