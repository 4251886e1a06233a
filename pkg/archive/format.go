// pkg/archive/format.go

package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
)

// Format identifies an archive container.
type Format string

const (
	FormatTarGz Format = "tar.gz"
	FormatZip   Format = "zip"
)

// Magic bytes for the two supported containers.
var (
	gzipMagic = []byte{0x1f, 0x8b}
	zipMagic  = []byte("PK")
)

// DefaultFormat returns the native container for this platform: zip on
// Windows, gzip-compressed tar everywhere else.
func DefaultFormat() Format {
	if runtime.GOOS == "windows" {
		return FormatZip
	}
	return FormatTarGz
}

// FormatForPath picks the container from a recognized output extension,
// falling back to the platform default. This lets an operator export a .zip
// from Linux for a Windows destination.
func FormatForPath(path string) Format {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return FormatZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return FormatTarGz
	default:
		return DefaultFormat()
	}
}

// DetectFormat identifies an existing archive's container from its leading
// magic bytes, so both tar.gz and zip import on any platform regardless of
// how the file was named in transit.
func DetectFormat(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	magic := make([]byte, 2)
	if _, err := io.ReadFull(f, magic); err != nil {
		return "", cerr.Wrap(err, "read archive header")
	}

	switch {
	case bytes.Equal(magic, gzipMagic):
		return FormatTarGz, nil
	case bytes.Equal(magic, zipMagic):
		return FormatZip, nil
	default:
		return "", cerr.Newf("unrecognized archive format (magic bytes %x)", magic)
	}
}

// DefaultArchiveName builds the conventional export filename:
// hermes-credentials-<hostname>-<timestamp> with the platform extension.
func DefaultArchiveName(now time.Time) string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	ext := ".tar.gz"
	if DefaultFormat() == FormatZip {
		ext = ".zip"
	}
	return fmt.Sprintf("hermes-credentials-%s-%s%s", hostname, now.Format("20060102-150405"), ext)
}

// Pack writes the staged tree into an archive of the given format.
func Pack(ctx context.Context, format Format, stagingDir, outputPath string) error {
	switch format {
	case FormatTarGz:
		return packTarGz(ctx, stagingDir, outputPath)
	case FormatZip:
		return packZip(ctx, stagingDir, outputPath)
	default:
		return cerr.Newf("unsupported archive format %q", format)
	}
}

// Unpack extracts an archive of the given format into destDir, rejecting
// entries that would land outside it.
func Unpack(ctx context.Context, format Format, archivePath, destDir string) error {
	switch format {
	case FormatTarGz:
		return unpackTarGz(ctx, archivePath, destDir)
	case FormatZip:
		return unpackZip(ctx, archivePath, destDir)
	default:
		return cerr.Newf("unsupported archive format %q", format)
	}
}
