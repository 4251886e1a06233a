// pkg/archive/manifest.go

package archive

import (
	"encoding/json"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	cerr "github.com/cockroachdb/errors"
)

const (
	// ManifestFilename sits at the archive root and is the only structure
	// the restorer trusts.
	ManifestFilename = "manifest.json"

	// ManifestFormatVersion is written into every export.
	ManifestFormatVersion = "1.0"
)

// Manifest records what an export contains. It is written once at export
// time and immutable afterwards. Decoding tolerates unknown fields so newer
// exports stay importable.
type Manifest struct {
	FormatVersion  string   `json:"format_version"`
	CreatedAt      string   `json:"created_at"`
	SourceOS       string   `json:"source_os"`
	SourceHostname string   `json:"source_hostname"`
	Items          []string `json:"items"`
}

// BuildManifest walks the staged tree and records every regular file as a
// sorted, slash-separated path relative to the staging root. The manifest
// describes what was actually staged, never what the catalog predicted.
func BuildManifest(stagingDir string) (*Manifest, error) {
	var items []string

	err := filepath.WalkDir(stagingDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(stagingDir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if rel == ManifestFilename {
			return nil
		}
		items = append(items, rel)
		return nil
	})
	if err != nil {
		return nil, cerr.Wrap(err, "walk staging tree")
	}
	sort.Strings(items)

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	return &Manifest{
		FormatVersion:  ManifestFormatVersion,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		SourceOS:       runtime.GOOS,
		SourceHostname: hostname,
		Items:          items,
	}, nil
}

// Write stores the manifest as manifest.json at the root of dir.
func (m *Manifest) Write(dir string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return cerr.Wrap(err, "marshal manifest")
	}
	data = append(data, '\n')

	if err := os.WriteFile(filepath.Join(dir, ManifestFilename), data, 0600); err != nil {
		return cerr.Wrap(err, "write manifest")
	}
	return nil
}

// LoadManifest reads and decodes a manifest file. Unknown JSON fields are
// ignored.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, cerr.Wrap(err, "decode manifest")
	}
	return &m, nil
}

// Validate rejects manifests that are structurally unusable or that name
// items outside the restore root.
func (m *Manifest) Validate() error {
	if m.FormatVersion == "" {
		return cerr.New("manifest missing format_version")
	}
	for _, item := range m.Items {
		if err := validateItemPath(item); err != nil {
			return err
		}
	}
	return nil
}

// validateItemPath enforces that an item stays under the restore root once
// joined: relative, slash-separated, no traversal.
func validateItemPath(item string) error {
	if item == "" {
		return cerr.New("manifest contains an empty item path")
	}
	if path.IsAbs(item) || filepath.IsAbs(filepath.FromSlash(item)) {
		return cerr.Newf("manifest item %q is absolute", item)
	}
	cleaned := path.Clean(item)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return cerr.Newf("manifest item %q escapes the restore root", item)
	}
	return nil
}
