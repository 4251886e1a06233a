// pkg/archive/restorer_test.go

package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/secrets"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/testutil"
)

// buildTestArchive exports a home containing a logged-in GitHub CLI.
func buildTestArchive(t *testing.T, hostsContent string) string {
	t.Helper()
	rc := testutil.TestRuntimeContext(t)

	home := t.TempDir()
	testutil.CreateTestFile(t, home, ".config/gh/hosts.yml", hostsContent, 0o600)

	det := credentials.NewDetector(home, secrets.NewMock(nil))
	builder := NewBuilder(det, secrets.NewMock(nil))

	archivePath := filepath.Join(t.TempDir(), "creds.tar.gz")
	_, err := builder.Export(rc, archivePath)
	require.NoError(t, err)
	return archivePath
}

func TestImportMissingArchive(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)

	_, err := NewRestorer(t.TempDir()).Import(rc, filepath.Join(t.TempDir(), "nope.tar.gz"))
	require.Error(t, err)
	assert.True(t, hermes_err.IsCategory(err, hermes_err.CategoryNotFound))
}

func TestImportNotAnArchive(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)

	path := filepath.Join(t.TempDir(), "notes.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("just some text"), 0o600))

	_, err := NewRestorer(t.TempDir()).Import(rc, path)
	require.Error(t, err)
	assert.True(t, hermes_err.IsCategory(err, hermes_err.CategoryValidation))
}

func TestImportNoManifest(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)

	// A structurally fine tar.gz that simply never went through export.
	staging := t.TempDir()
	testutil.CreateTestFile(t, staging, ".config/gh/hosts.yml", testGHHosts, 0o600)
	archivePath := filepath.Join(t.TempDir(), "handmade.tar.gz")
	require.NoError(t, packTarGz(rc.Ctx, staging, archivePath))

	home := t.TempDir()
	_, err := NewRestorer(home).Import(rc, archivePath)
	require.Error(t, err)
	assert.True(t, hermes_err.IsCategory(err, hermes_err.CategoryValidation))

	// Nothing was written before the abort.
	entries, err := os.ReadDir(home)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestImportConflictBackup(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	archivePath := buildTestArchive(t, testGHHosts)

	destHome := t.TempDir()
	existing := "github.com:\n    user: olduser\n"
	testutil.CreateTestFile(t, destHome, ".config/gh/hosts.yml", existing, 0o600)

	report, err := NewRestorer(destHome).Import(rc, archivePath)
	require.NoError(t, err)
	require.Len(t, report.BackedUp, 1)
	assert.Empty(t, report.Failed)

	// The new content is in place and the old content survives alongside it.
	testutil.AssertFileContent(t, filepath.Join(destHome, ".config/gh/hosts.yml"), testGHHosts)
	testutil.AssertFileContent(t, report.BackedUp[0], existing)
	assert.Contains(t, filepath.Base(report.BackedUp[0]), "hosts.yml.backup.")
}

func TestImportTwiceLosesNothing(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)
	archivePath := buildTestArchive(t, testGHHosts)
	destHome := t.TempDir()
	restorer := NewRestorer(destHome)

	first, err := restorer.Import(rc, archivePath)
	require.NoError(t, err)
	assert.Empty(t, first.BackedUp)

	second, err := restorer.Import(rc, archivePath)
	require.NoError(t, err)
	assert.Equal(t, first.Restored, second.Restored)
	require.Len(t, second.BackedUp, 1)

	// Final state: identical content, plus a backup of the first import.
	testutil.AssertFileContent(t, filepath.Join(destHome, ".config/gh/hosts.yml"), testGHHosts)
	testutil.AssertFileContent(t, second.BackedUp[0], testGHHosts)
}

func TestImportRejectsTraversalManifest(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)

	staging := t.TempDir()
	evil := &Manifest{
		FormatVersion:  ManifestFormatVersion,
		CreatedAt:      "2026-08-23T10:00:00Z",
		SourceOS:       "linux",
		SourceHostname: "evil",
		Items:          []string{"../escaped.txt"},
	}
	require.NoError(t, evil.Write(staging))

	archivePath := filepath.Join(t.TempDir(), "evil.tar.gz")
	require.NoError(t, packTarGz(rc.Ctx, staging, archivePath))

	home := t.TempDir()
	_, err := NewRestorer(home).Import(rc, archivePath)
	require.Error(t, err)
	assert.True(t, hermes_err.IsCategory(err, hermes_err.CategoryValidation))

	testutil.AssertFileNotExists(t, filepath.Join(filepath.Dir(home), "escaped.txt"))
}

func TestImportSkipsItemsMissingFromArchive(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)

	staging := t.TempDir()
	testutil.CreateTestFile(t, staging, ".claude.json", "{}", 0o600)
	m := &Manifest{
		FormatVersion:  ManifestFormatVersion,
		CreatedAt:      "2026-08-23T10:00:00Z",
		SourceOS:       "linux",
		SourceHostname: "source",
		Items:          []string{".claude.json", ".claude/ghost.json"},
	}
	require.NoError(t, m.Write(staging))

	archivePath := filepath.Join(t.TempDir(), "partial.tar.gz")
	require.NoError(t, packTarGz(rc.Ctx, staging, archivePath))

	report, err := NewRestorer(t.TempDir()).Import(rc, archivePath)
	require.NoError(t, err)
	assert.Equal(t, []string{".claude.json"}, report.Restored)
	assert.Equal(t, []string{".claude/ghost.json"}, report.Skipped)
	assert.Empty(t, report.Failed)
}

func TestImportPartialFailureContinues(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)

	sourceHome := t.TempDir()
	testutil.CreateTestFile(t, sourceHome, ".claude.json", testClaudeConfig, 0o600)
	testutil.CreateTestFile(t, sourceHome, ".config/gh/hosts.yml", testGHHosts, 0o600)

	det := credentials.NewDetector(sourceHome, secrets.NewMock(nil))
	builder := NewBuilder(det, secrets.NewMock(nil))
	archivePath := filepath.Join(t.TempDir(), "creds.tar.gz")
	_, err := builder.Export(rc, archivePath)
	require.NoError(t, err)

	// A regular file squatting on ~/.config makes that subtree unrestorable.
	destHome := t.TempDir()
	testutil.CreateTestFile(t, destHome, ".config", "i am a file", 0o600)

	report, err := NewRestorer(destHome).Import(rc, archivePath)
	require.NoError(t, err, "per-item failures must not fail the import")

	assert.Contains(t, report.Restored, ".claude.json")
	require.Len(t, report.Failed, 1)
	assert.Equal(t, ".config/gh/hosts.yml", report.Failed[0].Item)
	require.NotNil(t, report.Errors)
	assert.Len(t, report.Errors.Errors, 1)

	testutil.AssertFileContent(t, filepath.Join(destHome, ".claude.json"), testClaudeConfig)
}

func TestImportHardensSensitiveModes(t *testing.T) {
	rc := testutil.TestRuntimeContext(t)

	// Source file is group readable; the restore must tighten it.
	home := t.TempDir()
	testutil.CreateTestFile(t, home, ".config/gh/hosts.yml", testGHHosts, 0o644)

	det := credentials.NewDetector(home, secrets.NewMock(nil))
	builder := NewBuilder(det, secrets.NewMock(nil))
	archivePath := filepath.Join(t.TempDir(), "creds.tar.gz")
	_, err := builder.Export(rc, archivePath)
	require.NoError(t, err)

	destHome := t.TempDir()
	_, err = NewRestorer(destHome).Import(rc, archivePath)
	require.NoError(t, err)

	testutil.AssertFilePermissions(t, filepath.Join(destHome, ".config/gh/hosts.yml"), 0o600)
}
