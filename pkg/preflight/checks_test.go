// pkg/preflight/checks_test.go

package preflight

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunChecksAllPass(t *testing.T) {
	checks := []Check{
		{Name: "a", Check: func(context.Context) error { return nil }, Required: true},
		{Name: "b", Check: func(context.Context) error { return nil }},
	}

	results, err := RunChecks(context.Background(), checks)
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.Passed)
	}
}

func TestRunChecksRequiredFailure(t *testing.T) {
	checks := []Check{
		{Name: "required", Check: func(context.Context) error { return errors.New("broken") }, Required: true},
		{Name: "fine", Check: func(context.Context) error { return nil }},
	}

	results, err := RunChecks(context.Background(), checks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required check")
	require.Len(t, results, 2, "remaining checks still run and report")
	assert.False(t, results[0].Passed)
	assert.True(t, results[1].Passed)
}

func TestRunChecksOptionalFailureWarns(t *testing.T) {
	checks := []Check{
		{Name: "optional", Check: func(context.Context) error { return errors.New("meh") }},
	}

	results, err := RunChecks(context.Background(), checks)
	require.NoError(t, err)
	assert.False(t, results[0].Passed)
	assert.Equal(t, "meh", results[0].Warning)
}

func TestCheckPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	err = CheckPort(port)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")

	ln.Close()
	assert.NoError(t, CheckPort(port)(context.Background()))
}

func TestCheckDiskSpace(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, CheckDiskSpace(dir, 1)(context.Background()))

	err := CheckDiskSpace(dir, 1<<40)(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient disk space")
}

func TestCheckSSHClient(t *testing.T) {
	binDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binDir, "ssh"), []byte("#!/bin/sh\nexit 0\n"), 0o755))
	t.Setenv("PATH", binDir)
	assert.NoError(t, CheckSSHClient(context.Background()))

	t.Setenv("PATH", t.TempDir())
	err := CheckSSHClient(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Fix:")
}

func TestRemoteChecksIncludeSshpassOnlyForPasswordAuth(t *testing.T) {
	names := func(checks []Check) []string {
		out := make([]string, 0, len(checks))
		for _, c := range checks {
			out = append(out, c.Name)
		}
		return out
	}

	assert.NotContains(t, names(RemoteChecks(false)), "sshpass")
	assert.Contains(t, names(RemoteChecks(true)), "sshpass")
}
