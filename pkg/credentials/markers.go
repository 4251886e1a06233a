// pkg/credentials/markers.go
//
// Per-tool sanity markers. Bare file existence is not presence: both
// ~/.claude.json and ~/.config/gh/hosts.yml survive logout and are also used
// for unrelated local settings, so each marker checks content, not just stat.

package credentials

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// githubHost is the subset of a gh hosts.yml host block hermes reads.
type githubHost struct {
	User string `yaml:"user"`
}

// claudeOAuthAccount is the account-linkage block claude writes into
// ~/.claude.json after a successful /login.
type claudeOAuthAccount struct {
	EmailAddress string `json:"emailAddress"`
}

// markerPaths returns the absolute paths whose content satisfied the entry's
// sanity marker, or nil when the marker is not satisfied.
func (d *Detector) markerPaths(rc *hermes_io.RuntimeContext, entry CatalogEntry) []string {
	marker := filepath.Join(d.home, filepath.FromSlash(entry.MarkerPath))

	switch entry.ToolID {
	case ToolGitHub:
		if d.githubHostsPopulated(rc, marker) {
			return []string{marker}
		}
	case ToolClaude:
		if d.claudeAccountLinked(rc, marker) {
			return []string{marker}
		}
	default:
		// Plain existence marker (codex auth.json).
		if info, err := os.Stat(marker); err == nil && info.Mode().IsRegular() {
			return []string{marker}
		}
	}
	return nil
}

// githubHostsPopulated reports whether hosts.yml parses to a non-empty host
// map. gh truncates the host block on `gh auth logout`, so an empty map means
// logged out even though the file remains.
func (d *Detector) githubHostsPopulated(rc *hermes_io.RuntimeContext, path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	hosts := map[string]githubHost{}
	if err := hermes_io.ReadYAML(rc.Ctx, path, &hosts); err != nil {
		otelzap.Ctx(rc.Ctx).Warn("hosts.yml exists but did not parse, treating GitHub CLI as absent",
			zap.String("path", path),
			zap.Error(err))
		return false
	}
	return len(hosts) > 0
}

// claudeAccountLinked reports whether ~/.claude.json carries the oauthAccount
// key. The file accumulates unrelated local settings from first launch, so
// only the account-linkage key counts as a login.
func (d *Detector) claudeAccountLinked(rc *hermes_io.RuntimeContext, path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}

	config := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &config); err != nil {
		otelzap.Ctx(rc.Ctx).Warn("claude config exists but is not valid JSON, treating Claude Code as absent",
			zap.String("path", path),
			zap.Error(err))
		return false
	}

	_, linked := config["oauthAccount"]
	return linked
}

// GitHubAccount returns the account name hosts.yml records for github.com,
// falling back to the first host that names a user. Best effort: ("", false)
// when the file is missing, malformed, or records no user.
func (d *Detector) GitHubAccount(rc *hermes_io.RuntimeContext) (string, bool) {
	entry, _ := Lookup(ToolGitHub)
	path := filepath.Join(d.home, filepath.FromSlash(entry.MarkerPath))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}

	hosts := map[string]githubHost{}
	if err := hermes_io.ReadYAML(rc.Ctx, path, &hosts); err != nil {
		return "", false
	}

	if host, ok := hosts["github.com"]; ok && host.User != "" {
		return host.User, true
	}

	// Enterprise-only setups have no github.com block.
	names := make([]string, 0, len(hosts))
	for name := range hosts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if hosts[name].User != "" {
			return hosts[name].User, true
		}
	}
	return "", false
}

// ClaudeAccount returns the OAuth email ~/.claude.json records, when any.
func (d *Detector) ClaudeAccount(rc *hermes_io.RuntimeContext) (string, bool) {
	entry, _ := Lookup(ToolClaude)
	path := filepath.Join(d.home, filepath.FromSlash(entry.MarkerPath))

	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}

	var config struct {
		OAuthAccount *claudeOAuthAccount `json:"oauthAccount"`
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return "", false
	}
	if config.OAuthAccount == nil || config.OAuthAccount.EmailAddress == "" {
		return "", false
	}
	return config.OAuthAccount.EmailAddress, true
}
