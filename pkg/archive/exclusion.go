// pkg/archive/exclusion.go

package archive

import (
	"fmt"
	"path/filepath"

	"github.com/moby/patternmatcher"
)

// ExcludePatterns is the deny-list applied to every staged entry. It covers
// logs, caches, shell and prompt history, session transcripts, and telemetry
// state: bulky, machine-specific, and never needed to authenticate on the
// destination host. Dockerignore syntax, matched against paths relative to
// $HOME.
var ExcludePatterns = []string{
	"**/logs",
	"**/*.log",
	"**/cache",
	"**/caches",
	"**/history",
	"**/history.jsonl",
	"**/projects",
	"**/session-*",
	"**/shell-snapshots",
	"**/statsig",
	"**/telemetry",
	"**/todos",
}

var excludeMatcher = mustExcludeMatcher()

func mustExcludeMatcher() *patternmatcher.PatternMatcher {
	m, err := patternmatcher.New(ExcludePatterns)
	if err != nil {
		panic(fmt.Sprintf("archive: invalid exclusion pattern: %v", err))
	}
	return m
}

// Excluded reports whether relPath (relative to $HOME) matches the deny-list
// directly or through an excluded parent directory. Matching a directory
// prunes its whole subtree during staging.
func Excluded(relPath string) bool {
	matched, err := excludeMatcher.MatchesOrParentMatches(filepath.Clean(relPath))
	if err != nil {
		return false
	}
	return matched
}
