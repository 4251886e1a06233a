// pkg/watcher/watcher.go

// Package watcher follows credential marker files and logs login and logout
// transitions as they happen. Detection stays the single presence authority;
// the watcher only decides when to ask it again.
package watcher

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"

	"github.com/CodeMonkeyCybersecurity/hermes/pkg/credentials"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_err"
	"github.com/CodeMonkeyCybersecurity/hermes/pkg/hermes_io"
)

// Watcher re-detects tools whose marker files change and tracks the last
// observed presence per tool.
type Watcher struct {
	det *credentials.Detector

	mu       sync.Mutex
	presence map[string]bool

	// markers maps the absolute marker path to its tool ID.
	markers map[string]string
}

// New creates a watcher over det's home directory.
func New(det *credentials.Detector) *Watcher {
	w := &Watcher{
		det:      det,
		presence: make(map[string]bool),
		markers:  make(map[string]string),
	}
	for _, entry := range credentials.Catalog {
		marker := filepath.Join(det.Home(), filepath.FromSlash(entry.MarkerPath))
		w.markers[marker] = entry.ToolID
	}
	return w
}

// Start seeds the current presence, installs the directory watches and
// launches the background loop. It returns once watching is active; the
// loop runs until rc.Ctx is cancelled.
//
// Marker directories that do not exist yet are skipped; they are only
// picked up on a restart.
func (w *Watcher) Start(rc *hermes_io.RuntimeContext) error {
	logger := otelzap.Ctx(rc.Ctx)

	results, err := w.det.DetectAll(rc)
	if err != nil {
		return err
	}
	w.mu.Lock()
	for _, result := range results {
		w.presence[result.ToolID] = result.Present
	}
	w.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	watched := 0
	for dir := range w.watchDirs() {
		if err := fw.Add(dir); err != nil {
			logger.Debug("Cannot watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		fw.Close()
		return hermes_err.NewNotFoundError("no credential directories exist to watch",
			"Log in to at least one tool first, then rerun: hermes watch")
	}

	logger.Info("👀 Watching credential files",
		zap.Int("directories", watched),
		zap.String("home", w.det.Home()))

	go w.loop(rc, fw)
	return nil
}

// Present reports the last observed presence for a tool.
func (w *Watcher) Present(toolID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presence[toolID]
}

func (w *Watcher) loop(rc *hermes_io.RuntimeContext, fw *fsnotify.Watcher) {
	logger := otelzap.Ctx(rc.Ctx)
	for {
		select {
		case event := <-fw.Events:
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			toolID, ok := w.markers[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			w.recheck(rc, toolID)
		case err := <-fw.Errors:
			logger.Warn("Watch error", zap.Error(err))
		case <-rc.Ctx.Done():
			_ = fw.Close()
			return
		}
	}
}

// recheck asks the detector again and logs only actual transitions, so a
// burst of write events for one login stays a single log line.
func (w *Watcher) recheck(rc *hermes_io.RuntimeContext, toolID string) {
	logger := otelzap.Ctx(rc.Ctx)

	result, err := w.det.Detect(rc, toolID)
	if err != nil {
		logger.Warn("Re-detection failed", zap.String("tool", toolID), zap.Error(err))
		return
	}

	w.mu.Lock()
	changed := result.Present != w.presence[toolID]
	w.presence[toolID] = result.Present
	w.mu.Unlock()

	if !changed {
		return
	}
	if result.Present {
		logger.Info("✅ Login detected",
			zap.String("tool", toolID),
			zap.String("source", result.Source))
	} else {
		logger.Warn("Logout detected", zap.String("tool", toolID))
	}
}

func (w *Watcher) watchDirs() map[string]struct{} {
	dirs := make(map[string]struct{})
	for marker := range w.markers {
		dir := filepath.Dir(marker)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			dirs[dir] = struct{}{}
		}
	}
	return dirs
}
