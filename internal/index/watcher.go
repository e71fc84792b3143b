package index

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// defaultPatterns select kneeboard pages at any depth.
var defaultPatterns = []string{"**/*.png"}

// defaultIgnores cover temp files from atomic writes and OS metadata.
var defaultIgnores = []string{
	"**/.kneeview-tmp-*",
	"**/.DS_Store",
	"**/Thumbs.db",
}

// WatchConfig controls Watch.
type WatchConfig struct {
	Root     string
	Debounce time.Duration
	// Patterns and Ignore are doublestar globs matched against the
	// lower-cased path relative to Root.
	Patterns []string
	Ignore   []string
}

// ChangeCallback receives the relative paths changed during one debounce
// window, sorted.
type ChangeCallback func(changed []string)

// Watch starts an fsnotify watcher on the kneeboard root and calls cb once
// per quiet period after matching files were created, written, removed or
// renamed. It blocks until ctx is cancelled.
//
// New directories (for example a freshly received aircraft folder) are added
// to the watch list and reported as a change.
func Watch(ctx context.Context, cfg WatchConfig, logger *slog.Logger, cb ChangeCallback) error {
	patterns := cfg.Patterns
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	ignores := append(append([]string{}, defaultIgnores...), cfg.Ignore...)
	for _, p := range append(append([]string{}, patterns...), ignores...) {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("index: invalid watch pattern %q", p)
		}
	}
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("index: create watcher: %w", err)
	}
	defer w.Close()

	if err := addDirsRecursive(w, cfg.Root); err != nil {
		return fmt.Errorf("index: watch root: %w", err)
	}

	logger.Info("watcher: started", slog.String("root", cfg.Root))

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	schedule := func(rel string) {
		pending[rel] = struct{}{}
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
		} else {
			timer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-timerCh:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			timer = nil
			timerCh = nil
			logger.Debug("watcher: change batch", slog.Int("paths", len(changed)))
			if cb != nil {
				cb(changed)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(cfg.Root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", rel))
					}
					schedule(rel)
					continue
				}
			}

			if !matches(rel, patterns, ignores) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watcher: event", slog.String("path", rel), slog.String("op", ev.Op.String()))
			schedule(rel)

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// matches reports whether rel is selected by patterns and not ignored.
func matches(rel string, patterns, ignores []string) bool {
	lower := strings.ToLower(rel)
	for _, ig := range ignores {
		if ok, _ := doublestar.Match(strings.ToLower(ig), lower); ok {
			return false
		}
	}
	for _, p := range patterns {
		if ok, _ := doublestar.Match(strings.ToLower(p), lower); ok {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
