package filesystem

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sophialabs/apiprobe/internal/infrastructure/ports"
)

// Watcher triggers a collection re-import when files under the root change.
// Any non-hidden file counts, since text partials pulled in with !include
// shape the imported configs as much as the YAML files do. A burst of events
// produces one onChange call after the debounce period.
type Watcher struct {
	rootDir  string
	debounce time.Duration
	logger   ports.Logger
	fsw      *fsnotify.Watcher
	onChange func()

	quit     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewWatcher subscribes to rootDir and every directory below it.
func NewWatcher(rootDir string, debounce time.Duration, logger ports.Logger, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	w := &Watcher{
		rootDir:  rootDir,
		debounce: debounce,
		logger:   logger,
		fsw:      fsw,
		onChange: onChange,
		quit:     make(chan struct{}),
	}
	if err := w.watchTree(rootDir); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", rootDir, err)
	}
	return w, nil
}

// Start runs the event loop in a goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run()
	}()
}

// Stop ends the event loop and waits for it. Calling it again is a no-op.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.quit)
		_ = w.fsw.Close()
		w.wg.Wait()
	})
}

func (w *Watcher) run() {
	// Stopped until the first relevant event arrives.
	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-w.quit:
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("collection change detected", "file", event.Name, "op", event.Op.String())
			settle.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("collection watcher error", "error", err)

		case <-settle.C:
			w.logger.Info("re-importing collections after file changes", "dir", w.rootDir)
			w.onChange()
		}
	}
}

// relevant reports whether event should schedule a re-import. New
// directories are subscribed to on the way and count as a change.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if isHidden(filepath.Base(event.Name)) || event.Op == fsnotify.Chmod {
		return false
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watchTree(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory", "dir", event.Name, "error", err)
			}
		}
	}
	return true
}

func (w *Watcher) watchTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

// isHidden matches dotfiles and editor leftovers such as "config.yaml~".
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~")
}
