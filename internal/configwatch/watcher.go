// Package configwatch watches the shell's config file and reports changes
// after a debounce delay.
package configwatch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/walletshell/pkg/log"
)

// DefaultDebounceDelay is the quiet period after the last change before
// onChange runs.
const DefaultDebounceDelay = 500 * time.Millisecond

// Config holds watcher options.
type Config struct {
	// Path is the config file to watch.
	Path string

	// DebounceDelay defaults to DefaultDebounceDelay.
	DebounceDelay time.Duration
}

// Watcher calls onChange when the content of the config file changed.
// Writes that leave the content unchanged are ignored.
type Watcher struct {
	path          string
	debounceDelay time.Duration
	onChange      func()
	logger        log.Logger

	mu       sync.Mutex
	debounce *time.Timer
	digest   []byte

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Watcher.
func New(cfg Config, onChange func(), logger log.Logger) (*Watcher, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("config path is required")
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		path:          filepath.Clean(cfg.Path),
		debounceDelay: cfg.DebounceDelay,
		onChange:      onChange,
		logger:        log.With(logger, log.Component("configwatch")),
	}, nil
}

// Start begins watching. The file's directory is watched so editors that
// replace the file by rename are followed.
func (w *Watcher) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(w.path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}

	w.mu.Lock()
	w.digest = fileDigest(w.path)
	w.mu.Unlock()

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go w.watchLoop(watchCtx, watcher)
	w.logger.Info("watching config file", log.String("path", w.path))
	return nil
}

// Stop ends watching and cancels a pending notification.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

func (w *Watcher) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer w.wg.Done()
	defer watcher.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.scheduleCheck(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) scheduleCheck(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		w.check()
	})
}

func (w *Watcher) check() {
	digest := fileDigest(w.path)

	w.mu.Lock()
	changed := !bytes.Equal(digest, w.digest)
	w.digest = digest
	w.mu.Unlock()

	if !changed {
		w.logger.Debug("config file touched without changes")
		return
	}
	w.logger.Info("config file changed", log.String("path", w.path))
	if w.onChange != nil {
		w.onChange()
	}
}

// fileDigest returns nil for a missing or unreadable file.
func fileDigest(path string) []byte {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return sum[:]
}
