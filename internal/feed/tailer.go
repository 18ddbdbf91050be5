// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package feed

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/pdiddy/lore-engine/internal/events"
)

// Tailer follows a transcript file on disk and appends each complete new
// line to a Feed. A partial trailing line is held back until its newline
// arrives, so a chunk is never split mid-write.
type Tailer struct {
	feed   *Feed
	path   string
	log    *events.Logger
	offset int64
}

// NewTailer creates a tailer that feeds f from the file at path. The file
// does not have to exist yet; lines are picked up once it appears.
func NewTailer(f *Feed, path string, log *events.Logger) *Tailer {
	return &Tailer{feed: f, path: path, log: log}
}

// Run ingests existing content, then watches for appends until ctx is
// cancelled. The parent directory is watched as well so file creation and
// rename-over (editor saves) are caught.
func (t *Tailer) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(t.path)); err != nil {
		return fmt.Errorf("watching transcript directory: %w", err)
	}

	t.drain()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(t.path) {
				continue
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				// Replaced file starts over from the beginning.
				t.offset = 0
			}
			t.drain()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			t.log.Errorf("transcript watcher: %v", err)
		}
	}
}

// drain reads complete lines past the current offset and appends each
// non-blank one as a chunk.
func (t *Tailer) drain() {
	file, err := os.Open(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			t.log.Errorf("opening transcript %s: %v", t.path, err)
		}
		return
	}
	defer file.Close()

	if stat, err := file.Stat(); err == nil && stat.Size() < t.offset {
		// Truncated file starts over.
		t.offset = 0
	}

	if _, err := file.Seek(t.offset, io.SeekStart); err != nil {
		t.log.Errorf("seeking transcript %s: %v", t.path, err)
		return
	}

	reader := bufio.NewReader(file)
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			// Partial line stays on disk until its newline arrives.
			return
		}
		t.offset += int64(len(line))
		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}
		idx := t.feed.Append(text)
		t.log.Debugf("ingested chunk %d (%d bytes)", idx, len(text))
	}
}

// pollFallbackInterval is used by RunPolling when filesystem events are not
// available on the host.
const pollFallbackInterval = 2 * time.Second

// RunPolling follows the file by periodic stat and read instead of
// filesystem events.
func (t *Tailer) RunPolling(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = pollFallbackInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	t.drain()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			t.drain()
		}
	}
}
