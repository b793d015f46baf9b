package event

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/whenever-go/whenever/internal/logging"
	"github.com/whenever-go/whenever/internal/model"
)

func (m *Manager) runFSChange(ctx context.Context, e *model.Event) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		m.Log.Record(logging.WhenInit, logging.StatusErr, "watch", "event", e.Name, err.Error(), logging.LevelError)
		m.runFSPoll(ctx, e)
		return
	}
	defer watcher.Close()

	for _, p := range e.FSChange.Paths {
		if err := addWatch(watcher, p, e.FSChange.Recursive); err != nil {
			m.Log.Record(logging.WhenInit, logging.StatusErr, "watch", "event", e.Name, err.Error(), logging.LevelWarn)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case werr, ok := <-watcher.Errors:
			if !ok {
				return
			}
			m.Log.Record(logging.WhenProc, logging.StatusErr, "watch", "event", e.Name, werr.Error(), logging.LevelWarn)
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			m.fire(e)
		}
	}
}

func addWatch(w *fsnotify.Watcher, root string, recursive bool) error {
	fi, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !fi.IsDir() || !recursive {
		return w.Add(root)
	}
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}

// runFSPoll is the polling fallback used when fsnotify fails to
// initialize (§4.5: "on platforms without a change-notification
// facility, fall back to polling at poll_seconds").
func (m *Manager) runFSPoll(ctx context.Context, e *model.Event) {
	interval := time.Duration(e.FSChange.PollSeconds) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}
	mtimes := snapshotMtimes(e.FSChange.Paths)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cur := snapshotMtimes(e.FSChange.Paths)
			if !mtimesEqual(mtimes, cur) {
				mtimes = cur
				m.fire(e)
			}
		}
	}
}

func snapshotMtimes(paths []string) map[string]time.Time {
	out := make(map[string]time.Time)
	for _, root := range paths {
		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			out[path] = info.ModTime()
			return nil
		})
	}
	return out
}

func mtimesEqual(a, b map[string]time.Time) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if !b[k].Equal(v) {
			return false
		}
	}
	return true
}
