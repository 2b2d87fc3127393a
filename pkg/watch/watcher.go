package watch

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// settle delay after a filesystem event, so a writer that replaces
// the dataset in several operations is seen once, not mid-write
const settleDelay = 500 * time.Millisecond

// Watcher triggers OnChange on every poll interval and immediately
// when the dataset path is modified. OnChange is expected to be
// idempotent (the gate skips unchanged data), so spurious triggers
// are harmless. Errors from OnChange are logged and the watch
// continues.
type Watcher struct {
	Path     string
	Interval time.Duration
	OnChange func(ctx context.Context) error
}

// Watch blocks until ctx is canceled. The fsnotify watcher observes
// the dataset's parent directory, so replace-by-rename writes are
// seen too; events for other entries in the directory are ignored.
func (w *Watcher) Watch(ctx context.Context) error {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		logrus.Warnf("filesystem watch unavailable, polling only: %s", err)
	} else {
		defer fw.Close()
		if err := fw.Add(filepath.Dir(w.Path)); err != nil {
			logrus.Warnf("cannot watch %s, polling only: %s", filepath.Dir(w.Path), err)
		} else {
			events = fw.Events
		}
	}

	logrus.Infof("watching %s, polling every %s", w.Path, w.Interval)
	w.fire(ctx)
	for {
		select {
		case <-ctx.Done():
			logrus.Info("watch stopped")
			return nil
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Base(event.Name) != filepath.Base(w.Path) {
				continue
			}
			logrus.Infof("%s %s", event.Name, event.Op)
			select {
			case <-time.After(settleDelay):
			case <-ctx.Done():
				return nil
			}
			w.fire(ctx)
			ticker.Reset(w.Interval)
		case <-ticker.C:
			w.fire(ctx)
		}
	}
}

func (w *Watcher) fire(ctx context.Context) {
	if err := w.OnChange(ctx); err != nil {
		logrus.Errorf("retrain cycle failed: %s", err)
	}
}
