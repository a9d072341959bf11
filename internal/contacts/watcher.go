package contacts

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/folio/internal/storage"
)

// Watcher event kinds passed to EventCallback.
const (
	EventEdited  = "edited"
	EventCorrupt = "corrupt"
	EventRemoved = "removed"
)

const settleDelay = 100 * time.Millisecond

// EventCallback is called after the watcher classifies an out-of-band change.
type EventCallback func(kind string)

// Watch observes the store file for changes made outside this process and
// logs them until ctx is cancelled. Writes made by s itself are recognised by
// checksum and ignored. An external edit that leaves the file unparsable is
// logged as a warning, since the next listing will silently read as empty.
//
// The parent directory is watched rather than the file, because every store
// write replaces the file by rename.
func Watch(ctx context.Context, s *Store, logger *slog.Logger, cb EventCallback) error {
	if logger == nil {
		logger = slog.Default()
	}
	target, err := s.fs.Abs(s.name)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info("store watcher: started", slog.String("file", target))

	// Writers often emit several events per save; settle before inspecting.
	var settle *time.Timer
	var settleCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if settle != nil {
				settle.Stop()
			}
			logger.Info("store watcher: stopped")
			return nil

		case <-settleCh:
			settleCh = nil
			if kind := s.inspect(logger); kind != "" && cb != nil {
				cb(kind)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != target || storage.IsTemp(ev.Name) {
				continue
			}
			if settle == nil {
				settle = time.NewTimer(settleDelay)
			} else {
				settle.Reset(settleDelay)
			}
			settleCh = settle.C

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("store watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// inspect reads the store file and classifies the change. It returns ""
// when the content is what this process wrote.
func (s *Store) inspect(logger *slog.Logger) string {
	data, err := s.fs.Read(s.name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("store watcher: contact store removed, listings will be empty",
				slog.String("file", s.name))
			return EventRemoved
		}
		logger.Warn("store watcher: read failed",
			slog.String("file", s.name),
			slog.String("error", err.Error()))
		return EventCorrupt
	}
	if s.wroteLast(data) {
		return ""
	}
	recs, err := decode(data)
	if err != nil {
		logger.Warn("store watcher: contact store edited externally and is not a valid array; listings will read as empty",
			slog.String("file", s.name),
			slog.String("error", err.Error()))
		return EventCorrupt
	}
	logger.Info("store watcher: contact store edited externally",
		slog.String("file", s.name),
		slog.Int("records", len(recs)))
	return EventEdited
}
