package asset

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/deepgram/ragbridge/pkg/metrics"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher reports changes to the asset override file. It only observes; the
// resolver keeps reading the file on every request.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	metrics *metrics.Collector
}

// NewWatcher watches the directory holding path, which also catches editors
// and volume mounts that replace the file by rename.
func NewWatcher(path string, collector *metrics.Collector) (*Watcher, error) {
	if path == "" {
		return nil, fmt.Errorf("asset file path is empty")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	path = filepath.Clean(path)
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(path), err)
	}

	return &Watcher{
		path:    path,
		watcher: fsw,
		metrics: collector,
	}, nil
}

// Watch blocks until ctx is cancelled, calling onChange with the current file
// content after every relevant event. onChange may be nil.
func (w *Watcher) Watch(ctx context.Context, onChange func(value string, err error)) error {
	defer w.watcher.Close()

	log.Info().Str("path", w.path).Msg("Watching asset override file")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("path", w.path).Msg("Asset file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != w.path || event.Op == fsnotify.Chmod {
				continue
			}

			w.metrics.RecordAssetFileEvent(event.Op.String())

			value, err := ReadAssetFile(w.path)
			if err != nil {
				log.Warn().Err(err).Str("path", w.path).Str("op", event.Op.String()).Msg("Asset override file unreadable, requests will fall back")
			} else {
				log.Info().Str("path", w.path).Str("op", event.Op.String()).Str("asset_id", value).Msg("Asset override file changed")
			}

			if onChange != nil {
				onChange(value, err)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			log.Error().Err(err).Str("path", w.path).Msg("Asset file watcher error")
		}
	}
}
