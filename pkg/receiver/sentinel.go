package receiver

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/vcshare/pkg/log"
)

// watchStopFile requests a stop as soon as path appears. Listeners also poll
// for the file, so a watcher that cannot start only costs latency.
func watchStopFile(ctx context.Context, path string, coord *Coordinator, logger log.Logger) {
	path = filepath.Clean(path)
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("stop file watcher unavailable", log.Err(err))
		return
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		logger.Warn("stop file watcher unavailable", log.String("dir", filepath.Dir(path)), log.Err(err))
		return
	}
	logger.Debug("watching stop file", log.String("path", path))

	// The file may predate the watch.
	if fileExists(path) {
		logger.Info("stop file present", log.String("path", path))
		coord.RequestStop()
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-coord.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				logger.Info("stop file created", log.String("path", path))
				coord.RequestStop()
				return
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("stop file watcher error", log.Err(err))
		}
	}
}
