// Package watch waits for an instrument acquisition to finish writing
// into a directory. The acquisition is considered settled once no TIFF
// file has been created or modified for a full settle window.
package watch

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"platestack/internal/fsutil"
)

// Wait blocks until dir has seen no TIFF activity for the settle
// duration, or ctx is cancelled. The window starts immediately, so a
// directory that is already quiet returns after one settle period.
func Wait(ctx context.Context, dir string, settle time.Duration, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	log.Info("watching for acquisition", "dir", dir, "settle", settle)

	timer := time.NewTimer(settle)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if !fsutil.IsTIFF(event.Name) {
				continue
			}
			log.Debug("acquisition activity", "path", event.Name, "op", event.Op.String())
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(settle)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watcher error", "error", err)

		case <-timer.C:
			log.Info("acquisition settled", "dir", dir)
			return nil
		}
	}
}
