package scanner

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/serhiishtokal/CourseWatcher/internal/log"
)

const debounceWindow = 2 * time.Second

// Watcher triggers a rescan when files appear under the course root.
// Events are debounced so copying a whole folder in produces one rescan,
// not hundreds.
type Watcher struct {
	root        string
	dataDirName string
	onChange    func()
	logger      zerolog.Logger
}

// NewWatcher prepares a filesystem watcher over root. onChange fires after
// the debounce window closes.
func NewWatcher(root, dataDirName string, onChange func()) *Watcher {
	return &Watcher{
		root:        root,
		dataDirName: dataDirName,
		onChange:    onChange,
		logger:      log.WithComponent("watcher"),
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := w.addTree(fw, w.root); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// new directories need their own watch before their
			// contents produce events
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addTree(fw, event.Name)
				}
			}
			if timer == nil {
				timer = time.AfterFunc(debounceWindow, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounceWindow)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")

		case <-fire:
			timer = nil
			w.logger.Debug().Msg("filesystem changed, triggering rescan")
			w.onChange()
		}
	}
}

func (w *Watcher) addTree(fw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable subtrees are simply not watched
		}
		if !d.IsDir() {
			return nil
		}
		if d.Name() == w.dataDirName {
			return fs.SkipDir
		}
		if err := fw.Add(path); err != nil {
			w.logger.Warn().Str("path", path).Err(err).Msg("cannot watch directory")
		}
		return nil
	})
}
