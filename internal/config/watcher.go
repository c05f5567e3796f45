// Copyright (c) 2025 Disha Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of filesystem events an editor save
// produces into a single reload.
const debounceDelay = 200 * time.Millisecond

// Watcher reloads the configuration when its file changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

// WatchFile watches the config file at path and calls onChange with the
// freshly loaded config after each change. Invalid intermediate states
// (partial writes, syntax errors) are skipped; the previous config stays
// active until a valid one appears.
func WatchFile(path string, onChange func(*Config)) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory, not the file: editors replace files on save,
	// which would drop a watch on the file itself.
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, err
	}

	w := &Watcher{
		watcher: fsWatcher,
		done:    make(chan struct{}),
	}
	go w.run(path, onChange)
	return w, nil
}

func (w *Watcher) run(path string, onChange func(*Config)) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	reload := func() {
		cfg, err := LoadFromPath(path)
		if err != nil {
			return
		}
		onChange(cfg)
	}

	base := filepath.Base(path)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != base {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, reload)

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}

		case <-w.done:
			return
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
