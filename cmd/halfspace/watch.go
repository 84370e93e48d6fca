// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"cogentcore.org/core/base/errors"
	"github.com/fsnotify/fsnotify"
)

// watchDelay is how long to wait for a burst of writes to settle.
const watchDelay = 100 * time.Millisecond

// Watch calls reload whenever the file is written, until ctx is done
// or reload returns an error. The directory is watched rather than
// the file, since editors often replace files on save.
func Watch(ctx context.Context, file string, reload func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { errors.Log(w.Close()) }()
	abs, err := filepath.Abs(file)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return err
	}
	slog.Info("watching", "file", file)

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Name != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			timer = time.After(watchDelay)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watch error", "err", err)
		case <-timer:
			timer = nil
			if err := reload(); err != nil {
				return err
			}
		}
	}
}
