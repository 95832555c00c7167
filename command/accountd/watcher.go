// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/fsnotify/fsnotify"

	"github.com/bitmark-inc/accountd/fault"
)

// refresher - rescan the keystore for vaults
type refresher interface {
	Refresh() error
}

// keystoreWatcher - refresh the vault directory when entries appear
// in the keystore directory
type keystoreWatcher struct {
	log       *logger.L
	watcher   *fsnotify.Watcher
	directory string
	target    refresher
	refresh   chan struct{}
	done      chan struct{}
}

func newKeystoreWatcher(directory string, log *logger.L, target refresher) (*keystoreWatcher, error) {
	directory, err := filepath.Abs(filepath.Clean(directory))
	if nil != err {
		log.Errorf("keystore: %q  error: %s", directory, err)
		return nil, err
	}

	if info, err := os.Stat(directory); nil != err {
		return nil, err
	} else if !info.IsDir() {
		return nil, fault.InvalidParameters
	}

	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		log.Errorf("new watcher with error: %s", err)
		return nil, err
	}

	return &keystoreWatcher{
		log:       log,
		watcher:   watcher,
		directory: directory,
		target:    target,
		refresh:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start - watch the keystore directory in the background
func (w *keystoreWatcher) Start() error {
	err := w.watcher.Add(w.directory)
	if nil != err {
		w.log.Errorf("watcher add error: %s, abort", err)
		return err
	}

	go w.events()
	go w.refresher()

	return nil
}

// Stop - release the watcher, the background goroutines exit
func (w *keystoreWatcher) Stop() {
	close(w.done)
	_ = w.watcher.Close()
}

func (w *keystoreWatcher) events() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.log.Debugf("keystore event: %v", event)
			if event.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
				w.watchVault(event.Name)
				w.sendEvent()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warnf("keystore watcher error: %s", err)
		}
	}
}

// a new vault directory is watched so that its vault.json, written
// after the directory is made, triggers another refresh
func (w *keystoreWatcher) watchVault(name string) {
	if filepath.Dir(name) != w.directory {
		return
	}
	info, err := os.Stat(name)
	if nil != err || !info.IsDir() {
		return
	}
	if err := w.watcher.Add(name); nil != err {
		w.log.Warnf("watch vault: %q  error: %s", name, err)
	}
}

// a burst of events collapses into one refresh
func (w *keystoreWatcher) sendEvent() {
	select {
	case w.refresh <- struct{}{}:
	default:
	}
}

func (w *keystoreWatcher) refresher() {
	for {
		select {
		case <-w.done:
			return
		case <-w.refresh:
			if err := w.target.Refresh(); nil != err {
				w.log.Errorf("vault refresh error: %s", err)
			}
		}
	}
}
