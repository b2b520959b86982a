// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package watcher feeds PDFs dropped into a directory through the same
// pipeline as browser uploads.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/clinsight/internal/logger"
	"github.com/clinsight/internal/pipeline"
)

// settleDelay is how long a file must stay quiet before it is picked up,
// so partially-copied PDFs are not parsed mid-write.
const settleDelay = 2 * time.Second

// fileProcessor is the pipeline entry point the watcher feeds.
type fileProcessor interface {
	ProcessFile(ctx context.Context, filename string, data []byte, status pipeline.StatusFunc) (*pipeline.Result, error)
}

// Watcher monitors one directory for new PDF files.
type Watcher struct {
	dir       string
	processor fileProcessor
	notify    func(title, message string)
	settle    time.Duration
}

// New creates a watcher for dir. notify may be nil.
func New(dir string, processor fileProcessor, notify func(title, message string)) *Watcher {
	return &Watcher{dir: dir, processor: processor, notify: notify, settle: settleDelay}
}

// Run watches until the context is cancelled. Files are processed one at a
// time, matching the pipeline's sequential model.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		return err
	}
	logger.Printf("watching %s for new PDF files", w.dir)

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)
	jobs := make(chan string, 16)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case path := <-jobs:
			w.process(ctx, path)

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.HasSuffix(strings.ToLower(event.Name), ".pdf") {
				continue
			}

			// Debounce: restart the settle timer on every write.
			mu.Lock()
			path := event.Name
			if t, exists := pending[path]; exists {
				t.Stop()
			}
			pending[path] = time.AfterFunc(w.settle, func() {
				mu.Lock()
				delete(pending, path)
				mu.Unlock()
				select {
				case jobs <- path:
				default:
					logger.Warnf("watch queue full, skipping %s", path)
				}
			})
			mu.Unlock()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) process(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warnf("failed to read watched file %s: %v", path, err)
		return
	}

	name := filepath.Base(path)
	logger.Printf("processing watched file %s", name)

	result, err := w.processor.ProcessFile(ctx, name, data, nil)
	if err != nil {
		logger.Errorf("watched file %s failed: %v", name, err)
		if w.notify != nil {
			w.notify("clinsight", "处理失败："+name)
		}
		return
	}

	logger.Printf("watched file %s processed, record %s", name, result.RecordID)
	if w.notify != nil {
		w.notify("clinsight", "处理完成："+name)
	}
}
