// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/clinsight/internal/pipeline"
)

type stubProcessor struct {
	mu    sync.Mutex
	calls []string
	data  map[string][]byte
}

func (s *stubProcessor) ProcessFile(ctx context.Context, filename string, data []byte, status pipeline.StatusFunc) (*pipeline.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string][]byte)
	}
	s.calls = append(s.calls, filename)
	s.data[filename] = data
	return &pipeline.Result{Filename: filename, RecordID: "rec-1"}, nil
}

func (s *stubProcessor) processed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func TestWatcherProcessesDroppedPDF(t *testing.T) {
	dir := t.TempDir()
	proc := &stubProcessor{}

	var mu sync.Mutex
	var messages []string
	notify := func(title, message string) {
		mu.Lock()
		messages = append(messages, message)
		mu.Unlock()
	}

	w := New(dir, proc, notify)
	w.settle = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give Run a moment to register the directory watch.
	time.Sleep(200 * time.Millisecond)

	payload := []byte("%PDF-dropped")
	if err := os.WriteFile(filepath.Join(dir, "Study.PDF"), payload, 0644); err != nil {
		t.Fatalf("failed to write watched file: %v", err)
	}
	// Non-PDF files in the same directory are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0644); err != nil {
		t.Fatalf("failed to write ignored file: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(proc.processed()) == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}

	calls := proc.processed()
	if len(calls) != 1 || calls[0] != "Study.PDF" {
		t.Fatalf("processed files = %v, want exactly Study.PDF", calls)
	}
	proc.mu.Lock()
	got := string(proc.data["Study.PDF"])
	proc.mu.Unlock()
	if got != string(payload) {
		t.Errorf("processed bytes = %q, want %q", got, payload)
	}

	mu.Lock()
	if len(messages) != 1 || !strings.Contains(messages[0], "处理完成") {
		t.Errorf("notifications = %v, want one completion message", messages)
	}
	mu.Unlock()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}

func TestWatcherDebouncesRepeatedWrites(t *testing.T) {
	dir := t.TempDir()
	proc := &stubProcessor{}

	w := New(dir, proc, nil)
	w.settle = 150 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)

	time.Sleep(200 * time.Millisecond)

	// Simulate a slow copy: several writes closer together than the settle
	// delay must collapse into a single processing run.
	path := filepath.Join(dir, "copying.pdf")
	for i := 0; i < 4; i++ {
		if err := os.WriteFile(path, []byte(strings.Repeat("%PDF-part", i+1)), 0644); err != nil {
			t.Fatalf("failed to write watched file: %v", err)
		}
		time.Sleep(40 * time.Millisecond)
	}

	deadline := time.Now().Add(5 * time.Second)
	for len(proc.processed()) == 0 && time.Now().Before(deadline) {
		time.Sleep(50 * time.Millisecond)
	}
	// Allow a further settle window to catch any duplicate run.
	time.Sleep(400 * time.Millisecond)

	calls := proc.processed()
	if len(calls) != 1 {
		t.Fatalf("processed %d times, want 1 (writes within the settle window must coalesce)", len(calls))
	}
	proc.mu.Lock()
	got := string(proc.data["copying.pdf"])
	proc.mu.Unlock()
	if got != strings.Repeat("%PDF-part", 4) {
		t.Errorf("processed bytes = %q, want the final write", got)
	}
}
