// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch

// Package history persists completed extraction runs to a single JSON file
// with a fixed retention window. A corrupt or missing file must never block
// the main workflow, so loads degrade to an empty store and saves report
// failure through their return value.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinsight/internal/logger"
)

// TimeLayout is the timestamp format used in records and metadata.
const TimeLayout = "2006-01-02 15:04:05"

// Record is one completed pipeline run.
type Record struct {
	ID          string            `json:"id"`
	Filename    string            `json:"filename"`
	Fingerprint string            `json:"fingerprint"`
	Timestamp   string            `json:"timestamp"`
	Analysis    string            `json:"analysis"`
	Artifacts   map[string][]byte `json:"artifacts"` // artifact name -> bytes, base64 in JSON
}

// Metadata describes the persisted collection.
type Metadata struct {
	LastUpdated    string `json:"last_updated"`
	TotalRecords   int    `json:"total_records"`
	CleanedRecords int    `json:"cleaned_records"`
}

type fileDoc struct {
	Records  []Record `json:"records"`
	Metadata Metadata `json:"metadata"`
}

// Store manages the history file. All mutations go through Save, which
// rewrites the file in full via a temp-file-and-rename so readers never
// observe a half-written document.
type Store struct {
	path      string
	retention time.Duration
	mu        sync.Mutex
	records   []Record
	now       func() time.Time
}

// NewStore creates a store backed by path with the given retention window.
func NewStore(path string, retentionDays int) *Store {
	return &Store{
		path:      path,
		retention: time.Duration(retentionDays) * 24 * time.Hour,
		now:       time.Now,
	}
}

// NewRecord builds a record for a completed run with a fresh id and the
// current time. The timestamp is immutable from here on.
func (s *Store) NewRecord(filename, fingerprint, analysis string, artifacts map[string][]byte) Record {
	return Record{
		ID:          uuid.New().String(),
		Filename:    filename,
		Fingerprint: fingerprint,
		Timestamp:   s.now().Format(TimeLayout),
		Analysis:    analysis,
		Artifacts:   artifacts,
	}
}

// Load reads the persisted records, applying the retention filter. Missing
// file, parse failure, or a mis-shaped document all yield an empty store.
func (s *Store) Load() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("failed to read history file %s: %v", s.path, err)
		}
		s.records = nil
		return nil
	}

	var doc fileDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		logger.Warnf("history file %s is malformed, resetting: %v", s.path, err)
		s.records = nil
		return nil
	}

	kept, _ := s.applyRetention(doc.Records)
	s.records = kept
	return s.copyRecords()
}

// Save applies the retention filter and persists records plus metadata.
// Returns false on any I/O or serialization failure.
func (s *Store) Save(records []Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(records)
}

func (s *Store) saveLocked(records []Record) bool {
	kept, cleaned := s.applyRetention(records)

	doc := fileDoc{
		Records: kept,
		Metadata: Metadata{
			LastUpdated:    s.now().Format(TimeLayout),
			TotalRecords:   len(kept),
			CleanedRecords: cleaned,
		},
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		logger.Errorf("failed to serialize history: %v", err)
		return false
	}

	if err := s.writeAtomic(data); err != nil {
		logger.Errorf("failed to save history to %s: %v", s.path, err)
		return false
	}

	s.records = kept
	return true
}

// writeAtomic writes the document next to the target and renames it into
// place so a concurrent reader never sees a partial file.
func (s *Store) writeAtomic(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize history file: %w", err)
	}
	return nil
}

// Append adds a completed run and persists. Returns false if the save
// failed; the record stays in memory either way.
func (s *Store) Append(record Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, record)
	return s.saveLocked(s.records)
}

// Delete removes the record with the given id and persists. Returns false
// when no record matches or the save fails.
func (s *Store) Delete(id string) bool {
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	kept := s.records[:0]
	for _, r := range s.records {
		if r.ID == id {
			found = true
			continue
		}
		kept = append(kept, r)
	}
	if !found {
		return false
	}
	s.records = kept

	return s.saveLocked(s.records)
}

// Clear removes every record and persists the empty collection.
func (s *Store) Clear() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return s.saveLocked(nil)
}

// Records returns a copy of the in-memory collection in insertion order.
func (s *Store) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyRecords()
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.ID == id {
			return r, true
		}
	}
	return Record{}, false
}

func (s *Store) copyRecords() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// applyRetention drops records older than the retention window relative to
// now, plus records whose timestamp does not parse. Returns the kept
// records and the dropped count.
func (s *Store) applyRetention(records []Record) ([]Record, int) {
	cutoff := s.now().Add(-s.retention)

	var kept []Record
	for _, r := range records {
		ts, err := time.ParseInLocation(TimeLayout, r.Timestamp, time.Local)
		if err != nil {
			continue
		}
		if ts.After(cutoff) {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}
