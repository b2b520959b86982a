package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "history.json"), 7)
}

func recordAt(s *Store, id string, ts time.Time) Record {
	return Record{
		ID:          id,
		Filename:    "paper.pdf",
		Fingerprint: "abc123",
		Timestamp:   ts.Format(TimeLayout),
		Analysis:    "| 研究类型 | RCT |",
		Artifacts:   map[string][]byte{"CSV": []byte("要素,内容")},
	}
}

func TestRetentionOnSaveAndLoad(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	records := []Record{
		recordAt(s, "today", now),
		recordAt(s, "three-days", now.AddDate(0, 0, -3)),
		recordAt(s, "eight-days", now.AddDate(0, 0, -8)),
	}

	if !s.Save(records) {
		t.Fatal("Save failed")
	}

	loaded := s.Load()
	if len(loaded) != 2 {
		t.Fatalf("got %d records after load, want 2", len(loaded))
	}
	for _, r := range loaded {
		if r.ID == "eight-days" {
			t.Error("record older than 7 days survived retention")
		}
	}
}

func TestSaveWritesMetadataCounts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	s := NewStore(path, 7)
	now := time.Now()

	s.Save([]Record{
		recordAt(s, "today", now),
		recordAt(s, "three-days", now.AddDate(0, 0, -3)),
		recordAt(s, "eight-days", now.AddDate(0, 0, -8)),
	})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("history file not written: %v", err)
	}

	var doc struct {
		Records  []Record `json:"records"`
		Metadata Metadata `json:"metadata"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("history file is not valid JSON: %v", err)
	}

	if doc.Metadata.TotalRecords != 2 {
		t.Errorf("total_records = %d, want 2", doc.Metadata.TotalRecords)
	}
	if doc.Metadata.CleanedRecords != 1 {
		t.Errorf("cleaned_records = %d, want 1", doc.Metadata.CleanedRecords)
	}
	if doc.Metadata.LastUpdated == "" {
		t.Error("last_updated not set")
	}
}

func TestDeleteExistingRecord(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	s.Save([]Record{recordAt(s, "keep", now), recordAt(s, "remove", now)})
	s.Load()

	if !s.Delete("remove") {
		t.Fatal("Delete returned false for an existing id")
	}

	records := s.Records()
	if len(records) != 1 || records[0].ID != "keep" {
		t.Errorf("records after delete = %+v", records)
	}
}

func TestDeleteMissingRecordLeavesStoreUnchanged(t *testing.T) {
	s := newTestStore(t)

	s.Save([]Record{recordAt(s, "only", time.Now())})
	s.Load()

	if s.Delete("no-such-id") {
		t.Error("Delete returned true for a missing id")
	}
	if len(s.Records()) != 1 {
		t.Error("store changed by a failed delete")
	}
}

func TestLoadMissingFileReturnsEmpty(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "does-not-exist.json"), 7)

	if got := s.Load(); len(got) != 0 {
		t.Errorf("expected empty, got %+v", got)
	}
}

func TestLoadEmptyFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, 7)
	if got := s.Load(); len(got) != 0 {
		t.Errorf("expected empty, got %+v", got)
	}
}

func TestLoadMisshapedFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte(`{"not_records": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, 7)
	if got := s.Load(); len(got) != 0 {
		t.Errorf("expected empty, got %+v", got)
	}
}

func TestLoadCorruptFileReturnsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	if err := os.WriteFile(path, []byte(`{"records": [truncated`), 0644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, 7)
	if got := s.Load(); len(got) != 0 {
		t.Errorf("expected empty, got %+v", got)
	}
}

func TestArtifactBytesRoundTripAsBase64(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "history.json")
	s := NewStore(path, 7)

	rec := s.NewRecord("paper.pdf", "deadbeef", "analysis", map[string][]byte{
		"CSV": []byte("要素,内容\n研究类型,RCT"),
	})
	if !s.Append(rec) {
		t.Fatal("Append failed")
	}

	// The serialized artifact payload must be base64, not raw bytes.
	raw, _ := os.ReadFile(path)
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("invalid JSON on disk: %v", err)
	}

	fresh := NewStore(path, 7)
	loaded := fresh.Load()
	if len(loaded) != 1 {
		t.Fatalf("got %d records, want 1", len(loaded))
	}
	if string(loaded[0].Artifacts["CSV"]) != "要素,内容\n研究类型,RCT" {
		t.Errorf("artifact payload corrupted: %q", loaded[0].Artifacts["CSV"])
	}
}

func TestNewRecordAssignsUniqueIDs(t *testing.T) {
	s := newTestStore(t)

	a := s.NewRecord("a.pdf", "fp-a", "x", nil)
	b := s.NewRecord("b.pdf", "fp-b", "y", nil)

	if a.ID == "" || a.ID == b.ID {
		t.Errorf("ids not unique: %q vs %q", a.ID, b.ID)
	}
}
