// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clinsight/internal/history"
	"github.com/clinsight/internal/report"
)

func seededStore(t *testing.T) (*history.Store, history.Record, history.Record) {
	t.Helper()

	store := history.NewStore(filepath.Join(t.TempDir(), "history.json"), 7)

	older := store.NewRecord("trial_a.pdf", "fp-a", "| 研究类型 | RCT |", map[string][]byte{
		report.ArtifactCSV: []byte("要素,内容\n研究类型,RCT\n"),
	})
	older.Timestamp = time.Now().Add(-24 * time.Hour).Format(history.TimeLayout)
	newer := store.NewRecord("trial_b.pdf", "fp-b", "| 研究类型 | 队列研究 |", nil)
	newer.Timestamp = time.Now().Format(history.TimeLayout)

	if !store.Append(older) || !store.Append(newer) {
		t.Fatal("seeding history store failed")
	}
	return store, older, newer
}

func TestHistoryListNewestFirst(t *testing.T) {
	store, older, newer := seededStore(t)
	h := NewHistoryHandler(store)

	rec := httptest.NewRecorder()
	h.HandleCollection(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Records []RecordSummary `json:"records"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(body.Records))
	}
	if body.Records[0].ID != newer.ID {
		t.Errorf("expected newest record first, got %s", body.Records[0].Filename)
	}
	if body.Records[1].ID != older.ID {
		t.Errorf("expected oldest record last, got %s", body.Records[1].Filename)
	}
	// Payload bytes must not leak into the listing, only artifact names.
	if len(body.Records[1].Artifacts) != 1 || body.Records[1].Artifacts[0] != report.ArtifactCSV {
		t.Errorf("unexpected artifact names: %v", body.Records[1].Artifacts)
	}
}

func TestHistoryDeleteRecord(t *testing.T) {
	store, older, _ := seededStore(t)
	h := NewHistoryHandler(store)

	rec := httptest.NewRecorder()
	h.HandleRecord(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/history/"+older.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := store.Get(older.ID); ok {
		t.Error("record still present after delete")
	}

	// A second delete of the same id is a 404.
	rec = httptest.NewRecorder()
	h.HandleRecord(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/history/"+older.ID, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing record, got %d", rec.Code)
	}
}

func TestHistoryClearAll(t *testing.T) {
	store, _, _ := seededStore(t)
	h := NewHistoryHandler(store)

	rec := httptest.NewRecorder()
	h.HandleCollection(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/history", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := len(store.Records()); got != 0 {
		t.Errorf("expected empty store after clear, got %d records", got)
	}
}

func TestHistoryArtifactDownload(t *testing.T) {
	store, older, _ := seededStore(t)
	h := NewHistoryHandler(store)

	path := "/api/v1/history/" + older.ID + "/artifacts/" + report.ArtifactCSV
	rec := httptest.NewRecorder()
	h.HandleRecord(rec, httptest.NewRequest(http.MethodGet, path, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("unexpected content type %q", ct)
	}
	// Download name is derived from the record date, not today.
	day := strings.ReplaceAll(strings.SplitN(older.Timestamp, " ", 2)[0], "-", "")
	disp := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disp, day+"_trial_a_结构化.csv") {
		t.Errorf("unexpected disposition %q", disp)
	}
	if !strings.Contains(rec.Body.String(), "研究类型,RCT") {
		t.Errorf("unexpected artifact body %q", rec.Body.String())
	}
}

func TestHistoryArtifactNotFound(t *testing.T) {
	store, _, newer := seededStore(t)
	h := NewHistoryHandler(store)

	// newer has no artifacts at all.
	path := "/api/v1/history/" + newer.ID + "/artifacts/" + report.ArtifactPPT
	rec := httptest.NewRecorder()
	h.HandleRecord(rec, httptest.NewRequest(http.MethodGet, path, nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing artifact, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.HandleRecord(rec, httptest.NewRequest(http.MethodGet, "/api/v1/history/no-such-id/artifacts/CSV", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for missing record, got %d", rec.Code)
	}
}
