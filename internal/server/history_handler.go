// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/clinsight/internal/history"
	"github.com/clinsight/internal/logger"
	"github.com/clinsight/internal/report"
)

// HistoryHandler serves the processing history: listing, point deletion,
// clear-all, and per-artifact downloads.
type HistoryHandler struct {
	store *history.Store
}

// NewHistoryHandler creates a history handler.
func NewHistoryHandler(store *history.Store) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// RecordSummary is a history record without artifact payloads.
type RecordSummary struct {
	ID          string   `json:"id"`
	Filename    string   `json:"filename"`
	Fingerprint string   `json:"fingerprint"`
	Timestamp   string   `json:"timestamp"`
	Analysis    string   `json:"analysis"`
	Artifacts   []string `json:"artifacts"`
}

// HandleCollection handles GET/DELETE /api/v1/history.
func (h *HistoryHandler) HandleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w)
	case http.MethodDelete:
		if !h.store.Clear() {
			writeJSONError(w, http.StatusInternalServerError, "failed to clear history")
			return
		}
		logger.Printf("history cleared")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "cleared"})
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// HandleRecord handles /api/v1/history/{id} and
// /api/v1/history/{id}/artifacts/{name}.
func (h *HistoryHandler) HandleRecord(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/history/")
	segments := strings.Split(strings.Trim(rest, "/"), "/")

	switch {
	case len(segments) == 1 && segments[0] != "":
		h.record(w, r, segments[0])
	case len(segments) == 3 && segments[1] == "artifacts":
		h.artifact(w, r, segments[0], segments[2])
	default:
		writeJSONError(w, http.StatusNotFound, "not found")
	}
}

func (h *HistoryHandler) list(w http.ResponseWriter) {
	records := h.store.Records()

	summaries := make([]RecordSummary, 0, len(records))
	for _, rec := range records {
		names := make([]string, 0, len(rec.Artifacts))
		for name := range rec.Artifacts {
			names = append(names, name)
		}
		sort.Strings(names)
		summaries = append(summaries, RecordSummary{
			ID:          rec.ID,
			Filename:    rec.Filename,
			Fingerprint: rec.Fingerprint,
			Timestamp:   rec.Timestamp,
			Analysis:    rec.Analysis,
			Artifacts:   names,
		})
	}

	// Newest first.
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].Timestamp > summaries[j].Timestamp
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"records": summaries})
}

func (h *HistoryHandler) record(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !h.store.Delete(id) {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no record with id %s", id))
		return
	}

	logger.Printf("history record %s deleted", id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "deleted", "id": id})
}

func (h *HistoryHandler) artifact(w http.ResponseWriter, r *http.Request, id, name string) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	rec, ok := h.store.Get(id)
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no record with id %s", id))
		return
	}
	payload, ok := rec.Artifacts[name]
	if !ok {
		writeJSONError(w, http.StatusNotFound, fmt.Sprintf("record has no %s artifact", name))
		return
	}

	w.Header().Set("Content-Type", report.ArtifactContentType(name))
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s"`, downloadName(rec, name)))
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}

// downloadName builds the export filename from the record's completion
// date so re-downloads from history stay stable.
func downloadName(rec history.Record, artifact string) string {
	day := strings.ReplaceAll(strings.SplitN(rec.Timestamp, " ", 2)[0], "-", "")
	if _, err := time.Parse("20060102", day); err != nil {
		day = time.Now().Format("20060102")
	}
	base := strings.TrimSuffix(rec.Filename, ".pdf")
	return fmt.Sprintf("%s_%s_结构化%s", day, base, report.ArtifactExtension(artifact))
}
