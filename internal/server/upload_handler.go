// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/clinsight/internal/logger"
	"github.com/clinsight/internal/pipeline"
)

// UploadHandler accepts PDF uploads and runs them through the pipeline.
type UploadHandler struct {
	processor   *pipeline.Processor
	progress    *ProgressHub
	maxFileSize int64
	notify      func(title, message string)
}

// NewUploadHandler creates an upload handler. notify may be nil.
func NewUploadHandler(processor *pipeline.Processor, progress *ProgressHub, maxFileSize int64, notify func(title, message string)) *UploadHandler {
	return &UploadHandler{
		processor:   processor,
		progress:    progress,
		maxFileSize: maxFileSize,
		notify:      notify,
	}
}

// FileResult is the per-file outcome returned to the browser.
type FileResult struct {
	Filename  string   `json:"filename"`
	OK        bool     `json:"ok"`
	RecordID  string   `json:"record_id,omitempty"`
	Analysis  string   `json:"analysis,omitempty"`
	Artifacts []string `json:"artifacts,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// UploadResponse summarizes one submission.
type UploadResponse struct {
	Results  []FileResult `json:"results"`
	Deferred []string     `json:"deferred,omitempty"`
}

// HandleUpload handles POST /api/v1/upload with multipart field "files".
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Spool large parts to disk rather than memory.
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	parts := r.MultipartForm.File["files"]
	if len(parts) == 0 {
		writeJSONError(w, http.StatusBadRequest, "no files uploaded")
		return
	}

	var files []pipeline.BatchItem
	for _, part := range parts {
		f, err := part.Open()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", part.Filename, err))
			return
		}
		// Read one byte past the cap so validation can tell oversized
		// uploads apart without buffering the whole excess.
		data, err := io.ReadAll(io.LimitReader(f, h.maxFileSize+1))
		f.Close()
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", part.Filename, err))
			return
		}
		files = append(files, pipeline.BatchItem{Filename: part.Filename, Data: data})
	}

	status := func(filename, stage string, fraction float64) {
		h.progress.Broadcast(ProgressEvent{File: filename, Stage: stage, Fraction: fraction})
	}

	resp := UploadResponse{}
	batch := h.processor.ProcessBatch(r.Context(), files, status)
	for _, outcome := range batch.Outcomes {
		fr := FileResult{Filename: outcome.Filename, OK: outcome.Err == nil}
		if outcome.Err != nil {
			fr.Error = outcome.Err.Error()
		} else {
			fr.RecordID = outcome.Result.RecordID
			fr.Analysis = outcome.Result.Analysis
			for name := range outcome.Result.Artifacts {
				fr.Artifacts = append(fr.Artifacts, name)
			}
		}
		resp.Results = append(resp.Results, fr)
	}
	resp.Deferred = batch.Deferred

	if h.notify != nil {
		ok := 0
		for _, r := range resp.Results {
			if r.OK {
				ok++
			}
		}
		h.notify("clinsight", fmt.Sprintf("批次处理完成：%d/%d 篇成功", ok, len(resp.Results)))
	}

	logger.Printf("upload batch done: %d processed, %d deferred", len(resp.Results), len(resp.Deferred))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func writeJSONError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
