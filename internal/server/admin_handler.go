// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/clinsight/internal/logger"
)

// AdminHandler covers the maintenance actions from the admin page.
type AdminHandler struct {
	uploadDir string
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(uploadDir string) *AdminHandler {
	return &AdminHandler{uploadDir: uploadDir}
}

// HandleClearUploads handles POST /api/v1/admin/clear-uploads by removing
// every stored upload copy.
func (h *AdminHandler) HandleClearUploads(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries, err := os.ReadDir(h.uploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{"removed": 0})
			return
		}
		writeJSONError(w, http.StatusInternalServerError, "failed to read upload directory")
		return
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(h.uploadDir, entry.Name())); err != nil {
			logger.Warnf("failed to remove upload %s: %v", entry.Name(), err)
			continue
		}
		removed++
	}

	logger.Printf("cleared %d uploaded files", removed)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"removed": removed})
}
