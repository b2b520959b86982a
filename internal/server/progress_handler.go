// Copyright (c) 2025 Northbound System
// Author: Nicholas Skitch
package server

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/clinsight/internal/logger"
)

// ProgressEvent is one pipeline status update pushed to the browser.
type ProgressEvent struct {
	File     string  `json:"file"`
	Stage    string  `json:"stage"`
	Fraction float64 `json:"fraction"`
}

// ProgressHub fans pipeline status events out to connected websocket
// clients. Slow clients are dropped rather than allowed to stall the
// pipeline.
type ProgressHub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan ProgressEvent

	upgrader websocket.Upgrader
}

// NewProgressHub creates an empty hub.
func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		clients: make(map[*websocket.Conn]chan ProgressEvent),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Local single-user tool; the page is served from this
			// same server.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Broadcast sends an event to all connected clients without blocking.
func (h *ProgressHub) Broadcast(event ProgressEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, ch := range h.clients {
		select {
		case ch <- event:
		default:
			// Client buffer full, skip
		}
	}
}

// HandleProgress handles GET /api/v1/progress websocket upgrades.
func (h *ProgressHub) HandleProgress(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warnf("websocket upgrade failed: %v", err)
		return
	}

	ch := make(chan ProgressEvent, 32)
	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		close(ch)
		conn.Close()
	}()

	// Reader goroutine: only needed to detect the client going away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case event := <-ch:
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
