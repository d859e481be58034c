package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"delivery-lifecycle/internal/logx"
)

const (
	streamBuffer    = 64
	streamHeartbeat = 15 * time.Second
)

// StreamHandler serves GET /events/stream as server-sent events.
type StreamHandler struct {
	source    eventSource
	logger    logx.Logger
	heartbeat time.Duration
}

// NewStreamHandler creates a StreamHandler reading from source.
func NewStreamHandler(logger logx.Logger, source eventSource) *StreamHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &StreamHandler{source: source, logger: logger, heartbeat: streamHeartbeat}
}

// Stream writes every published history event until the client goes away.
// An optional ?reference= narrows the stream to one delivery.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}
	ref := r.URL.Query().Get("reference")

	events, cancel := h.source.Subscribe(streamBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	tick := time.NewTicker(h.heartbeat)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case e, ok := <-events:
			if !ok {
				return
			}
			if ref != "" && e.Reference != ref {
				continue
			}
			data, err := json.Marshal(eventToResponse(e))
			if err != nil {
				h.logger.Warn("stream encode failed", logx.String("event_id", e.ID), logx.Any("error", err))
				continue
			}
			if _, err := fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", e.ID, e.ToStatus, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
