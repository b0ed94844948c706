package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chromadish/internal/catalog"
	"chromadish/internal/storage"
)

// keepAliveInterval spaces SSE comments so idle proxies keep the stream open.
const keepAliveInterval = 25 * time.Second

// Catalog handles GET /api/catalog.
func (h Handler) Catalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

// ListGenerations handles GET /api/generations.
func (h Handler) ListGenerations(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeJSON(w, http.StatusOK, []storage.Generation{})
		return
	}

	var filter storage.ListFilter
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, fmt.Errorf("%w: invalid limit", errBadRequest))
			return
		}
		filter.Limit = n
	}
	switch status := storage.Status(r.URL.Query().Get("status")); status {
	case "", storage.StatusSucceeded, storage.StatusFailed:
		filter.Status = status
	default:
		writeError(w, fmt.Errorf("%w: invalid status", errBadRequest))
		return
	}

	generations, err := h.Store.ListGenerations(r.Context(), filter)
	if err != nil {
		h.Log.Error().Err(err).Msg("list generations failed")
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generations)
}

// GetGeneration handles GET /api/generations/{id}.
func (h Handler) GetGeneration(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil {
		writeError(w, storage.ErrNotFound)
		return
	}

	generation, err := h.Store.GetGeneration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			h.Log.Error().Err(err).Msg("get generation failed")
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generation)
}

// StreamEvents handles GET /api/events as server-sent events.
func (h Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok || h.Events == nil {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := h.Events.Subscribe()
	defer h.Events.Unsubscribe(ch)

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case evt, open := <-ch:
			if !open {
				return
			}
			data, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Status, data); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
