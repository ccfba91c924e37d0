package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/jwebster45206/hexsim/internal/journal"
)

// JournalReader reads journaled events.
type JournalReader interface {
	Entries(ctx context.Context, q journal.Query) ([]journal.Entry, error)
}

// FeedReader reads the narration feed.
type FeedReader interface {
	Lines(ctx context.Context, session string, limit int) ([]string, error)
}

// HistoryHandler serves past events and narration.
type HistoryHandler struct {
	sessionID string
	journal   JournalReader
	feed      FeedReader
	logger    *slog.Logger
}

// NewHistoryHandler creates the handler; either source may be nil.
func NewHistoryHandler(sessionID string, j JournalReader, f FeedReader, logger *slog.Logger) *HistoryHandler {
	return &HistoryHandler{sessionID: sessionID, journal: j, feed: f, logger: logger}
}

// Journal handles GET /v1/journal?since=&actor=&limit=.
func (h *HistoryHandler) Journal(w http.ResponseWriter, r *http.Request) {
	if h.journal == nil {
		writeError(w, h.logger, http.StatusNotImplemented, "Journal is not enabled")
		return
	}
	q := journal.Query{Session: h.sessionID, ActorID: r.URL.Query().Get("actor")}
	var err error
	if q.SinceTick, err = intParam(r, "since"); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "since must be an integer")
		return
	}
	if q.Limit, err = intParam(r, "limit"); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "limit must be an integer")
		return
	}

	entries, err := h.journal.Entries(r.Context(), q)
	if err != nil {
		h.logger.Error("Failed to read journal", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read journal")
		return
	}
	events := make([]DispatchedEvent, 0, len(entries))
	for _, e := range entries {
		events = append(events, DispatchedEvent{Event: e.Event, Line: e.Line, Recipients: e.Recipients})
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"events": events})
}

// Feed handles GET /v1/feed?limit=.
func (h *HistoryHandler) Feed(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeError(w, h.logger, http.StatusNotImplemented, "Feed is not enabled")
		return
	}
	limit, err := intParam(r, "limit")
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "limit must be an integer")
		return
	}
	lines, err := h.feed.Lines(r.Context(), h.sessionID, limit)
	if err != nil {
		h.logger.Error("Failed to read feed", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to read feed")
		return
	}
	if lines == nil {
		lines = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, map[string]any{"lines": lines})
}

func intParam(r *http.Request, key string) (int, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
