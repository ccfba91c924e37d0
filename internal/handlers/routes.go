package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/hexsim/internal/session"
)

// Deps are the collaborators the API routes use. Optional ones may be nil.
type Deps struct {
	Session *session.Session
	Feed    interface {
		Pinger
		FeedReader
	}
	Journal JournalReader
	Metrics http.Handler
	Logger  *slog.Logger
}

// NewMux registers every route.
func NewMux(d Deps) *http.ServeMux {
	logger := d.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var feedPinger Pinger
	var feedReader FeedReader
	if d.Feed != nil {
		feedPinger, feedReader = d.Feed, d.Feed
	}

	worldHandler := NewWorldHandler(d.Session, logger)
	history := NewHistoryHandler(d.Session.ID, d.Journal, feedReader, logger)

	mux := http.NewServeMux()
	mux.Handle("GET /health", NewHealthHandler(d.Session, feedPinger, logger))
	mux.Handle("POST /v1/command", NewCommandHandler(d.Session, logger))
	mux.Handle("POST /v1/tick", NewTickHandler(d.Session, logger))
	mux.HandleFunc("GET /v1/characters", worldHandler.ListCharacters)
	mux.HandleFunc("GET /v1/characters/{id}", worldHandler.GetCharacter)
	mux.HandleFunc("GET /v1/locations", worldHandler.ListLocations)
	mux.HandleFunc("GET /v1/locations/{id}", worldHandler.GetLocation)
	mux.HandleFunc("GET /v1/journal", history.Journal)
	mux.HandleFunc("GET /v1/feed", history.Feed)
	if d.Metrics != nil {
		mux.Handle("GET /metrics", d.Metrics)
	}
	return mux
}
