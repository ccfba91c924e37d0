package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/pkg/actor"
	"github.com/jwebster45206/hexsim/pkg/location"
	"github.com/jwebster45206/hexsim/pkg/world"
)

// CharacterResponse is a character and where it stands.
type CharacterResponse struct {
	Character *actor.Character `json:"character"`
	Location  string           `json:"location,omitempty"`
	Tick      int              `json:"tick"`
}

// LocationResponse joins the static and mutable halves of a location.
type LocationResponse struct {
	Static *location.Static `json:"static"`
	State  *location.State  `json:"state"`
	Tick   int              `json:"tick"`
}

// WorldHandler serves read-only views of the world.
type WorldHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewWorldHandler(sess *session.Session, logger *slog.Logger) *WorldHandler {
	return &WorldHandler{session: sess, logger: logger}
}

// ListCharacters handles GET /v1/characters.
func (h *WorldHandler) ListCharacters(w http.ResponseWriter, r *http.Request) {
	var ids []string
	h.session.View(func(wd *world.World, _ int) { ids = wd.Characters() })
	writeJSON(w, h.logger, http.StatusOK, map[string][]string{"characters": ids})
}

// GetCharacter handles GET /v1/characters/{id}. The character is encoded
// while the session is locked so the response is a consistent snapshot.
func (h *WorldHandler) GetCharacter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	found := false
	h.session.View(func(wd *world.World, tick int) {
		c, ok := wd.Character(id)
		if !ok {
			return
		}
		found = true
		loc, _ := wd.FindCharacterLocation(id)
		writeJSON(w, h.logger, http.StatusOK, CharacterResponse{Character: c, Location: loc, Tick: tick})
	})
	if !found {
		writeError(w, h.logger, http.StatusNotFound, "Character not found")
	}
}

// ListLocations handles GET /v1/locations.
func (h *WorldHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	var ids []string
	h.session.View(func(wd *world.World, _ int) { ids = wd.Locations() })
	writeJSON(w, h.logger, http.StatusOK, map[string][]string{"locations": ids})
}

// GetLocation handles GET /v1/locations/{id}.
func (h *WorldHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	found := false
	h.session.View(func(wd *world.World, tick int) {
		static, ok := wd.LocationStatic(id)
		if !ok {
			return
		}
		state, _ := wd.LocationState(id)
		found = true
		writeJSON(w, h.logger, http.StatusOK, LocationResponse{Static: static, State: state, Tick: tick})
	})
	if !found {
		writeError(w, h.logger, http.StatusNotFound, "Location not found")
	}
}
