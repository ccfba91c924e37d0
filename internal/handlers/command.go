package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/pkg/event"
	"github.com/jwebster45206/hexsim/pkg/sim"
	"github.com/jwebster45206/hexsim/pkg/tools"
)

// CommandRequest carries either a structured command or free text.
type CommandRequest struct {
	ActorID string       `json:"actor_id,omitempty"`
	Tool    tools.Name   `json:"tool,omitempty"`
	Params  tools.Params `json:"params,omitempty"`
	Text    string       `json:"text,omitempty"`
}

// DispatchedEvent is one dispatched event in a response.
type DispatchedEvent struct {
	Event      event.Event `json:"event"`
	Line       string      `json:"line,omitempty"`
	Recipients []string    `json:"recipients,omitempty"`
}

// OutcomeResponse reports what a command or tick request dispatched.
type OutcomeResponse struct {
	Tick    int               `json:"tick"`
	Command *tools.Command    `json:"command,omitempty"`
	Lines   []string          `json:"lines"`
	Events  []DispatchedEvent `json:"events"`
}

func newOutcomeResponse(out session.Outcome, actorID string, withCommand bool) OutcomeResponse {
	resp := OutcomeResponse{Tick: out.Tick, Lines: []string{}, Events: []DispatchedEvent{}}
	if withCommand {
		cmd := out.Command
		resp.Command = &cmd
	}
	if actorID != "" {
		if lines := out.LinesFor(actorID); lines != nil {
			resp.Lines = lines
		}
	} else {
		for _, d := range out.Dispatched {
			if d.Line != "" {
				resp.Lines = append(resp.Lines, d.Line)
			}
		}
	}
	for _, d := range out.Dispatched {
		resp.Events = append(resp.Events, toDispatchedEvent(d))
	}
	return resp
}

func toDispatchedEvent(d sim.Dispatched) DispatchedEvent {
	return DispatchedEvent{Event: d.Event, Line: d.Line, Recipients: d.Recipients}
}

type CommandHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewCommandHandler(sess *session.Session, logger *slog.Logger) *CommandHandler {
	return &CommandHandler{session: sess, logger: logger}
}

// ServeHTTP handles POST /v1/command.
func (h *CommandHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		h.logger.Warn("Invalid command request", "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
		return
	}

	actorID := req.ActorID
	if actorID == "" {
		actorID = h.session.PlayerID()
	}

	var (
		out session.Outcome
		err error
	)
	switch {
	case req.Tool != "":
		out, err = h.session.Submit(r.Context(), actorID, tools.Command{Tool: req.Tool, Params: req.Params})
	case strings.TrimSpace(req.Text) != "":
		out, err = h.session.SubmitText(r.Context(), actorID, req.Text)
	default:
		writeError(w, h.logger, http.StatusBadRequest, "Either tool or text is required")
		return
	}
	if err != nil {
		writeSimError(w, h.logger, err)
		return
	}

	h.logger.Debug("Command processed", "actor", actorID, "tool", out.Command.Tool, "tick", out.Tick, "events", len(out.Dispatched))
	writeJSON(w, h.logger, http.StatusOK, newOutcomeResponse(out, actorID, true))
}

// TickRequest asks the clock to advance.
type TickRequest struct {
	Count int `json:"count"`
}

type TickHandler struct {
	session *session.Session
	logger  *slog.Logger
}

func NewTickHandler(sess *session.Session, logger *slog.Logger) *TickHandler {
	return &TickHandler{session: sess, logger: logger}
}

// ServeHTTP handles POST /v1/tick. An empty body advances one tick.
func (h *TickHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	req := TickRequest{Count: 1}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, h.logger, http.StatusBadRequest, "Invalid JSON in request body")
			return
		}
	}
	if req.Count < 1 {
		writeError(w, h.logger, http.StatusBadRequest, "count must be at least 1")
		return
	}
	out := h.session.Advance(req.Count)
	writeJSON(w, h.logger, http.StatusOK, newOutcomeResponse(out, "", false))
}
