package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/hexsim/internal/session"
	"github.com/jwebster45206/hexsim/pkg/sim"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"` // player-facing text
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// writeSimError maps engine error kinds onto HTTP statuses.
func writeSimError(w http.ResponseWriter, logger *slog.Logger, err error) {
	resp := ErrorResponse{Error: err.Error(), Message: sim.PlayerMessage(err)}
	status := http.StatusInternalServerError
	switch {
	case sim.IsUnknownTool(err):
		resp.Code, status = sim.CodeUnknownTool, http.StatusBadRequest
	case sim.IsInvalidIntent(err):
		resp.Code, status = sim.CodeInvalidIntent, http.StatusUnprocessableEntity
	case sim.IsActorBusy(err):
		resp.Code, status = sim.CodeActorBusy, http.StatusConflict
	case sim.IsTranslationFailure(err):
		resp.Code, status = sim.CodeTranslationFailure, http.StatusUnprocessableEntity
	case errors.Is(err, session.ErrNoTranslator):
		status = http.StatusNotImplemented
	default:
		logger.Error("Command failed", "error", err)
		resp.Message = ""
	}
	writeJSON(w, logger, status, resp)
}
