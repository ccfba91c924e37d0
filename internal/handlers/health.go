package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/hexsim/internal/session"
)

// Pinger is a dependency the health check probes.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status     string         `json:"status"`
	Timestamp  time.Time      `json:"timestamp"`
	Service    string         `json:"service"`
	Components map[string]any `json:"components"`
}

type HealthHandler struct {
	session *session.Session
	feed    Pinger
	logger  *slog.Logger
}

// NewHealthHandler creates the handler. feed may be nil when the narration
// feed is disabled.
func NewHealthHandler(sess *session.Session, feed Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{session: sess, feed: feed, logger: logger}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := map[string]any{
		"simulation": map[string]any{"session_id": h.session.ID, "tick": h.session.Tick()},
		"translator": enabled(h.session.CanTranslate()),
	}
	overallStatus := "healthy"

	if h.feed == nil {
		components["feed"] = "disabled"
	} else if err := h.feed.Ping(ctx); err != nil {
		h.logger.Warn("Feed health check failed", "error", err)
		components["feed"] = "unhealthy"
		overallStatus = "degraded"
	} else {
		components["feed"] = "healthy"
	}

	statusCode := http.StatusOK
	if overallStatus != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "hexsim",
		Components: components,
	})
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
