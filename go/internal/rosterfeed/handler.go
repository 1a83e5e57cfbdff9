package rosterfeed

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/models"
)

// TokenVerifier turns a bearer token into an actor
type TokenVerifier interface {
	Verify(token string) (models.Actor, error)
}

// WebSocketHandler serves the roster feed endpoints
type WebSocketHandler struct {
	manager  *ConnectionManager
	verifier TokenVerifier
}

// NewWebSocketHandler builds the handler. A nil verifier accepts anonymous viewers.
func NewWebSocketHandler(cm *ConnectionManager, verifier TokenVerifier) *WebSocketHandler {
	return &WebSocketHandler{manager: cm, verifier: verifier}
}

// HandleRosterConnection upgrades /ws/roster?event_id=<uuid>. Browsers cannot set
// headers on websocket requests, so the token may also come as ?token=.
func (h *WebSocketHandler) HandleRosterConnection(w http.ResponseWriter, r *http.Request) {
	eventIDStr := r.URL.Query().Get("event_id")
	if eventIDStr == "" {
		http.Error(w, "event_id is required", http.StatusBadRequest)
		return
	}
	eventID, err := uuid.Parse(eventIDStr)
	if err != nil {
		http.Error(w, "invalid event_id format", http.StatusBadRequest)
		return
	}

	userID := "anonymous"
	if h.verifier != nil {
		actor, err := h.verifier.Verify(requestToken(r))
		if err != nil {
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}
		userID = actor.UserID.String()
	}

	if err := h.manager.UpgradeConnection(w, r, userID, eventID); err != nil {
		// the upgrader has already answered the request
		log.Error().
			Err(err).
			Str("event_id", eventID.String()).
			Str("user_id", userID).
			Msg("failed to upgrade websocket connection")
	}
}

func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.manager.Stats()); err != nil {
		log.Error().Err(err).Msg("failed to write connection stats")
	}
}

func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/roster", h.HandleRosterConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}

func requestToken(r *http.Request) string {
	const prefix = "bearer "
	header := r.Header.Get("Authorization")
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return r.URL.Query().Get("token")
}
