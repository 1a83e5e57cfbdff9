package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// MaxPendingEvents is the backlog above which the relay reports itself unhealthy.
const MaxPendingEvents = 1000

type HealthStatus struct {
	Healthy         bool      `json:"healthy"`
	Published       uint64    `json:"published"`
	Failed          uint64    `json:"failed"`
	LastPublishedAt time.Time `json:"last_published_at"`
	PendingEvents   int       `json:"pending_events"`
	BusConnected    bool      `json:"bus_connected"`
	Errors          []string  `json:"errors"`
}

// HealthChecker reports the relay's backlog and counters
type HealthChecker struct {
	relay     *Relay
	connected func() bool
}

// NewHealthChecker creates a checker. connected may be nil when there is no bus.
func NewHealthChecker(relay *Relay, connected func() bool) *HealthChecker {
	return &HealthChecker{relay: relay, connected: connected}
}

func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy:      true,
		BusConnected: true,
		Errors:       []string{},
	}
	status.Published, status.Failed, status.LastPublishedAt = h.relay.Stats()

	if h.connected != nil && !h.connected() {
		status.BusConnected = false
		status.Healthy = false
		status.Errors = append(status.Errors, "NATS disconnected")
	}

	pending, err := h.relay.store.CountUnsent(ctx)
	if err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending events: %v", err))
		return status
	}
	status.PendingEvents = pending
	if pending > MaxPendingEvents {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("high pending event count: %d", pending))
	}
	return status
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to write health status")
	}
}
