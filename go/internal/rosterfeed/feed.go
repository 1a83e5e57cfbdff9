package rosterfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/outbox"
	rosterevents "github.com/mcdev12/icetime/go/internal/roster/events"
)

// Update is the message viewers receive when an event roster changes
type Update struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Status    string    `json:"status,omitempty"`
	Count     int       `json:"count,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}

// Feed relays RosterChanged envelopes to websocket viewers
type Feed struct {
	manager *ConnectionManager
}

func NewFeed(manager *ConnectionManager) *Feed {
	return &Feed{manager: manager}
}

// Subject is the bus subject the feed consumes
func Subject() string {
	return outbox.Subject(rosterevents.EventTypeRosterChanged)
}

// Handle is an outbox.HandlerFunc. Updates are best effort, so malformed
// envelopes are acked and dropped.
func (f *Feed) Handle(_ context.Context, env outbox.Envelope) error {
	if env.EventType != rosterevents.EventTypeRosterChanged {
		return outbox.ErrSkip
	}

	update, eventID, err := decodeUpdate(env)
	if err != nil {
		log.Warn().Err(err).Str("outbox_id", env.ID).Msg("dropping roster update")
		return outbox.ErrSkip
	}

	f.manager.BroadcastToEvent(eventID, update)
	return nil
}

func decodeUpdate(env outbox.Envelope) (*Update, uuid.UUID, error) {
	var payload rosterevents.RosterChangedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		return nil, uuid.Nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	eventID, err := uuid.Parse(payload.EventID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("parse event id: %w", err)
	}

	return &Update{
		ID:        env.ID,
		EventID:   payload.EventID,
		UserID:    payload.UserID,
		Action:    payload.Action,
		Status:    payload.Status,
		Count:     payload.Count,
		ChangedAt: payload.ChangedAt,
	}, eventID, nil
}
