package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/outbox"
	rosterevents "github.com/mcdev12/icetime/go/internal/roster/events"
)

// Notifier emails members who were moved onto an event roster.
type Notifier struct {
	sender Sender
	dedupe Deduper
	venues Venues
}

func NewNotifier(sender Sender, dedupe Deduper, venues Venues) *Notifier {
	return &Notifier{sender: sender, dedupe: dedupe, venues: venues}
}

// Subject is the bus subject the notifier consumes
func Subject() string {
	return outbox.Subject(rosterevents.EventTypePlayerPromoted)
}

// Handle sends the promotion email for one PlayerPromoted envelope. It is an
// outbox.HandlerFunc.
func (n *Notifier) Handle(ctx context.Context, env outbox.Envelope) error {
	if env.EventType != rosterevents.EventTypePlayerPromoted {
		return outbox.ErrSkip
	}

	var payload rosterevents.PlayerPromotedPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		log.Error().Err(err).Str("outbox_id", env.ID).Msg("malformed promotion payload")
		return outbox.ErrSkip
	}
	if payload.Email == "" {
		log.Warn().
			Str("outbox_id", env.ID).
			Str("user_id", payload.UserID).
			Msg("promoted member has no email")
		return outbox.ErrSkip
	}

	claimed, err := n.dedupe.Claim(ctx, env.ID)
	if err != nil {
		return err
	}
	if !claimed {
		log.Info().Str("outbox_id", env.ID).Msg("promotion email already sent")
		return outbox.ErrSkip
	}

	msg, err := RenderPromoted(payload, n.venues.Lookup(payload.VenueKey))
	if err != nil {
		n.release(ctx, env.ID)
		return err
	}

	if err := n.sender.Send(ctx, msg); err != nil {
		n.release(ctx, env.ID)
		return fmt.Errorf("failed to notify %s: %w", payload.UserID, err)
	}

	log.Info().
		Str("outbox_id", env.ID).
		Str("event_id", payload.EventID).
		Str("user_id", payload.UserID).
		Str("reason", string(payload.Reason)).
		Msg("promotion email sent")
	return nil
}

func (n *Notifier) release(ctx context.Context, key string) {
	if err := n.dedupe.Release(ctx, key); err != nil {
		log.Error().Err(err).Str("outbox_id", key).Msg("failed to release notification claim")
	}
}
