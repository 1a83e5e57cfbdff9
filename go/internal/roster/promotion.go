package roster

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster/events"
	"github.com/rs/zerolog/log"
)

// PromoteNextWaitlisted fills one free roster slot from the waitlist. Admin only.
// Returns nil when there is no free slot or nobody is waiting.
func (a *App) PromoteNextWaitlisted(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*models.Registration, error) {
	var promoted *models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := requireAdmin(actor); err != nil {
			return err
		}
		var err error
		promoted, err = a.promoteNextWaitlisted(ctx, tx, event, actor)
		return err
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// promoteNextWaitlisted moves the waitlisted row with the lowest position (then
// earliest joinedAt) to going. Remaining positions are not renumbered.
func (a *App) promoteNextWaitlisted(ctx context.Context, tx Tx, event *models.Event, actor models.Actor) (*models.Registration, error) {
	if event.HasCapacity() {
		goingCount, err := tx.CountRegistrationsByStatus(ctx, event.ID, models.StatusGoing)
		if err != nil {
			return nil, fmt.Errorf("failed to count roster: %w", err)
		}
		if goingCount >= *event.MaxPlayers {
			return nil, nil
		}
	}

	waitlist, err := tx.ListRegistrationsByStatus(ctx, event.ID, models.StatusWaitlist)
	if err != nil {
		return nil, fmt.Errorf("failed to list waitlist: %w", err)
	}
	if len(waitlist) == 0 {
		return nil, nil
	}
	sortByWaitlistPriority(waitlist)

	next := waitlist[0]
	promoted, err := a.transition(ctx, tx, next, models.StatusGoing, 0)
	if err != nil {
		return nil, err
	}
	if err := a.audit(ctx, tx, actor, models.AuditRegistrationPromote, models.AuditEntityRegistration, promoted.ID, map[string]any{
		"event_id":      event.ID,
		"user_id":       promoted.UserID,
		"from_position": next.Position,
	}); err != nil {
		return nil, err
	}
	if err := a.enqueuePromotion(ctx, tx, event, promoted, events.PromotionReasonWaitlist); err != nil {
		return nil, err
	}
	if err := a.emitRosterChanged(ctx, tx, event.ID, "promote", promoted, 0); err != nil {
		return nil, err
	}
	return promoted, nil
}

// enqueuePromotion writes the PlayerPromoted outbox row. Delivery happens after commit,
// so a failed email never undoes the promotion.
func (a *App) enqueuePromotion(ctx context.Context, tx Tx, event *models.Event, reg *models.Registration, reason events.PromotionReason) error {
	user, err := tx.GetUser(ctx, reg.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || user.Email == "" {
		log.Warn().
			Str("event_id", event.ID.String()).
			Str("user_id", reg.UserID.String()).
			Msg("promoted member has no email address, skipping notification")
		return nil
	}

	payload := events.PlayerPromotedPayload{
		RegistrationID:   reg.ID.String(),
		EventID:          event.ID.String(),
		UserID:           reg.UserID.String(),
		Email:            user.Email,
		EventName:        event.DisplayName(),
		StartTimeDisplay: event.StartTime.In(a.loc).Format(StartTimeLayout),
		LocationDisplay:  event.LocationDisplay(),
		VenueKey:         event.VenueKey,
		Reason:           reason,
		PromotedAt:       a.clock.Now(),
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal promotion payload: %w", err)
	}
	if err := tx.InsertOutboxEvent(ctx, event.ID, events.EventTypePlayerPromoted, raw); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}
