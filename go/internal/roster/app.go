package roster

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster/events"
	"github.com/rs/zerolog/log"
)

// StartTimeLayout renders start times in notifications, e.g. "Mar 4, 2026 at 9:30 PM".
const StartTimeLayout = "Jan 2, 2006 at 3:04 PM"

// App handles registration and roster business logic
type App struct {
	store Store
	clock clockwork.Clock
	loc   *time.Location
}

// NewApp creates a new roster App. loc is the zone start times are displayed in.
func NewApp(store Store, clock clockwork.Clock, loc *time.Location) *App {
	if loc == nil {
		loc = time.UTC
	}
	return &App{
		store: store,
		clock: clock,
		loc:   loc,
	}
}

// Join signs the actor up for an event. The resulting status comes from
// DecideInitialStatus, evaluated under the event lock.
func (a *App) Join(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*models.Registration, error) {
	var joined *models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if !event.IsOpen(a.clock.Now()) {
			return fmt.Errorf("%w: event %s no longer accepts sign-ups", ErrEventClosed, eventID)
		}

		existing, err := tx.GetRegistration(ctx, eventID, actor.UserID)
		if err != nil {
			return fmt.Errorf("failed to get registration: %w", err)
		}
		if existing.CurrentStatus().IsActive() {
			return fmt.Errorf("%w: user %s is %s", ErrAlreadyRegistered, actor.UserID, existing.Status)
		}

		goingCount, err := tx.CountRegistrationsByStatus(ctx, eventID, models.StatusGoing)
		if err != nil {
			return fmt.Errorf("failed to count roster: %w", err)
		}

		status := DecideInitialStatus(event, goingCount)
		position := 0
		if status == models.StatusWaitlist {
			waitlist, err := tx.ListRegistrationsByStatus(ctx, eventID, models.StatusWaitlist)
			if err != nil {
				return fmt.Errorf("failed to list waitlist: %w", err)
			}
			position = NextWaitlistPosition(waitlist)
		}

		joined, err = a.activate(ctx, tx, existing, eventID, actor.UserID, status, position)
		if err != nil {
			return err
		}

		if err := a.audit(ctx, tx, actor, models.AuditRegistrationJoin, models.AuditEntityRegistration, joined.ID, map[string]any{
			"event_id": eventID,
			"status":   joined.Status,
			"position": joined.Position,
		}); err != nil {
			return err
		}
		return a.emitRosterChanged(ctx, tx, eventID, "join", joined, 0)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", eventID.String()).
		Str("user_id", actor.UserID.String()).
		Str("status", string(joined.Status)).
		Int("position", joined.Position).
		Msg("member joined event")
	return joined, nil
}

// Leave removes the actor from an event. A vacated roster slot is refilled from the
// waitlist in the same transaction.
func (a *App) Leave(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*RemovalResult, error) {
	var result *RemovalResult
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if !event.IsOpen(a.clock.Now()) {
			return fmt.Errorf("%w: event %s no longer accepts changes", ErrEventClosed, eventID)
		}

		reg, err := tx.GetRegistration(ctx, eventID, actor.UserID)
		if err != nil {
			return fmt.Errorf("failed to get registration: %w", err)
		}
		if !reg.CurrentStatus().IsActive() {
			return fmt.Errorf("%w: user %s on event %s", ErrNotRegistered, actor.UserID, eventID)
		}

		result, err = a.removeAndBackfill(ctx, tx, event, actor, *reg, models.AuditRegistrationLeave)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.logRemoval(eventID, actor.UserID, result)
	return result, nil
}

// removeAndBackfill is the shared removal primitive behind Leave and DirectRemove.
func (a *App) removeAndBackfill(ctx context.Context, tx Tx, event *models.Event, actor models.Actor, reg models.Registration, action models.AuditAction) (*RemovalResult, error) {
	wasGoing := reg.Status == models.StatusGoing

	removed, err := a.transition(ctx, tx, reg, models.StatusRemoved, reg.Position)
	if err != nil {
		return nil, err
	}
	if err := a.audit(ctx, tx, actor, action, models.AuditEntityRegistration, removed.ID, map[string]any{
		"event_id":    event.ID,
		"user_id":     removed.UserID,
		"prev_status": reg.Status,
	}); err != nil {
		return nil, err
	}
	if err := a.emitRosterChanged(ctx, tx, event.ID, "remove", removed, 0); err != nil {
		return nil, err
	}

	result := &RemovalResult{Removed: removed}
	if wasGoing && event.HasCapacity() {
		result.Promoted, err = a.promoteNextWaitlisted(ctx, tx, event, actor)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// activate creates the registration row or reactivates a removed one with fresh
// ordering fields.
func (a *App) activate(ctx context.Context, tx Tx, existing *models.Registration, eventID, userID uuid.UUID, status models.RegistrationStatus, position int) (*models.Registration, error) {
	from := existing.CurrentStatus()
	if !from.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: cannot move from %q to %q", ErrInvalidState, from, status)
	}

	now := a.clock.Now()
	if existing == nil {
		reg, err := tx.CreateRegistration(ctx, models.Registration{
			ID:       uuid.New(),
			EventID:  eventID,
			UserID:   userID,
			Status:   status,
			Position: position,
			JoinedAt: now,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create registration: %w", err)
		}
		return reg, nil
	}

	reg := *existing
	reg.Status = status
	reg.Position = position
	reg.Line = nil
	reg.AssignedPosition = nil
	reg.JoinedAt = now
	reg.RemovedAt = nil
	updated, err := tx.UpdateRegistration(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate registration: %w", err)
	}
	return updated, nil
}

// transition moves an existing row along one edge of the state machine.
func (a *App) transition(ctx context.Context, tx Tx, reg models.Registration, to models.RegistrationStatus, position int) (*models.Registration, error) {
	if !reg.Status.CanTransitionTo(to) {
		return nil, fmt.Errorf("%w: cannot move from %q to %q", ErrInvalidState, reg.Status, to)
	}

	reg.Status = to
	reg.Position = position
	if to == models.StatusRemoved {
		now := a.clock.Now()
		reg.RemovedAt = &now
	}
	updated, err := tx.UpdateRegistration(ctx, reg)
	if err != nil {
		return nil, fmt.Errorf("failed to update registration: %w", err)
	}
	return updated, nil
}

func (a *App) audit(ctx context.Context, tx Tx, actor models.Actor, action models.AuditAction, entityType string, entityID uuid.UUID, details any) error {
	raw, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to marshal audit details: %w", err)
	}

	entry := models.AuditEntry{
		ID:         uuid.New(),
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		Details:    raw,
		CreatedAt:  a.clock.Now(),
	}
	if actor.UserID != uuid.Nil {
		userID := actor.UserID
		entry.UserID = &userID
	}
	if err := tx.InsertAuditLog(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// emitRosterChanged queues a live-feed notification. reg may be nil for bulk changes.
func (a *App) emitRosterChanged(ctx context.Context, tx Tx, eventID uuid.UUID, action string, reg *models.Registration, count int) error {
	payload := events.RosterChangedPayload{
		EventID:   eventID.String(),
		Action:    action,
		Count:     count,
		ChangedAt: a.clock.Now(),
	}
	if reg != nil {
		payload.UserID = reg.UserID.String()
		payload.Status = string(reg.Status)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal roster change: %w", err)
	}
	if err := tx.InsertOutboxEvent(ctx, eventID, events.EventTypeRosterChanged, raw); err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}
	return nil
}

func (a *App) logRemoval(eventID, userID uuid.UUID, result *RemovalResult) {
	logEvent := log.Info().
		Str("event_id", eventID.String()).
		Str("user_id", userID.String())
	if result.Promoted != nil {
		logEvent = logEvent.Str("promoted_user_id", result.Promoted.UserID.String())
	}
	logEvent.Msg("member removed from event")
}
