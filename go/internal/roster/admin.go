package roster

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster/events"
	"github.com/rs/zerolog/log"
)

func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin {
		return fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	return nil
}

// authorizeStaff allows admins and captains of the event.
func authorizeStaff(ctx context.Context, tx Tx, actor models.Actor, eventID uuid.UUID) error {
	if actor.IsAdmin {
		return nil
	}
	isCaptain, err := tx.IsCaptain(ctx, eventID, actor.UserID)
	if err != nil {
		return fmt.Errorf("failed to check captain: %w", err)
	}
	if !isCaptain {
		return fmt.Errorf("%w: admin or event captain role required", ErrForbidden)
	}
	return nil
}

// Approve grants a requested member a roster slot. Capacity is not re-checked.
func (a *App) Approve(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) (*models.Registration, error) {
	var approved *models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := authorizeStaff(ctx, tx, actor, eventID); err != nil {
			return err
		}

		reg, err := tx.GetRegistration(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("failed to get registration: %w", err)
		}
		if !reg.CurrentStatus().IsActive() {
			return fmt.Errorf("%w: user %s on event %s", ErrNotRegistered, userID, eventID)
		}
		if reg.Status != models.StatusRequested {
			return fmt.Errorf("%w: registration is %s, not requested", ErrInvalidState, reg.Status)
		}

		approved, err = a.approve(ctx, tx, event, *reg, events.PromotionReasonApproval)
		if err != nil {
			return err
		}
		return a.audit(ctx, tx, actor, models.AuditRegistrationApprove, models.AuditEntityRegistration, approved.ID, map[string]any{
			"event_id": eventID,
			"user_id":  userID,
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", eventID.String()).
		Str("user_id", userID.String()).
		Str("approved_by", actor.UserID.String()).
		Msg("registration approved")
	return approved, nil
}

// approve moves a requested row to going and queues its notification.
func (a *App) approve(ctx context.Context, tx Tx, event *models.Event, reg models.Registration, reason events.PromotionReason) (*models.Registration, error) {
	approved, err := a.transition(ctx, tx, reg, models.StatusGoing, 0)
	if err != nil {
		return nil, err
	}
	if err := a.enqueuePromotion(ctx, tx, event, approved, reason); err != nil {
		return nil, err
	}
	if err := a.emitRosterChanged(ctx, tx, event.ID, "approve", approved, 0); err != nil {
		return nil, err
	}
	return approved, nil
}

// DirectAdd puts a member straight onto the roster, ignoring capacity and approval.
func (a *App) DirectAdd(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) (*models.Registration, error) {
	var added *models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := requireAdmin(actor); err != nil {
			return err
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: unknown user %s", ErrInvalidInput, userID)
		}

		existing, err := tx.GetRegistration(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("failed to get registration: %w", err)
		}
		if existing.CurrentStatus().IsActive() {
			return fmt.Errorf("%w: user %s is %s", ErrAlreadyActive, userID, existing.Status)
		}

		added, err = a.activate(ctx, tx, existing, eventID, userID, models.StatusGoing, 0)
		if err != nil {
			return err
		}
		if err := a.audit(ctx, tx, actor, models.AuditRegistrationAdd, models.AuditEntityRegistration, added.ID, map[string]any{
			"event_id": eventID,
			"user_id":  userID,
		}); err != nil {
			return err
		}
		return a.emitRosterChanged(ctx, tx, eventID, "add", added, 0)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", eventID.String()).
		Str("user_id", userID.String()).
		Msg("member added to roster by admin")
	return added, nil
}

// DirectRemove removes any member. Same promotion cascade as Leave, but allowed on
// closed events.
func (a *App) DirectRemove(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) (*RemovalResult, error) {
	var result *RemovalResult
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := authorizeStaff(ctx, tx, actor, eventID); err != nil {
			return err
		}

		reg, err := tx.GetRegistration(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("failed to get registration: %w", err)
		}
		if !reg.CurrentStatus().IsActive() {
			return fmt.Errorf("%w: user %s on event %s", ErrNotRegistered, userID, eventID)
		}

		result, err = a.removeAndBackfill(ctx, tx, event, actor, *reg, models.AuditRegistrationRemove)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.logRemoval(eventID, userID, result)
	return result, nil
}

// BulkApproveAllRequested approves every requested member, earliest joiner first.
func (a *App) BulkApproveAllRequested(ctx context.Context, actor models.Actor, eventID uuid.UUID) ([]models.Registration, error) {
	var approved []models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		approved = nil
		if err := authorizeStaff(ctx, tx, actor, eventID); err != nil {
			return err
		}

		requested, err := tx.ListRegistrationsByStatus(ctx, eventID, models.StatusRequested)
		if err != nil {
			return fmt.Errorf("failed to list requested registrations: %w", err)
		}
		slices.SortFunc(requested, func(x, y models.Registration) int {
			if c := x.JoinedAt.Compare(y.JoinedAt); c != 0 {
				return c
			}
			return bytes.Compare(x.ID[:], y.ID[:])
		})

		for _, reg := range requested {
			ok, err := a.approve(ctx, tx, event, reg, events.PromotionReasonApproval)
			if err != nil {
				return err
			}
			approved = append(approved, *ok)
		}

		if len(approved) == 0 {
			return nil
		}
		return a.audit(ctx, tx, actor, models.AuditRegistrationBulkApprove, models.AuditEntityEvent, eventID, map[string]any{
			"count": len(approved),
		})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", eventID.String()).
		Int("count", len(approved)).
		Msg("bulk approved requested registrations")
	return approved, nil
}

// MoveAllWaitlistToGoing promotes as many waitlisted members as the roster has room
// for, in waitlist order. Unlimited events take the whole waitlist.
func (a *App) MoveAllWaitlistToGoing(ctx context.Context, actor models.Actor, eventID uuid.UUID) ([]models.Registration, error) {
	var promoted []models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		promoted = nil
		if err := requireAdmin(actor); err != nil {
			return err
		}

		goingCount, err := tx.CountRegistrationsByStatus(ctx, eventID, models.StatusGoing)
		if err != nil {
			return fmt.Errorf("failed to count roster: %w", err)
		}
		waitlist, err := tx.ListRegistrationsByStatus(ctx, eventID, models.StatusWaitlist)
		if err != nil {
			return fmt.Errorf("failed to list waitlist: %w", err)
		}
		sortByWaitlistPriority(waitlist)

		for _, reg := range waitlist[:spotsLeft(event, goingCount, len(waitlist))] {
			moved, err := a.transition(ctx, tx, reg, models.StatusGoing, 0)
			if err != nil {
				return err
			}
			if err := a.enqueuePromotion(ctx, tx, event, moved, events.PromotionReasonBulk); err != nil {
				return err
			}
			promoted = append(promoted, *moved)
		}

		if len(promoted) == 0 {
			return nil
		}
		if err := a.audit(ctx, tx, actor, models.AuditRegistrationBulkWaitlistGoing, models.AuditEntityEvent, eventID, map[string]any{
			"count": len(promoted),
		}); err != nil {
			return err
		}
		return a.emitRosterChanged(ctx, tx, eventID, "bulk_promote", nil, len(promoted))
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("event_id", eventID.String()).
		Int("count", len(promoted)).
		Msg("moved waitlist to roster")
	return promoted, nil
}

// ReorderWaitlist replaces the waitlist order. Listed members take positions 0..k-1 in
// the given order; unlisted waitlisted members follow in their previous order. Every
// waitlist row ends up with a unique, contiguous position.
func (a *App) ReorderWaitlist(ctx context.Context, actor models.Actor, eventID uuid.UUID, orderedUserIDs []uuid.UUID) ([]models.Registration, error) {
	if len(orderedUserIDs) == 0 {
		return nil, fmt.Errorf("%w: waitlist order is empty", ErrInvalidInput)
	}

	var reordered []models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := requireAdmin(actor); err != nil {
			return err
		}

		waitlist, err := tx.ListRegistrationsByStatus(ctx, eventID, models.StatusWaitlist)
		if err != nil {
			return fmt.Errorf("failed to list waitlist: %w", err)
		}
		sortByWaitlistPriority(waitlist)

		byUser := make(map[uuid.UUID]models.Registration, len(waitlist))
		for _, reg := range waitlist {
			byUser[reg.UserID] = reg
		}

		listed := make(map[uuid.UUID]bool, len(orderedUserIDs))
		order := make([]models.Registration, 0, len(waitlist))
		for _, userID := range orderedUserIDs {
			if listed[userID] {
				return fmt.Errorf("%w: user %s listed twice", ErrInvalidInput, userID)
			}
			reg, ok := byUser[userID]
			if !ok {
				return fmt.Errorf("%w: user %s is not on the waitlist", ErrInvalidInput, userID)
			}
			listed[userID] = true
			order = append(order, reg)
		}
		for _, reg := range waitlist {
			if !listed[reg.UserID] {
				order = append(order, reg)
			}
		}

		reordered = make([]models.Registration, 0, len(order))
		for i, reg := range order {
			if reg.Position != i {
				reg.Position = i
				updated, err := tx.UpdateRegistration(ctx, reg)
				if err != nil {
					return fmt.Errorf("failed to update waitlist position: %w", err)
				}
				reg = *updated
			}
			reordered = append(reordered, reg)
		}

		if err := a.audit(ctx, tx, actor, models.AuditRegistrationReorderWaitlist, models.AuditEntityEvent, eventID, map[string]any{
			"order": orderedUserIDs,
		}); err != nil {
			return err
		}
		return a.emitRosterChanged(ctx, tx, eventID, "reorder", nil, len(reordered))
	})
	if err != nil {
		return nil, err
	}
	return reordered, nil
}

// SetLinePosition assigns a going member's line and position label.
func (a *App) SetLinePosition(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID, update LinePositionUpdate) (*models.Registration, error) {
	if update.Line != nil && (*update.Line < models.MinLine || *update.Line > models.MaxLine) {
		return nil, fmt.Errorf("%w: line must be between %d and %d", ErrInvalidInput, models.MinLine, models.MaxLine)
	}
	assigned := update.AssignedPosition
	if assigned != nil {
		trimmed := strings.TrimSpace(*assigned)
		assigned = &trimmed
		if trimmed == "" {
			assigned = nil
		}
	}

	var updated *models.Registration
	err := a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := authorizeStaff(ctx, tx, actor, eventID); err != nil {
			return err
		}

		reg, err := tx.GetRegistration(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("failed to get registration: %w", err)
		}
		if !reg.CurrentStatus().IsActive() {
			return fmt.Errorf("%w: user %s on event %s", ErrNotRegistered, userID, eventID)
		}
		if reg.Status != models.StatusGoing {
			return fmt.Errorf("%w: only going members have a line, registration is %s", ErrInvalidState, reg.Status)
		}

		next := *reg
		next.Line = update.Line
		next.AssignedPosition = assigned
		updated, err = tx.UpdateRegistration(ctx, next)
		if err != nil {
			return fmt.Errorf("failed to update line position: %w", err)
		}

		if err := a.audit(ctx, tx, actor, models.AuditRegistrationLinePosition, models.AuditEntityRegistration, updated.ID, map[string]any{
			"event_id":          eventID,
			"user_id":           userID,
			"line":              updated.Line,
			"assigned_position": updated.AssignedPosition,
		}); err != nil {
			return err
		}
		return a.emitRosterChanged(ctx, tx, eventID, "line_position", updated, 0)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AddCaptain grants a member approval authority on one event. Idempotent.
func (a *App) AddCaptain(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) error {
	return a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := requireAdmin(actor); err != nil {
			return err
		}

		user, err := tx.GetUser(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to get user: %w", err)
		}
		if user == nil {
			return fmt.Errorf("%w: unknown user %s", ErrInvalidInput, userID)
		}

		if err := tx.UpsertCaptain(ctx, eventID, userID); err != nil {
			return fmt.Errorf("failed to add captain: %w", err)
		}
		return a.audit(ctx, tx, actor, models.AuditCaptainAdd, models.AuditEntityCaptain, userID, map[string]any{
			"event_id": eventID,
		})
	})
}

// RemoveCaptain revokes captain authority. Removing a non-captain is a no-op.
func (a *App) RemoveCaptain(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) error {
	return a.store.WithEventLock(ctx, eventID, func(tx Tx, event *models.Event) error {
		if err := requireAdmin(actor); err != nil {
			return err
		}

		deleted, err := tx.DeleteCaptain(ctx, eventID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove captain: %w", err)
		}
		return a.audit(ctx, tx, actor, models.AuditCaptainRemove, models.AuditEntityCaptain, userID, map[string]any{
			"event_id": eventID,
			"deleted":  deleted,
		})
	})
}
