package roster

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
)

// GetRoster returns the active registrations of an event in roster order, split by
// status. Non-admins cannot see rosters of past events.
func (a *App) GetRoster(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*Roster, error) {
	event, err := a.store.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	isActive := event.IsActive(a.clock.Now())
	if !isActive && !actor.IsAdmin {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}

	entries, err := a.store.ListRoster(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster: %w", err)
	}
	SortRosterEntries(entries)

	roster := &Roster{
		Event:     event,
		IsActive:  isActive,
		Going:     []models.RosterEntry{},
		Waitlist:  []models.RosterEntry{},
		Requested: []models.RosterEntry{},
	}
	for _, entry := range entries {
		switch entry.Status {
		case models.StatusGoing:
			roster.Going = append(roster.Going, entry)
		case models.StatusWaitlist:
			roster.Waitlist = append(roster.Waitlist, entry)
		case models.StatusRequested:
			roster.Requested = append(roster.Requested, entry)
		default:
			continue
		}
		if entry.UserID == actor.UserID {
			roster.MyStatus = entry.Status
		}
	}
	return roster, nil
}
