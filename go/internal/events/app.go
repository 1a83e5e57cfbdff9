package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster"
	"github.com/rs/zerolog/log"
)

// StartTimeGranularity is the step event start times are rounded to.
const StartTimeGranularity = 5 * time.Minute

// EventsRepository defines what the app layer needs from the repository.
// Writes take the audit entry to store in the same transaction.
type EventsRepository interface {
	CreateEvent(ctx context.Context, event models.Event, entry models.AuditEntry) (*models.Event, error)
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
	// ListEvents returns events ordered by start time. A nil startingAfter lists all of them.
	ListEvents(ctx context.Context, startingAfter *time.Time) ([]models.Event, error)
	UpdateEvent(ctx context.Context, event models.Event, entry models.AuditEntry) (*models.Event, error)
	DeleteEvent(ctx context.Context, id uuid.UUID, entry models.AuditEntry) error
}

// App handles event catalog business logic
type App struct {
	repo  EventsRepository
	clock clockwork.Clock
}

// NewApp creates a new events App
func NewApp(repo EventsRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// CreateEvent normalizes and stores a new event
func (a *App) CreateEvent(ctx context.Context, actor models.Actor, req CreateEventRequest) (*EventView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", roster.ErrInvalidInput)
	}
	if req.StartTime.IsZero() {
		return nil, fmt.Errorf("%w: start time is required", roster.ErrInvalidInput)
	}

	now := a.clock.Now()
	event := models.Event{
		ID:             uuid.New(),
		Name:           strings.TrimSpace(req.Name),
		League:         normalizeLeague(req.League),
		Type:           req.Type,
		StartTime:      roundStartTime(req.StartTime),
		Location:       strings.TrimSpace(req.Location),
		Rink:           trimmed(req.Rink),
		VenueKey:       trimmed(req.VenueKey),
		Description:    req.Description,
		MaxPlayers:     clampMaxPlayers(req.MaxPlayers),
		HasFee:         req.HasFee,
		ApprovalNeeded: req.ApprovalNeeded,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if event.HasFee {
		event.CostAmount = req.CostAmount
	}

	entry, err := a.auditEntry(actor, models.AuditEventCreate, event.ID, map[string]any{
		"name":       event.Name,
		"league":     event.League,
		"start_time": event.StartTime,
	})
	if err != nil {
		return nil, err
	}

	created, err := a.repo.CreateEvent(ctx, event, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	log.Info().
		Str("event_id", created.ID.String()).
		Str("league", created.League).
		Time("start_time", created.StartTime).
		Msg("event created")
	return a.view(created), nil
}

// GetEvent returns one event. Members only see events inside their activity window.
func (a *App) GetEvent(ctx context.Context, actor models.Actor, id uuid.UUID) (*EventView, error) {
	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin && !event.IsActive(a.clock.Now()) {
		return nil, fmt.Errorf("%w: %s", roster.ErrEventNotFound, id)
	}
	return a.view(event), nil
}

// ListEvents returns the active events by start time. includePast is honoured for admins only.
func (a *App) ListEvents(ctx context.Context, actor models.Actor, includePast bool) ([]EventView, error) {
	var after *time.Time
	if !includePast || !actor.IsAdmin {
		cutoff := a.clock.Now().Add(-models.ActiveWindow)
		after = &cutoff
	}

	events, err := a.repo.ListEvents(ctx, after)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	views := make([]EventView, 0, len(events))
	for i := range events {
		views = append(views, *a.view(&events[i]))
	}
	return views, nil
}

// UpdateEvent applies a partial update. A changed start time is recorded as a reschedule.
func (a *App) UpdateEvent(ctx context.Context, actor models.Actor, id uuid.UUID, req UpdateEventRequest) (*EventView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	previousStart := event.StartTime

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", roster.ErrInvalidInput)
		}
		event.Name = name
	}
	if req.League != nil {
		event.League = normalizeLeague(*req.League)
	}
	if req.Type != nil {
		event.Type = *req.Type
	}
	if req.StartTime != nil {
		event.StartTime = roundStartTime(*req.StartTime)
	}
	if req.Location != nil {
		event.Location = strings.TrimSpace(*req.Location)
	}
	if req.Rink != nil {
		event.Rink = trimmed(req.Rink)
	}
	if req.VenueKey != nil {
		event.VenueKey = trimmed(req.VenueKey)
	}
	if req.Description != nil {
		event.Description = req.Description
	}
	if req.ClearMaxPlayers {
		event.MaxPlayers = nil
	} else if req.MaxPlayers != nil {
		event.MaxPlayers = clampMaxPlayers(req.MaxPlayers)
	}
	if req.HasFee != nil {
		event.HasFee = *req.HasFee
	}
	if req.CostAmount != nil {
		event.CostAmount = req.CostAmount
	}
	if !event.HasFee {
		event.CostAmount = nil
	}
	if req.ApprovalNeeded != nil {
		event.ApprovalNeeded = *req.ApprovalNeeded
	}
	event.UpdatedAt = a.clock.Now()

	action := models.AuditEventUpdate
	details := map[string]any{"name": event.Name}
	if !event.StartTime.Equal(previousStart) {
		action = models.AuditEventReschedule
		details["from"] = previousStart
		details["to"] = event.StartTime
	}

	entry, err := a.auditEntry(actor, action, event.ID, details)
	if err != nil {
		return nil, err
	}

	updated, err := a.repo.UpdateEvent(ctx, *event, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	log.Info().
		Str("event_id", updated.ID.String()).
		Str("action", string(action)).
		Msg("event updated")
	return a.view(updated), nil
}

// CancelEvent marks the event cancelled. Cancelling twice is a no-op.
func (a *App) CancelEvent(ctx context.Context, actor models.Actor, id uuid.UUID) (*EventView, error) {
	return a.setCancelled(ctx, actor, id, true)
}

// RestoreEvent clears a cancellation
func (a *App) RestoreEvent(ctx context.Context, actor models.Actor, id uuid.UUID) (*EventView, error) {
	return a.setCancelled(ctx, actor, id, false)
}

func (a *App) setCancelled(ctx context.Context, actor models.Actor, id uuid.UUID, cancelled bool) (*EventView, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}

	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled() == cancelled {
		return a.view(event), nil
	}

	now := a.clock.Now()
	action := models.AuditEventRestore
	event.CancelledAt = nil
	if cancelled {
		action = models.AuditEventCancel
		event.CancelledAt = &now
	}
	event.UpdatedAt = now

	entry, err := a.auditEntry(actor, action, event.ID, map[string]any{"name": event.Name})
	if err != nil {
		return nil, err
	}

	updated, err := a.repo.UpdateEvent(ctx, *event, entry)
	if err != nil {
		return nil, fmt.Errorf("failed to %s event: %w", strings.TrimPrefix(string(action), "event."), err)
	}

	log.Info().
		Str("event_id", updated.ID.String()).
		Bool("cancelled", cancelled).
		Msg("event cancellation changed")
	return a.view(updated), nil
}

// DeleteEvent removes an event. Registrations and captains go with it.
func (a *App) DeleteEvent(ctx context.Context, actor models.Actor, id uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}

	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return err
	}

	entry, err := a.auditEntry(actor, models.AuditEventDelete, event.ID, map[string]any{
		"name":       event.Name,
		"start_time": event.StartTime,
	})
	if err != nil {
		return err
	}

	if err := a.repo.DeleteEvent(ctx, id, entry); err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	log.Info().Str("event_id", id.String()).Msg("event deleted")
	return nil
}

func (a *App) view(event *models.Event) *EventView {
	return &EventView{Event: event, IsActive: event.IsActive(a.clock.Now())}
}

func (a *App) auditEntry(actor models.Actor, action models.AuditAction, eventID uuid.UUID, details any) (models.AuditEntry, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return models.AuditEntry{}, fmt.Errorf("failed to encode audit details: %w", err)
	}
	entry := models.AuditEntry{
		ID:         uuid.New(),
		Action:     action,
		EntityType: models.AuditEntityEvent,
		EntityID:   &eventID,
		Details:    raw,
		CreatedAt:  a.clock.Now(),
	}
	if actor.UserID != uuid.Nil {
		userID := actor.UserID
		entry.UserID = &userID
	}
	return entry, nil
}

func requireAdmin(actor models.Actor) error {
	if !actor.IsAdmin {
		return fmt.Errorf("%w: admin only", roster.ErrForbidden)
	}
	return nil
}

func normalizeLeague(league string) string {
	return strings.ToUpper(strings.TrimSpace(league))
}

func roundStartTime(t time.Time) time.Time {
	return t.Round(StartTimeGranularity)
}

func clampMaxPlayers(maxPlayers *int) *int {
	if maxPlayers == nil {
		return nil
	}
	n := max(*maxPlayers, 0)
	return &n
}

// trimmed drops blank optional strings
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
