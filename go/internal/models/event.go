package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ActiveWindow is how long after its start time an event still accepts self-service changes.
const ActiveWindow = 4 * time.Hour

// EventType represents the kind of session
type EventType string

const (
	EventTypeLeague EventType = "league"
	EventTypeExtra  EventType = "extra"
)

// Event represents a scheduled league session that members sign up for
type Event struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	League         string     `json:"league"`
	Type           EventType  `json:"type"`
	StartTime      time.Time  `json:"start_time"`
	Location       string     `json:"location"`
	Rink           *string    `json:"rink,omitempty"`
	VenueKey       *string    `json:"venue_key,omitempty"`
	Description    *string    `json:"description,omitempty"`
	MaxPlayers     *int       `json:"max_players,omitempty"` // nil = unlimited
	HasFee         bool       `json:"has_fee"`
	CostAmount     *float64   `json:"cost_amount,omitempty"`
	ApprovalNeeded bool       `json:"approval_needed"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsActive reports whether now is still inside the event's activity window.
func (e *Event) IsActive(now time.Time) bool {
	return now.Before(e.StartTime.Add(ActiveWindow))
}

// IsCancelled reports whether an admin cancelled the event.
func (e *Event) IsCancelled() bool {
	return e.CancelledAt != nil
}

// IsOpen reports whether self-service join and leave are allowed.
func (e *Event) IsOpen(now time.Time) bool {
	return e.IsActive(now) && !e.IsCancelled()
}

// HasCapacity reports whether the event caps its roster.
func (e *Event) HasCapacity() bool {
	return e.MaxPlayers != nil
}

// DisplayName falls back to "<league> League - <type>" for unnamed events.
func (e *Event) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return fmt.Sprintf("%s League - %s", e.League, e.Type)
}

// LocationDisplay is the location with the rink appended in parentheses.
func (e *Event) LocationDisplay() string {
	if e.Rink != nil && *e.Rink != "" {
		return fmt.Sprintf("%s (%s)", e.Location, *e.Rink)
	}
	return e.Location
}
