package events

import (
	"time"

	"github.com/mcdev12/icetime/go/internal/models"
)

// CreateEventRequest represents the data needed to create an event
type CreateEventRequest struct {
	Name           string           `json:"name" validate:"required,max=200"`
	League         string           `json:"league" validate:"required,max=32"`
	Type           models.EventType `json:"type" validate:"required,oneof=league extra"`
	StartTime      time.Time        `json:"start_time" validate:"required"`
	Location       string           `json:"location" validate:"required,max=200"`
	Rink           *string          `json:"rink,omitempty" validate:"omitempty,max=100"`
	VenueKey       *string          `json:"venue_key,omitempty" validate:"omitempty,max=64"`
	Description    *string          `json:"description,omitempty"`
	MaxPlayers     *int             `json:"max_players,omitempty"`
	HasFee         bool             `json:"has_fee"`
	CostAmount     *float64         `json:"cost_amount,omitempty" validate:"omitempty,gte=0"`
	ApprovalNeeded bool             `json:"approval_needed"`
}

// UpdateEventRequest is a partial update; nil fields are left unchanged.
type UpdateEventRequest struct {
	EventID         string            `json:"event_id" validate:"required,uuid"`
	Name            *string           `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	League          *string           `json:"league,omitempty" validate:"omitempty,min=1,max=32"`
	Type            *models.EventType `json:"type,omitempty" validate:"omitempty,oneof=league extra"`
	StartTime       *time.Time        `json:"start_time,omitempty"`
	Location        *string           `json:"location,omitempty" validate:"omitempty,min=1,max=200"`
	Rink            *string           `json:"rink,omitempty" validate:"omitempty,max=100"`
	VenueKey        *string           `json:"venue_key,omitempty" validate:"omitempty,max=64"`
	Description     *string           `json:"description,omitempty"`
	MaxPlayers      *int              `json:"max_players,omitempty"`
	ClearMaxPlayers bool              `json:"clear_max_players,omitempty"`
	HasFee          *bool             `json:"has_fee,omitempty"`
	CostAmount      *float64          `json:"cost_amount,omitempty" validate:"omitempty,gte=0"`
	ApprovalNeeded  *bool             `json:"approval_needed,omitempty"`
}

// EventView is an event together with whether it is inside its activity window
type EventView struct {
	*models.Event
	IsActive bool `json:"is_active"`
}

type EventIDRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

type ListEventsRequest struct {
	IncludePast bool `json:"include_past"`
}

type EventResponse struct {
	Event *EventView `json:"event"`
}

type ListEventsResponse struct {
	Events []EventView `json:"events"`
}

type Empty struct{}
