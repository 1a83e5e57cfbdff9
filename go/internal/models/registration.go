package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// RegistrationStatus is the closed set of states a registration row can be in.
// StatusNone is never persisted; it stands for "no row yet".
type RegistrationStatus string

const (
	StatusNone      RegistrationStatus = ""
	StatusRequested RegistrationStatus = "requested"
	StatusGoing     RegistrationStatus = "going"
	StatusWaitlist  RegistrationStatus = "waitlist"
	StatusRemoved   RegistrationStatus = "removed"
)

// MinLine and MaxLine bound the roster sub-grouping.
const (
	MinLine = 1
	MaxLine = 5
)

// registrationTransitions lists every legal from -> to edge.
var registrationTransitions = map[RegistrationStatus][]RegistrationStatus{
	StatusNone:      {StatusRequested, StatusGoing, StatusWaitlist},
	StatusRemoved:   {StatusRequested, StatusGoing, StatusWaitlist},
	StatusRequested: {StatusGoing, StatusRemoved},
	StatusWaitlist:  {StatusGoing, StatusRemoved},
	StatusGoing:     {StatusRemoved},
}

// ParseRegistrationStatus validates a persisted status string.
func ParseRegistrationStatus(s string) (RegistrationStatus, error) {
	switch status := RegistrationStatus(s); status {
	case StatusRequested, StatusGoing, StatusWaitlist, StatusRemoved:
		return status, nil
	default:
		return StatusNone, fmt.Errorf("unknown registration status %q", s)
	}
}

// IsActive is true for requested, going and waitlist.
func (s RegistrationStatus) IsActive() bool {
	return s == StatusRequested || s == StatusGoing || s == StatusWaitlist
}

// CanTransitionTo reports whether from -> to is an edge of the state machine.
func (s RegistrationStatus) CanTransitionTo(to RegistrationStatus) bool {
	for _, allowed := range registrationTransitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Registration is the single row tracking one member's place on one event.
type Registration struct {
	ID               uuid.UUID          `json:"id"`
	EventID          uuid.UUID          `json:"event_id"`
	UserID           uuid.UUID          `json:"user_id"`
	Status           RegistrationStatus `json:"status"`
	Position         int                `json:"position"`
	Line             *int               `json:"line,omitempty"`
	AssignedPosition *string            `json:"assigned_position,omitempty"`
	JoinedAt         time.Time          `json:"joined_at"`
	RemovedAt        *time.Time         `json:"removed_at,omitempty"`
}

// CurrentStatus maps a missing row to StatusNone.
func (r *Registration) CurrentStatus() RegistrationStatus {
	if r == nil {
		return StatusNone
	}
	return r.Status
}

// RosterEntry is a registration joined with the member fields shown on rosters.
type RosterEntry struct {
	Registration
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Nickname  *string `json:"nickname,omitempty"`
	Email     string  `json:"email"`
}

// FullName joins first and last name, falling back to the username.
func (e RosterEntry) FullName() string {
	name := e.FirstName
	if e.LastName != "" {
		if name != "" {
			name += " "
		}
		name += e.LastName
	}
	if name == "" {
		return e.Username
	}
	return name
}

// Captain grants approval authority on a single event.
type Captain struct {
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
