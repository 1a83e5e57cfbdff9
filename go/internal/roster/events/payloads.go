package events

import (
	"time"
)

// Outbox event types emitted by the roster engine
const (
	EventTypePlayerPromoted = "PlayerPromoted"
	EventTypeRosterChanged  = "RosterChanged"
)

// PromotionReason says why a member was moved onto the roster
type PromotionReason string

const (
	PromotionReasonWaitlist PromotionReason = "waitlist"
	PromotionReasonApproval PromotionReason = "approval"
	PromotionReasonBulk     PromotionReason = "bulk"
)

// PlayerPromotedPayload carries everything the notifier needs to send the
// "you're in" email without reading the database again.
type PlayerPromotedPayload struct {
	RegistrationID   string          `json:"registration_id"`
	EventID          string          `json:"event_id"`
	UserID           string          `json:"user_id"`
	Email            string          `json:"email"`
	EventName        string          `json:"event_name"`
	StartTimeDisplay string          `json:"start_time_display"`
	LocationDisplay  string          `json:"location_display"`
	VenueKey         *string         `json:"venue_key,omitempty"`
	Reason           PromotionReason `json:"reason"`
	PromotedAt       time.Time       `json:"promoted_at"`
}

// RosterChangedPayload is broadcast to live roster viewers
type RosterChangedPayload struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id,omitempty"`
	Action    string    `json:"action"`
	Status    string    `json:"status,omitempty"`
	Count     int       `json:"count,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
}
