package roster

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
)

// Store is the persistence the roster engine runs on.
type Store interface {
	// WithEventLock runs fn in a single transaction holding an exclusive lock on the
	// event row. Every read and write made through tx commits or rolls back as a unit.
	// Returns ErrEventNotFound when the event does not exist.
	WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(tx Tx, event *models.Event) error) error

	GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error)
	ListRoster(ctx context.Context, eventID uuid.UUID) ([]models.RosterEntry, error)
	IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
}

// Tx is the set of reads and writes available while an event is locked.
type Tx interface {
	// GetRegistration returns nil, nil when the pair has no row.
	GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error)
	ListRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) ([]models.Registration, error)
	CountRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) (int, error)
	CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error)
	UpdateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error)

	IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error)
	UpsertCaptain(ctx context.Context, eventID, userID uuid.UUID) error
	DeleteCaptain(ctx context.Context, eventID, userID uuid.UUID) (int64, error)

	// GetUser returns nil, nil for an unknown user.
	GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error)
	InsertAuditLog(ctx context.Context, entry models.AuditEntry) error
	InsertOutboxEvent(ctx context.Context, eventID uuid.UUID, eventType string, payload []byte) error
}

// RemovalResult reports the row that was removed and the waitlisted row promoted into
// the freed slot, if any.
type RemovalResult struct {
	Removed  *models.Registration `json:"removed"`
	Promoted *models.Registration `json:"promoted,omitempty"`
}

// Roster is the read model shown to members and staff
type Roster struct {
	Event     *models.Event             `json:"event"`
	IsActive  bool                      `json:"is_active"`
	Going     []models.RosterEntry      `json:"going"`
	Waitlist  []models.RosterEntry      `json:"waitlist"`
	Requested []models.RosterEntry      `json:"requested"`
	MyStatus  models.RegistrationStatus `json:"my_status,omitempty"`
}

// LinePositionUpdate carries the attributes set by SetLinePosition. Nil clears the field.
type LinePositionUpdate struct {
	Line             *int    `json:"line"`
	AssignedPosition *string `json:"assigned_position"`
}

// EventRequest addresses one event on behalf of the caller
type EventRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
}

// MemberRequest addresses one member of an event
type MemberRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
	UserID  string `json:"user_id" validate:"required,uuid"`
}

type ReorderWaitlistRequest struct {
	EventID string   `json:"event_id" validate:"required,uuid"`
	UserIDs []string `json:"user_ids" validate:"required,min=1,dive,uuid"`
}

type SetLinePositionRequest struct {
	EventID          string  `json:"event_id" validate:"required,uuid"`
	UserID           string  `json:"user_id" validate:"required,uuid"`
	Line             *int    `json:"line" validate:"omitempty,min=1,max=5"`
	AssignedPosition *string `json:"assigned_position" validate:"omitempty,max=32"`
}

type RegistrationResponse struct {
	Registration *models.Registration `json:"registration"`
}

type RegistrationsResponse struct {
	Registrations []models.Registration `json:"registrations"`
}

type RosterResponse struct {
	Roster *Roster `json:"roster"`
}

type Empty struct{}
