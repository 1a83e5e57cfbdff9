package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditAction names a recorded state change
type AuditAction string

const (
	AuditEventCreate     AuditAction = "event.create"
	AuditEventUpdate     AuditAction = "event.update"
	AuditEventCancel     AuditAction = "event.cancel"
	AuditEventRestore    AuditAction = "event.restore"
	AuditEventReschedule AuditAction = "event.reschedule"
	AuditEventDelete     AuditAction = "event.delete"

	AuditRegistrationJoin              AuditAction = "registration.join"
	AuditRegistrationLeave             AuditAction = "registration.leave"
	AuditRegistrationAdd               AuditAction = "registration.add"
	AuditRegistrationApprove           AuditAction = "registration.approve"
	AuditRegistrationRemove            AuditAction = "registration.remove"
	AuditRegistrationPromote           AuditAction = "registration.promote"
	AuditRegistrationBulkApprove       AuditAction = "registration.bulk_approve"
	AuditRegistrationBulkWaitlistGoing AuditAction = "registration.bulk_waitlist_to_going"
	AuditRegistrationReorderWaitlist   AuditAction = "registration.reorder_waitlist"
	AuditRegistrationLinePosition      AuditAction = "registration.update_line_position"

	AuditCaptainAdd    AuditAction = "captain.add"
	AuditCaptainRemove AuditAction = "captain.remove"
)

// Audit entity types
const (
	AuditEntityEvent        = "event"
	AuditEntityRegistration = "registration"
	AuditEntityCaptain      = "captain"
)

// AuditEntry is one write-only audit log row
type AuditEntry struct {
	ID         uuid.UUID       `json:"id"`
	UserID     *uuid.UUID      `json:"user_id,omitempty"`
	Action     AuditAction     `json:"action"`
	EntityType string          `json:"entity_type"`
	EntityID   *uuid.UUID      `json:"entity_id,omitempty"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
