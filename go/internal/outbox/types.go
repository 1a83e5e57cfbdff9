package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is one row of the roster outbox
type Event struct {
	ID        uuid.UUID       `json:"id"`
	EventID   uuid.UUID       `json:"event_id"`
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    *time.Time      `json:"sent_at,omitempty"`
}

// Envelope is the message body published for every outbox row
type Envelope struct {
	ID        string          `json:"id"`
	EventType string          `json:"event_type"`
	EventID   string          `json:"event_id"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Publisher delivers an outbox event to the bus.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Store is the outbox persistence the relay drains.
type Store interface {
	FetchUnsent(ctx context.Context, limit int) ([]Event, error)
	// FetchByID returns nil, nil when the row is missing or already sent.
	FetchByID(ctx context.Context, id uuid.UUID) (*Event, error)
	MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error
	CountUnsent(ctx context.Context) (int, error)
}
