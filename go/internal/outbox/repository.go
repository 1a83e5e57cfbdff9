package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/outbox/db"
	"github.com/mcdev12/icetime/go/internal/sqlutil"
)

// Repository is the Postgres outbox Store
type Repository struct {
	queries *db.Queries
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		queries: db.New(sqlDB),
	}
}

var _ Store = (*Repository)(nil)

func (r *Repository) FetchUnsent(ctx context.Context, limit int) ([]Event, error) {
	rows, err := r.queries.FetchUnsentOutbox(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}

	events := make([]Event, len(rows))
	for i, row := range rows {
		events[i] = dbOutboxToEvent(row)
	}
	return events, nil
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (*Event, error) {
	row, err := r.queries.FetchOutboxByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch outbox event by ID: %w", err)
	}
	event := dbOutboxToEvent(row)
	return &event, nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	if err := r.queries.MarkOutboxSent(ctx, db.MarkOutboxSentParams{ID: id, SentAt: at}); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}
	return nil
}

func (r *Repository) CountUnsent(ctx context.Context) (int, error) {
	n, err := r.queries.CountUnsentOutbox(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsent outbox events: %w", err)
	}
	return int(n), nil
}

func dbOutboxToEvent(row db.RosterOutbox) Event {
	return Event{
		ID:        row.ID,
		EventID:   row.EventID,
		EventType: row.EventType,
		Payload:   row.Payload,
		CreatedAt: row.CreatedAt,
		SentAt:    sqlutil.FromSqlTime(row.SentAt),
	}
}
