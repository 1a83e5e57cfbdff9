package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/events/db"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster"
	"github.com/mcdev12/icetime/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// Repository handles database operations for events
type Repository struct {
	db      *sql.DB
	queries *db.Queries
}

// NewRepository creates a new events repository
func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		db:      sqlDB,
		queries: db.New(sqlDB),
	}
}

var _ EventsRepository = (*Repository)(nil)

// CreateEvent inserts the event and its audit row in one transaction
func (r *Repository) CreateEvent(ctx context.Context, event models.Event, entry models.AuditEntry) (*models.Event, error) {
	var created *models.Event
	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		row, err := q.CreateEvent(ctx, db.CreateEventParams{
			ID:             event.ID,
			Name:           event.Name,
			League:         event.League,
			Type:           string(event.Type),
			StartTime:      event.StartTime,
			Location:       event.Location,
			Rink:           sqlutil.ToSqlString(event.Rink),
			VenueKey:       sqlutil.ToSqlString(event.VenueKey),
			Description:    sqlutil.ToSqlString(event.Description),
			MaxPlayers:     sqlutil.ToSqlInt32(event.MaxPlayers),
			HasFee:         event.HasFee,
			CostAmount:     sqlutil.ToSqlNumeric(event.CostAmount),
			ApprovalNeeded: event.ApprovalNeeded,
			CreatedAt:      event.CreatedAt,
		})
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		if err := insertAudit(ctx, q, entry); err != nil {
			return err
		}
		created = dbEventToModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *Repository) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	row, err := r.queries.GetEvent(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", roster.ErrEventNotFound, id)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return dbEventToModel(row), nil
}

func (r *Repository) ListEvents(ctx context.Context, startingAfter *time.Time) ([]models.Event, error) {
	var (
		rows []db.Event
		err  error
	)
	if startingAfter == nil {
		rows, err = r.queries.ListAllEvents(ctx)
	} else {
		rows, err = r.queries.ListEventsStartingAfter(ctx, *startingAfter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	events := make([]models.Event, 0, len(rows))
	for _, row := range rows {
		events = append(events, *dbEventToModel(row))
	}
	return events, nil
}

// UpdateEvent writes every column of event and its audit row in one transaction
func (r *Repository) UpdateEvent(ctx context.Context, event models.Event, entry models.AuditEntry) (*models.Event, error) {
	var updated *models.Event
	err := sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		row, err := q.UpdateEvent(ctx, db.UpdateEventParams{
			ID:             event.ID,
			Name:           event.Name,
			League:         event.League,
			Type:           string(event.Type),
			StartTime:      event.StartTime,
			Location:       event.Location,
			Rink:           sqlutil.ToSqlString(event.Rink),
			VenueKey:       sqlutil.ToSqlString(event.VenueKey),
			Description:    sqlutil.ToSqlString(event.Description),
			MaxPlayers:     sqlutil.ToSqlInt32(event.MaxPlayers),
			HasFee:         event.HasFee,
			CostAmount:     sqlutil.ToSqlNumeric(event.CostAmount),
			ApprovalNeeded: event.ApprovalNeeded,
			CancelledAt:    sqlutil.ToSqlTime(event.CancelledAt),
			UpdatedAt:      event.UpdatedAt,
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", roster.ErrEventNotFound, event.ID)
			}
			return fmt.Errorf("failed to update event: %w", err)
		}
		if err := insertAudit(ctx, q, entry); err != nil {
			return err
		}
		updated = dbEventToModel(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *Repository) DeleteEvent(ctx context.Context, id uuid.UUID, entry models.AuditEntry) error {
	return sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		n, err := q.DeleteEvent(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("%w: %s", roster.ErrEventNotFound, id)
		}
		return insertAudit(ctx, q, entry)
	})
}

func insertAudit(ctx context.Context, q *db.Queries, entry models.AuditEntry) error {
	err := q.InsertAuditLog(ctx, db.InsertAuditLogParams{
		ID:         entry.ID,
		UserID:     sqlutil.ToNullUUID(entry.UserID),
		Action:     string(entry.Action),
		EntityType: entry.EntityType,
		EntityID:   sqlutil.ToNullUUID(entry.EntityID),
		Details:    pqtype.NullRawMessage{RawMessage: entry.Details, Valid: len(entry.Details) > 0},
		CreatedAt:  entry.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}
	return nil
}

func dbEventToModel(row db.Event) *models.Event {
	return &models.Event{
		ID:             row.ID,
		Name:           row.Name,
		League:         row.League,
		Type:           models.EventType(row.Type),
		StartTime:      row.StartTime,
		Location:       row.Location,
		Rink:           sqlutil.FromSqlStringPtr(row.Rink),
		VenueKey:       sqlutil.FromSqlStringPtr(row.VenueKey),
		Description:    sqlutil.FromSqlStringPtr(row.Description),
		MaxPlayers:     sqlutil.FromSqlInt32(row.MaxPlayers),
		HasFee:         row.HasFee,
		CostAmount:     sqlutil.FromSqlNumeric(row.CostAmount),
		ApprovalNeeded: row.ApprovalNeeded,
		CancelledAt:    sqlutil.FromSqlTime(row.CancelledAt),
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}
}
