package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/events"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster"
)

var _ events.EventsRepository = (*Store)(nil)

const eventColumns = `id, name, league, type, start_time, location, rink, venue_key, description,
       max_players, has_fee, cost_amount, approval_needed, cancelled_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func scanEvent(row rowScanner) (*models.Event, error) {
	var (
		rawID                         string
		event                         models.Event
		eventType                     string
		startTime, createdAt, updated int64
		rink, venueKey, description   sql.NullString
		maxPlayers, cancelledAt       sql.NullInt64
		costAmount                    sql.NullFloat64
	)
	if err := row.Scan(
		&rawID,
		&event.Name,
		&event.League,
		&eventType,
		&startTime,
		&event.Location,
		&rink,
		&venueKey,
		&description,
		&maxPlayers,
		&event.HasFee,
		&costAmount,
		&event.ApprovalNeeded,
		&cancelledAt,
		&createdAt,
		&updated,
	); err != nil {
		return nil, err
	}

	id, err := parseUUID(rawID)
	if err != nil {
		return nil, err
	}
	event.ID = id
	event.Type = models.EventType(eventType)
	event.StartTime = fromMillis(startTime)
	event.Rink = fromNullString(rink)
	event.VenueKey = fromNullString(venueKey)
	event.Description = fromNullString(description)
	event.MaxPlayers = fromNullInt(maxPlayers)
	if costAmount.Valid {
		event.CostAmount = &costAmount.Float64
	}
	event.CancelledAt = fromNullMillis(cancelledAt)
	event.CreatedAt = fromMillis(createdAt)
	event.UpdatedAt = fromMillis(updated)
	return &event, nil
}

func getEvent(ctx context.Context, q queryer, id uuid.UUID) (*models.Event, error) {
	event, err := scanEvent(q.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", roster.ErrEventNotFound, id)
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

// GetEvent returns one event or roster.ErrEventNotFound.
func (s *Store) GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return getEvent(ctx, s.sqlDB, id)
}

// CreateEvent inserts the event and its audit row in one transaction.
func (s *Store) CreateEvent(ctx context.Context, event models.Event, entry models.AuditEntry) (*models.Event, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO events (`+eventColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			eventArgs(event)...,
		)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
		return insertAuditLog(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, event.ID)
}

// ListEvents returns events ordered by start time, optionally only those starting
// after startingAfter.
func (s *Store) ListEvents(ctx context.Context, startingAfter *time.Time) ([]models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`
	var args []any
	if startingAfter != nil {
		query += ` WHERE start_time > ?`
		args = append(args, toMillis(*startingAfter))
	}
	query += ` ORDER BY start_time, id`

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return list, nil
}

// UpdateEvent rewrites every column of event and stores its audit row.
func (s *Store) UpdateEvent(ctx context.Context, event models.Event, entry models.AuditEntry) (*models.Event, error) {
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE events
			 SET name = ?, league = ?, type = ?, start_time = ?, location = ?, rink = ?, venue_key = ?,
			     description = ?, max_players = ?, has_fee = ?, cost_amount = ?, approval_needed = ?,
			     cancelled_at = ?, updated_at = ?
			 WHERE id = ?`,
			event.Name,
			event.League,
			string(event.Type),
			toMillis(event.StartTime),
			event.Location,
			nullString(event.Rink),
			nullString(event.VenueKey),
			nullString(event.Description),
			nullInt(event.MaxPlayers),
			event.HasFee,
			nullFloat(event.CostAmount),
			event.ApprovalNeeded,
			nullMillis(event.CancelledAt),
			toMillis(event.UpdatedAt),
			event.ID.String(),
		)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", roster.ErrEventNotFound, event.ID)
		}
		return insertAuditLog(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}
	return s.GetEvent(ctx, event.ID)
}

// DeleteEvent removes the event; registrations and captains cascade.
func (s *Store) DeleteEvent(ctx context.Context, id uuid.UUID, entry models.AuditEntry) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id.String())
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%w: %s", roster.ErrEventNotFound, id)
		}
		return insertAuditLog(ctx, tx, entry)
	})
}

func eventArgs(event models.Event) []any {
	return []any{
		event.ID.String(),
		event.Name,
		event.League,
		string(event.Type),
		toMillis(event.StartTime),
		event.Location,
		nullString(event.Rink),
		nullString(event.VenueKey),
		nullString(event.Description),
		nullInt(event.MaxPlayers),
		event.HasFee,
		nullFloat(event.CostAmount),
		event.ApprovalNeeded,
		nullMillis(event.CancelledAt),
		toMillis(event.CreatedAt),
		toMillis(event.UpdatedAt),
	}
}

func nullFloat(value *float64) sql.NullFloat64 {
	if value == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *value, Valid: true}
}

func insertAuditLog(ctx context.Context, q queryer, entry models.AuditEntry) error {
	var details sql.NullString
	if len(entry.Details) > 0 {
		details = sql.NullString{String: string(entry.Details), Valid: true}
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID.String(),
		nullUUID(entry.UserID),
		string(entry.Action),
		entry.EntityType,
		nullUUID(entry.EntityID),
		details,
		toMillis(entry.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
