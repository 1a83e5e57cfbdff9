package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/outbox"
)

var _ outbox.Store = (*Store)(nil)

const outboxColumns = `id, event_id, event_type, payload, created_at, sent_at`

func scanOutbox(row rowScanner) (*outbox.Event, error) {
	var (
		rawID, rawEventID string
		event             outbox.Event
		payload           string
		createdAt         int64
		sentAt            sql.NullInt64
	)
	if err := row.Scan(&rawID, &rawEventID, &event.EventType, &payload, &createdAt, &sentAt); err != nil {
		return nil, err
	}
	var err error
	if event.ID, err = parseUUID(rawID); err != nil {
		return nil, err
	}
	if event.EventID, err = parseUUID(rawEventID); err != nil {
		return nil, err
	}
	event.Payload = []byte(payload)
	event.CreatedAt = fromMillis(createdAt)
	event.SentAt = fromNullMillis(sentAt)
	return &event, nil
}

func (s *Store) FetchUnsent(ctx context.Context, limit int) ([]outbox.Event, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+outboxColumns+` FROM roster_outbox
		 WHERE sent_at IS NULL
		 ORDER BY created_at, rowid
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("fetch unsent outbox events: %w", err)
	}
	defer rows.Close()

	var events []outbox.Event
	for rows.Next() {
		event, err := scanOutbox(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}
	return events, nil
}

func (s *Store) FetchByID(ctx context.Context, id uuid.UUID) (*outbox.Event, error) {
	event, err := scanOutbox(s.sqlDB.QueryRowContext(ctx,
		`SELECT `+outboxColumns+` FROM roster_outbox WHERE id = ? AND sent_at IS NULL`,
		id.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch outbox event: %w", err)
	}
	return event, nil
}

func (s *Store) MarkSent(ctx context.Context, id uuid.UUID, at time.Time) error {
	if _, err := s.sqlDB.ExecContext(ctx, `UPDATE roster_outbox SET sent_at = ? WHERE id = ?`, toMillis(at), id.String()); err != nil {
		return fmt.Errorf("mark outbox event sent: %w", err)
	}
	return nil
}

func (s *Store) CountUnsent(ctx context.Context) (int, error) {
	var n int
	if err := s.sqlDB.QueryRowContext(ctx, `SELECT COUNT(*) FROM roster_outbox WHERE sent_at IS NULL`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count unsent outbox events: %w", err)
	}
	return n, nil
}
