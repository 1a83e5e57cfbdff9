package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster"
)

const registrationColumns = `id, event_id, user_id, status, position, line, assigned_position, joined_at, removed_at`

var _ roster.Store = (*Store)(nil)

// WithEventLock runs fn inside one BEGIN IMMEDIATE transaction, which holds the
// database write lock for its whole duration.
func (s *Store) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(tx roster.Tx, event *models.Event) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		event, err := getEvent(ctx, tx, eventID)
		if err != nil {
			return err
		}
		return fn(&rosterTx{tx: tx, store: s}, event)
	})
}

func (s *Store) ListRoster(ctx context.Context, eventID uuid.UUID) ([]models.RosterEntry, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT r.id, r.event_id, r.user_id, r.status, r.position, r.line, r.assigned_position, r.joined_at, r.removed_at,
		        u.username, u.first_name, u.last_name, u.nickname, u.email
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.event_id = ? AND r.status <> 'removed'`,
		eventID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list roster entries: %w", err)
	}
	defer rows.Close()

	var entries []models.RosterEntry
	for rows.Next() {
		var (
			entry    models.RosterEntry
			nickname sql.NullString
		)
		reg, err := scanRegistration(rows, &entry.Username, &entry.FirstName, &entry.LastName, &nickname, &entry.Email)
		if err != nil {
			return nil, fmt.Errorf("scan roster entry: %w", err)
		}
		entry.Registration = *reg
		entry.Nickname = fromNullString(nickname)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster entries: %w", err)
	}
	return entries, nil
}

func (s *Store) IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return isCaptain(ctx, s.sqlDB, eventID, userID)
}

func isCaptain(ctx context.Context, q queryer, eventID, userID uuid.UUID) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM event_captains WHERE event_id = ? AND user_id = ?`,
		eventID.String(), userID.String(),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check captain: %w", err)
	}
	return n > 0, nil
}

// scanRegistration scans the registration columns followed by extra destinations
func scanRegistration(row rowScanner, extra ...any) (*models.Registration, error) {
	var (
		rawID, rawEventID, rawUserID string
		status                       string
		position                     int
		line                         sql.NullInt64
		assignedPosition             sql.NullString
		joinedAt                     int64
		removedAt                    sql.NullInt64
	)
	dest := append([]any{&rawID, &rawEventID, &rawUserID, &status, &position, &line, &assignedPosition, &joinedAt, &removedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	parsedStatus, err := models.ParseRegistrationStatus(status)
	if err != nil {
		return nil, err
	}
	reg := &models.Registration{
		Status:           parsedStatus,
		Position:         position,
		Line:             fromNullInt(line),
		AssignedPosition: fromNullString(assignedPosition),
		JoinedAt:         fromMillis(joinedAt),
		RemovedAt:        fromNullMillis(removedAt),
	}
	if reg.ID, err = parseUUID(rawID); err != nil {
		return nil, err
	}
	if reg.EventID, err = parseUUID(rawEventID); err != nil {
		return nil, err
	}
	if reg.UserID, err = parseUUID(rawUserID); err != nil {
		return nil, err
	}
	return reg, nil
}

// rosterTx implements roster.Tx on an open transaction
type rosterTx struct {
	tx    *sql.Tx
	store *Store
}

func (t *rosterTx) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	reg, err := scanRegistration(t.tx.QueryRowContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations WHERE event_id = ? AND user_id = ?`,
		eventID.String(), userID.String(),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

func (t *rosterTx) ListRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) ([]models.Registration, error) {
	rows, err := t.tx.QueryContext(ctx,
		`SELECT `+registrationColumns+` FROM registrations
		 WHERE event_id = ? AND status = ?
		 ORDER BY position, joined_at, id`,
		eventID.String(), string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("list registrations by status: %w", err)
	}
	defer rows.Close()

	var regs []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		regs = append(regs, *reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return regs, nil
}

func (t *rosterTx) CountRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) (int, error) {
	var n int
	err := t.tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM registrations WHERE event_id = ? AND status = ?`,
		eventID.String(), string(status),
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count registrations: %w", err)
	}
	return n, nil
}

func (t *rosterTx) CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO registrations (`+registrationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID.String(),
		reg.EventID.String(),
		reg.UserID.String(),
		string(reg.Status),
		reg.Position,
		nullInt(reg.Line),
		nullString(reg.AssignedPosition),
		toMillis(reg.JoinedAt),
		nullMillis(reg.RemovedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%w: user %s", roster.ErrAlreadyRegistered, reg.UserID)
		}
		return nil, fmt.Errorf("insert registration: %w", err)
	}
	return t.GetRegistration(ctx, reg.EventID, reg.UserID)
}

func (t *rosterTx) UpdateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	_, err := t.tx.ExecContext(ctx,
		`UPDATE registrations
		 SET status = ?, position = ?, line = ?, assigned_position = ?, joined_at = ?, removed_at = ?
		 WHERE id = ?`,
		string(reg.Status),
		reg.Position,
		nullInt(reg.Line),
		nullString(reg.AssignedPosition),
		toMillis(reg.JoinedAt),
		nullMillis(reg.RemovedAt),
		reg.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("update registration: %w", err)
	}
	return t.GetRegistration(ctx, reg.EventID, reg.UserID)
}

func (t *rosterTx) IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return isCaptain(ctx, t.tx, eventID, userID)
}

func (t *rosterTx) UpsertCaptain(ctx context.Context, eventID, userID uuid.UUID) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO event_captains (event_id, user_id, created_at) VALUES (?, ?, ?)`,
		eventID.String(), userID.String(), toMillis(t.store.clock.Now()),
	)
	if err != nil {
		return fmt.Errorf("upsert captain: %w", err)
	}
	return nil
}

func (t *rosterTx) DeleteCaptain(ctx context.Context, eventID, userID uuid.UUID) (int64, error) {
	res, err := t.tx.ExecContext(ctx,
		`DELETE FROM event_captains WHERE event_id = ? AND user_id = ?`,
		eventID.String(), userID.String(),
	)
	if err != nil {
		return 0, fmt.Errorf("delete captain: %w", err)
	}
	return res.RowsAffected()
}

func (t *rosterTx) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := getUser(ctx, t.tx, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return user, err
}

func (t *rosterTx) InsertAuditLog(ctx context.Context, entry models.AuditEntry) error {
	return insertAuditLog(ctx, t.tx, entry)
}

func (t *rosterTx) InsertOutboxEvent(ctx context.Context, eventID uuid.UUID, eventType string, payload []byte) error {
	_, err := t.tx.ExecContext(ctx,
		`INSERT INTO roster_outbox (id, event_id, event_type, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), eventID.String(), eventType, string(payload), toMillis(t.store.clock.Now()),
	)
	if err != nil {
		return fmt.Errorf("insert %s outbox event: %w", eventType, err)
	}
	return nil
}
