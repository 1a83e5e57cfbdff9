package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster/db"
	"github.com/mcdev12/icetime/go/internal/sqlutil"
	"github.com/sqlc-dev/pqtype"
)

// Repository is the Postgres Store. The event row is locked with SELECT ... FOR UPDATE
// for the whole transaction, which serializes every roster change of one event.
type Repository struct {
	db       *sql.DB
	queries  *db.Queries
	attempts int
}

func NewRepository(sqlDB *sql.DB) *Repository {
	return &Repository{
		db:       sqlDB,
		queries:  db.New(sqlDB),
		attempts: sqlutil.DefaultTxAttempts,
	}
}

var _ Store = (*Repository)(nil)

func (r *Repository) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(tx Tx, event *models.Event) error) error {
	return sqlutil.RunWithRetry(ctx, r.db, r.attempts, r.queries.WithTx, func(q *db.Queries) error {
		row, err := q.LockEvent(ctx, eventID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
			}
			return fmt.Errorf("failed to lock event: %w", err)
		}
		return fn(&pgTx{queries: q}, dbEventToModel(row))
	})
}

func (r *Repository) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	row, err := r.queries.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return dbEventToModel(row), nil
}

func (r *Repository) ListRoster(ctx context.Context, eventID uuid.UUID) ([]models.RosterEntry, error) {
	rows, err := r.queries.ListRosterEntries(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roster entries: %w", err)
	}

	entries := make([]models.RosterEntry, 0, len(rows))
	for _, row := range rows {
		status, err := models.ParseRegistrationStatus(row.Status)
		if err != nil {
			return nil, err
		}
		entries = append(entries, models.RosterEntry{
			Registration: models.Registration{
				ID:               row.ID,
				EventID:          row.EventID,
				UserID:           row.UserID,
				Status:           status,
				Position:         int(row.Position),
				Line:             sqlutil.FromSqlInt32(row.Line),
				AssignedPosition: sqlutil.FromSqlStringPtr(row.AssignedPosition),
				JoinedAt:         row.JoinedAt,
				RemovedAt:        sqlutil.FromSqlTime(row.RemovedAt),
			},
			Username:  row.Username,
			FirstName: row.FirstName,
			LastName:  row.LastName,
			Nickname:  sqlutil.FromSqlStringPtr(row.Nickname),
			Email:     row.Email,
		})
	}
	return entries, nil
}

func (r *Repository) IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	ok, err := r.queries.IsCaptain(ctx, db.IsCaptainParams{EventID: eventID, UserID: userID})
	if err != nil {
		return false, fmt.Errorf("failed to check captain: %w", err)
	}
	return ok, nil
}

// pgTx binds the Tx operations to the queries of one open transaction
type pgTx struct {
	queries *db.Queries
}

func (t *pgTx) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	row, err := t.queries.GetRegistration(ctx, db.GetRegistrationParams{EventID: eventID, UserID: userID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	return dbRegistrationToModel(row)
}

func (t *pgTx) ListRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) ([]models.Registration, error) {
	rows, err := t.queries.ListRegistrationsByStatus(ctx, db.ListRegistrationsByStatusParams{
		EventID: eventID,
		Status:  string(status),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list registrations by status: %w", err)
	}

	regs := make([]models.Registration, 0, len(rows))
	for _, row := range rows {
		reg, err := dbRegistrationToModel(row)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, nil
}

func (t *pgTx) CountRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) (int, error) {
	count, err := t.queries.CountRegistrationsByStatus(ctx, db.CountRegistrationsByStatusParams{
		EventID: eventID,
		Status:  string(status),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count registrations: %w", err)
	}
	return int(count), nil
}

func (t *pgTx) CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	row, err := t.queries.CreateRegistration(ctx, db.CreateRegistrationParams{
		ID:       reg.ID,
		EventID:  reg.EventID,
		UserID:   reg.UserID,
		Status:   string(reg.Status),
		Position: int32(reg.Position),
		JoinedAt: reg.JoinedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registration: %w", err)
	}
	return dbRegistrationToModel(row)
}

func (t *pgTx) UpdateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	row, err := t.queries.UpdateRegistration(ctx, db.UpdateRegistrationParams{
		ID:               reg.ID,
		Status:           string(reg.Status),
		Position:         int32(reg.Position),
		Line:             sqlutil.ToSqlInt32(reg.Line),
		AssignedPosition: sqlutil.ToSqlString(reg.AssignedPosition),
		JoinedAt:         reg.JoinedAt,
		RemovedAt:        sqlutil.ToSqlTime(reg.RemovedAt),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update registration: %w", err)
	}
	return dbRegistrationToModel(row)
}

func (t *pgTx) IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	ok, err := t.queries.IsCaptain(ctx, db.IsCaptainParams{EventID: eventID, UserID: userID})
	if err != nil {
		return false, fmt.Errorf("failed to check captain: %w", err)
	}
	return ok, nil
}

func (t *pgTx) UpsertCaptain(ctx context.Context, eventID, userID uuid.UUID) error {
	if err := t.queries.UpsertCaptain(ctx, db.UpsertCaptainParams{EventID: eventID, UserID: userID}); err != nil {
		return fmt.Errorf("failed to upsert captain: %w", err)
	}
	return nil
}

func (t *pgTx) DeleteCaptain(ctx context.Context, eventID, userID uuid.UUID) (int64, error) {
	n, err := t.queries.DeleteCaptain(ctx, db.DeleteCaptainParams{EventID: eventID, UserID: userID})
	if err != nil {
		return 0, fmt.Errorf("failed to delete captain: %w", err)
	}
	return n, nil
}

func (t *pgTx) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	row, err := t.queries.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &models.User{
		ID:        row.ID,
		Username:  row.Username,
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Nickname:  sqlutil.FromSqlStringPtr(row.Nickname),
		IsAdmin:   row.IsAdmin,
		CreatedAt: row.CreatedAt,
	}, nil
}

func (t *pgTx) InsertAuditLog(ctx context.Context, entry models.AuditEntry) error {
	err := t.queries.InsertAuditLog(ctx, db.InsertAuditLogParams{
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

func (t *pgTx) InsertOutboxEvent(ctx context.Context, eventID uuid.UUID, eventType string, payload []byte) error {
	err := t.queries.InsertOutboxEvent(ctx, db.InsertOutboxEventParams{
		ID:        uuid.New(),
		EventID:   eventID,
		EventType: eventType,
		Payload:   payload,
	})
	if err != nil {
		return fmt.Errorf("failed to insert %s outbox event: %w", eventType, err)
	}
	return nil
}

func dbRegistrationToModel(row db.Registration) (*models.Registration, error) {
	status, err := models.ParseRegistrationStatus(row.Status)
	if err != nil {
		return nil, err
	}
	return &models.Registration{
		ID:               row.ID,
		EventID:          row.EventID,
		UserID:           row.UserID,
		Status:           status,
		Position:         int(row.Position),
		Line:             sqlutil.FromSqlInt32(row.Line),
		AssignedPosition: sqlutil.FromSqlStringPtr(row.AssignedPosition),
		JoinedAt:         row.JoinedAt,
		RemovedAt:        sqlutil.FromSqlTime(row.RemovedAt),
	}, nil
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
