package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/users"
)

var _ users.UsersRepository = (*Store)(nil)

// CreateUser inserts a member account. Returns users.ErrUserExists for a duplicate
// id, username or email.
func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.clock.Now()
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, username, email, first_name, last_name, nickname, is_admin, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID.String(),
		user.Username,
		user.Email,
		user.FirstName,
		user.LastName,
		nullString(user.Nickname),
		user.IsAdmin,
		toMillis(createdAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", users.ErrUserExists, user.Username)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser returns an error matching both users.ErrUserNotFound and sql.ErrNoRows
// for an unknown id.
func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return getUser(ctx, s.sqlDB, id)
}

func getUser(ctx context.Context, q queryer, id uuid.UUID) (*models.User, error) {
	var (
		user      models.User
		rawID     string
		nickname  sql.NullString
		createdAt int64
	)
	err := q.QueryRowContext(ctx,
		`SELECT id, username, email, first_name, last_name, nickname, is_admin, created_at FROM users WHERE id = ?`,
		id.String(),
	).Scan(&rawID, &user.Username, &user.Email, &user.FirstName, &user.LastName, &nickname, &user.IsAdmin, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s: %w", users.ErrUserNotFound, id, err)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user.ID, err = parseUUID(rawID); err != nil {
		return nil, err
	}
	user.Nickname = fromNullString(nickname)
	user.CreatedAt = fromMillis(createdAt)
	return &user, nil
}

// UpdateUser writes the display fields of user.
func (s *Store) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE users SET first_name = ?, last_name = ?, nickname = ? WHERE id = ?`,
		user.FirstName,
		user.LastName,
		nullString(user.Nickname),
		user.ID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("%w: %s", users.ErrUserNotFound, user.ID)
	}
	return s.GetUser(ctx, user.ID)
}
