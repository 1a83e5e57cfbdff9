package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/sqlutil"
	"github.com/mcdev12/icetime/go/internal/users/db"
)

// Querier defines what the repository needs from the database layer
type Querier interface {
	CreateUser(ctx context.Context, arg db.CreateUserParams) (db.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (db.User, error)
	UpdateUserProfile(ctx context.Context, arg db.UpdateUserProfileParams) (db.User, error)
}

// Repository implements member data access on Postgres
type Repository struct {
	queries Querier
}

var _ UsersRepository = (*Repository)(nil)

func NewRepository(querier Querier) *Repository {
	return &Repository{
		queries: querier,
	}
}

// CreateUser creates a new member
func (r *Repository) CreateUser(ctx context.Context, user models.User) error {
	_, err := r.queries.CreateUser(ctx, db.CreateUserParams{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Nickname:  sqlutil.ToSqlString(user.Nickname),
		IsAdmin:   user.IsAdmin,
		CreatedAt: user.CreatedAt,
	})
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("%w: %s", ErrUserExists, user.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUser retrieves a member by ID
func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := r.queries.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return dbUserToModel(user), nil
}

// UpdateUser writes the display fields of user
func (r *Repository) UpdateUser(ctx context.Context, user models.User) (*models.User, error) {
	row, err := r.queries.UpdateUserProfile(ctx, db.UpdateUserProfileParams{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Nickname:  sqlutil.ToSqlString(user.Nickname),
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, user.ID)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return dbUserToModel(row), nil
}

// dbUserToModel converts a database user to domain model
func dbUserToModel(row db.User) *models.User {
	return &models.User{
		ID:        row.ID,
		Username:  row.Username,
		Email:     row.Email,
		FirstName: row.FirstName,
		LastName:  row.LastName,
		Nickname:  sqlutil.FromSqlStringPtr(row.Nickname),
		IsAdmin:   row.IsAdmin,
		CreatedAt: row.CreatedAt,
	}
}
