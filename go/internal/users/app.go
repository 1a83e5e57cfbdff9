package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster"
)

// UsersRepository defines what the app layer needs from the repository
type UsersRepository interface {
	// CreateUser returns ErrUserExists for a taken id, username or email.
	CreateUser(ctx context.Context, user models.User) error
	// GetUser returns ErrUserNotFound for an unknown id.
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) (*models.User, error)
}

// App handles member accounts. Credentials live with the login service; this only
// keeps the display fields rosters and emails use.
type App struct {
	repo  UsersRepository
	clock clockwork.Clock
}

func NewApp(repo UsersRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
	}
}

// CreateUser registers a member. Admin only.
func (a *App) CreateUser(ctx context.Context, actor models.Actor, req CreateUserRequest) (*models.User, error) {
	if !actor.IsAdmin {
		return nil, fmt.Errorf("%w: only admins can create members", roster.ErrForbidden)
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: username and a valid email are required", roster.ErrInvalidInput)
	}

	user := models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     email,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Nickname:  trimmed(req.Nickname),
		IsAdmin:   req.IsAdmin,
		CreatedAt: a.clock.Now().UTC(),
	}
	if err := a.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Bool("is_admin", user.IsAdmin).
		Msg("created member")
	return &user, nil
}

// GetUser returns a member. Members may only read themselves.
func (a *App) GetUser(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error) {
	if !actor.IsAdmin && actor.UserID != id {
		return nil, fmt.Errorf("%w: cannot read another member", roster.ErrForbidden)
	}
	return a.repo.GetUser(ctx, id)
}

// UpdateProfile changes the caller's own display fields.
func (a *App) UpdateProfile(ctx context.Context, actor models.Actor, req UpdateProfileRequest) (*models.User, error) {
	user, err := a.repo.GetUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	switch {
	case req.ClearNickname:
		user.Nickname = nil
	case req.Nickname != nil:
		user.Nickname = trimmed(req.Nickname)
	}

	updated, err := a.repo.UpdateUser(ctx, *user)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", actor.UserID.String()).Msg("updated member profile")
	return updated, nil
}

// trimmed returns nil for a nil or blank s
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
