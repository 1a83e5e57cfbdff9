package users

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mcdev12/icetime/go/internal/auth"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster"
	"github.com/mcdev12/icetime/go/internal/rpc"
)

// ServiceName is the connect service path of the member API
const ServiceName = "icetime.users.v1.UserService"

const (
	CreateUserProcedure    = "/" + ServiceName + "/CreateUser"
	GetUserProcedure       = "/" + ServiceName + "/GetUser"
	GetMeProcedure         = "/" + ServiceName + "/GetMe"
	UpdateProfileProcedure = "/" + ServiceName + "/UpdateProfile"
)

// ErrorCodes extends the roster mapping with the member errors
var ErrorCodes = append([]rpc.CodeMapping{
	{Err: ErrUserNotFound, Code: connect.CodeNotFound},
	{Err: ErrUserExists, Code: connect.CodeAlreadyExists},
}, roster.ErrorCodes...)

// UsersApp defines what the service layer needs from the users application
type UsersApp interface {
	CreateUser(ctx context.Context, actor models.Actor, req CreateUserRequest) (*models.User, error)
	GetUser(ctx context.Context, actor models.Actor, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, actor models.Actor, req UpdateProfileRequest) (*models.User, error)
}

// Service implements the member connect service
type Service struct {
	app UsersApp
}

func NewService(app UsersApp) *Service {
	return &Service{
		app: app,
	}
}

// NewHandler mounts every member procedure under ServiceName.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(CreateUserProcedure, rpc.Unary(CreateUserProcedure, ErrorCodes, s.CreateUser, opts...))
	mux.Handle(GetUserProcedure, rpc.Unary(GetUserProcedure, ErrorCodes, s.GetUser, opts...))
	mux.Handle(GetMeProcedure, rpc.Unary(GetMeProcedure, ErrorCodes, s.GetMe, opts...))
	mux.Handle(UpdateProfileProcedure, rpc.Unary(UpdateProfileProcedure, ErrorCodes, s.UpdateProfile, opts...))
	return "/" + ServiceName + "/", mux
}

// CreateUser creates a new member
func (s *Service) CreateUser(ctx context.Context, req *CreateUserRequest) (*UserResponse, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.app.CreateUser(ctx, actor, *req)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}

// GetUser retrieves a member by ID
func (s *Service) GetUser(ctx context.Context, req *UserIDRequest) (*UserResponse, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	id, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid user id: %w", err))
	}
	user, err := s.app.GetUser(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}

// GetMe returns the caller's own account
func (s *Service) GetMe(ctx context.Context, _ *Empty) (*UserResponse, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.app.GetUser(ctx, actor, actor.UserID)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}

func (s *Service) UpdateProfile(ctx context.Context, req *UpdateProfileRequest) (*UserResponse, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.app.UpdateProfile(ctx, actor, *req)
	if err != nil {
		return nil, err
	}
	return &UserResponse{User: user}, nil
}
