package roster

import (
	"context"
	"fmt"
	"net/http"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/auth"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/rpc"
	"github.com/rs/zerolog/log"
)

// ServiceName is the connect service path of the roster API
const ServiceName = "icetime.roster.v1.RosterService"

const (
	JoinProcedure                   = "/" + ServiceName + "/Join"
	LeaveProcedure                  = "/" + ServiceName + "/Leave"
	GetRosterProcedure              = "/" + ServiceName + "/GetRoster"
	ApproveProcedure                = "/" + ServiceName + "/Approve"
	DirectAddProcedure              = "/" + ServiceName + "/DirectAdd"
	DirectRemoveProcedure           = "/" + ServiceName + "/DirectRemove"
	BulkApproveProcedure            = "/" + ServiceName + "/BulkApproveAllRequested"
	MoveAllWaitlistToGoingProcedure = "/" + ServiceName + "/MoveAllWaitlistToGoing"
	PromoteNextWaitlistedProcedure  = "/" + ServiceName + "/PromoteNextWaitlisted"
	ReorderWaitlistProcedure        = "/" + ServiceName + "/ReorderWaitlist"
	SetLinePositionProcedure        = "/" + ServiceName + "/SetLinePosition"
	AddCaptainProcedure             = "/" + ServiceName + "/AddCaptain"
	RemoveCaptainProcedure          = "/" + ServiceName + "/RemoveCaptain"
)

// ErrorCodes maps the core error kinds onto connect codes
var ErrorCodes = []rpc.CodeMapping{
	{Err: ErrEventNotFound, Code: connect.CodeNotFound},
	{Err: ErrEventClosed, Code: connect.CodeFailedPrecondition},
	{Err: ErrAlreadyRegistered, Code: connect.CodeAlreadyExists},
	{Err: ErrAlreadyActive, Code: connect.CodeAlreadyExists},
	{Err: ErrNotRegistered, Code: connect.CodeFailedPrecondition},
	{Err: ErrInvalidState, Code: connect.CodeFailedPrecondition},
	{Err: ErrForbidden, Code: connect.CodePermissionDenied},
	{Err: ErrInvalidInput, Code: connect.CodeInvalidArgument},
}

// RosterApp defines what the service layer needs from the roster application
type RosterApp interface {
	Join(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*models.Registration, error)
	Leave(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*RemovalResult, error)
	GetRoster(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*Roster, error)
	Approve(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) (*models.Registration, error)
	DirectAdd(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) (*models.Registration, error)
	DirectRemove(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) (*RemovalResult, error)
	BulkApproveAllRequested(ctx context.Context, actor models.Actor, eventID uuid.UUID) ([]models.Registration, error)
	MoveAllWaitlistToGoing(ctx context.Context, actor models.Actor, eventID uuid.UUID) ([]models.Registration, error)
	PromoteNextWaitlisted(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*models.Registration, error)
	ReorderWaitlist(ctx context.Context, actor models.Actor, eventID uuid.UUID, orderedUserIDs []uuid.UUID) ([]models.Registration, error)
	SetLinePosition(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID, update LinePositionUpdate) (*models.Registration, error)
	AddCaptain(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) error
	RemoveCaptain(ctx context.Context, actor models.Actor, eventID, userID uuid.UUID) error
	ExportRoster(ctx context.Context, actor models.Actor, eventID uuid.UUID) (*RosterExport, error)
}

// Service exposes the roster App over connect
type Service struct {
	app RosterApp
}

// NewService creates a new roster service
func NewService(app RosterApp) *Service {
	return &Service{
		app: app,
	}
}

// NewHandler mounts every roster procedure under ServiceName.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(JoinProcedure, rpc.Unary(JoinProcedure, ErrorCodes, s.Join, opts...))
	mux.Handle(LeaveProcedure, rpc.Unary(LeaveProcedure, ErrorCodes, s.Leave, opts...))
	mux.Handle(GetRosterProcedure, rpc.Unary(GetRosterProcedure, ErrorCodes, s.GetRoster, opts...))
	mux.Handle(ApproveProcedure, rpc.Unary(ApproveProcedure, ErrorCodes, s.Approve, opts...))
	mux.Handle(DirectAddProcedure, rpc.Unary(DirectAddProcedure, ErrorCodes, s.DirectAdd, opts...))
	mux.Handle(DirectRemoveProcedure, rpc.Unary(DirectRemoveProcedure, ErrorCodes, s.DirectRemove, opts...))
	mux.Handle(BulkApproveProcedure, rpc.Unary(BulkApproveProcedure, ErrorCodes, s.BulkApproveAllRequested, opts...))
	mux.Handle(MoveAllWaitlistToGoingProcedure, rpc.Unary(MoveAllWaitlistToGoingProcedure, ErrorCodes, s.MoveAllWaitlistToGoing, opts...))
	mux.Handle(PromoteNextWaitlistedProcedure, rpc.Unary(PromoteNextWaitlistedProcedure, ErrorCodes, s.PromoteNextWaitlisted, opts...))
	mux.Handle(ReorderWaitlistProcedure, rpc.Unary(ReorderWaitlistProcedure, ErrorCodes, s.ReorderWaitlist, opts...))
	mux.Handle(SetLinePositionProcedure, rpc.Unary(SetLinePositionProcedure, ErrorCodes, s.SetLinePosition, opts...))
	mux.Handle(AddCaptainProcedure, rpc.Unary(AddCaptainProcedure, ErrorCodes, s.AddCaptain, opts...))
	mux.Handle(RemoveCaptainProcedure, rpc.Unary(RemoveCaptainProcedure, ErrorCodes, s.RemoveCaptain, opts...))
	return "/" + ServiceName + "/", mux
}

// Join signs the caller up for an event
func (s *Service) Join(ctx context.Context, req *EventRequest) (*RegistrationResponse, error) {
	actor, eventID, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	reg, err := s.app.Join(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	return &RegistrationResponse{Registration: reg}, nil
}

// Leave removes the caller from an event
func (s *Service) Leave(ctx context.Context, req *EventRequest) (*RemovalResult, error) {
	actor, eventID, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	return s.app.Leave(ctx, actor, eventID)
}

// GetRoster returns the ordered roster of an event
func (s *Service) GetRoster(ctx context.Context, req *EventRequest) (*RosterResponse, error) {
	actor, eventID, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	roster, err := s.app.GetRoster(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	return &RosterResponse{Roster: roster}, nil
}

// Approve grants a requested member a roster slot
func (s *Service) Approve(ctx context.Context, req *MemberRequest) (*RegistrationResponse, error) {
	actor, eventID, userID, err := memberCall(ctx, req.EventID, req.UserID)
	if err != nil {
		return nil, err
	}
	reg, err := s.app.Approve(ctx, actor, eventID, userID)
	if err != nil {
		return nil, err
	}
	return &RegistrationResponse{Registration: reg}, nil
}

// DirectAdd puts a member on the roster regardless of capacity
func (s *Service) DirectAdd(ctx context.Context, req *MemberRequest) (*RegistrationResponse, error) {
	actor, eventID, userID, err := memberCall(ctx, req.EventID, req.UserID)
	if err != nil {
		return nil, err
	}
	reg, err := s.app.DirectAdd(ctx, actor, eventID, userID)
	if err != nil {
		return nil, err
	}
	return &RegistrationResponse{Registration: reg}, nil
}

// DirectRemove removes a member and backfills from the waitlist
func (s *Service) DirectRemove(ctx context.Context, req *MemberRequest) (*RemovalResult, error) {
	actor, eventID, userID, err := memberCall(ctx, req.EventID, req.UserID)
	if err != nil {
		return nil, err
	}
	return s.app.DirectRemove(ctx, actor, eventID, userID)
}

func (s *Service) BulkApproveAllRequested(ctx context.Context, req *EventRequest) (*RegistrationsResponse, error) {
	actor, eventID, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	regs, err := s.app.BulkApproveAllRequested(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	return &RegistrationsResponse{Registrations: regs}, nil
}

func (s *Service) MoveAllWaitlistToGoing(ctx context.Context, req *EventRequest) (*RegistrationsResponse, error) {
	actor, eventID, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	regs, err := s.app.MoveAllWaitlistToGoing(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	return &RegistrationsResponse{Registrations: regs}, nil
}

func (s *Service) PromoteNextWaitlisted(ctx context.Context, req *EventRequest) (*RegistrationResponse, error) {
	actor, eventID, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	reg, err := s.app.PromoteNextWaitlisted(ctx, actor, eventID)
	if err != nil {
		return nil, err
	}
	return &RegistrationResponse{Registration: reg}, nil
}

func (s *Service) ReorderWaitlist(ctx context.Context, req *ReorderWaitlistRequest) (*RegistrationsResponse, error) {
	actor, eventID, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	userIDs := make([]uuid.UUID, len(req.UserIDs))
	for i, raw := range req.UserIDs {
		if userIDs[i], err = uuid.Parse(raw); err != nil {
			return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid user id %q: %w", raw, err))
		}
	}
	regs, err := s.app.ReorderWaitlist(ctx, actor, eventID, userIDs)
	if err != nil {
		return nil, err
	}
	return &RegistrationsResponse{Registrations: regs}, nil
}

func (s *Service) SetLinePosition(ctx context.Context, req *SetLinePositionRequest) (*RegistrationResponse, error) {
	actor, eventID, userID, err := memberCall(ctx, req.EventID, req.UserID)
	if err != nil {
		return nil, err
	}
	reg, err := s.app.SetLinePosition(ctx, actor, eventID, userID, LinePositionUpdate{
		Line:             req.Line,
		AssignedPosition: req.AssignedPosition,
	})
	if err != nil {
		return nil, err
	}
	return &RegistrationResponse{Registration: reg}, nil
}

func (s *Service) AddCaptain(ctx context.Context, req *MemberRequest) (*Empty, error) {
	actor, eventID, userID, err := memberCall(ctx, req.EventID, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.app.AddCaptain(ctx, actor, eventID, userID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

func (s *Service) RemoveCaptain(ctx context.Context, req *MemberRequest) (*Empty, error) {
	actor, eventID, userID, err := memberCall(ctx, req.EventID, req.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.app.RemoveCaptain(ctx, actor, eventID, userID); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

// ExportHandler serves GET /events/{id}/roster.xlsx. Wrap it with auth.Middleware.
func (s *Service) ExportHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, eventID, err := eventCall(r.Context(), r.PathValue("id"))
		if err != nil {
			rpc.WriteHTTPError(w, r.Pattern, err, ErrorCodes)
			return
		}

		export, err := s.app.ExportRoster(r.Context(), actor, eventID)
		if err != nil {
			rpc.WriteHTTPError(w, r.Pattern, err, ErrorCodes)
			return
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
		if _, err := export.Data.WriteTo(w); err != nil {
			log.Error().Err(err).Str("event_id", eventID.String()).Msg("failed to write roster export")
		}
	})
}

func eventCall(ctx context.Context, rawEventID string) (models.Actor, uuid.UUID, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return models.Actor{}, uuid.Nil, err
	}
	eventID, err := uuid.Parse(rawEventID)
	if err != nil {
		return models.Actor{}, uuid.Nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid event id: %w", err))
	}
	return actor, eventID, nil
}

func memberCall(ctx context.Context, rawEventID, rawUserID string) (models.Actor, uuid.UUID, uuid.UUID, error) {
	actor, eventID, err := eventCall(ctx, rawEventID)
	if err != nil {
		return models.Actor{}, uuid.Nil, uuid.Nil, err
	}
	userID, err := uuid.Parse(rawUserID)
	if err != nil {
		return models.Actor{}, uuid.Nil, uuid.Nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid user id: %w", err))
	}
	return actor, eventID, userID, nil
}
