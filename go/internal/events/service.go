package events

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
	"github.com/rs/zerolog/log"
)

// ServiceName is the connect service path of the event catalog API
const ServiceName = "icetime.events.v1.EventService"

const (
	CreateEventProcedure  = "/" + ServiceName + "/CreateEvent"
	GetEventProcedure     = "/" + ServiceName + "/GetEvent"
	ListEventsProcedure   = "/" + ServiceName + "/ListEvents"
	UpdateEventProcedure  = "/" + ServiceName + "/UpdateEvent"
	CancelEventProcedure  = "/" + ServiceName + "/CancelEvent"
	RestoreEventProcedure = "/" + ServiceName + "/RestoreEvent"
	DeleteEventProcedure  = "/" + ServiceName + "/DeleteEvent"
)

// EventsApp defines what the service layer needs from the events application
type EventsApp interface {
	CreateEvent(ctx context.Context, actor models.Actor, req CreateEventRequest) (*EventView, error)
	GetEvent(ctx context.Context, actor models.Actor, id uuid.UUID) (*EventView, error)
	ListEvents(ctx context.Context, actor models.Actor, includePast bool) ([]EventView, error)
	UpdateEvent(ctx context.Context, actor models.Actor, id uuid.UUID, req UpdateEventRequest) (*EventView, error)
	CancelEvent(ctx context.Context, actor models.Actor, id uuid.UUID) (*EventView, error)
	RestoreEvent(ctx context.Context, actor models.Actor, id uuid.UUID) (*EventView, error)
	DeleteEvent(ctx context.Context, actor models.Actor, id uuid.UUID) error
	Calendar(ctx context.Context, id uuid.UUID) ([]byte, error)
}

// Service implements the event catalog connect service
type Service struct {
	app EventsApp
}

// NewService creates a new events service
func NewService(app EventsApp) *Service {
	return &Service{
		app: app,
	}
}

// NewHandler mounts every event procedure under ServiceName.
func NewHandler(s *Service, opts ...connect.HandlerOption) (string, http.Handler) {
	codes := roster.ErrorCodes
	mux := http.NewServeMux()
	mux.Handle(CreateEventProcedure, rpc.Unary(CreateEventProcedure, codes, s.CreateEvent, opts...))
	mux.Handle(GetEventProcedure, rpc.Unary(GetEventProcedure, codes, s.GetEvent, opts...))
	mux.Handle(ListEventsProcedure, rpc.Unary(ListEventsProcedure, codes, s.ListEvents, opts...))
	mux.Handle(UpdateEventProcedure, rpc.Unary(UpdateEventProcedure, codes, s.UpdateEvent, opts...))
	mux.Handle(CancelEventProcedure, rpc.Unary(CancelEventProcedure, codes, s.CancelEvent, opts...))
	mux.Handle(RestoreEventProcedure, rpc.Unary(RestoreEventProcedure, codes, s.RestoreEvent, opts...))
	mux.Handle(DeleteEventProcedure, rpc.Unary(DeleteEventProcedure, codes, s.DeleteEvent, opts...))
	return "/" + ServiceName + "/", mux
}

// CreateEvent creates a new event
func (s *Service) CreateEvent(ctx context.Context, req *CreateEventRequest) (*EventResponse, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	event, err := s.app.CreateEvent(ctx, actor, *req)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: event}, nil
}

// GetEvent retrieves an event by ID
func (s *Service) GetEvent(ctx context.Context, req *EventIDRequest) (*EventResponse, error) {
	actor, id, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	event, err := s.app.GetEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: event}, nil
}

// ListEvents lists upcoming events
func (s *Service) ListEvents(ctx context.Context, req *ListEventsRequest) (*ListEventsResponse, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return nil, err
	}
	events, err := s.app.ListEvents(ctx, actor, req.IncludePast)
	if err != nil {
		return nil, err
	}
	return &ListEventsResponse{Events: events}, nil
}

// UpdateEvent updates an existing event
func (s *Service) UpdateEvent(ctx context.Context, req *UpdateEventRequest) (*EventResponse, error) {
	actor, id, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	event, err := s.app.UpdateEvent(ctx, actor, id, *req)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: event}, nil
}

func (s *Service) CancelEvent(ctx context.Context, req *EventIDRequest) (*EventResponse, error) {
	actor, id, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	event, err := s.app.CancelEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: event}, nil
}

func (s *Service) RestoreEvent(ctx context.Context, req *EventIDRequest) (*EventResponse, error) {
	actor, id, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	event, err := s.app.RestoreEvent(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return &EventResponse{Event: event}, nil
}

// DeleteEvent deletes an event
func (s *Service) DeleteEvent(ctx context.Context, req *EventIDRequest) (*Empty, error) {
	actor, id, err := eventCall(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if err := s.app.DeleteEvent(ctx, actor, id); err != nil {
		return nil, err
	}
	return &Empty{}, nil
}

// CalendarHandler serves GET /events/{id}/calendar.ics. It needs no actor so calendar
// apps can subscribe to it.
func (s *Service) CalendarHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			rpc.WriteHTTPError(w, r.Pattern, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid event id: %w", err)), roster.ErrorCodes)
			return
		}

		body, err := s.app.Calendar(r.Context(), id)
		if err != nil {
			rpc.WriteHTTPError(w, r.Pattern, err, roster.ErrorCodes)
			return
		}

		w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "event-"+id.String()+".ics"))
		if _, err := w.Write(body); err != nil {
			log.Error().Err(err).Str("event_id", id.String()).Msg("failed to write calendar")
		}
	})
}

func eventCall(ctx context.Context, rawEventID string) (models.Actor, uuid.UUID, error) {
	actor, err := auth.RequireActor(ctx)
	if err != nil {
		return models.Actor{}, uuid.Nil, err
	}
	id, err := uuid.Parse(rawEventID)
	if err != nil {
		return models.Actor{}, uuid.Nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid event id: %w", err))
	}
	return actor, id, nil
}
