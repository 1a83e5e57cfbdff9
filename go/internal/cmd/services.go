package main

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/icetime/go/internal/events"
	"github.com/mcdev12/icetime/go/internal/roster"
	"github.com/mcdev12/icetime/go/internal/users"
)

type Services struct {
	Roster *roster.Service
	Events *events.Service
	Users  *users.Service
}

func setupServices(st *stores, clock clockwork.Clock, loc *time.Location) *Services {
	// Wire up dependency injection chain
	// Store → App layer → Service layer

	// Roster
	rosterApp := roster.NewApp(st.Roster, clock, loc)
	rosterService := roster.NewService(rosterApp)

	// Events
	eventsApp := events.NewApp(st.Events, clock)
	eventsService := events.NewService(eventsApp)

	// Users
	usersApp := users.NewApp(st.Users, clock)
	usersService := users.NewService(usersApp)

	return &Services{
		Roster: rosterService,
		Events: eventsService,
		Users:  usersService,
	}
}
