package main

import (
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/dbconfig"
	"github.com/mcdev12/icetime/go/internal/events"
	"github.com/mcdev12/icetime/go/internal/roster"
	"github.com/mcdev12/icetime/go/internal/storage/sqlite"
	"github.com/mcdev12/icetime/go/internal/users"
	usersdb "github.com/mcdev12/icetime/go/internal/users/db"
)

// stores holds the persistence behind the apps
type stores struct {
	Roster roster.Store
	Events events.EventsRepository
	Users  users.UsersRepository
	close  func() error
}

func (s *stores) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}

func setupStores(cfg dbconfig.StoreConfig, clock clockwork.Clock) (*stores, error) {
	switch cfg.Driver {
	case dbconfig.DriverSQLite:
		store, err := sqlite.Open(cfg.SQLitePath, clock)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		log.Info().Str("path", cfg.SQLitePath).Msg("using sqlite store")
		return &stores{Roster: store, Events: store, Users: store, close: store.Close}, nil
	default:
		database, err := cfg.Postgres.Open()
		if err != nil {
			return nil, err
		}
		return &stores{
			Roster: roster.NewRepository(database),
			Events: events.NewRepository(database),
			Users:  users.NewRepository(usersdb.New(database)),
			close:  database.Close,
		}, nil
	}
}
