package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/dbconfig"
	"github.com/mcdev12/icetime/go/internal/outbox"
	"github.com/mcdev12/icetime/go/internal/storage/sqlite"
)

type config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	HealthAddr string `env:"OUTBOX_HEALTH_ADDR" envDefault:":8081"`
	DisableBus bool   `env:"OUTBOX_DISABLE_BUS" envDefault:"false"` // log events instead of publishing
	Store      dbconfig.StoreConfig
	Relay      outbox.Config
	Listener   outbox.ListenerConfig
	JetStream  outbox.JetStreamConfig
}

func main() {
	// load .env
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal().Err(err).Msg("parse config")
	}

	// configure zerolog console output and level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// signal‐aware context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clock := clockwork.NewRealClock()

	var (
		publisher outbox.Publisher = outbox.LogPublisher{}
		connected func() bool
	)
	if !cfg.DisableBus {
		js, err := outbox.NewJetStreamPublisher(ctx, cfg.JetStream, clock)
		if err != nil {
			log.Fatal().Err(err).Msg("create JetStream publisher")
		}
		defer func() {
			if err := js.Close(); err != nil {
				log.Error().Err(err).Msg("close publisher")
			}
		}()
		publisher = js
		connected = js.Connected
	}

	var (
		store outbox.Store
		run   func(context.Context) error
	)
	switch cfg.Store.Driver {
	case dbconfig.DriverSQLite:
		sqliteStore, err := sqlite.Open(cfg.Store.SQLitePath, clock)
		if err != nil {
			log.Fatal().Err(err).Msg("open sqlite store")
		}
		defer sqliteStore.Close()
		store = sqliteStore
		relay := outbox.NewRelay(store, publisher, clock, cfg.Relay)
		run = relay.Run
		serveHealth(ctx, cfg.HealthAddr, outbox.NewHealthChecker(relay, connected))
	default:
		db, err := cfg.Store.Postgres.Open()
		if err != nil {
			log.Fatal().Err(err).Msg("open database")
		}
		defer db.Close()
		store = outbox.NewRepository(db)
		relay := outbox.NewRelay(store, publisher, clock, cfg.Relay)

		listenerCfg := cfg.Listener
		listenerCfg.DatabaseURL = cfg.Store.Postgres.DSN()
		listenerCfg.NotifyChannel = outbox.NotifyChannel
		listener, err := outbox.NewListener(relay, listenerCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("create outbox listener")
		}
		run = listener.Start
		serveHealth(ctx, cfg.HealthAddr, outbox.NewHealthChecker(relay, connected))
	}

	// run relay
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("driver", cfg.Store.Driver).Msg("starting outbox relay")
		errCh <- run(ctx)
	}()

	// wait for shutdown or error
	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
		}
		log.Info().Msg("graceful shutdown complete")
	case err := <-errCh:
		log.Error().Err(err).Msg("relay exited unexpectedly")
	}
}

func serveHealth(ctx context.Context, addr string, checker *outbox.HealthChecker) {
	mux := http.NewServeMux()
	mux.Handle("/health", checker)
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("health server failed")
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}
