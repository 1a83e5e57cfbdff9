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
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/auth"
	"github.com/mcdev12/icetime/go/internal/outbox"
	"github.com/mcdev12/icetime/go/internal/rosterfeed"
)

type config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	Port       string `env:"FEED_PORT" envDefault:"8082"`
	JWTSecret  string `env:"JWT_SECRET"`
	Connection rosterfeed.ConnectionConfig
	JetStream  outbox.JetStreamConfig
	Consumer   outbox.ConsumerConfig `envPrefix:"FEED_"`
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
	if cfg.Consumer.Name == "" {
		cfg.Consumer.Name = "roster-feed"
	}
	if cfg.Consumer.SubjectFilter == "" {
		cfg.Consumer.SubjectFilter = rosterfeed.Subject()
	}
	// viewers only care about changes from now on
	cfg.Consumer.DeliverNew = true

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var verifier rosterfeed.TokenVerifier
	if cfg.JWTSecret != "" {
		v, err := auth.NewVerifier(cfg.JWTSecret, clockwork.NewRealClock())
		if err != nil {
			log.Fatal().Err(err).Msg("create token verifier")
		}
		verifier = v
	} else {
		log.Warn().Msg("JWT_SECRET not set, accepting anonymous viewers")
	}

	consumer, err := outbox.NewConsumer(ctx, cfg.JetStream, cfg.Consumer)
	if err != nil {
		log.Fatal().Err(err).Msg("create consumer")
	}
	defer consumer.Stop()

	manager := rosterfeed.NewConnectionManager(cfg.Connection)
	feed := rosterfeed.NewFeed(manager)
	go manager.Start(ctx)
	go func() {
		if err := consumer.Start(ctx, feed.Handle); err != nil {
			log.Error().Err(err).Msg("event consumer failed")
		}
	}()

	mux := http.NewServeMux()
	rosterfeed.NewWebSocketHandler(manager, verifier).RegisterRoutes(mux)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if !consumer.Connected() {
			http.Error(w, "NATS disconnected", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: cors.AllowAll().Handler(mux),
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("starting roster feed")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("roster feed server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	log.Info().Msg("graceful shutdown complete")
}
