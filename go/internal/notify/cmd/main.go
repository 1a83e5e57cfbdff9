package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/icetime/go/internal/notify"
	"github.com/mcdev12/icetime/go/internal/outbox"
)

type config struct {
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	RedisURL   string `env:"REDIS_URL"`
	VenuesFile string `env:"VENUES_FILE" envDefault:"config/venues.yaml"`
	SMTP       notify.SMTPConfig
	JetStream  outbox.JetStreamConfig
	Consumer   outbox.ConsumerConfig `envPrefix:"NOTIFY_"`
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
		cfg.Consumer.Name = "promotion-notifier"
	}
	if cfg.Consumer.SubjectFilter == "" {
		cfg.Consumer.SubjectFilter = notify.Subject()
	}

	// configure zerolog console output and level
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	venues, err := notify.LoadVenues(cfg.VenuesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("load venues")
	}

	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTP.Host != "" {
		sender = notify.NewSMTPSender(cfg.SMTP)
	}

	var dedupe notify.Deduper
	if cfg.RedisURL != "" {
		client, err := notify.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		defer client.Close()
		dedupe = notify.NewRedisDeduper(client)
	} else {
		log.Warn().Msg("REDIS_URL not set, duplicate suppression is per process")
		dedupe = notify.NewMemoryDeduper()
	}

	consumer, err := outbox.NewConsumer(ctx, cfg.JetStream, cfg.Consumer)
	if err != nil {
		log.Fatal().Err(err).Msg("create consumer")
	}
	defer consumer.Stop()

	notifier := notify.NewNotifier(sender, dedupe, venues)

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Int("venues", len(venues)).
			Bool("smtp", cfg.SMTP.Host != "").
			Msg("starting promotion notifier")
		errCh <- consumer.Start(ctx, notifier.Handle)
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
		select {
		case <-errCh:
		case <-time.After(5 * time.Second):
		}
		log.Info().Msg("graceful shutdown complete")
	case err := <-errCh:
		log.Error().Err(err).Msg("notifier exited unexpectedly")
	}
}
