package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// SubjectPrefix is shared by the relay and its consumers.
const SubjectPrefix = "roster.events"

// Subject is the JetStream subject an outbox event type is published on.
func Subject(eventType string) string {
	return fmt.Sprintf("%s.%s", SubjectPrefix, eventType)
}

type JetStreamConfig struct {
	URL             string        `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	StreamName      string        `env:"NATS_STREAM" envDefault:"ROSTER_EVENTS"`
	MaxReconnects   int           `env:"NATS_MAX_RECONNECTS" envDefault:"-1"`
	ReconnectWait   time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`
	MaxAge          time.Duration `env:"NATS_STREAM_MAX_AGE" envDefault:"168h"` // How long to keep messages
	Replicas        int           `env:"NATS_STREAM_REPLICAS" envDefault:"1"`
	DuplicateWindow time.Duration `env:"NATS_DUPLICATE_WINDOW" envDefault:"2h"` // Window for duplicate detection
}

// Connect dials NATS with the reconnect and logging handlers every component uses.
func Connect(cfg JetStreamConfig, name string) (*nats.Conn, jetstream.JetStream, error) {
	opts := []nats.Option{
		nats.Name(name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("create JetStream context: %w", err)
	}
	return nc, js, nil
}

// EnsureStream creates the roster stream or updates it when its limits changed.
func EnsureStream(ctx context.Context, js jetstream.JetStream, cfg JetStreamConfig) error {
	sc := jetstream.StreamConfig{
		Name:        cfg.StreamName,
		Description: "Roster notifications relayed from the outbox",
		Subjects:    []string{SubjectPrefix + ".>"},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      cfg.MaxAge,
		MaxMsgs:     -1,
		Storage:     jetstream.FileStorage,
		Replicas:    cfg.Replicas,
		Duplicates:  cfg.DuplicateWindow,
	}

	stream, err := js.Stream(ctx, cfg.StreamName)
	if err != nil {
		if _, err = js.CreateStream(ctx, sc); err != nil {
			return fmt.Errorf("create stream: %w", err)
		}
		log.Info().
			Str("stream", cfg.StreamName).
			Msg("created JetStream stream")
		return nil
	}

	info, err := stream.Info(ctx)
	if err != nil {
		return fmt.Errorf("get stream info: %w", err)
	}
	if !isStreamConfigEqual(info.Config, sc) {
		if _, err = js.UpdateStream(ctx, sc); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		log.Info().
			Str("stream", cfg.StreamName).
			Msg("updated JetStream stream")
	}
	return nil
}

// JetStreamPublisher publishes outbox rows with the row id as the JetStream message id,
// so a row published twice inside the duplicate window is stored once.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	clock  clockwork.Clock
	config JetStreamConfig
}

func NewJetStreamPublisher(ctx context.Context, cfg JetStreamConfig, clock clockwork.Clock) (*JetStreamPublisher, error) {
	nc, js, err := Connect(cfg, "roster-outbox-relay")
	if err != nil {
		return nil, err
	}

	if err := EnsureStream(ctx, js, cfg); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return &JetStreamPublisher{nc: nc, js: js, clock: clock, config: cfg}, nil
}

func (p *JetStreamPublisher) Publish(ctx context.Context, event Event) error {
	subject := Subject(event.EventType)

	data, err := EncodeEnvelope(event, p.clock.Now())
	if err != nil {
		return err
	}

	ack, err := p.js.PublishMsg(ctx, &nats.Msg{
		Subject: subject,
		Data:    data,
		Header: nats.Header{
			"Event-Type": []string{event.EventType},
			"Event-ID":   []string{event.EventID.String()},
			"Outbox-ID":  []string{event.ID.String()},
		},
	},
		jetstream.WithMsgID(event.ID.String()),
		jetstream.WithExpectStream(p.config.StreamName),
	)
	if err != nil {
		return fmt.Errorf("publish to JetStream: %w", err)
	}

	log.Info().
		Str("subject", subject).
		Str("outbox_id", event.ID.String()).
		Uint64("sequence", ack.Sequence).
		Bool("duplicate", ack.Duplicate).
		Msg("published to JetStream")
	return nil
}

// Connected reports whether the NATS connection is up
func (p *JetStreamPublisher) Connected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		p.nc.Close()
	}
	return nil
}

// EncodeEnvelope renders the published message body of event
func EncodeEnvelope(event Event, at time.Time) ([]byte, error) {
	data, err := json.Marshal(Envelope{
		ID:        event.ID.String(),
		EventType: event.EventType,
		EventID:   event.EventID.String(),
		Timestamp: at.UTC(),
		Payload:   event.Payload,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// LogPublisher only logs events. Used when no NATS server is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, event Event) error {
	log.Info().
		Str("subject", Subject(event.EventType)).
		Str("outbox_id", event.ID.String()).
		Str("event_id", event.EventID.String()).
		RawJSON("payload", event.Payload).
		Msg("outbox event")
	return nil
}

func isStreamConfigEqual(a, b jetstream.StreamConfig) bool {
	return a.Name == b.Name &&
		a.MaxAge == b.MaxAge &&
		a.Replicas == b.Replicas &&
		a.Duplicates == b.Duplicates &&
		len(a.Subjects) == len(b.Subjects) &&
		(len(a.Subjects) == 0 || a.Subjects[0] == b.Subjects[0])
}
