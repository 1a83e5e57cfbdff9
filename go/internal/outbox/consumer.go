package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

// ConsumerConfig configures a durable consumer on the roster stream. Binaries
// embed it with their own env prefix.
type ConsumerConfig struct {
	Name          string        `env:"CONSUMER_NAME"`
	SubjectFilter string        `env:"CONSUMER_SUBJECT"`
	MaxDeliver    int           `env:"CONSUMER_MAX_DELIVER" envDefault:"5"`
	AckWait       time.Duration `env:"CONSUMER_ACK_WAIT" envDefault:"30s"`
	MaxAckPending int           `env:"CONSUMER_MAX_ACK_PENDING" envDefault:"100"`
	// DeliverNew skips messages stored before the consumer was first created.
	DeliverNew bool `env:"CONSUMER_DELIVER_NEW" envDefault:"false"`
}

// ErrSkip tells the consumer to ack a message it has no use for.
var ErrSkip = errors.New("skip message")

// HandlerFunc processes one decoded envelope. A non-nil error other than ErrSkip
// naks the message for redelivery.
type HandlerFunc func(ctx context.Context, env Envelope) error

// Consumer pulls envelopes from a durable JetStream consumer with explicit acks
type Consumer struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	consumer jetstream.Consumer
	stream   string
	config   ConsumerConfig
}

// NewConsumer connects to NATS and creates or reuses the durable consumer.
func NewConsumer(ctx context.Context, js JetStreamConfig, cfg ConsumerConfig) (*Consumer, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("consumer name is required")
	}

	nc, jsCtx, err := Connect(js, cfg.Name)
	if err != nil {
		return nil, err
	}

	c := &Consumer{
		nc:     nc,
		js:     jsCtx,
		stream: js.StreamName,
		config: cfg,
	}

	if err := EnsureStream(ctx, jsCtx, js); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}
	if err := c.ensureConsumer(ctx); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure consumer: %w", err)
	}
	return c, nil
}

func (c *Consumer) ensureConsumer(ctx context.Context) error {
	stream, err := c.js.Stream(ctx, c.stream)
	if err != nil {
		return fmt.Errorf("get stream: %w", err)
	}

	filter := c.config.SubjectFilter
	if filter == "" {
		filter = SubjectPrefix + ".>"
	}
	deliver := jetstream.DeliverAllPolicy
	if c.config.DeliverNew {
		deliver = jetstream.DeliverNewPolicy
	}

	consumer, err := stream.Consumer(ctx, c.config.Name)
	if err != nil {
		consumer, err = stream.CreateConsumer(ctx, jetstream.ConsumerConfig{
			Name:          c.config.Name,
			Durable:       c.config.Name,
			FilterSubject: filter,
			DeliverPolicy: deliver,
			AckPolicy:     jetstream.AckExplicitPolicy,
			MaxDeliver:    c.config.MaxDeliver,
			AckWait:       c.config.AckWait,
			MaxAckPending: c.config.MaxAckPending,
			ReplayPolicy:  jetstream.ReplayInstantPolicy,
		})
		if err != nil {
			return fmt.Errorf("create consumer: %w", err)
		}
		log.Info().
			Str("consumer", c.config.Name).
			Str("stream", c.stream).
			Str("filter", filter).
			Msg("created JetStream consumer")
	} else {
		log.Info().
			Str("consumer", c.config.Name).
			Str("stream", c.stream).
			Msg("using existing JetStream consumer")
	}

	c.consumer = consumer
	return nil
}

// Start consumes until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handle HandlerFunc) error {
	log.Info().
		Str("consumer", c.config.Name).
		Str("stream", c.stream).
		Msg("starting JetStream consumer")

	messageCh := make(chan jetstream.Msg, 100)

	consumeCtx, err := c.consumer.Consume(func(msg jetstream.Msg) {
		select {
		case messageCh <- msg:
		case <-ctx.Done():
			_ = msg.Nak()
		}
	})
	if err != nil {
		return fmt.Errorf("start consumer: %w", err)
	}
	defer consumeCtx.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("consumer", c.config.Name).Msg("consumer shutting down")
			return nil
		case msg := <-messageCh:
			c.dispatch(ctx, msg, handle)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg jetstream.Msg, handle HandlerFunc) {
	var env Envelope
	if err := json.Unmarshal(msg.Data(), &env); err != nil {
		// a body that does not decode will never decode; drop it
		log.Error().Err(err).Str("subject", msg.Subject()).Msg("failed to decode envelope")
		if termErr := msg.Term(); termErr != nil {
			log.Error().Err(termErr).Msg("failed to TERM message")
		}
		return
	}

	err := handle(ctx, env)
	switch {
	case err == nil, errors.Is(err, ErrSkip):
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error().Err(ackErr).Msg("failed to ACK message")
		}
	default:
		log.Error().
			Err(err).
			Str("subject", msg.Subject()).
			Str("outbox_id", env.ID).
			Msg("failed to process message")
		if nakErr := msg.Nak(); nakErr != nil {
			log.Error().Err(nakErr).Msg("failed to NAK message")
		}
	}
}

// Connected reports whether the NATS connection is up
func (c *Consumer) Connected() bool {
	return c.nc != nil && c.nc.IsConnected()
}

func (c *Consumer) Stop() error {
	log.Info().Str("consumer", c.config.Name).Msg("stopping consumer")
	if c.nc != nil {
		c.nc.Close()
	}
	return nil
}
