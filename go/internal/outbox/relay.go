package outbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
)

type Config struct {
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"5s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE" envDefault:"100"`
	MaxRetries   int           `env:"OUTBOX_MAX_RETRIES" envDefault:"3"`
	RetryDelay   time.Duration `env:"OUTBOX_RETRY_DELAY" envDefault:"200ms"`
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
		MaxRetries:   3,
		RetryDelay:   200 * time.Millisecond,
	}
}

// Relay publishes unsent outbox rows and marks them sent. A row whose publish keeps
// failing stays unsent and is picked up again on the next pass.
type Relay struct {
	store     Store
	publisher Publisher
	clock     clockwork.Clock
	cfg       Config

	mu            sync.Mutex
	published     uint64
	failed        uint64
	lastPublished time.Time
}

func NewRelay(store Store, publisher Publisher, clock clockwork.Clock, cfg Config) *Relay {
	return &Relay{
		store:     store,
		publisher: publisher,
		clock:     clock,
		cfg:       cfg,
	}
}

// Run polls the outbox every PollInterval until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	log.Info().
		Dur("poll_interval", r.cfg.PollInterval).
		Int("batch_size", r.cfg.BatchSize).
		Msg("outbox relay started")

	ticker := r.clock.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	// Process immediately on start
	r.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("outbox relay shutting down")
			return nil
		case <-ticker.Chan():
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	if _, err := r.ProcessUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to process unsent outbox events")
	}
}

// ProcessUnsent publishes one batch of unsent rows in creation order and returns how
// many were published.
func (r *Relay) ProcessUnsent(ctx context.Context) (int, error) {
	unsent, err := r.store.FetchUnsent(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	if len(unsent) == 0 {
		return 0, nil
	}

	published := 0
	for _, event := range unsent {
		if err := r.publishAndMark(ctx, event); err != nil {
			log.Error().Err(err).Str("outbox_id", event.ID.String()).Msg("failed to publish outbox event")
			continue
		}
		published++
	}

	log.Debug().
		Int("total", len(unsent)).
		Int("published", published).
		Msg("processed outbox batch")
	return published, nil
}

// PublishByID publishes a single row, typically named by a NOTIFY payload. Rows that
// are already sent are skipped.
func (r *Relay) PublishByID(ctx context.Context, id uuid.UUID) error {
	event, err := r.store.FetchByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	if event == nil {
		log.Debug().Str("outbox_id", id.String()).Msg("outbox event already sent")
		return nil
	}
	return r.publishAndMark(ctx, *event)
}

func (r *Relay) publishAndMark(ctx context.Context, event Event) error {
	if err := r.publishWithRetry(ctx, event); err != nil {
		r.mu.Lock()
		r.failed++
		r.mu.Unlock()
		return err
	}

	now := r.clock.Now()
	if err := r.store.MarkSent(ctx, event.ID, now); err != nil {
		return fmt.Errorf("failed to mark outbox event as sent: %w", err)
	}

	r.mu.Lock()
	r.published++
	r.lastPublished = now
	r.mu.Unlock()
	return nil
}

// publishWithRetry attempts to publish an outbox event with a linear backoff.
func (r *Relay) publishWithRetry(ctx context.Context, event Event) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(r.cfg.RetryDelay * time.Duration(attempt)):
			}
		}

		if err := r.publisher.Publish(ctx, event); err != nil {
			lastErr = err
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("outbox_id", event.ID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("outbox_id", event.ID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}

// Stats reports publish counters since start
func (r *Relay) Stats() (published, failed uint64, lastPublished time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.published, r.failed, r.lastPublished
}
