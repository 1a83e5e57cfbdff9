package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

type memStore struct {
	mu     sync.Mutex
	events []Event
}

func (s *memStore) add(eventType string) Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	event := Event{
		ID:        uuid.New(),
		EventID:   uuid.New(),
		EventType: eventType,
		Payload:   json.RawMessage(`{"k":"v"}`),
		CreatedAt: time.Unix(int64(len(s.events)), 0),
	}
	s.events = append(s.events, event)
	return event
}

func (s *memStore) FetchUnsent(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, event := range s.events {
		if event.SentAt == nil && len(out) < limit {
			out = append(out, event)
		}
	}
	return out, nil
}

func (s *memStore) FetchByID(_ context.Context, id uuid.UUID) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, event := range s.events {
		if event.ID == id && event.SentAt == nil {
			return &event, nil
		}
	}
	return nil, nil
}

func (s *memStore) MarkSent(_ context.Context, id uuid.UUID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			s.events[i].SentAt = &at
		}
	}
	return nil
}

func (s *memStore) CountUnsent(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, event := range s.events {
		if event.SentAt == nil {
			n++
		}
	}
	return n, nil
}

// flakyPublisher fails the first failures[id] publishes of an event
type flakyPublisher struct {
	mu        sync.Mutex
	failures  map[uuid.UUID]int
	published []uuid.UUID
	attempts  map[uuid.UUID]int
}

func newFlakyPublisher() *flakyPublisher {
	return &flakyPublisher{failures: map[uuid.UUID]int{}, attempts: map[uuid.UUID]int{}}
}

func (p *flakyPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.attempts[event.ID]++
	if p.failures[event.ID] > 0 {
		p.failures[event.ID]--
		return errors.New("nats unavailable")
	}
	p.published = append(p.published, event.ID)
	return nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.MaxRetries = 2
	cfg.RetryDelay = time.Millisecond
	return cfg
}

func TestProcessUnsentPublishesInOrder(t *testing.T) {
	store := &memStore{}
	first := store.add("RosterChanged")
	second := store.add("PlayerPromoted")
	third := store.add("RosterChanged")

	publisher := newFlakyPublisher()
	relay := NewRelay(store, publisher, clockwork.NewRealClock(), testConfig())

	n, err := relay.ProcessUnsent(context.Background())
	if err != nil {
		t.Fatalf("ProcessUnsent() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("ProcessUnsent() = %d, want 3", n)
	}
	want := []uuid.UUID{first.ID, second.ID, third.ID}
	if !slices.Equal(publisher.published, want) {
		t.Errorf("published = %v, want %v", publisher.published, want)
	}
	if pending, _ := store.CountUnsent(context.Background()); pending != 0 {
		t.Errorf("pending = %d, want 0", pending)
	}

	n, err = relay.ProcessUnsent(context.Background())
	if err != nil || n != 0 {
		t.Errorf("second ProcessUnsent() = %d, %v, want 0, nil", n, err)
	}
}

func TestPublishRetriesThenSucceeds(t *testing.T) {
	store := &memStore{}
	event := store.add("PlayerPromoted")

	publisher := newFlakyPublisher()
	publisher.failures[event.ID] = 2
	relay := NewRelay(store, publisher, clockwork.NewRealClock(), testConfig())

	if n, err := relay.ProcessUnsent(context.Background()); err != nil || n != 1 {
		t.Fatalf("ProcessUnsent() = %d, %v, want 1, nil", n, err)
	}
	if got := publisher.attempts[event.ID]; got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	published, failed, _ := relay.Stats()
	if published != 1 || failed != 0 {
		t.Errorf("Stats() = %d published, %d failed", published, failed)
	}
}

func TestExhaustedRetriesLeaveRowUnsent(t *testing.T) {
	store := &memStore{}
	stuck := store.add("PlayerPromoted")
	next := store.add("RosterChanged")

	publisher := newFlakyPublisher()
	publisher.failures[stuck.ID] = 10
	relay := NewRelay(store, publisher, clockwork.NewRealClock(), testConfig())

	n, err := relay.ProcessUnsent(context.Background())
	if err != nil {
		t.Fatalf("ProcessUnsent() error = %v", err)
	}
	if n != 1 {
		t.Fatalf("ProcessUnsent() = %d, want 1", n)
	}
	if got := publisher.attempts[stuck.ID]; got != 3 {
		t.Errorf("attempts = %d, want MaxRetries+1 = 3", got)
	}
	if !slices.Equal(publisher.published, []uuid.UUID{next.ID}) {
		t.Errorf("published = %v, want only %s", publisher.published, next.ID)
	}
	if pending, _ := store.CountUnsent(context.Background()); pending != 1 {
		t.Errorf("pending = %d, want the failed row", pending)
	}
	if _, failed, _ := relay.Stats(); failed != 1 {
		t.Errorf("failed = %d, want 1", failed)
	}
}

func TestPublishByIDSkipsSentRows(t *testing.T) {
	store := &memStore{}
	event := store.add("RosterChanged")

	publisher := newFlakyPublisher()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC))
	relay := NewRelay(store, publisher, clock, testConfig())

	for i := 0; i < 2; i++ {
		if err := relay.PublishByID(context.Background(), event.ID); err != nil {
			t.Fatalf("PublishByID() error = %v", err)
		}
	}
	if len(publisher.published) != 1 {
		t.Errorf("published %d times, want 1", len(publisher.published))
	}
	if sent := store.events[0].SentAt; sent == nil || !sent.Equal(clock.Now()) {
		t.Errorf("SentAt = %v, want %v", sent, clock.Now())
	}
}

func TestEncodeEnvelope(t *testing.T) {
	event := Event{
		ID:        uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		EventID:   uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		EventType: "PlayerPromoted",
		Payload:   json.RawMessage(`{"email":"a@example.com"}`),
	}
	at := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	data, err := EncodeEnvelope(event, at)
	if err != nil {
		t.Fatalf("EncodeEnvelope() error = %v", err)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.ID != event.ID.String() || env.EventID != event.EventID.String() || env.EventType != "PlayerPromoted" {
		t.Errorf("envelope = %+v", env)
	}
	if !env.Timestamp.Equal(at) {
		t.Errorf("timestamp = %v, want %v", env.Timestamp, at)
	}
	if string(env.Payload) != `{"email":"a@example.com"}` {
		t.Errorf("payload = %s", env.Payload)
	}
	if got := Subject(event.EventType); got != "roster.events.PlayerPromoted" {
		t.Errorf("Subject() = %q", got)
	}
}

func TestHealthReportsBacklog(t *testing.T) {
	store := &memStore{}
	store.add("RosterChanged")
	relay := NewRelay(store, newFlakyPublisher(), clockwork.NewRealClock(), testConfig())

	connected := true
	checker := NewHealthChecker(relay, func() bool { return connected })

	rec := httptest.NewRecorder()
	checker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var status HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if status.PendingEvents != 1 || !status.Healthy {
		t.Errorf("status = %+v", status)
	}

	connected = false
	rec = httptest.NewRecorder()
	checker.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 while disconnected", rec.Code)
	}
}
