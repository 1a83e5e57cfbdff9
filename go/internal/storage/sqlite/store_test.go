package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/icetime/go/internal/events"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/outbox"
	"github.com/mcdev12/icetime/go/internal/roster"
	rosterevents "github.com/mcdev12/icetime/go/internal/roster/events"
	"github.com/mcdev12/icetime/go/internal/users"
)

var testNow = time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)

func openTempStore(t *testing.T, clock clockwork.Clock) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "icetime.db"), clock)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func createUser(t *testing.T, store *Store, username string, isAdmin bool) models.Actor {
	t.Helper()
	user := models.User{
		ID:        uuid.New(),
		Username:  username,
		Email:     username + "@example.com",
		FirstName: username,
		IsAdmin:   isAdmin,
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return models.Actor{UserID: user.ID, IsAdmin: isAdmin}
}

func createEvent(t *testing.T, app *events.App, admin models.Actor, maxPlayers *int) uuid.UUID {
	t.Helper()
	view, err := app.CreateEvent(context.Background(), admin, events.CreateEventRequest{
		Name:       "Tuesday Skate",
		League:     "c",
		Type:       models.EventTypeLeague,
		StartTime:  testNow.Add(24 * time.Hour),
		Location:   "Civic Arena",
		MaxPlayers: maxPlayers,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	return view.ID
}

func intPtr(v int) *int { return &v }

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("", clockwork.NewRealClock()); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "icetime.db")
	for i := 0; i < 2; i++ {
		store, err := Open(path, clockwork.NewRealClock())
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestEventRoundTrip(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(testNow)
	store := openTempStore(t, clock)
	app := events.NewApp(store, clock)
	admin := createUser(t, store, "admin", true)
	ctx := context.Background()

	view, err := app.CreateEvent(ctx, admin, events.CreateEventRequest{
		Name:       "Friday Extra",
		League:     "b",
		Type:       models.EventTypeExtra,
		StartTime:  testNow.Add(48 * time.Hour),
		Location:   "Civic Arena",
		Rink:       stringPtr("Rink 2"),
		MaxPlayers: intPtr(18),
		HasFee:     true,
		CostAmount: floatPtr(12.5),
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}

	got, err := store.GetEvent(ctx, view.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.League != "B" || got.Type != models.EventTypeExtra {
		t.Fatalf("league/type = %s/%s", got.League, got.Type)
	}
	if got.MaxPlayers == nil || *got.MaxPlayers != 18 {
		t.Fatalf("max players = %v, want 18", got.MaxPlayers)
	}
	if got.CostAmount == nil || *got.CostAmount != 12.5 {
		t.Fatalf("cost = %v, want 12.5", got.CostAmount)
	}
	if got.Rink == nil || *got.Rink != "Rink 2" {
		t.Fatalf("rink = %v", got.Rink)
	}
	if !got.StartTime.Equal(testNow.Add(48 * time.Hour)) {
		t.Fatalf("start = %v", got.StartTime)
	}

	if _, err := app.CancelEvent(ctx, admin, view.ID); err != nil {
		t.Fatalf("cancel event: %v", err)
	}
	got, err = store.GetEvent(ctx, view.ID)
	if err != nil {
		t.Fatalf("get event: %v", err)
	}
	if got.CancelledAt == nil || !got.CancelledAt.Equal(testNow) {
		t.Fatalf("cancelled at = %v, want %v", got.CancelledAt, testNow)
	}

	list, err := store.ListEvents(ctx, nil)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("listed %d events, want 1", len(list))
	}
	after := testNow.Add(72 * time.Hour)
	list, err = store.ListEvents(ctx, &after)
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("listed %d events after %v, want 0", len(list), after)
	}

	if err := app.DeleteEvent(ctx, admin, view.ID); err != nil {
		t.Fatalf("delete event: %v", err)
	}
	if _, err := store.GetEvent(ctx, view.ID); !errors.Is(err, roster.ErrEventNotFound) {
		t.Fatalf("get deleted event error = %v, want ErrEventNotFound", err)
	}
}

func TestConcurrentJoinsRespectCapacity(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(testNow)
	store := openTempStore(t, clock)
	admin := createUser(t, store, "admin", true)
	eventID := createEvent(t, events.NewApp(store, clock), admin, intPtr(1))
	app := roster.NewApp(store, clock, time.UTC)

	const joiners = 10
	members := make([]models.Actor, joiners)
	for i := range members {
		members[i] = createUser(t, store, fmt.Sprintf("member%d", i), false)
	}

	var wg sync.WaitGroup
	errs := make(chan error, joiners)
	for _, member := range members {
		wg.Add(1)
		go func(actor models.Actor) {
			defer wg.Done()
			if _, err := app.Join(context.Background(), actor, eventID); err != nil {
				errs <- err
			}
		}(member)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("join: %v", err)
	}

	got, err := app.GetRoster(context.Background(), admin, eventID)
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if len(got.Going) != 1 {
		t.Fatalf("going = %d, want 1", len(got.Going))
	}
	if len(got.Waitlist) != joiners-1 {
		t.Fatalf("waitlist = %d, want %d", len(got.Waitlist), joiners-1)
	}
	seen := make(map[int]bool)
	for _, entry := range got.Waitlist {
		if seen[entry.Position] {
			t.Fatalf("duplicate waitlist position %d", entry.Position)
		}
		seen[entry.Position] = true
	}
}

func TestConcurrentLeavesPromoteEachWaitlisterOnce(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(testNow)
	store := openTempStore(t, clock)
	admin := createUser(t, store, "admin", true)
	eventID := createEvent(t, events.NewApp(store, clock), admin, intPtr(4))
	app := roster.NewApp(store, clock, time.UTC)
	ctx := context.Background()

	going := make([]models.Actor, 4)
	for i := range going {
		going[i] = createUser(t, store, fmt.Sprintf("going%d", i), false)
		if _, err := app.Join(ctx, going[i], eventID); err != nil {
			t.Fatalf("join going%d: %v", i, err)
		}
	}
	waitlisted := make(map[uuid.UUID]bool)
	for i := 0; i < 3; i++ {
		member := createUser(t, store, fmt.Sprintf("waiting%d", i), false)
		if _, err := app.Join(ctx, member, eventID); err != nil {
			t.Fatalf("join waiting%d: %v", i, err)
		}
		waitlisted[member.UserID] = true
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		promoted []uuid.UUID
	)
	errs := make(chan error, len(going))
	for _, member := range going {
		wg.Add(1)
		go func(actor models.Actor) {
			defer wg.Done()
			result, err := app.Leave(ctx, actor, eventID)
			if err != nil {
				errs <- err
				return
			}
			if result.Promoted != nil {
				mu.Lock()
				promoted = append(promoted, result.Promoted.UserID)
				mu.Unlock()
			}
		}(member)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("leave: %v", err)
	}

	if len(promoted) != 3 {
		t.Fatalf("promotions = %d, want 3", len(promoted))
	}
	seen := make(map[uuid.UUID]bool)
	for _, id := range promoted {
		if !waitlisted[id] {
			t.Fatalf("promoted %s was not waitlisted", id)
		}
		if seen[id] {
			t.Fatalf("%s promoted twice", id)
		}
		seen[id] = true
	}

	got, err := app.GetRoster(ctx, admin, eventID)
	if err != nil {
		t.Fatalf("get roster: %v", err)
	}
	if len(got.Going) != 3 || len(got.Waitlist) != 0 {
		t.Fatalf("going = %d, waitlist = %d, want 3 and 0", len(got.Going), len(got.Waitlist))
	}
}

func TestLeaveRejoinReusesRegistration(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(testNow)
	store := openTempStore(t, clock)
	admin := createUser(t, store, "admin", true)
	eventID := createEvent(t, events.NewApp(store, clock), admin, intPtr(1))
	app := roster.NewApp(store, clock, time.UTC)
	ctx := context.Background()

	a := createUser(t, store, "a", false)
	b := createUser(t, store, "b", false)

	first, err := app.Join(ctx, a, eventID)
	if err != nil {
		t.Fatalf("join a: %v", err)
	}
	if _, err := app.Join(ctx, b, eventID); err != nil {
		t.Fatalf("join b: %v", err)
	}

	result, err := app.Leave(ctx, a, eventID)
	if err != nil {
		t.Fatalf("leave a: %v", err)
	}
	if result.Promoted == nil || result.Promoted.UserID != b.UserID {
		t.Fatalf("promoted = %+v, want b", result.Promoted)
	}

	clock.Advance(time.Minute)
	again, err := app.Join(ctx, a, eventID)
	if err != nil {
		t.Fatalf("rejoin a: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("rejoin id = %s, want %s", again.ID, first.ID)
	}
	if again.Status != models.StatusWaitlist || again.RemovedAt != nil {
		t.Fatalf("rejoin = %+v, want waitlisted without removal time", again)
	}
	if !again.JoinedAt.Equal(testNow.Add(time.Minute)) {
		t.Fatalf("joined at = %v, want %v", again.JoinedAt, testNow.Add(time.Minute))
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []outbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, event outbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func TestOutboxDrainsInOrder(t *testing.T) {
	t.Parallel()

	clock := clockwork.NewFakeClockAt(testNow)
	store := openTempStore(t, clock)
	admin := createUser(t, store, "admin", true)
	eventID := createEvent(t, events.NewApp(store, clock), admin, intPtr(1))
	app := roster.NewApp(store, clock, time.UTC)
	ctx := context.Background()

	a := createUser(t, store, "a", false)
	b := createUser(t, store, "b", false)
	for _, actor := range []models.Actor{a, b} {
		if _, err := app.Join(ctx, actor, eventID); err != nil {
			t.Fatalf("join: %v", err)
		}
		clock.Advance(time.Second)
	}
	if _, err := app.Leave(ctx, a, eventID); err != nil {
		t.Fatalf("leave: %v", err)
	}

	pending, err := store.CountUnsent(ctx)
	if err != nil {
		t.Fatalf("count unsent: %v", err)
	}
	if pending == 0 {
		t.Fatal("no outbox rows written")
	}

	publisher := &recordingPublisher{}
	relay := outbox.NewRelay(store, publisher, clock, outbox.DefaultConfig())
	published, err := relay.ProcessUnsent(ctx)
	if err != nil {
		t.Fatalf("process unsent: %v", err)
	}
	if published != pending {
		t.Fatalf("published %d, want %d", published, pending)
	}

	var promoted int
	for i, event := range publisher.events {
		if i > 0 && event.CreatedAt.Before(publisher.events[i-1].CreatedAt) {
			t.Fatalf("outbox published out of order at %d", i)
		}
		if event.EventType == rosterevents.EventTypePlayerPromoted {
			promoted++
		}
	}
	if promoted != 1 {
		t.Fatalf("promotion events = %d, want 1", promoted)
	}

	if pending, err = store.CountUnsent(ctx); err != nil || pending != 0 {
		t.Fatalf("unsent after relay = %d (%v), want 0", pending, err)
	}
}

func stringPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestUserProfileRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t, clockwork.NewFakeClockAt(testNow))
	ctx := context.Background()
	member := createUser(t, store, "jdoe", false)

	err := store.CreateUser(ctx, models.User{ID: uuid.New(), Username: "jdoe", Email: "other@example.com"})
	if !errors.Is(err, users.ErrUserExists) {
		t.Fatalf("duplicate username: got %v, want ErrUserExists", err)
	}

	user, err := store.GetUser(ctx, member.UserID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !user.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", user.CreatedAt, testNow)
	}

	user.LastName = "Doe"
	user.Nickname = stringPtr("Wheels")
	updated, err := store.UpdateUser(ctx, *user)
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.LastName != "Doe" || updated.Nickname == nil || *updated.Nickname != "Wheels" {
		t.Errorf("unexpected profile %+v", updated)
	}

	missing := uuid.New()
	_, err = store.GetUser(ctx, missing)
	if !errors.Is(err, users.ErrUserNotFound) || !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("GetUser unknown: got %v", err)
	}
	_, err = store.UpdateUser(ctx, models.User{ID: missing})
	if !errors.Is(err, users.ErrUserNotFound) {
		t.Errorf("UpdateUser unknown: got %v", err)
	}
}
