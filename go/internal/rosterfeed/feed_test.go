package rosterfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/icetime/go/internal/auth"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/outbox"
	rosterevents "github.com/mcdev12/icetime/go/internal/roster/events"
)

func startFeedServer(t *testing.T, verifier TokenVerifier) (*ConnectionManager, *httptest.Server) {
	t.Helper()

	cm := NewConnectionManager(DefaultConnectionConfig())
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Start(ctx)

	mux := http.NewServeMux()
	NewWebSocketHandler(cm, verifier).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return cm, srv
}

func dialFeed(t *testing.T, srv *httptest.Server, query url.Values) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/roster?" + query.Encode()
	conn, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForConnections(t *testing.T, cm *ConnectionManager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cm.Stats().TotalConnections == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("connections = %d, want %d", cm.Stats().TotalConnections, want)
}

func rosterChanged(t *testing.T, eventID uuid.UUID, action string) outbox.Envelope {
	t.Helper()
	payload, err := json.Marshal(rosterevents.RosterChangedPayload{
		EventID:   eventID.String(),
		UserID:    uuid.NewString(),
		Action:    action,
		Status:    "going",
		ChangedAt: time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.Envelope{
		ID:        uuid.NewString(),
		EventType: rosterevents.EventTypeRosterChanged,
		EventID:   eventID.String(),
		Payload:   payload,
	}
}

func TestFeedBroadcastsToEventViewers(t *testing.T) {
	cm, srv := startFeedServer(t, nil)
	feed := NewFeed(cm)

	watched := uuid.New()
	other := uuid.New()
	viewer := dialFeed(t, srv, url.Values{"event_id": {watched.String()}})
	bystander := dialFeed(t, srv, url.Values{"event_id": {other.String()}})
	waitForConnections(t, cm, 2)

	if err := feed.Handle(context.Background(), rosterChanged(t, watched, "roster.join")); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	_ = viewer.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Update
	if err := viewer.ReadJSON(&got); err != nil {
		t.Fatalf("read update: %v", err)
	}
	if got.EventID != watched.String() || got.Action != "roster.join" || got.Status != "going" {
		t.Errorf("unexpected update %+v", got)
	}

	_ = bystander.SetReadDeadline(time.Now().Add(100 * time.Millisecond))
	if _, _, err := bystander.ReadMessage(); err == nil {
		t.Error("viewer of another event received the update")
	}
}

func TestFeedSkipsUnusableEnvelopes(t *testing.T) {
	feed := NewFeed(NewConnectionManager(DefaultConnectionConfig()))

	tests := []struct {
		name string
		env  outbox.Envelope
	}{
		{
			name: "other event type",
			env:  outbox.Envelope{EventType: rosterevents.EventTypePlayerPromoted, Payload: json.RawMessage(`{}`)},
		},
		{
			name: "bad event id",
			env:  outbox.Envelope{EventType: rosterevents.EventTypeRosterChanged, Payload: json.RawMessage(`{"event_id":"nope"}`)},
		},
		{
			name: "bad payload",
			env:  outbox.Envelope{EventType: rosterevents.EventTypeRosterChanged, Payload: json.RawMessage(`[]`)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := feed.Handle(context.Background(), tt.env); !errors.Is(err, outbox.ErrSkip) {
				t.Errorf("Handle = %v, want ErrSkip", err)
			}
		})
	}
}

func TestRosterConnectionValidation(t *testing.T) {
	verifier, err := auth.NewVerifier("feed-secret", clockwork.NewRealClock())
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	cm, srv := startFeedServer(t, verifier)

	tests := []struct {
		name   string
		query  url.Values
		status int
	}{
		{name: "missing event", query: url.Values{}, status: http.StatusBadRequest},
		{name: "bad event", query: url.Values{"event_id": {"x"}}, status: http.StatusBadRequest},
		{name: "missing token", query: url.Values{"event_id": {uuid.NewString()}}, status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/ws/roster?" + tt.query.Encode())
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}

	token, err := verifier.Sign(models.Actor{UserID: uuid.New()}, time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	dialFeed(t, srv, url.Values{"event_id": {uuid.NewString()}, "token": {token}})
	waitForConnections(t, cm, 1)
}
