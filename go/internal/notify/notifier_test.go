package notify

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/mcdev12/icetime/go/internal/outbox"
	rosterevents "github.com/mcdev12/icetime/go/internal/roster/events"
)

const testVenuesYAML = `
venues:
  - key: ice_plex
    name: Baptist Health IcePlex
    address: 800 NE 8th St, Fort Lauderdale, FL 33304
    phone: (954) 835-7080
  - key: ice_den
    name: Panthers IceDen
    address: 3299 Sportsplex Dr, Coral Springs, FL 33065
    phone: (954) 341-9956
`

type recordingSender struct {
	sent []Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, msg Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, msg)
	return nil
}

func testVenues(t *testing.T) Venues {
	t.Helper()
	venues, err := ParseVenues([]byte(testVenuesYAML))
	if err != nil {
		t.Fatalf("ParseVenues: %v", err)
	}
	return venues
}

func promotedEnvelope(t *testing.T, id string, venueKey *string, reason rosterevents.PromotionReason) outbox.Envelope {
	t.Helper()
	payload, err := json.Marshal(rosterevents.PlayerPromotedPayload{
		RegistrationID:   "reg-1",
		EventID:          "event-1",
		UserID:           "user-1",
		Email:            "skater@example.com",
		EventName:        "C League - league",
		StartTimeDisplay: "Tue, Mar 3, 4:30 PM",
		LocationDisplay:  "Civic Arena, Rink 2",
		VenueKey:         venueKey,
		Reason:           reason,
		PromotedAt:       time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return outbox.Envelope{
		ID:        id,
		EventType: rosterevents.EventTypePlayerPromoted,
		EventID:   "event-1",
		Timestamp: time.Date(2026, 3, 2, 12, 0, 1, 0, time.UTC),
		Payload:   payload,
	}
}

func TestParseVenues(t *testing.T) {
	venues := testVenues(t)
	if len(venues) != 2 {
		t.Fatalf("got %d venues, want 2", len(venues))
	}

	key := "ice_den"
	v := venues.Lookup(&key)
	if v == nil || v.Name != "Panthers IceDen" {
		t.Fatalf("Lookup(ice_den) = %+v", v)
	}
	if got := string(v.PhoneURL()); got != "tel:9543419956" {
		t.Errorf("PhoneURL = %q", got)
	}

	unknown := "boca_ice"
	if venues.Lookup(&unknown) != nil {
		t.Error("unknown venue should not resolve")
	}
	if venues.Lookup(nil) != nil {
		t.Error("nil key should not resolve")
	}

	_, err := ParseVenues([]byte("venues:\n  - key: a\n  - key: a\n"))
	if err == nil {
		t.Error("duplicate keys should fail")
	}
	_, err = ParseVenues([]byte("venues:\n  - name: nameless\n"))
	if err == nil {
		t.Error("missing key should fail")
	}
}

func TestHandleSendsPromotionEmail(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, NewMemoryDeduper(), testVenues(t))

	venue := "ice_plex"
	if err := n.Handle(context.Background(), promotedEnvelope(t, "ob-1", &venue, rosterevents.PromotionReasonWaitlist)); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "skater@example.com" {
		t.Errorf("To = %q", msg.To)
	}
	if msg.Subject != "You're in! Added to C League - league" {
		t.Errorf("Subject = %q", msg.Subject)
	}
	for _, want := range []string{
		"You were on the waitlist and a spot opened up.",
		"When: Tue, Mar 3, 4:30 PM",
		"Where: Civic Arena, Rink 2",
		"Baptist Health IcePlex",
		`href="tel:9548357080"`,
		"800+NE+8th+St%2c+Fort+Lauderdale",
	} {
		if !strings.Contains(strings.ToLower(msg.HTML), strings.ToLower(want)) {
			t.Errorf("email body missing %q:\n%s", want, msg.HTML)
		}
	}
}

func TestHandleWithoutKnownVenueOmitsDirections(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, NewMemoryDeduper(), testVenues(t))

	venue := "boca_ice"
	if err := n.Handle(context.Background(), promotedEnvelope(t, "ob-1", &venue, rosterevents.PromotionReasonApproval)); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("sent %d emails, want 1", len(sender.sent))
	}
	body := sender.sent[0].HTML
	if strings.Contains(body, "Directions") {
		t.Errorf("unexpected directions block:\n%s", body)
	}
	if !strings.Contains(body, "Your request to join was approved.") {
		t.Errorf("approval intro missing:\n%s", body)
	}
}

func TestHandleSuppressesDuplicates(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, NewMemoryDeduper(), testVenues(t))
	env := promotedEnvelope(t, "ob-1", nil, rosterevents.PromotionReasonWaitlist)

	if err := n.Handle(context.Background(), env); err != nil {
		t.Fatalf("first Handle: %v", err)
	}
	if err := n.Handle(context.Background(), env); !errors.Is(err, outbox.ErrSkip) {
		t.Fatalf("second Handle = %v, want ErrSkip", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent %d emails, want 1", len(sender.sent))
	}
}

func TestHandleSendFailureAllowsRetry(t *testing.T) {
	sender := &recordingSender{err: errors.New("smtp down")}
	dedupe := NewMemoryDeduper()
	n := NewNotifier(sender, dedupe, testVenues(t))
	env := promotedEnvelope(t, "ob-1", nil, rosterevents.PromotionReasonWaitlist)

	err := n.Handle(context.Background(), env)
	if err == nil || errors.Is(err, outbox.ErrSkip) {
		t.Fatalf("Handle = %v, want a retryable error", err)
	}

	sender.err = nil
	if err := n.Handle(context.Background(), env); err != nil {
		t.Fatalf("redelivered Handle: %v", err)
	}
	if len(sender.sent) != 1 {
		t.Errorf("sent %d emails, want 1", len(sender.sent))
	}
}

func TestHandleSkipsOtherMessages(t *testing.T) {
	sender := &recordingSender{}
	n := NewNotifier(sender, NewMemoryDeduper(), testVenues(t))

	tests := []struct {
		name string
		env  outbox.Envelope
	}{
		{
			name: "roster changed",
			env: outbox.Envelope{
				ID:        "ob-2",
				EventType: rosterevents.EventTypeRosterChanged,
				Payload:   json.RawMessage(`{"event_id":"event-1","action":"join"}`),
			},
		},
		{
			name: "malformed payload",
			env: outbox.Envelope{
				ID:        "ob-3",
				EventType: rosterevents.EventTypePlayerPromoted,
				Payload:   json.RawMessage(`"not an object"`),
			},
		},
		{
			name: "no email",
			env: outbox.Envelope{
				ID:        "ob-4",
				EventType: rosterevents.EventTypePlayerPromoted,
				Payload:   json.RawMessage(`{"user_id":"user-1","event_name":"x"}`),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := n.Handle(context.Background(), tt.env); !errors.Is(err, outbox.ErrSkip) {
				t.Errorf("Handle = %v, want ErrSkip", err)
			}
		})
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent %d emails, want 0", len(sender.sent))
	}
}
