package roster

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
)

type outboxRow struct {
	EventID   uuid.UUID
	EventType string
	Payload   []byte
}

type captainKey struct {
	eventID, userID uuid.UUID
}

// memStore is an in-memory Store. WithEventLock serializes on one mutex and restores
// a snapshot when fn fails, so it has the same all-or-nothing behaviour as Postgres.
type memStore struct {
	mu       sync.Mutex
	events   map[uuid.UUID]models.Event
	users    map[uuid.UUID]models.User
	regs     map[uuid.UUID]models.Registration
	captains map[captainKey]bool
	audit    []models.AuditEntry
	outbox   []outboxRow

	failOutbox bool
	// commitFailures rolls back that many successful attempts and runs fn again,
	// the way sqlutil.RunWithRetry does after a serialization failure at commit.
	commitFailures int
}

func newMemStore() *memStore {
	return &memStore{
		events:   map[uuid.UUID]models.Event{},
		users:    map[uuid.UUID]models.User{},
		regs:     map[uuid.UUID]models.Registration{},
		captains: map[captainKey]bool{},
	}
}

type memSnapshot struct {
	regs     map[uuid.UUID]models.Registration
	captains map[captainKey]bool
	audit    int
	outbox   int
}

func (s *memStore) WithEventLock(ctx context.Context, eventID uuid.UUID, fn func(tx Tx, event *models.Event) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[eventID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}

	snap := memSnapshot{
		regs:     maps.Clone(s.regs),
		captains: maps.Clone(s.captains),
		audit:    len(s.audit),
		outbox:   len(s.outbox),
	}
	rollback := func() {
		s.regs = maps.Clone(snap.regs)
		s.captains = maps.Clone(snap.captains)
		s.audit = s.audit[:snap.audit]
		s.outbox = s.outbox[:snap.outbox]
	}
	for {
		attempt := event
		if err := fn(&memTx{s: s}, &attempt); err != nil {
			rollback()
			return err
		}
		if s.commitFailures == 0 {
			return nil
		}
		s.commitFailures--
		rollback()
	}
}

func (s *memStore) GetEvent(ctx context.Context, eventID uuid.UUID) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event, ok := s.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return &event, nil
}

func (s *memStore) ListRoster(ctx context.Context, eventID uuid.UUID) ([]models.RosterEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var entries []models.RosterEntry
	for _, reg := range s.regs {
		if reg.EventID != eventID || !reg.Status.IsActive() {
			continue
		}
		user := s.users[reg.UserID]
		entries = append(entries, models.RosterEntry{
			Registration: reg,
			Username:     user.Username,
			FirstName:    user.FirstName,
			LastName:     user.LastName,
			Nickname:     user.Nickname,
			Email:        user.Email,
		})
	}
	return entries, nil
}

func (s *memStore) IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.captains[captainKey{eventID, userID}], nil
}

// registration looks a row up outside of a transaction
func (s *memStore) registration(eventID, userID uuid.UUID) (models.Registration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			return reg, true
		}
	}
	return models.Registration{}, false
}

func (s *memStore) countStatus(eventID uuid.UUID, status models.RegistrationStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, reg := range s.regs {
		if reg.EventID == eventID && reg.Status == status {
			n++
		}
	}
	return n
}

func (s *memStore) auditActions() []models.AuditAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]models.AuditAction, len(s.audit))
	for i, entry := range s.audit {
		actions[i] = entry.Action
	}
	return actions
}

func (s *memStore) outboxOfType(eventType string) []outboxRow {
	s.mu.Lock()
	defer s.mu.Unlock()
	var rows []outboxRow
	for _, row := range s.outbox {
		if row.EventType == eventType {
			rows = append(rows, row)
		}
	}
	return rows
}

type memTx struct {
	s *memStore
}

func (t *memTx) GetRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	for _, reg := range t.s.regs {
		if reg.EventID == eventID && reg.UserID == userID {
			return &reg, nil
		}
	}
	return nil, nil
}

func (t *memTx) ListRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) ([]models.Registration, error) {
	var regs []models.Registration
	for _, reg := range t.s.regs {
		if reg.EventID == eventID && reg.Status == status {
			regs = append(regs, reg)
		}
	}
	// reverse priority, so code that forgets to sort shows up in tests
	slices.SortFunc(regs, func(a, b models.Registration) int {
		return compareWaitlistPriority(&b, &a)
	})
	return regs, nil
}

func (t *memTx) CountRegistrationsByStatus(ctx context.Context, eventID uuid.UUID, status models.RegistrationStatus) (int, error) {
	n := 0
	for _, reg := range t.s.regs {
		if reg.EventID == eventID && reg.Status == status {
			n++
		}
	}
	return n, nil
}

func (t *memTx) CreateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	for _, existing := range t.s.regs {
		if existing.EventID == reg.EventID && existing.UserID == reg.UserID {
			return nil, errors.New("duplicate registration for event and user")
		}
	}
	t.s.regs[reg.ID] = reg
	return &reg, nil
}

func (t *memTx) UpdateRegistration(ctx context.Context, reg models.Registration) (*models.Registration, error) {
	if _, ok := t.s.regs[reg.ID]; !ok {
		return nil, errors.New("registration does not exist")
	}
	t.s.regs[reg.ID] = reg
	return &reg, nil
}

func (t *memTx) IsCaptain(ctx context.Context, eventID, userID uuid.UUID) (bool, error) {
	return t.s.captains[captainKey{eventID, userID}], nil
}

func (t *memTx) UpsertCaptain(ctx context.Context, eventID, userID uuid.UUID) error {
	t.s.captains[captainKey{eventID, userID}] = true
	return nil
}

func (t *memTx) DeleteCaptain(ctx context.Context, eventID, userID uuid.UUID) (int64, error) {
	key := captainKey{eventID, userID}
	if !t.s.captains[key] {
		return 0, nil
	}
	delete(t.s.captains, key)
	return 1, nil
}

func (t *memTx) GetUser(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, ok := t.s.users[userID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (t *memTx) InsertAuditLog(ctx context.Context, entry models.AuditEntry) error {
	t.s.audit = append(t.s.audit, entry)
	return nil
}

func (t *memTx) InsertOutboxEvent(ctx context.Context, eventID uuid.UUID, eventType string, payload []byte) error {
	if t.s.failOutbox {
		return errors.New("outbox unavailable")
	}
	t.s.outbox = append(t.s.outbox, outboxRow{EventID: eventID, EventType: eventType, Payload: payload})
	return nil
}
