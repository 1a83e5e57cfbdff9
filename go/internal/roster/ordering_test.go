package roster

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
)

func strPtr(v string) *string { return &v }

// fixtureIDs returns n ids that sort in argument order
func fixtureIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i][15] = byte(i + 1)
	}
	return ids
}

func orderedIDs(regs []models.Registration) []uuid.UUID {
	ids := make([]uuid.UUID, len(regs))
	for i, reg := range regs {
		ids[i] = reg.ID
	}
	return ids
}

func TestOrderActive_LineBeforeInsertionOrder(t *testing.T) {
	ids := fixtureIDs(2)
	line2 := models.Registration{ID: ids[0], Status: models.StatusGoing, Line: intPtr(2)}
	line1 := models.Registration{ID: ids[1], Status: models.StatusGoing, Line: intPtr(1)}

	for _, input := range [][]models.Registration{{line2, line1}, {line1, line2}} {
		got := orderedIDs(OrderActive(input))
		if diff := cmp.Diff([]uuid.UUID{ids[1], ids[0]}, got); diff != "" {
			t.Fatalf("OrderActive() mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestOrderActive_Precedence(t *testing.T) {
	base := time.Date(2026, 1, 10, 18, 0, 0, 0, time.UTC)
	ids := fixtureIDs(11)

	// listed in expected order
	want := []models.Registration{
		{ID: ids[0], Status: models.StatusGoing, Line: intPtr(1), AssignedPosition: strPtr("C"), JoinedAt: base},
		{ID: ids[1], Status: models.StatusGoing, Line: intPtr(1), AssignedPosition: strPtr("D"), JoinedAt: base},
		{ID: ids[2], Status: models.StatusGoing, Line: intPtr(1), JoinedAt: base},
		{ID: ids[3], Status: models.StatusGoing, Line: intPtr(2), AssignedPosition: strPtr("C"), JoinedAt: base},
		{ID: ids[4], Status: models.StatusGoing, JoinedAt: base},
		{ID: ids[5], Status: models.StatusGoing, JoinedAt: base.Add(time.Minute)},
		{ID: ids[6], Status: models.StatusGoing, JoinedAt: base.Add(time.Minute)},
		{ID: ids[7], Status: models.StatusWaitlist, Position: 0, JoinedAt: base.Add(time.Hour)},
		{ID: ids[8], Status: models.StatusWaitlist, Position: 1, JoinedAt: base},
		{ID: ids[9], Status: models.StatusRequested, JoinedAt: base},
		{ID: ids[10], Status: models.StatusRequested, JoinedAt: base.Add(time.Second)},
	}
	removed := models.Registration{ID: uuid.New(), Status: models.StatusRemoved, Line: intPtr(1)}

	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 50; i++ {
		input := append([]models.Registration{removed}, want...)
		rng.Shuffle(len(input), func(a, b int) { input[a], input[b] = input[b], input[a] })

		got := OrderActive(input)
		if diff := cmp.Diff(orderedIDs(want), orderedIDs(got)); diff != "" {
			t.Fatalf("shuffle %d: OrderActive() mismatch (-want +got):\n%s", i, diff)
		}
	}
}

func TestOrderActive_DoesNotModifyInput(t *testing.T) {
	ids := fixtureIDs(2)
	input := []models.Registration{
		{ID: ids[0], Status: models.StatusWaitlist},
		{ID: ids[1], Status: models.StatusGoing},
	}
	OrderActive(input)
	if input[0].ID != ids[0] {
		t.Fatal("OrderActive() reordered its input")
	}
}

func TestSortRosterEntries_MatchesOrderActive(t *testing.T) {
	ids := fixtureIDs(4)
	regs := []models.Registration{
		{ID: ids[0], Status: models.StatusRequested},
		{ID: ids[1], Status: models.StatusWaitlist, Position: 3},
		{ID: ids[2], Status: models.StatusGoing, Line: intPtr(3)},
		{ID: ids[3], Status: models.StatusWaitlist, Position: 1},
	}
	entries := make([]models.RosterEntry, len(regs))
	for i, reg := range regs {
		entries[i] = models.RosterEntry{Registration: reg}
	}

	SortRosterEntries(entries)
	got := make([]uuid.UUID, len(entries))
	for i, entry := range entries {
		got[i] = entry.ID
	}
	if diff := cmp.Diff(orderedIDs(OrderActive(regs)), got); diff != "" {
		t.Fatalf("roster and export order diverge (-want +got):\n%s", diff)
	}
}
