package roster

import (
	"testing"

	"github.com/mcdev12/icetime/go/internal/models"
)

func intPtr(v int) *int { return &v }

func TestDecideInitialStatus(t *testing.T) {
	tests := []struct {
		name       string
		event      models.Event
		goingCount int
		want       models.RegistrationStatus
	}{
		{"approval short-circuits capacity", models.Event{ApprovalNeeded: true, MaxPlayers: intPtr(0)}, 0, models.StatusRequested},
		{"approval with free slots", models.Event{ApprovalNeeded: true, MaxPlayers: intPtr(10)}, 1, models.StatusRequested},
		{"unlimited", models.Event{}, 500, models.StatusGoing},
		{"below capacity", models.Event{MaxPlayers: intPtr(2)}, 1, models.StatusGoing},
		{"at capacity", models.Event{MaxPlayers: intPtr(2)}, 2, models.StatusWaitlist},
		{"over capacity after admin add", models.Event{MaxPlayers: intPtr(2)}, 3, models.StatusWaitlist},
		{"zero capacity", models.Event{MaxPlayers: intPtr(0)}, 0, models.StatusWaitlist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecideInitialStatus(&tt.event, tt.goingCount); got != tt.want {
				t.Fatalf("DecideInitialStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextWaitlistPosition(t *testing.T) {
	waitlisted := func(positions ...int) []models.Registration {
		regs := make([]models.Registration, len(positions))
		for i, p := range positions {
			regs[i] = models.Registration{Status: models.StatusWaitlist, Position: p}
		}
		return regs
	}

	tests := []struct {
		name     string
		waitlist []models.Registration
		want     int
	}{
		{"empty", nil, 0},
		{"contiguous", waitlisted(0, 1, 2), 3},
		{"gap after promotion", waitlisted(1, 2), 3},
		{"unsorted", waitlisted(4, 0, 2), 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextWaitlistPosition(tt.waitlist); got != tt.want {
				t.Fatalf("NextWaitlistPosition() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSpotsLeft(t *testing.T) {
	tests := []struct {
		name       string
		maxPlayers *int
		going      int
		waitlisted int
		want       int
	}{
		{"full", intPtr(3), 3, 4, 0},
		{"over full", intPtr(3), 5, 4, 0},
		{"some room", intPtr(3), 1, 4, 2},
		{"more room than waitlist", intPtr(10), 1, 2, 2},
		{"unlimited takes all", nil, 40, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := &models.Event{MaxPlayers: tt.maxPlayers}
			if got := spotsLeft(event, tt.going, tt.waitlisted); got != tt.want {
				t.Fatalf("spotsLeft() = %d, want %d", got, tt.want)
			}
		})
	}
}
