package roster

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/mcdev12/icetime/go/internal/models"
)

func statusRank(s models.RegistrationStatus) int {
	switch s {
	case models.StatusGoing:
		return 0
	case models.StatusWaitlist:
		return 1
	case models.StatusRequested:
		return 2
	default:
		return 3
	}
}

// compareNullable orders nil after every value
func compareNullable[T cmp.Ordered](a, b *T) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return 1
	case b == nil:
		return -1
	default:
		return cmp.Compare(*a, *b)
	}
}

// CompareRegistrations is the roster display and export order: status, line,
// assigned position, waitlist position, join time. The row id breaks remaining ties
// so the order is total.
func CompareRegistrations(a, b *models.Registration) int {
	if c := cmp.Compare(statusRank(a.Status), statusRank(b.Status)); c != 0 {
		return c
	}
	if c := compareNullable(a.Line, b.Line); c != 0 {
		return c
	}
	if c := compareNullable(a.AssignedPosition, b.AssignedPosition); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// compareWaitlistPriority decides who is promoted first.
func compareWaitlistPriority(a, b *models.Registration) int {
	if c := cmp.Compare(a.Position, b.Position); c != 0 {
		return c
	}
	if c := a.JoinedAt.Compare(b.JoinedAt); c != 0 {
		return c
	}
	return bytes.Compare(a.ID[:], b.ID[:])
}

// OrderActive drops removed rows and sorts the rest into roster order. The input is
// left untouched.
func OrderActive(regs []models.Registration) []models.Registration {
	out := make([]models.Registration, 0, len(regs))
	for _, reg := range regs {
		if reg.Status.IsActive() {
			out = append(out, reg)
		}
	}
	slices.SortFunc(out, func(a, b models.Registration) int {
		return CompareRegistrations(&a, &b)
	})
	return out
}

// SortRosterEntries sorts entries in place using the same order as OrderActive.
func SortRosterEntries(entries []models.RosterEntry) {
	slices.SortFunc(entries, func(a, b models.RosterEntry) int {
		return CompareRegistrations(&a.Registration, &b.Registration)
	})
}

// sortByWaitlistPriority sorts in place, first to be promoted first.
func sortByWaitlistPriority(regs []models.Registration) {
	slices.SortFunc(regs, func(a, b models.Registration) int {
		return compareWaitlistPriority(&a, &b)
	})
}
