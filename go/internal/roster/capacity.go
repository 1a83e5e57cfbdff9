package roster

import "github.com/mcdev12/icetime/go/internal/models"

// DecideInitialStatus picks the status of a self-service joiner. The caller must hold
// the event lock so goingCount cannot change before the registration is written.
func DecideInitialStatus(event *models.Event, goingCount int) models.RegistrationStatus {
	switch {
	case event.ApprovalNeeded:
		return models.StatusRequested
	case !event.HasCapacity():
		return models.StatusGoing
	case goingCount < *event.MaxPlayers:
		return models.StatusGoing
	default:
		return models.StatusWaitlist
	}
}

// NextWaitlistPosition appends to the tail of the waitlist. Positions stay unique even
// after promotions leave gaps.
func NextWaitlistPosition(waitlist []models.Registration) int {
	next := 0
	for _, reg := range waitlist {
		if reg.Status == models.StatusWaitlist && reg.Position >= next {
			next = reg.Position + 1
		}
	}
	return next
}

// spotsLeft returns how many waitlisted members fit on the roster. Unlimited events
// take the whole waitlist.
func spotsLeft(event *models.Event, goingCount, waitlisted int) int {
	if !event.HasCapacity() {
		return waitlisted
	}
	return min(max(0, *event.MaxPlayers-goingCount), waitlisted)
}
