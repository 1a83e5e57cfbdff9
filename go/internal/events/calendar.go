package events

import (
	"context"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/mcdev12/icetime/go/internal/models"
	"github.com/mcdev12/icetime/go/internal/roster"
)

// CalendarEventDuration is the length given to events in calendar exports.
const CalendarEventDuration = time.Hour

const calendarProductID = "-//icetime//events//EN"

// Calendar renders an event as an iCalendar document. Cancelled events are not exported.
func (a *App) Calendar(ctx context.Context, id uuid.UUID) ([]byte, error) {
	event, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return nil, err
	}
	if event.IsCancelled() {
		return nil, fmt.Errorf("%w: event %s is cancelled", roster.ErrEventNotFound, id)
	}
	return []byte(BuildCalendar(event, a.clock.Now())), nil
}

// BuildCalendar serializes one VEVENT for event
func BuildCalendar(event *models.Event, now time.Time) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(calendarProductID)

	vevent := cal.AddEvent(event.ID.String() + "@icetime")
	vevent.SetDtStampTime(now.UTC())
	vevent.SetStartAt(event.StartTime.UTC())
	vevent.SetEndAt(event.StartTime.Add(CalendarEventDuration).UTC())
	vevent.SetSummary(event.DisplayName())
	vevent.SetLocation(calendarLocation(event))
	if event.Description != nil && *event.Description != "" {
		vevent.SetDescription(*event.Description)
	}
	return cal.Serialize()
}

func calendarLocation(event *models.Event) string {
	parts := []string{event.Location}
	if event.Rink != nil && *event.Rink != "" {
		parts = append(parts, *event.Rink)
	}
	return strings.Join(parts, ", ")
}
