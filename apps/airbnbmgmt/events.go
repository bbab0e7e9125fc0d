package airbnbmgmt

import (
	"context"
	"fmt"
	"time"
)

// rentalEventsFor derives the checkin / active / checkout events for a unit.
//
// The Rental Control integration doesn't expose checkin/checkout
// reservations directly, just a sequence of relevant events (recent and
// upcoming reservations). If there is a checkout and a checkin today, event
// 0 is the checkout and event 1 the checkin; if the checkout was yesterday,
// event 0 is the checkin. Looking at the first two events is enough to
// classify which, if any, apply today.
func (a *App) rentalEventsFor(ctx context.Context, calCode string, today time.Time) (rentalEvents, error) {
	events := make([]calendarEvent, 0, 2)

	for _, idx := range []int{0, 1} {
		name := fmt.Sprintf("sensor.rental_control_%s_event_%d", calCode, idx)

		start, err := a.hass.StateDatetime(ctx, name, "start")
		if err != nil {
			return rentalEvents{}, fmt.Errorf("%s start: %w", name, err)
		}
		end, err := a.hass.StateDatetime(ctx, name, "end")
		if err != nil {
			return rentalEvents{}, fmt.Errorf("%s end: %w", name, err)
		}

		events = append(events, calendarEvent{
			name:      name,
			startDate: dateOf(start),
			endDate:   dateOf(end),
		})
	}

	day := dateOf(today)
	result := rentalEvents{}

	switch {
	case events[1].startDate.Equal(day):
		result.checkinToday = events[1].name
	case events[0].startDate.Equal(day):
		result.checkinToday = events[0].name
	}

	switch {
	case !events[1].startDate.After(day):
		result.checkinActive = events[1].name
	case !events[0].startDate.After(day):
		result.checkinActive = events[0].name
	}

	if events[0].endDate.Equal(day) {
		result.checkoutToday = events[0].name
	}

	return result, nil
}

// dateOf truncates a timestamp to its calendar date.
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
