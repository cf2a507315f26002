// Package ical renders store events as an iCalendar feed that customers can subscribe to.
package ical

import (
	"fmt"
	"strconv"
	"time"

	ics "github.com/arran4/golang-ical"

	"storefront/internal/domain/event"
)

// ProductID identifies the feed generator in PRODID.
const ProductID = "-//Storefront//Store Events//EN"

// NextOccurrence returns the next date on or after now (in loc) that falls on the event's month and day.
// Days past the end of a short month are clamped to its last day.
// POST: ok is false when the event's month code is unknown or its day does not parse
func NextOccurrence(e event.Event, now time.Time, loc *time.Location) (time.Time, bool) {
	month := event.MonthNumber(e.Month)
	if month == 0 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(e.Day)
	if err != nil || day < 1 || day > 31 {
		return time.Time{}, false
	}

	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	d := dateIn(local.Year(), month, day, loc)
	if d.Before(today) {
		d = dateIn(local.Year()+1, month, day, loc)
	}
	return d, true
}

func dateIn(year int, month time.Month, day int, loc *time.Location) time.Time {
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
	if day > last {
		day = last
	}
	return time.Date(year, month, day, 0, 0, 0, 0, loc)
}

// BuildFeed renders one all-day VEVENT per event on its next occurrence.
// Events whose date cannot be resolved are left out.
func BuildFeed(name string, events []event.Event, now time.Time, loc *time.Location) string {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(ProductID)
	if name != "" {
		cal.SetName(name)
		cal.SetXWRCalName(name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, e := range events {
		start, ok := NextOccurrence(e, now, loc)
		if !ok {
			continue
		}
		ev := cal.AddEvent(fmt.Sprintf("event-%d@storefront", e.ID))
		ev.SetDtStampTime(now)
		ev.SetCreatedTime(e.CreatedAt)
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
		ev.SetSummary(e.Title)
		desc := e.Description
		if e.Time != "" {
			desc += "\n\n" + e.Time
		}
		ev.SetDescription(desc)
		if e.Location != "" {
			ev.SetLocation(e.Location)
		}
	}
	return cal.Serialize()
}
