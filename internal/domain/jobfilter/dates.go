package jobfilter

import (
	"context"
	"strings"
	"time"
)

type calendarKey struct{}

// calendar is the clock and time zone a compilation resolves dates with.
type calendar struct {
	now func() time.Time
	loc *time.Location
}

func withCalendar(ctx context.Context, now func() time.Time, loc *time.Location) context.Context {
	return context.WithValue(ctx, calendarKey{}, calendar{now: now, loc: loc})
}

func calendarFrom(ctx context.Context) (calendar, bool) {
	cal, ok := ctx.Value(calendarKey{}).(calendar)
	return cal, ok
}

// dateLayouts are the absolute date forms accepted in filters, tried in order.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006",
}

// dayRange is an inclusive span of calendar days.
type dayRange struct {
	start, end time.Time
}

// startOfDay returns midnight of t's calendar day as a UTC date.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// parseDate reads an absolute date and drops the time of day.
func parseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return startOfDay(t), true
		}
	}
	return time.Time{}, false
}

// relativeRange resolves a named relative term against now.
// Weeks run Monday through Sunday.
func relativeRange(term string, now time.Time) (dayRange, bool) {
	today := startOfDay(now)
	switch strings.ToLower(strings.TrimSpace(term)) {
	case "today":
		return dayRange{today, today}, true
	case "yesterday":
		d := today.AddDate(0, 0, -1)
		return dayRange{d, d}, true
	case "tomorrow":
		d := today.AddDate(0, 0, 1)
		return dayRange{d, d}, true
	case "this_week":
		return weekOf(today, 0), true
	case "last_week":
		return weekOf(today, -1), true
	case "next_week":
		return weekOf(today, 1), true
	case "this_month":
		return monthOf(today, 0), true
	case "last_month":
		return monthOf(today, -1), true
	case "next_month":
		return monthOf(today, 1), true
	}
	return dayRange{}, false
}

func weekOf(day time.Time, offset int) dayRange {
	sinceMonday := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -sinceMonday+7*offset)
	return dayRange{monday, monday.AddDate(0, 0, 6)}
}

func monthOf(day time.Time, offset int) dayRange {
	first := time.Date(day.Year(), day.Month()+time.Month(offset), 1, 0, 0, 0, 0, time.UTC)
	return dayRange{first, first.AddDate(0, 1, -1)}
}

// resolveDay reads either a relative term or an absolute date.
func resolveDay(s string, now time.Time, loc *time.Location) (dayRange, bool) {
	if r, ok := relativeRange(s, now); ok {
		return r, true
	}
	if d, ok := parseDate(s, loc); ok {
		return dayRange{d, d}, true
	}
	return dayRange{}, false
}
