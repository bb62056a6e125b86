package agenda

import (
	"sort"
	"strings"
	"time"

	"github.com/example/salon-admin/internal/api"
)

// Buckets is the partition of a list into today, tomorrow and everything else.
type Buckets struct {
	Today    []api.Appointment
	Tomorrow []api.Appointment
	Future   []api.Appointment
}

// Len returns the total number of appointments across all buckets.
func (b Buckets) Len() int {
	return len(b.Today) + len(b.Tomorrow) + len(b.Future)
}

// Partition places every appointment in exactly one bucket by comparing the
// date portion of starts_at with today's and tomorrow's dates. Anything that
// is neither, including rows the server returned from before today, goes to
// Future. Each bucket is sorted ascending by start.
func (c Calendar) Partition(appointments []api.Appointment, today time.Time) Buckets {
	todayKey := c.DateKey(today)
	tomorrowKey := c.DateKey(c.NextDay(today))

	var b Buckets
	for _, appt := range appointments {
		switch datePart(appt.StartsAt) {
		case todayKey:
			b.Today = append(b.Today, appt)
		case tomorrowKey:
			b.Tomorrow = append(b.Tomorrow, appt)
		default:
			b.Future = append(b.Future, appt)
		}
	}

	c.SortByStart(b.Today)
	c.SortByStart(b.Tomorrow)
	c.SortByStart(b.Future)
	return b
}

// OnDay keeps the appointments whose start date is the calendar day of day.
func (c Calendar) OnDay(appointments []api.Appointment, day time.Time) []api.Appointment {
	key := c.DateKey(day)
	out := make([]api.Appointment, 0, len(appointments))
	for _, appt := range appointments {
		if datePart(appt.StartsAt) == key {
			out = append(out, appt)
		}
	}
	return out
}

// StartingAfter keeps appointments whose start is strictly after now and
// sorts them ascending. Unparsable starts are dropped.
func (c Calendar) StartingAfter(appointments []api.Appointment, now time.Time) []api.Appointment {
	out := make([]api.Appointment, 0, len(appointments))
	for _, appt := range appointments {
		start, err := c.Parse(appt.StartsAt)
		if err != nil {
			continue
		}
		if start.After(now) {
			out = append(out, appt)
		}
	}
	c.SortByStart(out)
	return out
}

// CountUpcoming counts appointments starting strictly after now.
func (c Calendar) CountUpcoming(appointments []api.Appointment, now time.Time) int {
	n := 0
	for _, appt := range appointments {
		if start, err := c.Parse(appt.StartsAt); err == nil && start.After(now) {
			n++
		}
	}
	return n
}

// SortByStart orders appointments ascending by start time in place.
func (c Calendar) SortByStart(appointments []api.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		return c.startBefore(appointments[i], appointments[j])
	})
}

// SortNewestFirst orders appointments descending by start time in place.
func (c Calendar) SortNewestFirst(appointments []api.Appointment) {
	sort.SliceStable(appointments, func(i, j int) bool {
		return c.startBefore(appointments[j], appointments[i])
	})
}

func (c Calendar) startBefore(a, b api.Appointment) bool {
	ta, errA := c.Parse(a.StartsAt)
	tb, errB := c.Parse(b.StartsAt)
	switch {
	case errA == nil && errB == nil:
		if ta.Equal(tb) {
			return a.ID < b.ID
		}
		return ta.Before(tb)
	case errA == nil:
		return true
	case errB == nil:
		return false
	default:
		return strings.Compare(a.StartsAt, b.StartsAt) < 0
	}
}

// DurationMinutes returns ends_at minus starts_at in whole minutes.
func (c Calendar) DurationMinutes(appt api.Appointment) (int, bool) {
	start, err := c.Parse(appt.StartsAt)
	if err != nil {
		return 0, false
	}
	end, err := c.Parse(appt.EndsAt)
	if err != nil {
		return 0, false
	}
	return int(end.Sub(start) / time.Minute), true
}
