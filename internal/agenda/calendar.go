// Package agenda holds the pure appointment logic: calendar windows, day
// bucketing, ordering, monthly growth, revenue and status presentation.
package agenda

import (
	"fmt"
	"strings"
	"time"
)

const (
	// TimestampLayout is the wire format of starts_at, ends_at and the
	// start/end query parameters.
	TimestampLayout = "2006-01-02 15:04:05"
	// DateLayout is the calendar-day key used for bucketing.
	DateLayout = "2006-01-02"
)

// Calendar interprets plugin timestamps in the salon's time zone.
type Calendar struct {
	location *time.Location
}

// NewCalendar constructs a Calendar for loc. If loc is nil, time.Local is used.
func NewCalendar(loc *time.Location) Calendar {
	if loc == nil {
		loc = time.Local
	}
	return Calendar{location: loc}
}

// Location returns the calendar's time zone.
func (c Calendar) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// DayWindow returns 00:00:00 and 23:59:59 of the calendar day containing t.
func (c Calendar) DayWindow(t time.Time) (time.Time, time.Time) {
	y, m, d := t.In(c.Location()).Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, c.Location())
	end := time.Date(y, m, d, 23, 59, 59, 0, c.Location())
	return start, end
}

// NextDay returns the same wall-clock time on the following calendar day.
func (c Calendar) NextDay(t time.Time) time.Time {
	return t.In(c.Location()).AddDate(0, 0, 1)
}

// MonthWindow returns the first and last second of the month containing t.
func (c Calendar) MonthWindow(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.In(c.Location()).Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, c.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	return start, end
}

// PreviousMonthWindow returns the window of the month before the one
// containing t.
func (c Calendar) PreviousMonthWindow(t time.Time) (time.Time, time.Time) {
	y, m, _ := t.In(c.Location()).Date()
	firstOfCurrent := time.Date(y, m, 1, 0, 0, 0, 0, c.Location())
	return c.MonthWindow(firstOfCurrent.AddDate(0, -1, 0))
}

// Format renders t in TimestampLayout in the calendar's zone.
func (c Calendar) Format(t time.Time) string {
	return t.In(c.Location()).Format(TimestampLayout)
}

// DateKey renders the calendar day of t as YYYY-MM-DD.
func (c Calendar) DateKey(t time.Time) string {
	return t.In(c.Location()).Format(DateLayout)
}

// Parse reads a plugin timestamp. Both "YYYY-MM-DD HH:MM:SS" and the ISO
// "T" separator are accepted.
func (c Calendar) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{TimestampLayout, "2006-01-02T15:04:05", "2006-01-02 15:04", DateLayout} {
		if t, err := time.ParseInLocation(layout, value, c.Location()); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(c.Location()), nil
	}
	return time.Time{}, fmt.Errorf("agenda: unrecognised timestamp %q", value)
}

// datePart returns the YYYY-MM-DD prefix of a timestamp string, without
// interpreting the time of day.
func datePart(value string) string {
	value = strings.TrimSpace(value)
	if len(value) < len(DateLayout) {
		return value
	}
	return value[:len(DateLayout)]
}
