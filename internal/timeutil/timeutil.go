// Package timeutil holds the date/time arithmetic shared by the task
// factory, the timeline layout and the calendar bucketing. All helpers are
// pure; malformed input is clamped, never rejected.
package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const MinutesPerDay = 24 * 60

// FloorToMidnight truncates an instant to local midnight of its calendar day.
func FloorToMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}

func AddMinutes(t time.Time, minutes int) time.Time {
	return t.Add(time.Duration(minutes) * time.Minute)
}

// DayDiff returns the number of whole days between the midnight floors of a
// and b, truncated toward zero. Positive when a falls after b.
func DayDiff(a, b time.Time) int {
	return int(FloorToMidnight(a).Sub(FloorToMidnight(b)) / (24 * time.Hour))
}

// HoursBetween returns the exact difference a-b in fractional hours.
func HoursBetween(a, b time.Time) float64 {
	return a.Sub(b).Minutes() / 60
}

// ParseHHMM converts an "HH:MM" string to minutes since midnight. Hours are
// clamped to [0,23], minutes to [0,59]; unparsable fields default to 0.
func ParseHHMM(hhmm string) int {
	hh, mm := 0, 0
	parts := strings.SplitN(strings.TrimSpace(hhmm), ":", 2)
	if len(parts) > 0 {
		hh = clamp(atoi(parts[0]), 0, 23)
	}
	if len(parts) > 1 {
		mm = clamp(atoi(parts[1]), 0, 59)
	}
	return hh*60 + mm
}

// FormatHHMM renders minutes-since-midnight as zero-padded "HH:MM". The
// value is taken modulo one day so clamped daily windows wrap cleanly.
func FormatHHMM(minutes int) string {
	minutes %= MinutesPerDay
	if minutes < 0 {
		minutes += MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Combine anchors a time-of-day onto a calendar day: midnight of date plus
// ParseHHMM(hhmm) minutes.
func Combine(date time.Time, hhmm string) time.Time {
	return AddMinutes(FloorToMidnight(date), ParseHHMM(hhmm))
}

var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDateTime parses the date-time formats accepted by the task entry
// form. The zero time and false are returned when nothing matches.
func ParseDateTime(raw string) (time.Time, bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDate parses a bare "YYYY-MM-DD" calendar date.
func ParseDate(raw string) (time.Time, bool) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(raw), time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DateKey derives the canonical local calendar key used by the month grid.
// Local date fields, not UTC, so tasks do not drift across a timezone
// boundary at display time.
func DateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

func atoi(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return v
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
