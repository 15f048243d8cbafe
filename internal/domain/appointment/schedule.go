package appointment

import (
	"strings"
	"time"
)

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether a and b share any instant. Intervals that only
// touch (a.End == b.Start) do not overlap.
func Overlaps(a, b Interval) bool {
	return a.Start.Before(b.End) && a.End.After(b.Start)
}

// FindConflict returns the first appointment in existing whose interval
// overlaps candidate, or nil. existing is expected to be pre-filtered to the
// candidate's day and to active appointments other than the candidate itself.
func FindConflict(candidate Interval, existing []*Appointment) *Appointment {
	for _, e := range existing {
		if Overlaps(candidate, e.Interval()) {
			return e
		}
	}
	return nil
}

// BusinessHours is the daily opening window, compared at hour granularity
// in Location.
type BusinessHours struct {
	Location  *time.Location
	OpenHour  int
	CloseHour int
}

func DefaultBusinessHours() BusinessHours {
	return BusinessHours{Location: time.UTC, OpenHour: 8, CloseHour: 20}
}

func (h BusinessHours) location() *time.Location {
	if h.Location == nil {
		return time.UTC
	}
	return h.Location
}

// Validate checks start and end against the opening window. Only the hour
// of day is compared: a start at CloseHour:00 and an end at CloseHour:30 both
// pass, an end at CloseHour+1:00 does not. An end on the following day counts
// as hour 24 or later.
func (h BusinessHours) Validate(start, end time.Time) error {
	startHour := start.In(h.location()).Hour()
	endHour := end.In(h.location()).Hour()
	if h.DayKey(end) != h.DayKey(start) {
		endHour += 24
	}

	switch {
	case startHour < h.OpenHour:
		return &BusinessHoursError{Boundary: BoundaryStartBeforeOpen, Hour: startHour, Limit: h.OpenHour}
	case startHour > h.CloseHour:
		return &BusinessHoursError{Boundary: BoundaryStartAfterClose, Hour: startHour, Limit: h.CloseHour}
	case endHour > h.CloseHour:
		return &BusinessHoursError{Boundary: BoundaryEndAfterClose, Hour: endHour, Limit: h.CloseHour}
	}
	return nil
}

// DayWindow returns the first and last millisecond of t's local calendar day.
func (h BusinessHours) DayWindow(t time.Time) (time.Time, time.Time) {
	local := t.In(h.location())
	from := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, h.location())
	to := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), h.location())
	return from, to
}

// DayKey names t's local calendar day, e.g. "2025-03-15".
func (h BusinessHours) DayKey(t time.Time) string {
	return t.In(h.location()).Format(time.DateOnly)
}

var localLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseStartTime accepts RFC 3339 timestamps (fractional seconds optional)
// and offset-less date-times, which are read in the business location.
func (h BusinessHours) ParseStartTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, raw, h.location()); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimeFormat
}
