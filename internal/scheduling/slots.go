// Package scheduling builds bookable appointment slots for a service day
// from weekly opening hours, per-date overrides and break windows. Like the
// form engine it is pure: malformed windows are skipped, impossible
// configurations produce an empty slot list.
package scheduling

import (
	"strconv"
	"strings"
	"time"
)

// Window is a same-day time range in "HH:MM" 24h notation, end exclusive.
type Window struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// WeeklyHours maps a weekday to its opening windows. A missing or empty
// entry means closed.
type WeeklyHours map[time.Weekday][]Window

// DateOverride replaces a single date's opening hours. Closed shuts the day
// regardless of Windows.
type DateOverride struct {
	Closed  bool     `json:"closed"`
	Windows []Window `json:"windows,omitempty"`
}

// Overrides is keyed by date in "2006-01-02" form.
type Overrides map[string]DateOverride

// Slot is one bookable appointment of fixed duration.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Available bool      `json:"available"`
}

// Schedule is a service's bookable-time configuration as stored on the
// service offering record.
type Schedule struct {
	Hours     WeeklyHours   `json:"hours"`
	Overrides Overrides     `json:"overrides,omitempty"`
	Breaks    []Window      `json:"breaks,omitempty"`
	Duration  time.Duration `json:"duration"`
	Buffer    time.Duration `json:"buffer,omitempty"`
}

// BuildSlots derives the slot list for one calendar day. Opening windows
// come from the date override when present, else from the weekly hours for
// that weekday. Break windows are carved out, then the remaining ranges are
// cut into duration-sized slots separated by the buffer. Slots whose start
// matches a booked time are marked unavailable rather than removed, so
// callers can render them as taken.
func BuildSlots(day time.Time, sched Schedule, booked []time.Time) []Slot {
	if sched.Duration <= 0 {
		return []Slot{}
	}

	windows := sched.Hours[day.Weekday()]
	if ov, ok := sched.Overrides[day.Format("2006-01-02")]; ok {
		if ov.Closed {
			return []Slot{}
		}
		windows = ov.Windows
	}

	takenStarts := make(map[time.Time]bool, len(booked))
	for _, b := range booked {
		takenStarts[b.Truncate(time.Minute)] = true
	}

	slots := []Slot{}
	for _, w := range windows {
		start, ok := atMinutes(day, w.Start)
		if !ok {
			continue
		}
		end, ok := atMinutes(day, w.End)
		if !ok || !end.After(start) {
			continue
		}

		for cursor := start; !cursor.Add(sched.Duration).After(end); cursor = cursor.Add(sched.Duration + sched.Buffer) {
			slotEnd := cursor.Add(sched.Duration)
			if overlapsBreak(day, cursor, slotEnd, sched.Breaks) {
				continue
			}
			slots = append(slots, Slot{
				Start:     cursor,
				End:       slotEnd,
				Available: !takenStarts[cursor.Truncate(time.Minute)],
			})
		}
	}
	return slots
}

func overlapsBreak(day, start, end time.Time, breaks []Window) bool {
	for _, br := range breaks {
		bs, ok := atMinutes(day, br.Start)
		if !ok {
			continue
		}
		be, ok := atMinutes(day, br.End)
		if !ok || !be.After(bs) {
			continue
		}
		if start.Before(be) && end.After(bs) {
			return true
		}
	}
	return false
}

// atMinutes anchors an "HH:MM" clock time onto the given day.
func atMinutes(day time.Time, clock string) (time.Time, bool) {
	parts := strings.SplitN(strings.TrimSpace(clock), ":", 2)
	if len(parts) != 2 {
		return time.Time{}, false
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return time.Time{}, false
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, day.Location()), true
}
