package establishment

import (
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// weekdayNames maps time.Weekday to the keys used in opening hours.
var weekdayNames = [7]string{"dimanche", "lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

// WeekdayName returns the French name of a weekday as stored in opening hours.
func WeekdayName(d time.Weekday) string {
	return weekdayNames[d]
}

// Slot is an opening window, "HH:MM" to "HH:MM".
// A close time before the open time crosses midnight.
type Slot struct {
	Open  string `json:"open" yaml:"open"`
	Close string `json:"close" yaml:"close"`
}

// Day holds the opening state of one weekday.
type Day struct {
	IsOpen bool   `json:"isOpen" yaml:"isOpen"`
	Slots  []Slot `json:"slots" yaml:"slots"`
}

// Hours maps French weekday names (lundi..dimanche) to their schedule.
type Hours map[string]Day

// IsOpenAt reports whether the establishment is open at t (in t's location).
// Missing or unreadable data counts as open.
func (h Hours) IsOpenAt(t time.Time) bool {
	if len(h) == 0 {
		return true
	}
	now := t.Hour()*60 + t.Minute()

	yesterday := weekdayNames[(int(t.Weekday())+6)%7]
	if y, ok := h[yesterday]; ok && y.IsOpen && overnightTailCovers(y.Slots, now) {
		return true
	}

	day, ok := h[weekdayNames[t.Weekday()]]
	if !ok {
		return true
	}
	if !day.IsOpen {
		return false
	}
	if len(day.Slots) == 0 {
		return true
	}

	parsed := 0
	for _, s := range day.Slots {
		open, closeAt, ok := s.window()
		if !ok {
			continue
		}
		parsed++
		if now >= open && now < closeAt {
			return true
		}
	}
	return parsed == 0
}

// window returns the slot bounds in minutes since midnight, close adjusted past
// midnight when the slot wraps. Equal open and close times give an empty window.
func (s Slot) window() (open, closeAt int, ok bool) {
	open, ok = parseClock(s.Open)
	if !ok {
		return 0, 0, false
	}
	closeAt, ok = parseClock(s.Close)
	if !ok {
		return 0, 0, false
	}
	if closeAt < open {
		closeAt += minutesPerDay
	}
	return open, closeAt, true
}

// overnightTailCovers reports whether a slot started the previous day is still
// running at now.
func overnightTailCovers(slots []Slot, now int) bool {
	for _, s := range slots {
		open, closeAt, ok := s.window()
		if !ok || closeAt <= minutesPerDay {
			continue
		}
		if now+minutesPerDay >= open && now+minutesPerDay < closeAt {
			return true
		}
	}
	return false
}

// parseClock parses "HH:MM" (also "HHhMM") into minutes since midnight.
func parseClock(v string) (int, bool) {
	v = strings.TrimSpace(strings.ToLower(v))
	hh, mm, found := strings.Cut(v, ":")
	if !found {
		hh, mm, found = strings.Cut(v, "h")
	}
	if !found {
		return 0, false
	}
	if mm == "" {
		mm = "0"
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 24 {
		return 0, false
	}
	m, err := strconv.Atoi(mm)
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	if h == 24 && m != 0 {
		return 0, false
	}
	return h*60 + m, true
}
