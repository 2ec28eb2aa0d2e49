package establishment

import (
	"testing"
	"time"
)

// 2026-10-16 is a Friday.
func at(day, hour, minute int) time.Time {
	return time.Date(2026, time.October, day, hour, minute, 0, 0, time.UTC)
}

func TestWeekdayName(t *testing.T) {
	if got := WeekdayName(time.Friday); got != "vendredi" {
		t.Fatalf("want vendredi, got %q", got)
	}
	if got := WeekdayName(time.Sunday); got != "dimanche" {
		t.Fatalf("want dimanche, got %q", got)
	}
}

func TestIsOpenAt_MissingDataIsOpen(t *testing.T) {
	var h Hours
	if !h.IsOpenAt(at(16, 3, 0)) {
		t.Fatal("nil hours must count as open")
	}
	h = Hours{"lundi": {IsOpen: true}}
	if !h.IsOpenAt(at(16, 3, 0)) {
		t.Fatal("missing weekday must count as open")
	}
}

func TestIsOpenAt_ClosedDay(t *testing.T) {
	h := Hours{"vendredi": {IsOpen: false, Slots: []Slot{{Open: "10:00", Close: "18:00"}}}}
	if h.IsOpenAt(at(16, 12, 0)) {
		t.Fatal("closed day must not be open")
	}
}

func TestIsOpenAt_Slots(t *testing.T) {
	h := Hours{"vendredi": {IsOpen: true, Slots: []Slot{
		{Open: "11:30", Close: "14:00"},
		{Open: "19:00", Close: "23:00"},
	}}}

	tests := []struct {
		name       string
		hour, mins int
		want       bool
	}{
		{"before opening", 9, 0, false},
		{"at opening", 11, 30, true},
		{"lunch", 13, 59, true},
		{"at closing", 14, 0, false},
		{"afternoon gap", 16, 0, false},
		{"dinner", 21, 15, true},
		{"late", 23, 30, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := h.IsOpenAt(at(16, tt.hour, tt.mins)); got != tt.want {
				t.Errorf("IsOpenAt(%02d:%02d) = %v, want %v", tt.hour, tt.mins, got, tt.want)
			}
		})
	}
}

func TestIsOpenAt_CrossingMidnight(t *testing.T) {
	h := Hours{
		"vendredi": {IsOpen: true, Slots: []Slot{{Open: "18:00", Close: "02:00"}}},
		"samedi":   {IsOpen: false},
	}
	if !h.IsOpenAt(at(16, 23, 45)) {
		t.Error("friday 23:45 must be open")
	}
	if h.IsOpenAt(at(16, 17, 0)) {
		t.Error("friday 17:00 must be closed")
	}
	// Saturday is closed but friday's slot still runs until 02:00.
	if !h.IsOpenAt(at(17, 1, 30)) {
		t.Error("saturday 01:30 must be open via friday's overnight slot")
	}
	if h.IsOpenAt(at(17, 2, 30)) {
		t.Error("saturday 02:30 must be closed")
	}
}

func TestIsOpenAt_EqualOpenAndCloseIsEmpty(t *testing.T) {
	h := Hours{
		"jeudi":    {IsOpen: true, Slots: []Slot{{Open: "10:00", Close: "10:00"}}},
		"vendredi": {IsOpen: true, Slots: []Slot{{Open: "10:00", Close: "10:00"}}},
	}
	for _, tm := range []time.Time{at(16, 10, 0), at(16, 15, 0), at(16, 9, 59), at(16, 2, 0)} {
		if h.IsOpenAt(tm) {
			t.Errorf("%s must be closed: a zero-length slot is not a 24h window", tm.Format("15:04"))
		}
	}
}

func TestIsOpenAt_OpenDayWithoutSlots(t *testing.T) {
	h := Hours{"vendredi": {IsOpen: true}}
	if !h.IsOpenAt(at(16, 4, 0)) {
		t.Fatal("open day without slots must count as open")
	}
}

func TestIsOpenAt_MalformedSlotsAreOpen(t *testing.T) {
	h := Hours{"vendredi": {IsOpen: true, Slots: []Slot{{Open: "midi", Close: "??"}}}}
	if !h.IsOpenAt(at(16, 4, 0)) {
		t.Fatal("unreadable slots must count as open")
	}
}

func TestIsOpenAt_AlternativeClockFormat(t *testing.T) {
	h := Hours{"vendredi": {IsOpen: true, Slots: []Slot{{Open: "9h", Close: "12h30"}}}}
	if !h.IsOpenAt(at(16, 12, 0)) {
		t.Error("12:00 must be open for 9h-12h30")
	}
	if h.IsOpenAt(at(16, 12, 30)) {
		t.Error("12:30 must be closed for 9h-12h30")
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:05", 545, true},
		{"24:00", 1440, true},
		{"18h", 1080, true},
		{"24:30", 0, false},
		{"25:00", 0, false},
		{"12:60", 0, false},
		{"", 0, false},
		{"noon", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseClock(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("parseClock(%q) = (%d, %v), want (%d, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
