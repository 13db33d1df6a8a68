package scraper

import (
	"testing"
	"time"
)

func mustHours(t *testing.T, start, end int, weekdaysOnly bool) BusinessHours {
	t.Helper()
	hours, err := NewBusinessHours(start, end, weekdaysOnly, "UTC")
	if err != nil {
		t.Fatalf("business hours: %v", err)
	}
	return hours
}

func TestBusinessHoursWindow(t *testing.T) {
	hours := mustHours(t, 9, 17, false)

	// 2026-03-04 is a Wednesday.
	cases := []struct {
		hour int
		want bool
	}{
		{8, false},
		{9, true},
		{16, true},
		{17, false},
		{22, false},
	}
	for _, c := range cases {
		at := time.Date(2026, 3, 4, c.hour, 30, 0, 0, time.UTC)
		if got := hours.Within(at); got != c.want {
			t.Fatalf("Within(%02d:30): want %v got %v", c.hour, c.want, got)
		}
	}
}

func TestBusinessHoursWeekdaysOnly(t *testing.T) {
	hours := mustHours(t, 9, 17, true)

	saturday := time.Date(2026, 3, 7, 11, 0, 0, 0, time.UTC)
	if hours.Within(saturday) {
		t.Fatalf("saturday should be outside the window")
	}
	monday := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)
	if !hours.Within(monday) {
		t.Fatalf("monday should be inside the window")
	}
}

func TestBusinessHoursRejectsBadConfig(t *testing.T) {
	if _, err := NewBusinessHours(17, 9, false, "UTC"); err == nil {
		t.Fatalf("inverted window should be rejected")
	}
	if _, err := NewBusinessHours(9, 17, false, "Not/AZone"); err == nil {
		t.Fatalf("bad timezone should be rejected")
	}
}
