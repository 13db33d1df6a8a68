package scraper

import (
	"fmt"
	"time"
)

// BusinessHours is the wall-clock window inside which sessions may run.
// Scraping outside human office hours is a fingerprint.
type BusinessHours struct {
	StartHour    int
	EndHour      int
	WeekdaysOnly bool
	Location     *time.Location
}

func NewBusinessHours(startHour, endHour int, weekdaysOnly bool, timezone string) (BusinessHours, error) {
	if startHour < 0 || startHour > 23 || endHour < 1 || endHour > 24 || startHour >= endHour {
		return BusinessHours{}, fmt.Errorf("invalid business hours %d..%d", startHour, endHour)
	}
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return BusinessHours{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return BusinessHours{
		StartHour:    startHour,
		EndHour:      endHour,
		WeekdaysOnly: weekdaysOnly,
		Location:     location,
	}, nil
}

// Within reports whether t falls inside the window. The end hour is
// exclusive: a 9..17 window admits 16:59 and rejects 17:00.
func (b BusinessHours) Within(t time.Time) bool {
	local := t.In(b.Location)
	if b.WeekdaysOnly {
		switch local.Weekday() {
		case time.Saturday, time.Sunday:
			return false
		}
	}
	hour := local.Hour()
	return hour >= b.StartHour && hour < b.EndHour
}
