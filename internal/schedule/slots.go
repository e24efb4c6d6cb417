package schedule

import (
	"strconv"
	"time"
)

// Slot is a bookable one-hour window. ID is the slot start encoded as
// Unix milliseconds in decimal, which also serves as the booking
// idempotency key.
type Slot struct {
	ID       string        `json:"id"`
	Start    time.Time     `json:"start"`
	Duration time.Duration `json:"duration"`
}

// BusinessHours describes when slots may be offered.
type BusinessHours struct {
	// StartHour is the first slot hour of the day (inclusive).
	StartHour int
	// EndHour is the close of business; the last slot starts one hour
	// before it.
	EndHour int
	// SameDayCutoffHour drops the whole current day once local time
	// reaches this hour.
	SameDayCutoffHour int
	// Location is the calendar timezone slots are aligned to.
	Location *time.Location
}

// DefaultBusinessHours returns the 09:00-18:00 weekday policy in loc.
func DefaultBusinessHours(loc *time.Location) BusinessHours {
	if loc == nil {
		loc = time.UTC
	}
	return BusinessHours{
		StartHour:         9,
		EndHour:           18,
		SameDayCutoffHour: 17,
		Location:          loc,
	}
}

// SlotID encodes a start time as the canonical slot identifier.
func SlotID(start time.Time) string {
	return strconv.FormatInt(start.UnixMilli(), 10)
}

// GenerateSlots returns every candidate slot in [rangeStart, rangeEnd)
// under hours, ascending by start. Weekends are skipped, the current day
// is skipped once now passes the same-day cutoff, and slots that do not
// start strictly after now are dropped. The result ignores existing
// bookings and calendar busy time; see Reconcile.
func GenerateSlots(rangeStart, rangeEnd, now time.Time, hours BusinessHours) []Slot {
	loc := hours.Location
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)

	var slots []Slot
	day := time.Date(rangeStart.In(loc).Year(), rangeStart.In(loc).Month(), rangeStart.In(loc).Day(), 0, 0, 0, 0, loc)
	for ; day.Before(rangeEnd.In(loc)); day = day.AddDate(0, 0, 1) {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if sameDay(day, now) && now.Hour() >= hours.SameDayCutoffHour {
			continue
		}
		for hour := hours.StartHour; hour < hours.EndHour; hour++ {
			start := time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, loc)
			if !start.After(now) {
				continue
			}
			if start.Before(rangeStart) || !start.Before(rangeEnd) {
				continue
			}
			slots = append(slots, Slot{
				ID:       SlotID(start),
				Start:    start,
				Duration: time.Hour,
			})
		}
	}
	return slots
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
