package schedule

import "time"

// BusyInterval is a half-open [Start, End) window during which the
// owner's calendar is occupied.
type BusyInterval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Touching endpoints do not overlap, so a meeting ending at 10:00 leaves
// the 10:00 slot free.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Reconcile filters candidates down to slots that are genuinely open:
// a slot survives only if no confirmed meeting holds its ID and its
// window overlaps no busy interval. Either source excludes a slot on
// its own. The result is truncated to max when max > 0.
//
// Reconcile is pure and idempotent; callers that could not reach the
// calendar pass busy as nil and flag the response as degraded.
func Reconcile(candidates []Slot, bookedSlotIDs []string, busy []BusyInterval, max int) []Slot {
	booked := make(map[string]struct{}, len(bookedSlotIDs))
	for _, id := range bookedSlotIDs {
		booked[id] = struct{}{}
	}

	open := make([]Slot, 0, len(candidates))
	for _, slot := range candidates {
		if _, taken := booked[slot.ID]; taken {
			continue
		}
		if overlapsAny(slot, busy) {
			continue
		}
		open = append(open, slot)
		if max > 0 && len(open) == max {
			break
		}
	}
	return open
}

func overlapsAny(slot Slot, busy []BusyInterval) bool {
	end := slot.Start.Add(slot.Duration)
	for _, b := range busy {
		if Overlaps(slot.Start, end, b.Start, b.End) {
			return true
		}
	}
	return false
}
