package scheduling

import (
	"fmt"
	"time"
)

// Slot is a proposed alternative booking window. Transient, returned to the
// caller only.
type Slot struct {
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Rationale string    `json:"rationale"`
}

// suggested slot length when proposing a window before a conflict
const suggestedSlotLength = time.Hour

// SuggestSlots proposes alternative windows around each conflicting booking:
// one ending MinGap before the booking starts (an hour long, clamped to the
// opening hour) and one starting MinGap after it ends, running to the closing
// hour. This is a neighborhood heuristic, not a free-interval search over the
// whole day. Suggestions are deduplicated by start time and never leave the
// operating window.
func SuggestSlots(conflicts []Conflict, cfg Config) []Slot {
	var slots []Slot
	seen := make(map[int64]bool)

	add := func(s Slot) {
		key := s.Start.Unix()
		if seen[key] {
			return
		}
		seen[key] = true
		slots = append(slots, s)
	}

	for _, c := range conflicts {
		booked := c.Against
		day := booked.Start.UTC().Truncate(24 * time.Hour)
		open := day.Add(time.Duration(cfg.OpenHour) * time.Hour)
		close := day.Add(time.Duration(cfg.CloseHour) * time.Hour)

		// Before the conflicting booking.
		end := booked.Start.Add(-cfg.MinGap)
		start := end.Add(-suggestedSlotLength)
		if start.Before(open) {
			start = open
		}
		if start.Before(end) && !end.After(close) {
			add(Slot{
				Start:     start,
				End:       end,
				Rationale: fmt.Sprintf("frees the room %d minutes before %q", int(cfg.MinGap.Minutes()), booked.Label),
			})
		}

		// After the conflicting booking.
		start = booked.End.Add(cfg.MinGap)
		if start.Before(close) && !start.Before(open) {
			add(Slot{
				Start:     start,
				End:       close,
				Rationale: fmt.Sprintf("starts %d minutes after %q", int(cfg.MinGap.Minutes()), booked.Label),
			})
		}
	}

	return slots
}
