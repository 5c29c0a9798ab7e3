package scheduling

// ConflictKind classifies how a candidate interval collides with an
// existing booking.
type ConflictKind string

const (
	// DirectOverlap means the two intervals share at least one instant.
	// Never automatically approvable.
	DirectOverlap ConflictKind = "DIRECT_OVERLAP"
	// InsufficientGap means the intervals do not overlap but sit closer
	// together than the minimum required buffer.
	InsufficientGap ConflictKind = "INSUFFICIENT_GAP"
)

// Conflict is one collision between the candidate and an existing booking.
// Produced transiently per check, never persisted.
type Conflict struct {
	Kind       ConflictKind `json:"kind"`
	Against    Interval     `json:"against"`
	GapMinutes int          `json:"gap_minutes,omitempty"`
}

// Report aggregates the outcome of one conflict check.
type Report struct {
	Candidate         Interval   `json:"candidate"`
	HasConflict       bool       `json:"has_conflict"`
	HasDirectConflict bool       `json:"has_direct_conflict"`
	HasGapConflict    bool       `json:"has_gap_conflict"`
	Conflicts         []Conflict `json:"conflicts"`
	Suggestions       []Slot     `json:"suggestions,omitempty"`
}

// CheckConflicts decides overlap/gap status between one candidate interval
// and the existing bookings at the same location. It is a pure function of
// its inputs: identical calls yield identical reports. Callers are expected
// to pre-filter existing intervals to the candidate's location and calendar
// date.
func CheckConflicts(candidate Interval, existing []Interval, cfg Config) Report {
	report := Report{Candidate: candidate, Conflicts: []Conflict{}}

	for _, booked := range existing {
		if candidate.Overlaps(booked) {
			report.Conflicts = append(report.Conflicts, Conflict{
				Kind:    DirectOverlap,
				Against: booked,
			})
			report.HasDirectConflict = true
			continue
		}
		gap := candidate.GapTo(booked)
		if gap < cfg.MinGap {
			report.Conflicts = append(report.Conflicts, Conflict{
				Kind:       InsufficientGap,
				Against:    booked,
				GapMinutes: int(gap.Minutes()),
			})
			report.HasGapConflict = true
		}
	}

	report.HasConflict = report.HasDirectConflict || report.HasGapConflict
	if report.HasConflict {
		report.Suggestions = SuggestSlots(report.Conflicts, cfg)
	}
	return report
}
