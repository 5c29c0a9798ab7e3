package scheduling

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind tells which table a booked interval was derived from.
type SourceKind string

const (
	SourceEvent   SourceKind = "EVENT"
	SourceRequest SourceKind = "REQUEST"
)

// Interval is a booked (or candidate) time window at a location. It is
// derived from persisted rows at check time and never stored itself.
type Interval struct {
	Location string     `json:"location"`
	Start    time.Time  `json:"start"`
	End      time.Time  `json:"end"`
	Label    string     `json:"label"`
	Source   SourceKind `json:"source_kind"`
	// Status is only set for request-sourced intervals.
	Status string `json:"status,omitempty"`
}

// Overlaps reports whether the two intervals share at least one instant.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && iv.End.After(other.Start)
}

// GapTo returns the gap between two non-overlapping intervals, measured
// between the end of the earlier one and the start of the later one.
// Result is negative when the intervals overlap.
func (iv Interval) GapTo(other Interval) time.Duration {
	if iv.End.After(other.Start) {
		return iv.Start.Sub(other.End)
	}
	return other.Start.Sub(iv.End)
}

// timestamp layouts accepted from clients, tried in order
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// ParseTimestamp parses a client-supplied timestamp. A value without a
// timezone suffix is treated as UTC; the result is always in UTC so that
// interval comparisons happen in absolute time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", s)
}
