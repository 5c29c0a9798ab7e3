package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mustParse(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := ParseTimestamp(s)
	assert.NoError(t, err)
	return ts
}

func interval(t *testing.T, start, end string) Interval {
	t.Helper()
	return Interval{
		Location: "Room A",
		Start:    mustParse(t, start),
		End:      mustParse(t, end),
		Label:    "Existing booking",
		Source:   SourceEvent,
	}
}

func TestCheckConflicts_DirectOverlap(t *testing.T) {
	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}
	candidate := interval(t, "2024-01-15T14:30:00", "2024-01-15T15:30:00")

	report := CheckConflicts(candidate, existing, DefaultConfig())

	assert.True(t, report.HasConflict)
	assert.True(t, report.HasDirectConflict)
	assert.False(t, report.HasGapConflict)
	assert.Len(t, report.Conflicts, 1)
	assert.Equal(t, DirectOverlap, report.Conflicts[0].Kind)
}

func TestCheckConflicts_PartialOverlapsAreDirect(t *testing.T) {
	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}

	cases := []struct {
		name       string
		start, end string
	}{
		{"candidate starts inside", "2024-01-15T15:00:00", "2024-01-15T17:00:00"},
		{"candidate ends inside", "2024-01-15T13:00:00", "2024-01-15T14:30:00"},
		{"candidate envelops", "2024-01-15T13:00:00", "2024-01-15T17:00:00"},
		{"candidate contained", "2024-01-15T14:30:00", "2024-01-15T15:00:00"},
		{"identical window", "2024-01-15T14:00:00", "2024-01-15T16:00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			report := CheckConflicts(interval(t, tc.start, tc.end), existing, DefaultConfig())
			assert.True(t, report.HasDirectConflict)
			assert.Equal(t, DirectOverlap, report.Conflicts[0].Kind)
		})
	}
}

func TestCheckConflicts_InsufficientGapAfter(t *testing.T) {
	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}
	candidate := interval(t, "2024-01-15T16:05:00", "2024-01-15T17:00:00")

	report := CheckConflicts(candidate, existing, DefaultConfig())

	assert.True(t, report.HasConflict)
	assert.False(t, report.HasDirectConflict)
	assert.True(t, report.HasGapConflict)
	assert.Len(t, report.Conflicts, 1)
	assert.Equal(t, InsufficientGap, report.Conflicts[0].Kind)
	assert.Equal(t, 5, report.Conflicts[0].GapMinutes)
}

func TestCheckConflicts_InsufficientGapBefore(t *testing.T) {
	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}
	candidate := interval(t, "2024-01-15T12:00:00", "2024-01-15T13:50:00")

	report := CheckConflicts(candidate, existing, DefaultConfig())

	assert.True(t, report.HasGapConflict)
	assert.Equal(t, InsufficientGap, report.Conflicts[0].Kind)
	assert.Equal(t, 10, report.Conflicts[0].GapMinutes)
}

func TestCheckConflicts_SufficientGapIsClean(t *testing.T) {
	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}
	candidate := interval(t, "2024-01-15T16:20:00", "2024-01-15T17:00:00")

	report := CheckConflicts(candidate, existing, DefaultConfig())

	assert.False(t, report.HasConflict)
	assert.Empty(t, report.Conflicts)
	assert.Empty(t, report.Suggestions)
}

func TestCheckConflicts_ExactMinGapIsClean(t *testing.T) {
	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}
	candidate := interval(t, "2024-01-15T16:15:00", "2024-01-15T17:00:00")

	report := CheckConflicts(candidate, existing, DefaultConfig())

	assert.False(t, report.HasConflict)
}

func TestCheckConflicts_BackToBackIsGapConflict(t *testing.T) {
	// Touching endpoints do not overlap but leave a zero-minute gap.
	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}
	candidate := interval(t, "2024-01-15T16:00:00", "2024-01-15T17:00:00")

	report := CheckConflicts(candidate, existing, DefaultConfig())

	assert.False(t, report.HasDirectConflict)
	assert.True(t, report.HasGapConflict)
	assert.Equal(t, 0, report.Conflicts[0].GapMinutes)
}

func TestCheckConflicts_MixedConflictKinds(t *testing.T) {
	existing := []Interval{
		interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00"),
		interval(t, "2024-01-15T17:05:00", "2024-01-15T18:00:00"),
		interval(t, "2024-01-15T10:00:00", "2024-01-15T11:00:00"),
	}
	candidate := interval(t, "2024-01-15T15:30:00", "2024-01-15T17:00:00")

	report := CheckConflicts(candidate, existing, DefaultConfig())

	assert.True(t, report.HasDirectConflict)
	assert.True(t, report.HasGapConflict)
	assert.Len(t, report.Conflicts, 2)
}

func TestCheckConflicts_RequestStatusCarriedThrough(t *testing.T) {
	booked := interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")
	booked.Source = SourceRequest
	booked.Status = "APPROVED"

	candidate := interval(t, "2024-01-15T14:30:00", "2024-01-15T15:30:00")
	report := CheckConflicts(candidate, []Interval{booked}, DefaultConfig())

	assert.Equal(t, SourceRequest, report.Conflicts[0].Against.Source)
	assert.Equal(t, "APPROVED", report.Conflicts[0].Against.Status)
}

func TestCheckConflicts_Idempotent(t *testing.T) {
	existing := []Interval{
		interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00"),
		interval(t, "2024-01-15T18:00:00", "2024-01-15T19:00:00"),
	}
	candidate := interval(t, "2024-01-15T15:00:00", "2024-01-15T17:55:00")

	first := CheckConflicts(candidate, existing, DefaultConfig())
	second := CheckConflicts(candidate, existing, DefaultConfig())

	assert.Equal(t, first, second)
}

func TestCheckConflicts_CustomMinGap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinGap = 30 * time.Minute

	existing := []Interval{interval(t, "2024-01-15T14:00:00", "2024-01-15T16:00:00")}
	candidate := interval(t, "2024-01-15T16:20:00", "2024-01-15T17:00:00")

	report := CheckConflicts(candidate, existing, cfg)

	assert.True(t, report.HasGapConflict)
	assert.Equal(t, 20, report.Conflicts[0].GapMinutes)
}

func TestParseTimestamp_NaiveTreatedAsUTC(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-15T14:00:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC), ts)
}

func TestParseTimestamp_OffsetNormalizedToUTC(t *testing.T) {
	ts, err := ParseTimestamp("2024-01-15T14:00:00-03:00")
	assert.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 15, 17, 0, 0, 0, time.UTC), ts)
}

func TestParseTimestamp_Invalid(t *testing.T) {
	_, err := ParseTimestamp("not-a-timestamp")
	assert.Error(t, err)

	_, err = ParseTimestamp("")
	assert.Error(t, err)
}
