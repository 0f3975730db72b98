package schedule

import (
	"fmt"
	"strconv"
	"strings"

	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

const (
	// DefaultGridSize is the clinic-wide slot granularity in minutes.
	DefaultGridSize = 30

	// MinutesPerDay bounds every TimePoint; a slot never rolls into the
	// next day.
	MinutesPerDay = 24 * 60
)

// TimePoint is a time of day expressed as minutes since midnight.
type TimePoint int

// NewTimePoint validates that minutes is a time of day.
func NewTimePoint(minutes int) (TimePoint, error) {
	if minutes < 0 || minutes >= MinutesPerDay {
		return 0, apperrors.InvalidTime(fmt.Sprintf("time %d outside [0, %d)", minutes, MinutesPerDay))
	}
	return TimePoint(minutes), nil
}

// ParseTimePoint parses user-supplied "HH:MM" text. Stored records are
// written only through this package, so free text must come through here
// before reaching any scheduling logic.
func ParseTimePoint(s string) (TimePoint, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, apperrors.InvalidTime(fmt.Sprintf("malformed time %q, want HH:MM", s))
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, apperrors.InvalidTime(fmt.Sprintf("malformed time %q, want HH:MM", s))
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, apperrors.InvalidTime(fmt.Sprintf("malformed time %q, want HH:MM", s))
	}
	if hours < 0 || hours > 23 || minutes < 0 || minutes > 59 {
		return 0, apperrors.InvalidTime(fmt.Sprintf("time %q out of range", s))
	}
	return TimePoint(hours*60 + minutes), nil
}

func (t TimePoint) Minutes() int {
	return int(t)
}

// String renders the point as "HH:MM", the wire format shared with the
// availability records.
func (t TimePoint) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// OnGrid reports whether the point sits on the booking grid.
func (t TimePoint) OnGrid(grid int) bool {
	return grid > 0 && int(t)%grid == 0
}

// Add returns the point m minutes later. The result must stay within the
// same day.
func (t TimePoint) Add(m int) (TimePoint, error) {
	r := int(t) + m
	if r < 0 || r >= MinutesPerDay {
		return 0, apperrors.InvalidTime(fmt.Sprintf("time %d+%d falls outside the day", int(t), m))
	}
	return TimePoint(r), nil
}

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start TimePoint `json:"start"`
	End   TimePoint `json:"end"`
}

// NewInterval validates Start < End.
func NewInterval(start, end TimePoint) (Interval, error) {
	if start >= end {
		return Interval{}, apperrors.InvalidTime(fmt.Sprintf("interval start %s not before end %s", start, end))
	}
	return Interval{Start: start, End: end}, nil
}

// Overlaps implements the half-open overlap rule: touching endpoints do not
// overlap, so back-to-back bookings are allowed. This is the single overlap
// definition used by both slot filtering and booking validation.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && iv.End > other.Start
}

// Contains reports whether t falls inside the interval.
func (iv Interval) Contains(t TimePoint) bool {
	return iv.Start <= t && t < iv.End
}
