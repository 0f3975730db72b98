package schedule

import (
	"fmt"

	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

// GenerateSlots produces every valid appointment start for one day, in
// chronological order. A start p is valid iff the whole [p, p+duration)
// range sits inside one contiguous run of open grid points: every grid point
// covered by the slot must itself be open, which rejects slots that would
// straddle a break or run past the working window even when p looks open.
//
// Duration does not have to be a multiple of the grid; an open point extends
// the window one grid step past itself, so checking the covered grid points
// also bounds an unaligned end.
func GenerateSlots(openPoints []TimePoint, durationMinutes, grid int) ([]TimePoint, error) {
	if durationMinutes <= 0 {
		return nil, apperrors.InvalidService(fmt.Sprintf("service duration %d must be positive", durationMinutes))
	}
	if grid <= 0 {
		return nil, apperrors.InvalidTime(fmt.Sprintf("invalid grid size %d", grid))
	}

	open := make(map[TimePoint]struct{}, len(openPoints))
	for _, p := range openPoints {
		open[p] = struct{}{}
	}

	var slots []TimePoint
	for _, p := range openPoints {
		if !p.OnGrid(grid) {
			continue
		}
		if int(p)+durationMinutes > MinutesPerDay {
			continue
		}
		fits := true
		for q := p; q < p+TimePoint(durationMinutes); q += TimePoint(grid) {
			if _, ok := open[q]; !ok {
				fits = false
				break
			}
		}
		if fits {
			slots = append(slots, p)
		}
	}
	return slots, nil
}

// FilterConflicts removes candidates whose [p, p+duration) interval overlaps
// any busy interval. Busy intervals are the existing non-cancelled
// appointments for the doctor and date. Pure; candidates order is preserved.
func FilterConflicts(candidates []TimePoint, durationMinutes int, busy []Interval) []TimePoint {
	free := make([]TimePoint, 0, len(candidates))
	for _, p := range candidates {
		slot := Interval{Start: p, End: p + TimePoint(durationMinutes)}
		conflict := false
		for _, b := range busy {
			if slot.Overlaps(b) {
				conflict = true
				break
			}
		}
		if !conflict {
			free = append(free, p)
		}
	}
	return free
}
