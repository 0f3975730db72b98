package schedule

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

// AvailabilityRecord is one persisted row of a doctor's weekly template:
// a single open grid point on a given weekday. The full set for a doctor is
// replaced wholesale whenever the schedule is saved.
type AvailabilityRecord struct {
	DoctorID    uuid.UUID `db:"doctor_id" json:"doctor_id"`
	DayOfWeek   int       `db:"day_of_week" json:"day_of_week"`
	Time        TimePoint `db:"time_minutes" json:"time"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
}

// DaySchedule is the display-side view of one weekday: a contiguous working
// window minus declared breaks. It is derived from the flat point set and is
// never the source of truth; persistence always stores the points.
type DaySchedule struct {
	DayOfWeek int        `json:"day_of_week"`
	Enabled   bool       `json:"enabled"`
	Start     TimePoint  `json:"start_time"`
	End       TimePoint  `json:"end_time"`
	Breaks    []Interval `json:"breaks,omitempty"`
}

// WeekTemplate maps day-of-week (0=Sunday) to that day's sorted open points.
type WeekTemplate map[int][]TimePoint

// OpenPointsFromRecords groups a doctor's availability rows into a
// WeekTemplate. Rows for other doctors, unavailable rows and duplicate
// (day, time) pairs are dropped.
func OpenPointsFromRecords(records []AvailabilityRecord, doctorID uuid.UUID) WeekTemplate {
	seen := make(map[int]map[TimePoint]struct{})
	for _, rec := range records {
		if rec.DoctorID != doctorID || !rec.IsAvailable {
			continue
		}
		if rec.DayOfWeek < 0 || rec.DayOfWeek > 6 {
			continue
		}
		if seen[rec.DayOfWeek] == nil {
			seen[rec.DayOfWeek] = make(map[TimePoint]struct{})
		}
		seen[rec.DayOfWeek][rec.Time] = struct{}{}
	}

	template := make(WeekTemplate, len(seen))
	for day, points := range seen {
		sorted := make([]TimePoint, 0, len(points))
		for p := range points {
			sorted = append(sorted, p)
		}
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
		template[day] = sorted
	}
	return template
}

// ToDaySchedule reconstructs a working window with breaks from a sorted open
// point set. The window end is one grid step past the last open point, since
// an open point marks a bookable start. Gaps wider than one grid step become
// breaks. The reconstruction is lossy for irregular point patterns; it is a
// UI convenience only.
func ToDaySchedule(dayOfWeek int, openPoints []TimePoint, grid int) DaySchedule {
	if len(openPoints) == 0 {
		return DaySchedule{DayOfWeek: dayOfWeek, Enabled: false}
	}

	sched := DaySchedule{
		DayOfWeek: dayOfWeek,
		Enabled:   true,
		Start:     openPoints[0],
		End:       openPoints[len(openPoints)-1] + TimePoint(grid),
	}
	for i := 1; i < len(openPoints); i++ {
		gapStart := openPoints[i-1] + TimePoint(grid)
		gapEnd := openPoints[i]
		if gapEnd > gapStart {
			sched.Breaks = append(sched.Breaks, Interval{Start: gapStart, End: gapEnd})
		}
	}
	return sched
}

// FromDaySchedule enumerates the open grid points of a day schedule: every
// grid point from Start up to but excluding End that does not fall inside a
// break. This is the authoritative direction used when a doctor saves their
// schedule.
func FromDaySchedule(sched DaySchedule, grid int) ([]TimePoint, error) {
	if !sched.Enabled {
		return nil, nil
	}
	if grid <= 0 {
		return nil, apperrors.InvalidTime(fmt.Sprintf("invalid grid size %d", grid))
	}
	if sched.Start >= sched.End {
		return nil, apperrors.InvalidTime(fmt.Sprintf("day %d: start %s not before end %s", sched.DayOfWeek, sched.Start, sched.End))
	}
	if !sched.Start.OnGrid(grid) || !sched.End.OnGrid(grid) {
		return nil, apperrors.InvalidTime(fmt.Sprintf("day %d: window %s-%s not grid-aligned", sched.DayOfWeek, sched.Start, sched.End))
	}
	if err := validateBreaks(sched, grid); err != nil {
		return nil, err
	}

	var points []TimePoint
	for t := sched.Start; t < sched.End; t += TimePoint(grid) {
		if inBreak(t, sched.Breaks) {
			continue
		}
		points = append(points, t)
	}
	return points, nil
}

func validateBreaks(sched DaySchedule, grid int) error {
	breaks := make([]Interval, len(sched.Breaks))
	copy(breaks, sched.Breaks)
	sort.Slice(breaks, func(i, j int) bool { return breaks[i].Start < breaks[j].Start })

	for i, b := range breaks {
		if b.Start >= b.End {
			return apperrors.InvalidTime(fmt.Sprintf("break %s-%s is empty", b.Start, b.End))
		}
		if b.Start < sched.Start || b.End > sched.End {
			return apperrors.InvalidTime(fmt.Sprintf("break %s-%s outside window %s-%s", b.Start, b.End, sched.Start, sched.End))
		}
		if !b.Start.OnGrid(grid) || !b.End.OnGrid(grid) {
			return apperrors.InvalidTime(fmt.Sprintf("break %s-%s not grid-aligned", b.Start, b.End))
		}
		if i > 0 && b.Overlaps(breaks[i-1]) {
			return apperrors.InvalidTime(fmt.Sprintf("breaks %s-%s and %s-%s overlap", breaks[i-1].Start, breaks[i-1].End, b.Start, b.End))
		}
	}
	return nil
}

func inBreak(t TimePoint, breaks []Interval) bool {
	for _, b := range breaks {
		if b.Contains(t) {
			return true
		}
	}
	return false
}
