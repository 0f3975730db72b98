package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

// points enumerates the open grid points of [start, end) on a 30-minute grid.
func points(start, end TimePoint) []TimePoint {
	var ps []TimePoint
	for t := start; t < end; t += 30 {
		ps = append(ps, t)
	}
	return ps
}

func times(ps []TimePoint) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.String())
	}
	return out
}

func TestGenerateSlotsGridAlignedDuration(t *testing.T) {
	// 09:00-12:00 window, 30 minute service: every grid point is a start.
	open := points(540, 720)

	slots, err := GenerateSlots(open, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, times(slots))
}

func TestGenerateSlotsUnalignedDuration(t *testing.T) {
	// A 45 minute service on a 30 minute grid still starts on grid points,
	// and the last start leaves room for the full 45 minutes: 11:00-11:45
	// fits inside the window that ends at 12:00, 11:30-12:15 does not.
	open := points(540, 720)

	slots, err := GenerateSlots(open, 45, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00"}, times(slots))
}

func TestGenerateSlotsRespectsBreaks(t *testing.T) {
	// 09:00-17:00 with a 12:00-13:00 lunch break. A 60 minute service must
	// not straddle the break: 11:30 would cover 11:30-12:30, so the last
	// morning start is 11:00.
	open := append(points(540, 720), points(780, 1020)...)

	slots, err := GenerateSlots(open, 60, 30)
	require.NoError(t, err)

	assert.NotContains(t, times(slots), "11:30")
	assert.NotContains(t, times(slots), "12:00")
	assert.NotContains(t, times(slots), "12:30")
	assert.Contains(t, times(slots), "11:00")
	assert.Contains(t, times(slots), "13:00")
	assert.Contains(t, times(slots), "16:00")
	assert.NotContains(t, times(slots), "16:30")
}

func TestGenerateSlotsSkipsOffGridPoints(t *testing.T) {
	open := []TimePoint{540, 555, 570}

	slots, err := GenerateSlots(open, 30, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30"}, times(slots))
}

func TestGenerateSlotsNeverCrossesMidnight(t *testing.T) {
	open := points(1380, 1440)

	slots, err := GenerateSlots(open, 60, 30)
	require.NoError(t, err)
	assert.Equal(t, []string{"23:00"}, times(slots))
}

func TestGenerateSlotsEmptyTemplate(t *testing.T) {
	slots, err := GenerateSlots(nil, 30, 30)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsInvalidInputs(t *testing.T) {
	_, err := GenerateSlots(points(540, 720), 0, 30)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidService))

	_, err = GenerateSlots(points(540, 720), -15, 30)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidService))

	_, err = GenerateSlots(points(540, 720), 30, 0)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTime))
}

func TestFilterConflicts(t *testing.T) {
	candidates := []TimePoint{540, 570, 600, 630, 660}

	// One existing booking 10:00-10:30 removes only the 10:00 start for a
	// 30 minute service; 09:30 and 10:30 stay bookable back to back.
	busy := []Interval{{Start: 600, End: 630}}

	free := FilterConflicts(candidates, 30, busy)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00"}, times(free))
}

func TestFilterConflictsLongerService(t *testing.T) {
	candidates := []TimePoint{540, 570, 600, 630, 660}

	// A 60 minute service also loses the start one grid step before the
	// booking, since 09:30-10:30 would overlap 10:00-10:30.
	busy := []Interval{{Start: 600, End: 630}}

	free := FilterConflicts(candidates, 60, busy)
	assert.Equal(t, []string{"09:00", "10:30", "11:00"}, times(free))
}

func TestFilterConflictsNoBusy(t *testing.T) {
	candidates := []TimePoint{540, 570}
	free := FilterConflicts(candidates, 30, nil)
	assert.Equal(t, candidates, free)
}

func TestFilterConflictsIsPure(t *testing.T) {
	candidates := []TimePoint{540, 570, 600}
	busy := []Interval{{Start: 570, End: 600}}

	FilterConflicts(candidates, 30, busy)
	assert.Equal(t, []TimePoint{540, 570, 600}, candidates)
}
