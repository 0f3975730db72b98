package availability

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/schedule"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

type fakeAvailability struct {
	records  []schedule.AvailabilityRecord
	replaced [][]schedule.AvailabilityRecord
}

func (f *fakeAvailability) GetForDoctor(context.Context, uuid.UUID) ([]schedule.AvailabilityRecord, error) {
	return f.records, nil
}

func (f *fakeAvailability) GetForDay(_ context.Context, _ uuid.UUID, dayOfWeek int) ([]schedule.AvailabilityRecord, error) {
	var out []schedule.AvailabilityRecord
	for _, r := range f.records {
		if r.DayOfWeek == dayOfWeek {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAvailability) ReplaceForDoctor(_ context.Context, _ uuid.UUID, records []schedule.AvailabilityRecord) error {
	f.records = records
	f.replaced = append(f.replaced, records)
	return nil
}

type fakeDoctors struct {
	known map[uuid.UUID]bool
}

func (f *fakeDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	if !f.known[id] {
		return nil, apperrors.InvalidDoctor(nil)
	}
	return &model.Doctor{Name: "Dr. Adams"}, nil
}

func (f *fakeDoctors) List(context.Context) ([]*model.Doctor, error) { return nil, nil }

type fakeCache struct {
	invalidated []uuid.UUID
}

func (f *fakeCache) InvalidateDoctor(_ context.Context, doctorID uuid.UUID) {
	f.invalidated = append(f.invalidated, doctorID)
}

func newFixture() (*Service, *fakeAvailability, *fakeCache, uuid.UUID) {
	doctorID := uuid.New()
	repo := &fakeAvailability{}
	cache := &fakeCache{}
	svc := NewService(repo, &fakeDoctors{known: map[uuid.UUID]bool{doctorID: true}}, cache, nil, 30, 480, 1200)
	return svc, repo, cache, doctorID
}

func slots(day int, available bool, times ...string) []model.AvailabilitySlotInput {
	out := make([]model.AvailabilitySlotInput, 0, len(times))
	for _, tm := range times {
		out = append(out, model.AvailabilitySlotInput{DayOfWeek: day, Time: tm, IsAvailable: available})
	}
	return out
}

func TestReplaceWeeklySchedule(t *testing.T) {
	svc, repo, cache, doctorID := newFixture()

	req := &model.UpdateAvailabilityRequest{
		Slots: slots(1, true, "09:00", "09:30", "10:00"),
	}

	require.NoError(t, svc.ReplaceWeeklySchedule(context.Background(), doctorID, req))

	require.Len(t, repo.replaced, 1)
	require.Len(t, repo.records, 3)
	assert.Equal(t, schedule.TimePoint(540), repo.records[0].Time)
	assert.Equal(t, doctorID, repo.records[0].DoctorID)
	assert.True(t, repo.records[0].IsAvailable)

	assert.Equal(t, []uuid.UUID{doctorID}, cache.invalidated)
}

func TestReplaceWeeklyScheduleDropsUnavailable(t *testing.T) {
	svc, repo, _, doctorID := newFixture()

	req := &model.UpdateAvailabilityRequest{
		Slots: append(slots(1, true, "09:00"), slots(1, false, "09:30", "10:00")...),
	}

	require.NoError(t, svc.ReplaceWeeklySchedule(context.Background(), doctorID, req))
	require.Len(t, repo.records, 1)
	assert.Equal(t, schedule.TimePoint(540), repo.records[0].Time)
}

func TestReplaceWeeklyScheduleIsReplaceAll(t *testing.T) {
	svc, repo, _, doctorID := newFixture()

	first := &model.UpdateAvailabilityRequest{Slots: slots(1, true, "09:00", "09:30")}
	require.NoError(t, svc.ReplaceWeeklySchedule(context.Background(), doctorID, first))

	second := &model.UpdateAvailabilityRequest{Slots: slots(2, true, "14:00")}
	require.NoError(t, svc.ReplaceWeeklySchedule(context.Background(), doctorID, second))

	// The Monday slots from the first save are gone.
	require.Len(t, repo.records, 1)
	assert.Equal(t, 2, repo.records[0].DayOfWeek)
}

func TestReplaceWeeklyScheduleValidation(t *testing.T) {
	tests := []struct {
		name  string
		slots []model.AvailabilitySlotInput
	}{
		{"off-grid time", slots(1, true, "09:15")},
		{"malformed time", slots(1, true, "9am")},
		{"day out of range", slots(7, true, "09:00")},
		{"before clinic opens", slots(1, true, "07:00")},
		{"after clinic closes", slots(1, true, "21:00")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, _, doctorID := newFixture()
			err := svc.ReplaceWeeklySchedule(context.Background(), doctorID, &model.UpdateAvailabilityRequest{Slots: tt.slots})
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTime))
			assert.Empty(t, repo.replaced, "invalid payloads must not touch the store")
		})
	}
}

func TestReplaceWeeklyScheduleUnknownDoctor(t *testing.T) {
	svc, _, _, _ := newFixture()

	err := svc.ReplaceWeeklySchedule(context.Background(), uuid.New(), &model.UpdateAvailabilityRequest{
		Slots: slots(1, true, "09:00"),
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidDoctor))
}

func TestGetWeeklySchedule(t *testing.T) {
	svc, repo, _, doctorID := newFixture()

	req := &model.UpdateAvailabilityRequest{
		Slots: slots(1, true, "09:00", "09:30", "10:00", "11:00"),
	}
	require.NoError(t, svc.ReplaceWeeklySchedule(context.Background(), doctorID, req))
	require.Len(t, repo.records, 4)

	week, err := svc.GetWeeklySchedule(context.Background(), doctorID)
	require.NoError(t, err)

	require.Len(t, week.Days, 7)
	monday := week.Days[1]
	assert.True(t, monday.Enabled)
	assert.Equal(t, schedule.TimePoint(540), monday.Start)
	assert.Equal(t, schedule.TimePoint(690), monday.End)
	require.Len(t, monday.Breaks, 1)
	assert.Equal(t, schedule.Interval{Start: 630, End: 660}, monday.Breaks[0])

	assert.False(t, week.Days[0].Enabled)
	assert.Len(t, week.Records, 4)
}

func TestReplaceFromDaySchedules(t *testing.T) {
	svc, repo, _, doctorID := newFixture()

	days := []schedule.DaySchedule{
		{
			DayOfWeek: 1,
			Enabled:   true,
			Start:     540,
			End:       720,
			Breaks:    []schedule.Interval{{Start: 600, End: 630}},
		},
		{DayOfWeek: 2, Enabled: false},
	}

	require.NoError(t, svc.ReplaceFromDaySchedules(context.Background(), doctorID, days))

	var times []schedule.TimePoint
	for _, r := range repo.records {
		assert.Equal(t, 1, r.DayOfWeek)
		times = append(times, r.Time)
	}
	assert.Equal(t, []schedule.TimePoint{540, 570, 630, 660, 690}, times)
}

func TestReplaceFromDaySchedulesRejectsBadWindow(t *testing.T) {
	svc, repo, _, doctorID := newFixture()

	days := []schedule.DaySchedule{{DayOfWeek: 1, Enabled: true, Start: 720, End: 540}}
	err := svc.ReplaceFromDaySchedules(context.Background(), doctorID, days)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidTime))
	assert.Empty(t, repo.replaced)
}
