package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/repository"
	"github.com/dentalops/clinic-api/internal/schedule"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
	"github.com/dentalops/clinic-api/pkg/metrics"
)

// SlotCache is the slice of the cache this service needs: schedule edits
// invalidate every cached slot list for the doctor.
type SlotCache interface {
	InvalidateDoctor(ctx context.Context, doctorID uuid.UUID)
}

// WeeklySchedule is the API view of a doctor's template: the authoritative
// flat point set plus the derived per-day window/breaks form for display.
type WeeklySchedule struct {
	Records []schedule.AvailabilityRecord `json:"slots"`
	Days    []schedule.DaySchedule        `json:"days"`
}

type Service struct {
	availability repository.AvailabilityRepository
	doctors      repository.DoctorRepository
	cache        SlotCache
	metrics      *metrics.Metrics
	gridSize     int
	dayStart     int
	dayEnd       int
}

func NewService(
	availability repository.AvailabilityRepository,
	doctors repository.DoctorRepository,
	cache SlotCache,
	m *metrics.Metrics,
	gridSize, dayStart, dayEnd int,
) *Service {
	if gridSize <= 0 {
		gridSize = schedule.DefaultGridSize
	}
	if dayEnd <= 0 || dayEnd > schedule.MinutesPerDay {
		dayEnd = schedule.MinutesPerDay
	}
	return &Service{
		availability: availability,
		doctors:      doctors,
		cache:        cache,
		metrics:      m,
		gridSize:     gridSize,
		dayStart:     dayStart,
		dayEnd:       dayEnd,
	}
}

// GetWeeklySchedule returns the doctor's stored template along with the
// derived day-schedule view.
func (s *Service) GetWeeklySchedule(ctx context.Context, doctorID uuid.UUID) (*WeeklySchedule, error) {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}

	records, err := s.availability.GetForDoctor(ctx, doctorID)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	template := schedule.OpenPointsFromRecords(records, doctorID)
	days := make([]schedule.DaySchedule, 0, 7)
	for day := 0; day < 7; day++ {
		days = append(days, schedule.ToDaySchedule(day, template[day], s.gridSize))
	}

	if records == nil {
		records = []schedule.AvailabilityRecord{}
	}
	return &WeeklySchedule{Records: records, Days: days}, nil
}

// ReplaceWeeklySchedule validates the submitted flat slot set and replaces
// the doctor's whole template with it. Unavailable entries are dropped
// rather than stored, matching the replace-all semantics the editor expects.
func (s *Service) ReplaceWeeklySchedule(ctx context.Context, doctorID uuid.UUID, req *model.UpdateAvailabilityRequest) error {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return err
	}

	records := make([]schedule.AvailabilityRecord, 0, len(req.Slots))
	for _, slot := range req.Slots {
		if !slot.IsAvailable {
			continue
		}
		if slot.DayOfWeek < 0 || slot.DayOfWeek > 6 {
			return apperrors.InvalidTime(fmt.Sprintf("day of week %d out of range", slot.DayOfWeek))
		}
		point, err := schedule.ParseTimePoint(slot.Time)
		if err != nil {
			return err
		}
		if !point.OnGrid(s.gridSize) {
			return apperrors.InvalidTime(fmt.Sprintf("time %s not on the %d-minute grid", point, s.gridSize))
		}
		if point.Minutes() < s.dayStart || point.Minutes() >= s.dayEnd {
			return apperrors.InvalidTime(fmt.Sprintf("time %s outside clinic hours", point))
		}
		records = append(records, schedule.AvailabilityRecord{
			DoctorID:    doctorID,
			DayOfWeek:   slot.DayOfWeek,
			Time:        point,
			IsAvailable: true,
		})
	}

	if err := s.availability.ReplaceForDoctor(ctx, doctorID, records); err != nil {
		return apperrors.StorageUnavailable(err)
	}

	if s.cache != nil {
		s.cache.InvalidateDoctor(ctx, doctorID)
	}
	if s.metrics != nil {
		s.metrics.ScheduleSaves.Inc()
	}
	return nil
}

// ReplaceFromDaySchedules is the window+breaks form of a schedule save: each
// day is expanded to its open grid points before the same replace-all write.
func (s *Service) ReplaceFromDaySchedules(ctx context.Context, doctorID uuid.UUID, days []schedule.DaySchedule) error {
	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return err
	}

	var records []schedule.AvailabilityRecord
	for _, day := range days {
		if day.DayOfWeek < 0 || day.DayOfWeek > 6 {
			return apperrors.InvalidTime(fmt.Sprintf("day of week %d out of range", day.DayOfWeek))
		}
		points, err := schedule.FromDaySchedule(day, s.gridSize)
		if err != nil {
			return err
		}
		for _, p := range points {
			if p.Minutes() < s.dayStart || p.Minutes() >= s.dayEnd {
				return apperrors.InvalidTime(fmt.Sprintf("time %s outside clinic hours", p))
			}
			records = append(records, schedule.AvailabilityRecord{
				DoctorID:    doctorID,
				DayOfWeek:   day.DayOfWeek,
				Time:        p,
				IsAvailable: true,
			})
		}
	}

	if err := s.availability.ReplaceForDoctor(ctx, doctorID, records); err != nil {
		return apperrors.StorageUnavailable(err)
	}

	if s.cache != nil {
		s.cache.InvalidateDoctor(ctx, doctorID)
	}
	if s.metrics != nil {
		s.metrics.ScheduleSaves.Inc()
	}
	return nil
}
