package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/dentalops/clinic-api/internal/email"
	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/repository"
	"github.com/dentalops/clinic-api/internal/schedule"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
	"github.com/dentalops/clinic-api/pkg/metrics"
)

const dateLayout = "2006-01-02"

// SlotCache is the optional redis-backed cache of computed slot lists.
type SlotCache interface {
	GetSlots(ctx context.Context, doctorID uuid.UUID, date string, serviceID uuid.UUID) ([]schedule.TimePoint, bool)
	StoreSlots(ctx context.Context, doctorID uuid.UUID, date string, serviceID uuid.UUID, slots []schedule.TimePoint)
	InvalidateDay(ctx context.Context, doctorID uuid.UUID, date string)
}

// BookingRequest is a fully validated booking attempt. InitialStatus is
// caller policy: PENDING for the public receipt-review flow, CONFIRMED when
// the doctor books directly.
type BookingRequest struct {
	DoctorID          uuid.UUID
	ServiceID         uuid.UUID
	PatientID         uuid.UUID
	Date              time.Time
	Start             schedule.TimePoint
	Notes             string
	PaymentReceiptURL *string
	InitialStatus     model.AppointmentStatus
}

type Service struct {
	appointments repository.AppointmentRepository
	availability repository.AvailabilityRepository
	services     repository.ServiceRepository
	doctors      repository.DoctorRepository
	patients     repository.PatientRepository
	notifier     email.Service
	cache        SlotCache
	metrics      *metrics.Metrics
	gridSize     int
	now          func() time.Time
}

func NewService(
	appointments repository.AppointmentRepository,
	availability repository.AvailabilityRepository,
	services repository.ServiceRepository,
	doctors repository.DoctorRepository,
	patients repository.PatientRepository,
	notifier email.Service,
	cache SlotCache,
	m *metrics.Metrics,
	gridSize int,
) *Service {
	if gridSize <= 0 {
		gridSize = schedule.DefaultGridSize
	}
	return &Service{
		appointments: appointments,
		availability: availability,
		services:     services,
		doctors:      doctors,
		patients:     patients,
		notifier:     notifier,
		cache:        cache,
		metrics:      m,
		gridSize:     gridSize,
		now:          time.Now,
	}
}

// ComputeSlots returns the bookable start times for a doctor, date and
// service: the template-derived candidates minus everything that overlaps an
// existing non-cancelled appointment.
func (s *Service) ComputeSlots(ctx context.Context, doctorID uuid.UUID, date time.Time, serviceID uuid.UUID) ([]schedule.TimePoint, error) {
	svc, err := s.services.Get(ctx, serviceID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidService("service does not exist")
		}
		return nil, err
	}

	if _, err := s.doctors.Get(ctx, doctorID); err != nil {
		return nil, err
	}

	day := date.Format(dateLayout)
	if s.cache != nil {
		if slots, ok := s.cache.GetSlots(ctx, doctorID, day, serviceID); ok {
			if s.metrics != nil {
				s.metrics.SlotCacheHits.Inc()
			}
			return slots, nil
		}
		if s.metrics != nil {
			s.metrics.SlotCacheMisses.Inc()
		}
	}

	slots, err := s.computeSlotsUncached(ctx, doctorID, date, svc)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.StoreSlots(ctx, doctorID, day, serviceID, slots)
	}
	if s.metrics != nil {
		s.metrics.SlotComputations.Inc()
	}
	return slots, nil
}

func (s *Service) computeSlotsUncached(ctx context.Context, doctorID uuid.UUID, date time.Time, svc *model.Service) ([]schedule.TimePoint, error) {
	records, err := s.availability.GetForDay(ctx, doctorID, int(date.Weekday()))
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	open := schedule.OpenPointsFromRecords(records, doctorID)[int(date.Weekday())]
	if len(open) == 0 {
		return []schedule.TimePoint{}, nil
	}

	candidates, err := schedule.GenerateSlots(open, svc.Duration, s.gridSize)
	if err != nil {
		return nil, err
	}

	busy, err := s.busyIntervals(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	return schedule.FilterConflicts(candidates, svc.Duration, busy), nil
}

// busyIntervals projects the doctor's blocking appointments for the date
// onto minutes-since-midnight intervals.
func (s *Service) busyIntervals(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]schedule.Interval, error) {
	appointments, err := s.appointments.GetBlockingForDay(ctx, doctorID, date)
	if err != nil {
		return nil, apperrors.StorageUnavailable(err)
	}

	busy := make([]schedule.Interval, 0, len(appointments))
	for _, apt := range appointments {
		start := minutesOfDay(apt.StartTime)
		end := minutesOfDay(apt.EndTime)
		if end <= start {
			// spans midnight or zero-length; block through end of day
			end = schedule.MinutesPerDay
		}
		busy = append(busy, schedule.Interval{
			Start: schedule.TimePoint(start),
			End:   schedule.TimePoint(end),
		})
	}
	return busy, nil
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

// BookAppointment validates and commits one booking attempt. Availability
// and conflicts are re-derived from current data here, never from cache, and
// the final conflict check plus insert happens atomically in the repository,
// so two concurrent requests for overlapping slots cannot both commit.
func (s *Service) BookAppointment(ctx context.Context, req *BookingRequest) (*model.Appointment, error) {
	started := s.now()
	apt, err := s.book(ctx, req)
	if s.metrics != nil {
		s.metrics.BookingLatency.Observe(time.Since(started).Seconds())
		if err != nil {
			s.metrics.BookingsRejected.WithLabelValues(rejectReason(err)).Inc()
		} else {
			s.metrics.BookingsCommitted.Inc()
		}
	}
	return apt, err
}

func (s *Service) book(ctx context.Context, req *BookingRequest) (*model.Appointment, error) {
	if req.InitialStatus != model.AppointmentStatusPending && req.InitialStatus != model.AppointmentStatusConfirmed {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("invalid initial status %q", req.InitialStatus), nil)
	}

	svc, err := s.services.Get(ctx, req.ServiceID)
	if err != nil {
		if apperrors.IsCode(err, apperrors.ErrNotFound) {
			return nil, apperrors.InvalidService("service does not exist")
		}
		return nil, err
	}

	doctor, err := s.doctors.Get(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	patient, err := s.patients.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	startTime := time.Date(
		req.Date.Year(), req.Date.Month(), req.Date.Day(),
		req.Start.Minutes()/60, req.Start.Minutes()%60, 0, 0, req.Date.Location(),
	)
	if !startTime.After(s.now()) {
		return nil, apperrors.PastDateTime()
	}

	// Slot must be in the current template-derived candidate set; this
	// covers grid alignment, breaks and the working window in one check.
	slots, err := s.computeSlotsUncached(ctx, req.DoctorID, req.Date, svc)
	if err != nil {
		return nil, err
	}
	if !containsSlot(slots, req.Start) {
		if taken, err := s.slotTakenNotOutside(ctx, req, svc); err == nil && taken {
			return nil, apperrors.SlotTaken()
		}
		return nil, apperrors.SlotOutsideAvailability()
	}

	apt := &model.Appointment{
		DoctorID:          req.DoctorID,
		PatientID:         req.PatientID,
		ServiceID:         req.ServiceID,
		StartTime:         startTime,
		EndTime:           startTime.Add(time.Duration(svc.Duration) * time.Minute),
		Status:            req.InitialStatus,
		Notes:             req.Notes,
		PaymentReceiptURL: req.PaymentReceiptURL,
	}
	payment := &model.Payment{
		PatientID: req.PatientID,
		Amount:    svc.Price,
		Status:    model.PaymentStatusPending,
	}

	if err := s.appointments.CreateIfFree(ctx, apt, payment); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.InvalidateDay(ctx, req.DoctorID, req.Date.Format(dateLayout))
	}

	s.notify(apt, svc, doctor, patient)
	return apt, nil
}

// slotTakenNotOutside distinguishes the two rejection reasons for a start
// that is not in the free set: inside the template but already booked, or
// genuinely outside availability.
func (s *Service) slotTakenNotOutside(ctx context.Context, req *BookingRequest, svc *model.Service) (bool, error) {
	records, err := s.availability.GetForDay(ctx, req.DoctorID, int(req.Date.Weekday()))
	if err != nil {
		return false, err
	}
	open := schedule.OpenPointsFromRecords(records, req.DoctorID)[int(req.Date.Weekday())]
	candidates, err := schedule.GenerateSlots(open, svc.Duration, s.gridSize)
	if err != nil {
		return false, err
	}
	return containsSlot(candidates, req.Start), nil
}

func (s *Service) notify(apt *model.Appointment, svc *model.Service, doctor *model.Doctor, patient *model.Patient) {
	if s.notifier == nil {
		return
	}

	data := email.BookingNotification{
		PatientName:  patient.Name,
		PatientEmail: patient.Email,
		ServiceName:  svc.Name,
		Date:         apt.StartTime.Format(dateLayout),
		Time:         apt.StartTime.Format("15:04"),
		Price:        svc.Price,
	}
	if apt.PaymentReceiptURL != nil {
		data.ReceiptURL = *apt.PaymentReceiptURL
	}

	// Fire and forget: a failed notification never fails the booking.
	go func() {
		if err := s.notifier.SendBookingNotification(context.Background(), data); err != nil {
			if s.metrics != nil {
				s.metrics.NotificationErrors.Inc()
			}
			log.Error().Err(err).
				Str("appointment_id", apt.ID.String()).
				Str("doctor", doctor.Name).
				Msg("booking notification failed")
		}
	}()
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.appointments.Get(ctx, id)
}

func (s *Service) ListAppointments(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.appointments.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

// UpdateStatus applies the doctor's confirm/cancel decision. Cancelled and
// completed appointments are final.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	apt, err := s.appointments.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if apt.Status == model.AppointmentStatusCancelled {
		return nil, apperrors.NewBadRequest("appointment is already cancelled", nil)
	}
	if apt.Status == model.AppointmentStatusCompleted {
		return nil, apperrors.NewBadRequest("cannot change a completed appointment", nil)
	}

	if err := s.appointments.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	apt.Status = status

	// cancelling frees the slot for other patients
	if status == model.AppointmentStatusCancelled && s.cache != nil {
		s.cache.InvalidateDay(ctx, apt.DoctorID, apt.StartTime.Format(dateLayout))
	}
	return apt, nil
}

func containsSlot(slots []schedule.TimePoint, p schedule.TimePoint) bool {
	for _, s := range slots {
		if s == p {
			return true
		}
	}
	return false
}

func rejectReason(err error) string {
	switch apperrors.CodeOf(err) {
	case apperrors.ErrSlotTaken:
		return "slot_taken"
	case apperrors.ErrSlotOutsideAvailability:
		return "outside_availability"
	case apperrors.ErrPastDateTime:
		return "past_date_time"
	case apperrors.ErrInvalidService:
		return "invalid_service"
	case apperrors.ErrInvalidDoctor:
		return "invalid_doctor"
	case apperrors.ErrInvalidTime:
		return "invalid_time"
	case apperrors.ErrStorageUnavailable:
		return "storage_unavailable"
	default:
		return "other"
	}
}
