package appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dentalops/clinic-api/internal/email"
	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/repository"
	"github.com/dentalops/clinic-api/internal/schedule"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

// bookingDay is a Monday far enough in the future that past-date checks
// never trip on it.
var bookingDay = time.Date(2030, 6, 3, 0, 0, 0, 0, time.UTC)

type fakeAvailability struct {
	records []schedule.AvailabilityRecord
	calls   int
}

func (f *fakeAvailability) GetForDoctor(_ context.Context, doctorID uuid.UUID) ([]schedule.AvailabilityRecord, error) {
	f.calls++
	return f.records, nil
}

func (f *fakeAvailability) GetForDay(_ context.Context, doctorID uuid.UUID, dayOfWeek int) ([]schedule.AvailabilityRecord, error) {
	f.calls++
	var out []schedule.AvailabilityRecord
	for _, r := range f.records {
		if r.DayOfWeek == dayOfWeek {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAvailability) ReplaceForDoctor(context.Context, uuid.UUID, []schedule.AvailabilityRecord) error {
	return nil
}

// fakeAppointments enforces the overlap rule under a lock, the way the real
// repository does inside its transaction.
type fakeAppointments struct {
	mu       sync.Mutex
	blocking []*model.Appointment
	byID     map[uuid.UUID]*model.Appointment
	statuses map[uuid.UUID]model.AppointmentStatus
	payments []*model.Payment
}

func newFakeAppointments() *fakeAppointments {
	return &fakeAppointments{
		byID:     make(map[uuid.UUID]*model.Appointment),
		statuses: make(map[uuid.UUID]model.AppointmentStatus),
	}
}

func (f *fakeAppointments) CreateIfFree(_ context.Context, apt *model.Appointment, payment *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, b := range f.blocking {
		if b.Status.Blocking() && apt.StartTime.Before(b.EndTime) && apt.EndTime.After(b.StartTime) {
			return apperrors.SlotTaken()
		}
	}

	apt.ID = uuid.New()
	f.blocking = append(f.blocking, apt)
	f.byID[apt.ID] = apt
	if payment != nil {
		payment.AppointmentID = apt.ID
		f.payments = append(f.payments, payment)
	}
	return nil
}

func (f *fakeAppointments) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	apt, ok := f.byID[id]
	if !ok {
		return nil, apperrors.NewNotFound("appointment", nil)
	}
	copied := *apt
	return &copied, nil
}

func (f *fakeAppointments) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[id].Status = status
	return nil
}

func (f *fakeAppointments) List(context.Context, *model.AppointmentFilters) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*model.Appointment{}, f.blocking...), nil
}

func (f *fakeAppointments) GetBlockingForDay(_ context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Appointment
	for _, b := range f.blocking {
		if b.DoctorID == doctorID && b.Status.Blocking() &&
			b.StartTime.Year() == day.Year() && b.StartTime.YearDay() == day.YearDay() {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeServices struct {
	services map[uuid.UUID]*model.Service
}

func (f *fakeServices) Create(context.Context, *model.Service) error { return nil }
func (f *fakeServices) Update(context.Context, *model.Service) error { return nil }
func (f *fakeServices) Delete(context.Context, uuid.UUID) error      { return nil }
func (f *fakeServices) List(context.Context) ([]*model.Service, error) {
	return nil, nil
}

func (f *fakeServices) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, apperrors.NewNotFound("service", nil)
	}
	return svc, nil
}

type fakeDoctors struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (f *fakeDoctors) Get(_ context.Context, id uuid.UUID) (*model.Doctor, error) {
	doc, ok := f.doctors[id]
	if !ok {
		return nil, apperrors.InvalidDoctor(nil)
	}
	return doc, nil
}

func (f *fakeDoctors) List(context.Context) ([]*model.Doctor, error) { return nil, nil }

type fakePatients struct {
	patients map[uuid.UUID]*model.Patient
}

func (f *fakePatients) Create(context.Context, *model.Patient) error { return nil }
func (f *fakePatients) List(context.Context) ([]*model.Patient, error) {
	return nil, nil
}

func (f *fakePatients) Get(_ context.Context, id uuid.UUID) (*model.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NewNotFound("patient", nil)
	}
	return p, nil
}

type fakeSlotCache struct {
	stored      map[string][]schedule.TimePoint
	invalidated []string
}

func newFakeSlotCache() *fakeSlotCache {
	return &fakeSlotCache{stored: make(map[string][]schedule.TimePoint)}
}

func (f *fakeSlotCache) GetSlots(_ context.Context, doctorID uuid.UUID, date string, serviceID uuid.UUID) ([]schedule.TimePoint, bool) {
	slots, ok := f.stored[doctorID.String()+date+serviceID.String()]
	return slots, ok
}

func (f *fakeSlotCache) StoreSlots(_ context.Context, doctorID uuid.UUID, date string, serviceID uuid.UUID, slots []schedule.TimePoint) {
	f.stored[doctorID.String()+date+serviceID.String()] = slots
}

func (f *fakeSlotCache) InvalidateDay(_ context.Context, doctorID uuid.UUID, date string) {
	f.invalidated = append(f.invalidated, doctorID.String()+date)
	for k := range f.stored {
		delete(f.stored, k)
	}
}

type fixture struct {
	svc          *Service
	availability *fakeAvailability
	appointments *fakeAppointments
	cache        *fakeSlotCache
	doctorID     uuid.UUID
	patientID    uuid.UUID
	serviceID    uuid.UUID
}

// newFixture builds a service whose doctor works Mondays 09:00-12:00 and
// offers one 30 minute treatment.
func newFixture(t *testing.T, opts ...func(*fixture)) *fixture {
	t.Helper()

	f := &fixture{
		doctorID:  uuid.New(),
		patientID: uuid.New(),
		serviceID: uuid.New(),
	}

	var records []schedule.AvailabilityRecord
	for p := schedule.TimePoint(540); p < 720; p += 30 {
		records = append(records, schedule.AvailabilityRecord{
			DoctorID:    f.doctorID,
			DayOfWeek:   1,
			Time:        p,
			IsAvailable: true,
		})
	}

	f.availability = &fakeAvailability{records: records}
	f.appointments = newFakeAppointments()

	services := &fakeServices{services: map[uuid.UUID]*model.Service{
		f.serviceID: {Name: "Cleaning", Duration: 30, Price: 80},
	}}
	services.services[f.serviceID].ID = f.serviceID

	doctors := &fakeDoctors{doctors: map[uuid.UUID]*model.Doctor{
		f.doctorID: {Name: "Dr. Adams"},
	}}
	patients := &fakePatients{patients: map[uuid.UUID]*model.Patient{
		f.patientID: {Name: "Pat", Email: "pat@example.com"},
	}}

	var cache SlotCache
	for _, opt := range opts {
		opt(f)
	}
	if f.cache != nil {
		cache = f.cache
	}

	f.svc = NewService(
		f.appointments,
		f.availability,
		services,
		doctors,
		patients,
		email.Noop{},
		cache,
		nil,
		30,
	)
	f.svc.now = func() time.Time { return time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func withCache() func(*fixture) {
	return func(f *fixture) { f.cache = newFakeSlotCache() }
}

func (f *fixture) booking(start schedule.TimePoint) *BookingRequest {
	return &BookingRequest{
		DoctorID:      f.doctorID,
		ServiceID:     f.serviceID,
		PatientID:     f.patientID,
		Date:          bookingDay,
		Start:         start,
		InitialStatus: model.AppointmentStatusPending,
	}
}

var _ repository.AppointmentRepository = (*fakeAppointments)(nil)
var _ repository.AvailabilityRepository = (*fakeAvailability)(nil)

func TestComputeSlots(t *testing.T) {
	f := newFixture(t)

	slots, err := f.svc.ComputeSlots(context.Background(), f.doctorID, bookingDay, f.serviceID)
	require.NoError(t, err)

	want := []schedule.TimePoint{540, 570, 600, 630, 660, 690}
	assert.Equal(t, want, slots)
}

func TestComputeSlotsExcludesBookedTimes(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BookAppointment(context.Background(), f.booking(600))
	require.NoError(t, err)

	slots, err := f.svc.ComputeSlots(context.Background(), f.doctorID, bookingDay, f.serviceID)
	require.NoError(t, err)

	assert.NotContains(t, slots, schedule.TimePoint(600))
	assert.Contains(t, slots, schedule.TimePoint(570), "back-to-back before stays open")
	assert.Contains(t, slots, schedule.TimePoint(630), "back-to-back after stays open")
}

func TestComputeSlotsUnknownService(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ComputeSlots(context.Background(), f.doctorID, bookingDay, uuid.New())
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidService))
}

func TestComputeSlotsUnknownDoctor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ComputeSlots(context.Background(), uuid.New(), bookingDay, f.serviceID)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrInvalidDoctor))
}

func TestComputeSlotsDayOff(t *testing.T) {
	f := newFixture(t)

	sunday := bookingDay.AddDate(0, 0, -1)
	slots, err := f.svc.ComputeSlots(context.Background(), f.doctorID, sunday, f.serviceID)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestComputeSlotsServedFromCache(t *testing.T) {
	f := newFixture(t, withCache())

	first, err := f.svc.ComputeSlots(context.Background(), f.doctorID, bookingDay, f.serviceID)
	require.NoError(t, err)

	callsAfterMiss := f.availability.calls
	second, err := f.svc.ComputeSlots(context.Background(), f.doctorID, bookingDay, f.serviceID)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, callsAfterMiss, f.availability.calls, "hit must not touch the template store")
}

func TestBookAppointment(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.BookAppointment(context.Background(), f.booking(600))
	require.NoError(t, err)

	assert.Equal(t, model.AppointmentStatusPending, apt.Status)
	assert.Equal(t, time.Date(2030, 6, 3, 10, 0, 0, 0, time.UTC), apt.StartTime)
	assert.Equal(t, time.Date(2030, 6, 3, 10, 30, 0, 0, time.UTC), apt.EndTime)

	require.Len(t, f.appointments.payments, 1)
	assert.Equal(t, 80.0, f.appointments.payments[0].Amount)
	assert.Equal(t, model.PaymentStatusPending, f.appointments.payments[0].Status)
}

func TestBookAppointmentInvalidInitialStatus(t *testing.T) {
	f := newFixture(t)

	req := f.booking(600)
	req.InitialStatus = model.AppointmentStatusCompleted

	_, err := f.svc.BookAppointment(context.Background(), req)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
}

func TestBookAppointmentInPast(t *testing.T) {
	f := newFixture(t)
	f.svc.now = func() time.Time { return time.Date(2030, 6, 3, 10, 0, 0, 0, time.UTC) }

	// 10:00 on the booking day is exactly now, which counts as past.
	_, err := f.svc.BookAppointment(context.Background(), f.booking(600))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrPastDateTime))
}

func TestBookAppointmentOutsideAvailability(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BookAppointment(context.Background(), f.booking(480))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotOutsideAvailability))
}

func TestBookAppointmentOffGridStart(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BookAppointment(context.Background(), f.booking(615))
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotOutsideAvailability))
}

func TestBookAppointmentSlotTaken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.BookAppointment(context.Background(), f.booking(600))
	require.NoError(t, err)

	other := f.booking(600)
	_, err = f.svc.BookAppointment(context.Background(), other)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrSlotTaken),
		"a booked slot reports taken, not outside availability")
}

func TestBookAppointmentCancelledFreesSlot(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.BookAppointment(context.Background(), f.booking(600))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.BookAppointment(context.Background(), f.booking(600))
	assert.NoError(t, err, "cancelled appointments do not block")
}

func TestBookAppointmentConcurrentSameSlot(t *testing.T) {
	f := newFixture(t)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.BookAppointment(context.Background(), f.booking(600))
		}(i)
	}
	wg.Wait()

	var committed, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case apperrors.IsCode(err, apperrors.ErrSlotTaken):
			taken++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, committed, "exactly one concurrent booking wins")
	assert.Equal(t, 1, taken)
}

func TestBookAppointmentInvalidatesCache(t *testing.T) {
	f := newFixture(t, withCache())

	_, err := f.svc.ComputeSlots(context.Background(), f.doctorID, bookingDay, f.serviceID)
	require.NoError(t, err)

	_, err = f.svc.BookAppointment(context.Background(), f.booking(600))
	require.NoError(t, err)
	assert.NotEmpty(t, f.cache.invalidated)

	slots, err := f.svc.ComputeSlots(context.Background(), f.doctorID, bookingDay, f.serviceID)
	require.NoError(t, err)
	assert.NotContains(t, slots, schedule.TimePoint(600))
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.BookAppointment(context.Background(), f.booking(600))
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusConfirmed, updated.Status)
}

func TestUpdateStatusFinalStates(t *testing.T) {
	f := newFixture(t)

	apt, err := f.svc.BookAppointment(context.Background(), f.booking(600))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusCancelled)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(context.Background(), apt.ID, model.AppointmentStatusConfirmed)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest), "cancelled is final")
}
