package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/schedule"
)

// All repository interfaces in one file
type (
	// AvailabilityRepository stores the flat weekly template point set.
	AvailabilityRepository interface {
		GetForDoctor(ctx context.Context, doctorID uuid.UUID) ([]schedule.AvailabilityRecord, error)
		GetForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]schedule.AvailabilityRecord, error)
		// ReplaceForDoctor deletes the doctor's whole template and inserts
		// the new set in one transaction; concurrent saves never interleave.
		ReplaceForDoctor(ctx context.Context, doctorID uuid.UUID, records []schedule.AvailabilityRecord) error
	}

	AppointmentRepository interface {
		// CreateIfFree atomically re-checks for an overlapping blocking
		// appointment and inserts the appointment plus its payment row.
		// Returns a SlotTaken error when a concurrent booking won the slot.
		CreateIfFree(ctx context.Context, apt *model.Appointment, payment *model.Payment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		// GetBlockingForDay returns the doctor's non-cancelled appointments
		// whose interval falls on the given calendar day.
		GetBlockingForDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, svc *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, svc *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Service, error)
	}

	DoctorRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		List(ctx context.Context) ([]*model.Patient, error)
	}

	ClinicalRecordRepository interface {
		Create(ctx context.Context, record *model.ClinicalRecord) error
		Get(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error)
		Update(ctx context.Context, record *model.ClinicalRecord) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalRecord, error)
	}

	PaymentRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Payment, error)
		GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Payment, error)
	}
)
