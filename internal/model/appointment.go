package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "PENDING"
	AppointmentStatusConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
)

// Blocking reports whether an appointment in this status occupies its slot.
// Only cancelled appointments free the time for other patients.
func (s AppointmentStatus) Blocking() bool {
	return s != AppointmentStatusCancelled
}

type Appointment struct {
	Base
	DoctorID          uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	PatientID         uuid.UUID         `db:"patient_id" json:"patient_id"`
	ServiceID         uuid.UUID         `db:"service_id" json:"service_id"`
	StartTime         time.Time         `db:"start_time" json:"start_time"`
	EndTime           time.Time         `db:"end_time" json:"end_time"`
	Status            AppointmentStatus `db:"status" json:"status"`
	Notes             string            `db:"notes" json:"notes,omitempty"`
	PaymentReceiptURL *string           `db:"payment_receipt_url" json:"payment_receipt_url,omitempty"`
}

// BookAppointmentRequest is the public booking payload. Date and Time stay
// as text so malformed input is rejected at the boundary, before any
// scheduling logic runs.
type BookAppointmentRequest struct {
	DoctorID          uuid.UUID  `json:"doctor_id" binding:"required"`
	ServiceID         uuid.UUID  `json:"service_id" binding:"required"`
	PatientID         *uuid.UUID `json:"patient_id"`
	Date              string     `json:"date" binding:"required,datetime=2006-01-02"`
	Time              string     `json:"time" binding:"required,timeofday"`
	Notes             string     `json:"notes" binding:"max=1000"`
	PaymentReceiptURL *string    `json:"payment_receipt_url"`
}

// UpdateAppointmentStatusRequest covers the doctor's confirm/cancel action.
type UpdateAppointmentStatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required,oneof=CONFIRMED CANCELLED"`
}

type AppointmentFilters struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}
