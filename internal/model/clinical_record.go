package model

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalRecord is a doctor's note for a patient, optionally tied to the
// appointment it was written during.
type ClinicalRecord struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	AppointmentID *uuid.UUID `db:"appointment_id" json:"appointment_id,omitempty"`
	Date          time.Time  `db:"date" json:"date"`
	Diagnosis     string     `db:"diagnosis" json:"diagnosis"`
	Treatment     string     `db:"treatment" json:"treatment"`
	Notes         string     `db:"notes" json:"notes,omitempty"`
}

type CreateClinicalRecordRequest struct {
	PatientID     uuid.UUID  `json:"patient_id" binding:"required"`
	AppointmentID *uuid.UUID `json:"appointment_id"`
	Diagnosis     string     `json:"diagnosis" binding:"required,max=2000"`
	Treatment     string     `json:"treatment" binding:"max=2000"`
	Notes         string     `json:"notes" binding:"max=4000"`
}

type UpdateClinicalRecordRequest struct {
	Diagnosis *string `json:"diagnosis" binding:"omitempty,max=2000"`
	Treatment *string `json:"treatment" binding:"omitempty,max=2000"`
	Notes     *string `json:"notes" binding:"omitempty,max=4000"`
}
