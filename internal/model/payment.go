package model

import (
	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

// Payment records the amount owed for an appointment. Billing beyond amount
// and status lives outside this system.
type Payment struct {
	Base
	AppointmentID uuid.UUID     `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID     `db:"patient_id" json:"patient_id"`
	Amount        float64       `db:"amount" json:"amount"`
	Status        PaymentStatus `db:"status" json:"status"`
}

type UpdatePaymentStatusRequest struct {
	Status PaymentStatus `json:"status" binding:"required,oneof=PENDING PAID REFUNDED"`
}
