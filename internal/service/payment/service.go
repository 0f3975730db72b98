package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/repository"
)

// Service exposes the clinic's light payment bookkeeping: payments are
// created alongside bookings; only their status moves afterwards.
type Service struct {
	payments repository.PaymentRepository
}

func NewService(payments repository.PaymentRepository) *Service {
	return &Service{payments: payments}
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	return s.payments.Get(ctx, id)
}

func (s *Service) GetAppointmentPayment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	return s.payments.GetByAppointment(ctx, appointmentID)
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) (*model.Payment, error) {
	if err := s.payments.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.payments.Get(ctx, id)
}

func (s *Service) ListPatientPayments(ctx context.Context, patientID uuid.UUID) ([]*model.Payment, error) {
	payments, err := s.payments.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
