package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dentalops/clinic-api/internal/model"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

func (r *paymentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, appointment_id, patient_id, amount, status, created_at, updated_at
		FROM payments
		WHERE id = $1
	`
	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("payment", err)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*model.Payment, error) {
	query := `
		SELECT id, appointment_id, patient_id, amount, status, created_at, updated_at
		FROM payments
		WHERE appointment_id = $1
	`
	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, query, appointmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("payment", err)
		}
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	query := `
		UPDATE payments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("payment", nil)
	}
	return nil
}

func (r *paymentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Payment, error) {
	query := `
		SELECT id, appointment_id, patient_id, amount, status, created_at, updated_at
		FROM payments
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var payments []*model.Payment
	err := r.db.SelectContext(ctx, &payments, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
