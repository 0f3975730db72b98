package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dentalops/clinic-api/internal/model"
	apperrors "github.com/dentalops/clinic-api/pkg/errors"
)

// CreateIfFree wraps the conflict re-check and the insert in one
// transaction. An advisory lock keyed on (doctor, day) serializes concurrent
// bookings for the same doctor and date while leaving disjoint bookings
// unserialized; after the lock is held, the overlap check sees any booking
// committed by a racing request.
func (r *appointmentRepository) CreateIfFree(ctx context.Context, apt *model.Appointment, payment *model.Payment) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		lockKey := fmt.Sprintf("%s:%s", apt.DoctorID, apt.StartTime.Format("2006-01-02"))
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
			return fmt.Errorf("failed to acquire booking lock: %w", err)
		}

		var conflict bool
		overlapQuery := `
			SELECT EXISTS (
				SELECT 1 FROM appointments
				WHERE doctor_id = $1
				AND status != 'CANCELLED'
				AND start_time < $3
				AND end_time > $2
			)
		`
		if err := tx.GetContext(ctx, &conflict, overlapQuery, apt.DoctorID, apt.StartTime, apt.EndTime); err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}
		if conflict {
			return apperrors.SlotTaken()
		}

		apt.ID = uuid.New()
		apt.CreatedAt = time.Now()
		apt.UpdatedAt = time.Now()

		insertQuery := `
			INSERT INTO appointments (
				id, doctor_id, patient_id, service_id,
				start_time, end_time, status, notes, payment_receipt_url,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`
		_, err := tx.ExecContext(ctx, insertQuery,
			apt.ID,
			apt.DoctorID,
			apt.PatientID,
			apt.ServiceID,
			apt.StartTime,
			apt.EndTime,
			apt.Status,
			apt.Notes,
			apt.PaymentReceiptURL,
			apt.CreatedAt,
			apt.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create appointment: %w", err)
		}

		if payment != nil {
			payment.ID = uuid.New()
			payment.AppointmentID = apt.ID
			payment.CreatedAt = apt.CreatedAt
			payment.UpdatedAt = apt.UpdatedAt

			paymentQuery := `
				INSERT INTO payments (id, appointment_id, patient_id, amount, status, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
			`
			_, err := tx.ExecContext(ctx, paymentQuery,
				payment.ID,
				payment.AppointmentID,
				payment.PatientID,
				payment.Amount,
				payment.Status,
				payment.CreatedAt,
				payment.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to create payment: %w", err)
			}
		}

		return nil
	})
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, service_id,
			   start_time, end_time, status, notes, payment_receipt_url,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var apt model.Appointment
	err := r.db.GetContext(ctx, &apt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("appointment", err)
		}
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &apt, nil
}

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) error {
	query := `
		UPDATE appointments
		SET status = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.db.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("appointment", nil)
	}
	return nil
}

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, doctor_id, patient_id, service_id,
			   start_time, end_time, status, notes, payment_receipt_url,
			   created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.DoctorID != uuid.Nil {
		query += fmt.Sprintf(" AND doctor_id = $%d", argCount)
		args = append(args, filters.DoctorID)
		argCount++
	}

	if filters.PatientID != uuid.Nil {
		query += fmt.Sprintf(" AND patient_id = $%d", argCount)
		args = append(args, filters.PatientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) GetBlockingForDay(ctx context.Context, doctorID uuid.UUID, day time.Time) ([]*model.Appointment, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT id, doctor_id, patient_id, service_id,
			   start_time, end_time, status, notes, payment_receipt_url,
			   created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		AND start_time >= $2
		AND start_time < $3
		AND status != 'CANCELLED'
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, doctorID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get appointments for day: %w", err)
	}
	return appointments, nil
}
