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

func (r *clinicalRecordRepository) Create(ctx context.Context, record *model.ClinicalRecord) error {
	query := `
		INSERT INTO clinical_records (id, patient_id, appointment_id, date, diagnosis, treatment, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	record.ID = uuid.New()
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	if record.Date.IsZero() {
		record.Date = record.CreatedAt
	}

	_, err := r.db.ExecContext(ctx, query,
		record.ID,
		record.PatientID,
		record.AppointmentID,
		record.Date,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create clinical record: %w", err)
	}
	return nil
}

func (r *clinicalRecordRepository) Get(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error) {
	query := `
		SELECT id, patient_id, appointment_id, date, diagnosis, treatment, notes, created_at, updated_at
		FROM clinical_records
		WHERE id = $1
	`
	var record model.ClinicalRecord
	err := r.db.GetContext(ctx, &record, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFound("clinical record", err)
		}
		return nil, fmt.Errorf("failed to get clinical record: %w", err)
	}
	return &record, nil
}

func (r *clinicalRecordRepository) Update(ctx context.Context, record *model.ClinicalRecord) error {
	query := `
		UPDATE clinical_records
		SET diagnosis = $1, treatment = $2, notes = $3, updated_at = $4
		WHERE id = $5
	`
	record.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		record.Diagnosis,
		record.Treatment,
		record.Notes,
		record.UpdatedAt,
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update clinical record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("clinical record", nil)
	}
	return nil
}

func (r *clinicalRecordRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM clinical_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete clinical record: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFound("clinical record", nil)
	}
	return nil
}

func (r *clinicalRecordRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalRecord, error) {
	query := `
		SELECT id, patient_id, appointment_id, date, diagnosis, treatment, notes, created_at, updated_at
		FROM clinical_records
		WHERE patient_id = $1
		ORDER BY date DESC
	`
	var records []*model.ClinicalRecord
	err := r.db.SelectContext(ctx, &records, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinical records: %w", err)
	}
	return records, nil
}
