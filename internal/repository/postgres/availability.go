package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/dentalops/clinic-api/internal/schedule"
)

func (r *availabilityRepository) GetForDoctor(ctx context.Context, doctorID uuid.UUID) ([]schedule.AvailabilityRecord, error) {
	query := `
		SELECT doctor_id, day_of_week, time_minutes, is_available
		FROM availability
		WHERE doctor_id = $1
		ORDER BY day_of_week ASC, time_minutes ASC
	`
	var records []schedule.AvailabilityRecord
	err := r.db.SelectContext(ctx, &records, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}
	return records, nil
}

func (r *availabilityRepository) GetForDay(ctx context.Context, doctorID uuid.UUID, dayOfWeek int) ([]schedule.AvailabilityRecord, error) {
	query := `
		SELECT doctor_id, day_of_week, time_minutes, is_available
		FROM availability
		WHERE doctor_id = $1 AND day_of_week = $2
		ORDER BY time_minutes ASC
	`
	var records []schedule.AvailabilityRecord
	err := r.db.SelectContext(ctx, &records, query, doctorID, dayOfWeek)
	if err != nil {
		return nil, fmt.Errorf("failed to get availability for day: %w", err)
	}
	return records, nil
}

// ReplaceForDoctor implements the replace-all semantics the schedule editor
// relies on: the prior template is deleted and the new set inserted in one
// transaction. The delete locks the doctor's rows, so a second concurrent
// save waits instead of interleaving.
func (r *availabilityRepository) ReplaceForDoctor(ctx context.Context, doctorID uuid.UUID, records []schedule.AvailabilityRecord) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM availability WHERE doctor_id = $1`, doctorID); err != nil {
			return fmt.Errorf("failed to clear availability: %w", err)
		}

		if len(records) == 0 {
			return nil
		}

		query := `
			INSERT INTO availability (doctor_id, day_of_week, time_minutes, is_available)
			VALUES (:doctor_id, :day_of_week, :time_minutes, :is_available)
		`
		if _, err := tx.NamedExecContext(ctx, query, records); err != nil {
			return fmt.Errorf("failed to insert availability: %w", err)
		}
		return nil
	})
}
