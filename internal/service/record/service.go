package record

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/dentalops/clinic-api/internal/model"
	"github.com/dentalops/clinic-api/internal/repository"
)

type Service struct {
	records  repository.ClinicalRecordRepository
	patients repository.PatientRepository
}

func NewService(records repository.ClinicalRecordRepository, patients repository.PatientRepository) *Service {
	return &Service{records: records, patients: patients}
}

func (s *Service) CreateRecord(ctx context.Context, req *model.CreateClinicalRecordRequest) (*model.ClinicalRecord, error) {
	if _, err := s.patients.Get(ctx, req.PatientID); err != nil {
		return nil, err
	}

	record := &model.ClinicalRecord{
		PatientID:     req.PatientID,
		AppointmentID: req.AppointmentID,
		Diagnosis:     req.Diagnosis,
		Treatment:     req.Treatment,
		Notes:         req.Notes,
	}
	if err := s.records.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create clinical record: %w", err)
	}
	return record, nil
}

func (s *Service) GetRecord(ctx context.Context, id uuid.UUID) (*model.ClinicalRecord, error) {
	return s.records.Get(ctx, id)
}

func (s *Service) UpdateRecord(ctx context.Context, id uuid.UUID, req *model.UpdateClinicalRecordRequest) (*model.ClinicalRecord, error) {
	record, err := s.records.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Diagnosis != nil {
		record.Diagnosis = *req.Diagnosis
	}
	if req.Treatment != nil {
		record.Treatment = *req.Treatment
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	if err := s.records.Update(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *Service) DeleteRecord(ctx context.Context, id uuid.UUID) error {
	return s.records.Delete(ctx, id)
}

func (s *Service) ListPatientRecords(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalRecord, error) {
	records, err := s.records.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clinical records: %w", err)
	}
	return records, nil
}
