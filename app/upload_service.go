package app

import (
	"context"
	"io"

	"energydash/adapters/ingest"
	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
)

// UploadResult is a parsed upload and, when committed, the insert outcome.
type UploadResult struct {
	BatchID core.UploadID        `json:"batchId"`
	File    string               `json:"file"`
	Parse   *ingest.ParseResult  `json:"parse"`
	Insert  *energy.InsertResult `json:"insert,omitempty"`
}

// UploadService parses CSV and XLSX meter exports and stores their readings.
type UploadService struct {
	energy *EnergyService
	logger *internal.Logger
}

// NewUploadService creates an upload service
func NewUploadService(energyService *EnergyService, logger *internal.Logger) *UploadService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &UploadService{energy: energyService, logger: logger.With("upload")}
}

// Parse reads an upload without storing it.
func (s *UploadService) Parse(name string, r io.Reader) (*UploadResult, error) {
	parsed, err := ingest.Parse(name, r)
	if err != nil {
		return nil, err
	}
	batch := core.NewUploadID()
	s.logger.Info("upload %s (%s): %d rows parsed, %d rejected", batch, name, len(parsed.Data), len(parsed.Errors))
	return &UploadResult{BatchID: batch, File: name, Parse: parsed}, nil
}

// Commit stores the valid rows of a parsed upload for a building.
func (s *UploadService) Commit(ctx context.Context, buildingID int64, result *UploadResult) error {
	if result == nil || result.Parse == nil || !result.Parse.Valid() {
		return core.NewValidationError("file", "no valid rows to upload")
	}
	insert, err := s.energy.Create(ctx, buildingID, energy.Inputs(result.Parse.Data))
	if err != nil {
		return err
	}
	result.Insert = insert
	return nil
}

// Import parses and commits in one step.
func (s *UploadService) Import(ctx context.Context, buildingID int64, name string, r io.Reader) (*UploadResult, error) {
	result, err := s.Parse(name, r)
	if err != nil {
		return nil, err
	}
	if err := s.Commit(ctx, buildingID, result); err != nil {
		return result, err
	}
	return result, nil
}

// Template returns the CSV upload template.
func (s *UploadService) Template() []byte {
	return ingest.Template()
}
