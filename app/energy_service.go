package app

import (
	"context"
	"fmt"
	"time"

	"energydash/domain/core"
	"energydash/domain/energy"
	"energydash/internal"
	"energydash/internal/analytics"
	"energydash/internal/metrics"
	"energydash/ports"
)

// DefaultReadingSource labels readings submitted through the API without a source.
const DefaultReadingSource = "API Upload"

// EnergyService manages stored energy readings
type EnergyService struct {
	readings ports.ReadingRepository
	metrics  *metrics.Recorder
	logger   *internal.Logger
}

// ReadingList is a page of readings with its aggregate summary
type ReadingList struct {
	Data    []energy.Reading      `json:"data"`
	Summary energy.ReadingSummary `json:"summary"`
}

// DeleteRequest selects readings to delete: a single ID, or a building's
// readings between Start and End.
type DeleteRequest struct {
	ID         *int64
	BuildingID int64
	Start      *time.Time
	End        *time.Time
}

// NewEnergyService creates an energy service
func NewEnergyService(readings ports.ReadingRepository, recorder *metrics.Recorder, logger *internal.Logger) *EnergyService {
	if logger == nil {
		logger = internal.NopLogger()
	}
	return &EnergyService{
		readings: readings,
		metrics:  recorder,
		logger:   logger.With("energy"),
	}
}

// List returns readings matching the filter, newest first, with a summary
func (s *EnergyService) List(ctx context.Context, filter energy.ReadingFilter) (*ReadingList, error) {
	if filter.Limit < 0 {
		return nil, core.NewValidationError("limit", "must not be negative")
	}

	readings, err := s.readings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list readings: %w", err)
	}

	return &ReadingList{
		Data:    readings,
		Summary: analytics.SummarizeReadings(readings),
	}, nil
}

// Create validates and stores a batch of readings for a building. Any invalid
// record rejects the whole batch; rows duplicating an existing timestamp are skipped.
func (s *EnergyService) Create(ctx context.Context, buildingID int64, inputs []energy.ReadingInput) (*energy.InsertResult, error) {
	if len(inputs) == 0 {
		return nil, core.NewValidationError("data", "Invalid data format. Expected array of energy readings.")
	}
	if buildingID == 0 {
		buildingID = energy.DefaultBuildingID
	}

	readings := make([]energy.Reading, len(inputs))
	for i, in := range inputs {
		reading, err := validateInput(in)
		if err != nil {
			return nil, fmt.Errorf("invalid record at index %d: %w", i, err)
		}
		reading.BuildingID = buildingID
		readings[i] = reading
	}

	created, err := s.readings.InsertBatch(ctx, readings)
	if err != nil {
		return nil, fmt.Errorf("failed to store readings: %w", err)
	}

	s.recordIngest(created)
	s.logger.Info("stored %d of %d readings for building %d", created.Total(), len(inputs), buildingID)

	return &energy.InsertResult{RecordsCreated: created.Total(), TotalSubmitted: len(inputs)}, nil
}

func validateInput(in energy.ReadingInput) (energy.Reading, error) {
	if in.Timestamp == "" || in.KWh == nil || in.Cost == nil {
		return energy.Reading{}, core.NewValidationError("record", "missing required fields")
	}

	ts, err := core.ParseTimestamp(in.Timestamp)
	if err != nil {
		return energy.Reading{}, err
	}

	reading := energy.Reading{
		Timestamp: ts,
		KWh:       *in.KWh,
		Cost:      *in.Cost,
		Source:    in.Source,
	}
	if in.CO2 != nil {
		reading.CO2 = *in.CO2
	}
	if reading.Source == "" {
		reading.Source = DefaultReadingSource
	}
	return reading, nil
}

func (s *EnergyService) recordIngest(created energy.SourceCounts) {
	if s.metrics == nil {
		return
	}
	for source, n := range created {
		s.metrics.RecordReadings(source, n)
	}
}

// Delete removes readings by ID or by date range. It returns the number of
// rows removed.
func (s *EnergyService) Delete(ctx context.Context, req DeleteRequest) (int64, error) {
	switch {
	case req.ID != nil:
		if err := s.readings.Delete(ctx, *req.ID); err != nil {
			return 0, err
		}
		return 1, nil
	case req.Start != nil && req.End != nil:
		if req.End.Before(*req.Start) {
			return 0, core.NewValidationError("endDate", "must not be before startDate")
		}
		buildingID := req.BuildingID
		if buildingID == 0 {
			buildingID = energy.DefaultBuildingID
		}
		n, err := s.readings.DeleteRange(ctx, buildingID, *req.Start, *req.End)
		if err != nil {
			return 0, fmt.Errorf("failed to delete readings: %w", err)
		}
		s.logger.Info("deleted %d readings for building %d", n, buildingID)
		return n, nil
	default:
		return 0, core.NewValidationError("request", "Must provide either id or date range for deletion")
	}
}

// Range loads every reading of a building within [start, end].
func (s *EnergyService) Range(ctx context.Context, buildingID int64, start, end time.Time) ([]energy.Reading, error) {
	readings, err := s.readings.List(ctx, energy.ReadingFilter{BuildingID: buildingID, Start: &start, End: &end})
	if err != nil {
		return nil, fmt.Errorf("failed to load readings: %w", err)
	}
	return readings, nil
}
