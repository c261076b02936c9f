package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"energydash/adapters/ingest"
	"energydash/domain/core"
	"energydash/domain/energy"
)

func TestUploadService_Import(t *testing.T) {
	f := newFixture(t)
	svc := NewUploadService(f.energy, nil)

	csv := "Timestamp,kWh,Cost,CO2\n" +
		"2024-01-01T00:00:00Z,10,1.2,4\n" +
		"2024-01-01T01:00:00Z,,1.2,4\n" +
		"2024-01-01 02:00:00,11,1.32,4.4\n"

	result, err := svc.Import(context.Background(), energy.DefaultBuildingID, "meter.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.NotEmpty(t, result.BatchID.String())
	assert.Len(t, result.Parse.Data, 2)
	require.Len(t, result.Parse.Errors, 1)
	assert.Contains(t, result.Parse.Errors[0], "Row 2")
	require.NotNil(t, result.Insert)
	assert.Equal(t, 2, result.Insert.RecordsCreated)

	list, err := f.energy.List(context.Background(), energy.ReadingFilter{Source: ingest.DefaultSource})
	require.NoError(t, err)
	assert.Len(t, list.Data, 2)
}

func TestUploadService_CommitWithoutRows(t *testing.T) {
	f := newFixture(t)
	svc := NewUploadService(f.energy, nil)

	result, err := svc.Parse("meter.csv", strings.NewReader("timestamp,kWh,cost\nnope,1,1\n"))
	require.NoError(t, err)
	assert.False(t, result.Parse.Valid())

	err = svc.Commit(context.Background(), energy.DefaultBuildingID, result)
	assert.True(t, core.IsValidationError(err))
}

func TestUploadService_TemplateRoundTrip(t *testing.T) {
	svc := NewUploadService(nil, nil)
	result, err := svc.Parse("template.csv", strings.NewReader(string(svc.Template())))
	require.NoError(t, err)
	assert.Len(t, result.Parse.Data, 3)
	assert.Empty(t, result.Parse.Errors)
}
