package worker

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
	"github.com/jewisonj/nestworker/internal/nesting"
)

func TestRound4RoundsToFourDecimalPlaces(t *testing.T) {
	assert.InDelta(t, 0.1235, round4(0.12346), 1e-9)
	assert.InDelta(t, -0.1235, round4(-0.12346), 1e-9)
	assert.InDelta(t, 0.0, round4(0), 1e-9)
}

func TestBuildManifestMatchesContractShape(t *testing.T) {
	job := &models.NestJobModel{
		ID:              uuid.New(),
		Material:        "aluminum",
		ThicknessIn:     0.125,
		SheetWidthIn:    48,
		SheetHeightIn:   96,
		MarginIn:        0.5,
		SpacingIn:       0.125,
		RotationStepDeg: 5,
	}

	result := nesting.Result{
		Sheets: []nesting.SheetResult{
			{Index: 1, Width: 48, Height: 96, Utilization: 0.75},
		},
	}

	outputs := []manifestOutput{
		{
			SheetIndex:   1,
			DXFPath:      "sheet_01.dxf",
			Utilization:  0.75,
			PartsOnSheet: 2,
			Placements: []models.PlacementRecord{
				{PartID: "p1", Instance: 1, X: 1.2345, Y: 2.3456, Rotation: 90},
			},
		},
	}

	m := buildManifest(job, result, outputs)

	assert.Equal(t, job.ID.String(), m.JobID)
	assert.Equal(t, "aluminum", m.Material)
	assert.Equal(t, 48.0, m.Sheet.WidthIn)
	assert.Equal(t, 96.0, m.Sheet.HeightIn)
	assert.Equal(t, 0.5, m.Sheet.MarginIn)
	assert.Equal(t, 5, m.Params.RotationStepDeg)
	assert.Equal(t, 1, m.Results.Sheets)
	assert.Len(t, m.Outputs, 1)
	assert.Equal(t, "sheet_01.dxf", m.Outputs[0].DXFPath)
	assert.Equal(t, "p1", m.Outputs[0].Placements[0].PartID)
}
