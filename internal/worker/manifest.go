package worker

import (
	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
	"github.com/jewisonj/nestworker/internal/nesting"
)

// manifest mirrors the manifest JSON contract exactly: job_id, material,
// thickness, sheet, params, results, outputs.
type manifest struct {
	JobID     string          `json:"job_id"`
	Material  string          `json:"material"`
	Thickness float64         `json:"thickness"`
	Sheet     manifestSheet   `json:"sheet"`
	Params    manifestParams  `json:"params"`
	Results   manifestResults `json:"results"`
	Outputs   []manifestOutput `json:"outputs"`
}

type manifestSheet struct {
	WidthIn  float64 `json:"width_in"`
	HeightIn float64 `json:"height_in"`
	MarginIn float64 `json:"margin_in"`
}

type manifestParams struct {
	SpacingIn       float64 `json:"spacing_in"`
	RotationStepDeg int     `json:"rotation_step_deg"`
}

type manifestResults struct {
	Sheets         int     `json:"sheets"`
	PartsPlaced    int     `json:"parts_placed"`
	AvgUtilization float64 `json:"avg_utilization"`
}

type manifestOutput struct {
	SheetIndex   int                      `json:"sheet_index"`
	DXFPath      string                   `json:"dxf_path"`
	Utilization  float64                  `json:"utilization"`
	PartsOnSheet int                      `json:"parts_on_sheet"`
	Placements   []models.PlacementRecord `json:"placements"`
}

func buildManifest(job *models.NestJobModel, result nesting.Result, outputs []manifestOutput) manifest {
	return manifest{
		JobID:     job.ID.String(),
		Material:  job.Material,
		Thickness: job.ThicknessIn,
		Sheet: manifestSheet{
			WidthIn:  job.SheetWidthIn,
			HeightIn: job.SheetHeightIn,
			MarginIn: job.MarginIn,
		},
		Params: manifestParams{
			SpacingIn:       job.SpacingIn,
			RotationStepDeg: job.RotationStepDeg,
		},
		Results: manifestResults{
			Sheets:         result.TotalSheets(),
			PartsPlaced:    result.TotalPartsPlaced(),
			AvgUtilization: round4(result.AvgUtilization()),
		},
		Outputs: outputs,
	}
}

func round4(v float64) float64 {
	scaled := v * 10000
	if scaled < 0 {
		scaled -= 0.5
	} else {
		scaled += 0.5
	}
	return float64(int64(scaled)) / 10000
}
