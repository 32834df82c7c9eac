package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jewisonj/nestworker/internal/dxfio"
	"github.com/jewisonj/nestworker/internal/geometry"
	"github.com/jewisonj/nestworker/internal/infrastructure/storage/models"
	"github.com/jewisonj/nestworker/internal/nesting"
	"github.com/jewisonj/nestworker/internal/nestingerrors"
	"github.com/jewisonj/nestworker/internal/svgio"
)

// validate checks the `validate:"..."` tags on the loaded job and item
// records. It is package-level rather than per-call since validator.New
// builds and caches its struct-field reflection cache once and is safe
// for concurrent reuse.
var validate = validator.New()

// processTask runs one claimed task end to end, absorbing every error into
// a failed job/task pair rather than propagating it to the loop.
func (l *Loop) processTask(ctx context.Context, task *models.WorkQueueTaskModel) {
	jobID, ok := task.NestJobID()
	if !ok {
		l.failTask(ctx, task, fmt.Errorf("work queue task %s has no nest_job_id in its payload", task.ID))
		return
	}

	scratch := filepath.Join(l.TempDir, jobID.String())
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		l.failJobAndTask(ctx, task, jobID, &nestingerrors.JobError{JobID: jobID.String(), Stage: "scratch dir", Err: err})
		return
	}
	defer os.RemoveAll(scratch)

	if err := l.runJob(ctx, jobID, scratch); err != nil {
		l.failJobAndTask(ctx, task, jobID, err)
		return
	}

	if err := l.Queue.Complete(ctx, task.ID); err != nil {
		l.Log.Error("failed to mark work queue task completed", "task_id", task.ID, "error", err)
	}
}

func (l *Loop) failJobAndTask(ctx context.Context, task *models.WorkQueueTaskModel, jobID uuid.UUID, err error) {
	l.Log.Error("nest job failed", "job_id", jobID, "error", err)
	if mErr := l.Jobs.MarkFailed(ctx, jobID, err.Error()); mErr != nil {
		l.Log.Error("failed to mark nest job failed", "job_id", jobID, "error", mErr)
	}
	if mErr := l.Queue.Fail(ctx, task.ID, err.Error()); mErr != nil {
		l.Log.Error("failed to mark work queue task failed", "task_id", task.ID, "error", mErr)
	}
}

func (l *Loop) failTask(ctx context.Context, task *models.WorkQueueTaskModel, err error) {
	l.Log.Error("work queue task failed before its job could be identified", "task_id", task.ID, "error", err)
	if mErr := l.Queue.Fail(ctx, task.ID, err.Error()); mErr != nil {
		l.Log.Error("failed to mark work queue task failed", "task_id", task.ID, "error", mErr)
	}
}

// runJob carries out the load -> parse -> nest -> render -> upload ->
// record sequence for one job. Any failure scopes back to the caller,
// which marks the job and its queue task failed; the scratch directory
// cleanup happens in the caller regardless of outcome.
func (l *Loop) runJob(ctx context.Context, jobID uuid.UUID, scratch string) error {
	stage := func(name string, err error) error {
		if err == nil {
			return nil
		}
		return &nestingerrors.JobError{JobID: jobID.String(), Stage: name, Err: err}
	}

	if err := l.Jobs.MarkProcessing(ctx, jobID); err != nil {
		return stage("mark processing", fmt.Errorf("%w: %v", nestingerrors.ErrPersistence, err))
	}

	job, err := l.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return stage("load job", fmt.Errorf("%w: %v", nestingerrors.ErrPersistence, err))
	}
	if err := validate.Struct(job); err != nil {
		return stage("validate job", fmt.Errorf("%w: %v", nestingerrors.ErrValidation, err))
	}

	items, err := l.Items.FindByJobID(ctx, jobID)
	if err != nil {
		return stage("load items", fmt.Errorf("%w: %v", nestingerrors.ErrPersistence, err))
	}

	chordTol := l.ChordTolerance
	if chordTol <= 0 {
		chordTol = 0.01
	}

	parts, sources := l.loadParts(ctx, items, scratch, chordTol)

	result := nesting.Nest(parts, nesting.Params{
		SheetWidth:   job.SheetWidthIn,
		SheetHeight:  job.SheetHeightIn,
		Spacing:      job.SpacingIn,
		Margin:       job.MarginIn,
		RotationStep: job.RotationStepDeg,
	})

	for _, skip := range result.Skipped {
		l.Log.Warn("instance skipped by nester", "part_id", skip.PartID, "instance", skip.Instance, "reason", skip.Reason)
	}

	resultRows, outputs, err := l.renderAndUpload(ctx, job, result, sources, scratch)
	if err != nil {
		return stage("render and upload", err)
	}

	if err := l.Results.CreateBatch(ctx, resultRows); err != nil {
		return stage("persist results", fmt.Errorf("%w: %v", nestingerrors.ErrPersistence, err))
	}

	manifestData, manifestMap, err := buildManifestData(job, result, outputs)
	if err != nil {
		return stage("build manifest", fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err))
	}
	if err := l.Store.Put(ctx, job.OutputPrefix+"manifest.json", manifestData, "application/json"); err != nil {
		return stage("upload manifest", fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err))
	}

	if err := l.Jobs.MarkCompleted(ctx, jobID, result.TotalSheets(), result.TotalPartsPlaced(), round4(result.AvgUtilization()), manifestMap); err != nil {
		return stage("mark completed", fmt.Errorf("%w: %v", nestingerrors.ErrPersistence, err))
	}

	return nil
}

// loadParts downloads and parses each item's source DXF, skipping items
// whose download or parse fails rather than failing the whole job — a
// single bad part should not block every other part on the same sheet.
func (l *Loop) loadParts(ctx context.Context, items []models.NestJobItemModel, scratch string, chordTol float64) ([]nesting.Part, map[string]*dxfio.Document) {
	parts := make([]nesting.Part, 0, len(items))
	sources := make(map[string]*dxfio.Document, len(items))

	for i := range items {
		item := &items[i]

		if err := validate.Struct(item); err != nil {
			l.Log.Warn("skipping item: failed validation", "item_number", item.ItemNumber, "error", err)
			continue
		}

		data, err := l.Store.Get(ctx, item.DXFFilePath)
		if err != nil {
			l.Log.Warn("skipping item: download failed", "item_number", item.ItemNumber, "error", err)
			continue
		}

		localPath := filepath.Join(scratch, item.ID.String()+".dxf")
		if err := os.WriteFile(localPath, data, 0o644); err != nil {
			l.Log.Warn("skipping item: could not stage download", "item_number", item.ItemNumber, "error", err)
			continue
		}

		doc, err := dxfio.Read(localPath, dxfio.ReadOptions{ChordTolerance: chordTol})
		if err != nil || len(doc.Polygons) == 0 {
			l.Log.Warn("skipping item: no usable geometry", "item_number", item.ItemNumber, "error", err)
			continue
		}

		outline := doc.Polygons[0]
		bounds := geometry.BoundsOf(outline)
		item.SetGeometry(bounds.Width(), bounds.Height(), geometry.Area(outline))
		if err := l.Items.UpdateGeometry(ctx, item); err != nil {
			l.Log.Warn("failed to persist item geometry", "item_number", item.ItemNumber, "error", err)
		}

		// The placed part id is the item_number, matching the identifier the
		// pipeline persists and renders downstream (placement records, the
		// manifest, and DXF/SVG labels), not the item's own row id.
		sources[item.ItemNumber] = doc
		parts = append(parts, nesting.Part{ID: item.ItemNumber, Polygon: outline, Quantity: item.Quantity})
	}

	return parts, sources
}

// renderAndUpload writes and uploads a DXF and SVG per sheet, returning
// the result rows to persist and the manifest outputs describing them.
func (l *Loop) renderAndUpload(ctx context.Context, job *models.NestJobModel, result nesting.Result, sources map[string]*dxfio.Document, scratch string) ([]*models.NestResultModel, []manifestOutput, error) {
	resultRows := make([]*models.NestResultModel, 0, len(result.Sheets))
	outputs := make([]manifestOutput, 0, len(result.Sheets))

	for _, sheet := range result.Sheets {
		dxfName := fmt.Sprintf("%ssheet_%02d.dxf", job.OutputPrefix, sheet.Index)
		svgName := fmt.Sprintf("%ssheet_%02d.svg", job.OutputPrefix, sheet.Index)
		dxfLocal := filepath.Join(scratch, fmt.Sprintf("sheet_%02d.dxf", sheet.Index))
		svgLocal := filepath.Join(scratch, fmt.Sprintf("sheet_%02d.svg", sheet.Index))

		sheetInput := dxfio.SheetInput{Width: sheet.Width, Height: sheet.Height, Margin: job.MarginIn}
		for _, pl := range sheet.Placements {
			sheetInput.Placements = append(sheetInput.Placements, dxfio.PlacementInput{
				PartID:   pl.PartID,
				Instance: pl.Instance,
				Rotation: float64(pl.Rotation),
				Polygon:  pl.Polygon,
				Source:   sources[pl.PartID],
			})
		}

		if err := dxfio.WriteSheet(dxfLocal, sheetInput); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err)
		}
		if err := svgio.Write(svgLocal, sheetInput); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err)
		}

		dxfData, err := os.ReadFile(dxfLocal)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err)
		}
		if err := l.Store.Put(ctx, dxfName, dxfData, "application/dxf"); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err)
		}

		svgData, err := os.ReadFile(svgLocal)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err)
		}
		if err := l.Store.Put(ctx, svgName, svgData, "image/svg+xml"); err != nil {
			return nil, nil, fmt.Errorf("%w: %v", nestingerrors.ErrWrite, err)
		}

		placements := make([]models.PlacementRecord, 0, len(sheet.Placements))
		for _, pl := range sheet.Placements {
			placements = append(placements, models.PlacementRecord{
				PartID:   pl.PartID,
				Instance: pl.Instance,
				X:        round4(pl.X),
				Y:        round4(pl.Y),
				Rotation: pl.Rotation,
			})
		}

		utilization := round4(sheet.Utilization)
		resultRows = append(resultRows, &models.NestResultModel{
			NestJobID:    job.ID,
			SheetIndex:   sheet.Index,
			DXFPath:      dxfName,
			SVGPath:      svgName,
			Utilization:  utilization,
			PartsOnSheet: len(sheet.Placements),
			Placements:   placements,
		})
		outputs = append(outputs, manifestOutput{
			SheetIndex:   sheet.Index,
			DXFPath:      dxfName,
			Utilization:  utilization,
			PartsOnSheet: len(sheet.Placements),
			Placements:   placements,
		})
	}

	return resultRows, outputs, nil
}

func buildManifestData(job *models.NestJobModel, result nesting.Result, outputs []manifestOutput) ([]byte, models.JSONBMap, error) {
	m := buildManifest(job, result, outputs)
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, nil, err
	}
	manifestMap := make(models.JSONBMap)
	if err := json.Unmarshal(data, &manifestMap); err != nil {
		return nil, nil, err
	}
	return data, manifestMap, nil
}
